// Package venue canonicalizes venue identifiers.
//
// Scrapers and ticketing feeds name the same room many ways
// ("middle-east---downstairs", "Middle East Downstairs", "ME down"). A
// Registry maps every known variant to one canonical id, picks the right
// room of a multi-room venue from the display name, and falls back to a
// deterministic slug for venues it has never seen. Resolution is total: it
// always returns a non-empty id.
//
// The default registry is embedded in the binary and parsed once. A JSON or
// YAML file with the same shape can replace it:
//
//	venues:
//	  - id: paradise
//	    name: Paradise Rock Club
//	    location: Boston
//	    state: MA
//	    id_variants: [paradise_rock_club, paradiserock]
package venue
