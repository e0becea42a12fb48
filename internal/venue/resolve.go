package venue

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownID is returned when neither the id nor the name yields a slug.
const UnknownID = "unknown"

const maxSlugLen = 40

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'", "′", "'", "`", "'")

// Key lowercases and trims s and maps typographic apostrophes to ASCII.
func Key(s string) string {
	return apostrophes.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Resolve maps a raw venue id and display name to a canonical id. It never
// fails: unknown venues get a deterministic slug of the raw id (or the name
// when the id is blank), and "unknown" when both are empty.
func (r *Registry) Resolve(rawID, rawName string) string {
	id, _ := r.resolve(rawID, rawName)
	return id
}

// ResolveKnown is Resolve plus whether the result is a registry entry.
func (r *Registry) ResolveKnown(rawID, rawName string) (string, bool) {
	return r.resolve(rawID, rawName)
}

func (r *Registry) resolve(rawID, rawName string) (string, bool) {
	if id, ok := r.match(rawID, rawName); ok {
		return id, true
	}
	if id, ok := r.match(rawName, rawName); ok {
		return id, true
	}

	raw := rawID
	if strings.TrimSpace(raw) == "" {
		raw = rawName
	}
	return Slug(raw), false
}

func (r *Registry) match(raw, name string) (string, bool) {
	k := Key(raw)
	if k == "" {
		return "", false
	}

	id, ok := r.lookup(k)
	if !ok {
		id, ok = r.lookupAmbiguous(k)
	}
	if !ok {
		return "", false
	}
	return r.pickRoom(id, name, raw), true
}

func (r *Registry) lookup(k string) (string, bool) {
	candidates := []string{
		k,
		strings.ReplaceAll(k, " ", "_"),
		strings.ReplaceAll(k, "_", " "),
		strings.ReplaceAll(k, "_", ""),
	}
	for _, c := range candidates {
		if id, ok := r.variants[c]; ok {
			return id, true
		}
	}
	return "", false
}

func (r *Registry) lookupAmbiguous(k string) (string, bool) {
	spaced := strings.ReplaceAll(k, "_", " ")
	for _, a := range r.ambiguous {
		if strings.Contains(k, a.substr) || strings.Contains(spaced, a.substr) {
			return a.id, true
		}
	}
	return "", false
}

// pickRoom narrows a parent venue to one of its rooms when the name or id
// mentions the room. Venues without rooms are returned as is.
func (r *Registry) pickRoom(id, name, raw string) string {
	rooms := r.rooms[id]
	if len(rooms) == 0 {
		return id
	}

	for _, hay := range []string{Key(name), Key(raw)} {
		if hay == "" {
			continue
		}
		for _, room := range rooms {
			for _, word := range roomKeywords(room) {
				if strings.Contains(hay, word) {
					return room.ID
				}
			}
		}
	}
	return id
}

func roomKeywords(e *Entry) []string {
	words := make([]string, 0, len(e.RoomKeywords)+1)
	if e.Room != "" {
		words = append(words, Key(e.Room))
	}
	for _, w := range e.RoomKeywords {
		if k := Key(w); k != "" {
			words = append(words, k)
		}
	}
	return words
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug lowercases s, folds accents, replaces every run of characters
// outside [a-z0-9] with a single underscore and truncates to 40 bytes.
func Slug(s string) string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(folded) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
			continue
		}
		pendingSep = true
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "_")
	}
	if slug == "" {
		return UnknownID
	}
	return slug
}
