// Package normalize cleans raw concert records into canonical form.
//
// A Normalizer resolves the venue through the registry, cleans act names
// (markup, Unicode, casing, known aliases), and reduces time, age, flag and
// genre fields to their compact forms. Unparseable fields fall back to safe
// defaults; the only rejection is a record with no act left, reported as
// ErrNoActs.
package normalize
