package normalize

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// corrections maps lowercase act names to their canonical spelling.
var corrections = map[string]string{
	"dropkick murphy's":           "Dropkick Murphys",
	"dropkick murphys":            "Dropkick Murphys",
	"mighty mighty bosstones":     "The Mighty Mighty Bosstones",
	"the mighty mighty bosstones": "The Mighty Mighty Bosstones",
	"bosstones":                   "The Mighty Mighty Bosstones",
	"dinosaur jr":                 "Dinosaur Jr.",
	"dinosaur jr.":                "Dinosaur Jr.",
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'", "′", "'", "`", "'")

// CleanText strips markup and entities, applies NFC, maps typographic
// apostrophes to ASCII and collapses whitespace.
func CleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	s = apostrophes.Replace(norm.NFC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// CleanAct normalizes one act name. It returns "" when nothing is left.
func CleanAct(raw string) string {
	name := CleanText(raw)
	if name == "" {
		return ""
	}

	if isAllCaps(name) && len([]rune(name)) > 4 {
		// Casers keep state, so one per call.
		name = cases.Title(language.English).String(strings.ToLower(name))
	}

	if len(name) > 4 && strings.HasPrefix(strings.ToLower(name), "the ") {
		name = "The " + name[4:]
	}

	if fixed, ok := corrections[strings.ToLower(name)]; ok {
		name = fixed
	}
	return name
}

// CleanActs cleans every act, dropping empty names and case-insensitive
// repeats while keeping the headliner first.
func CleanActs(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, a := range raw {
		name := CleanAct(a)
		if name == "" {
			continue
		}
		k := strings.ToLower(name)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, name)
	}
	return out
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
