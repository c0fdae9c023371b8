// Package slug derives URL identifiers for books and topics.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// delimiters is the separator class: whitespace plus the punctuation a title
// is split on. Consecutive delimiters collapse into a single hyphen.
var delimiters = regexp.MustCompile("[\\s!\"#$%&()*\\-/<=>?@\\[\\\\\\]^_`{|}:,.]+")

var apostrophes = strings.NewReplacer("'", "", "’", "")

// Normalize lowercases text, drops apostrophes and joins the remaining words
// with hyphens.
//
//	Normalize("You don't know JS")      // "you-dont-know-js"
//	Normalize("Data Vis: Python & JS!") // "data-vis-python-js"
//
// Empty or punctuation-only input yields "".
func Normalize(text string) string {
	text = apostrophes.Replace(strings.ToLower(text))

	parts := delimiters.Split(text, -1)
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return strings.Join(words, "-")
}

// Unique returns Normalize(text) if no existing slug uses it, otherwise the
// first of base-1, base-2, ... that is free. existing must be a current
// snapshot of the slugs of one entity type.
func Unique(existing []string, text string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}

	base := Normalize(text)
	if _, ok := taken[base]; !ok {
		return base
	}

	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
