package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// NormalizeField lowercases s, turns hyphens into spaces and collapses
// whitespace. It is the form both stored fields and matching tokens share.
func NormalizeField(s string) string {
	return HyphensToSpaces(strings.ToLower(s))
}

// BuildSearchableFields derives the searchable token set stored on a recipe.
// Each title, ingredient and tag contributes its full normalized phrase plus
// every word longer than two characters. The result is sorted and unique.
func BuildSearchableFields(title string, ingredients, tags []string) []string {
	set := make(map[string]struct{})
	addSource := func(s string) {
		phrase := NormalizeField(s)
		if phrase == "" {
			return
		}
		set[phrase] = struct{}{}
		for _, word := range strings.Fields(phrase) {
			if utf8.RuneCountInString(word) > minWordLength {
				set[word] = struct{}{}
			}
		}
	}

	addSource(title)
	for _, ingredient := range ingredients {
		addSource(ingredient)
	}
	for _, tag := range tags {
		addSource(tag)
	}

	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
