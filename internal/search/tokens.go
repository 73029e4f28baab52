// Package search holds the store-independent pieces of recipe search:
// token extraction, searchable-field generation, difficulty normalization,
// pagination math and the random pick helpers.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// AnyOfLimit is the maximum number of values the store accepts in a single
// "contains any" predicate. Token extraction and id-membership chunking are
// both bounded by it.
const AnyOfLimit = 10

// minWordLength is the length a single word must exceed to become a token.
const minWordLength = 2

// SplitPhrases splits s on commas, trims and collapses whitespace inside
// each phrase, lowercases it and drops empty phrases.
func SplitPhrases(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var phrases []string
	for _, part := range strings.Split(s, ",") {
		phrase := collapseSpaces(strings.ToLower(part))
		if phrase == "" {
			continue
		}
		phrases = append(phrases, phrase)
	}
	return phrases
}

// HyphensToSpaces replaces every hyphen in s with a space and collapses the
// resulting whitespace.
func HyphensToSpaces(s string) string {
	return collapseSpaces(strings.ReplaceAll(s, "-", " "))
}

// SpacesToHyphens joins the whitespace-separated words of s with hyphens.
func SpacesToHyphens(s string) string {
	return strings.Join(strings.Fields(s), "-")
}

// GenerateVariations returns the hyphen→space and space→hyphen forms of
// phrase, skipping any that equal the phrase itself.
func GenerateVariations(phrase string) []string {
	var variations []string
	if strings.Contains(phrase, "-") {
		if v := HyphensToSpaces(phrase); v != phrase && v != "" {
			variations = append(variations, v)
		}
	}
	if strings.ContainsFunc(phrase, unicode.IsSpace) {
		if v := SpacesToHyphens(phrase); v != phrase && v != "" && !contains(variations, v) {
			variations = append(variations, v)
		}
	}
	return variations
}

// GatherTokens builds the ordered token list for a query and a tag string.
// Exact phrases come first (query before tag), then their hyphen/space
// variants, then individual words longer than two characters. The result
// never holds more than AnyOfLimit tokens and never repeats a token.
func GatherTokens(query, tag string) []string {
	phrases := append(SplitPhrases(query), SplitPhrases(tag)...)
	if len(phrases) == 0 {
		return nil
	}

	tokens := make([]string, 0, AnyOfLimit)
	seen := make(map[string]struct{}, AnyOfLimit)
	add := func(token string) {
		if token == "" || len(tokens) >= AnyOfLimit {
			return
		}
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	for _, phrase := range phrases {
		add(phrase)
	}
	for _, phrase := range phrases {
		if len(tokens) >= AnyOfLimit {
			break
		}
		for _, v := range GenerateVariations(phrase) {
			add(v)
		}
	}
	for _, phrase := range phrases {
		if len(tokens) >= AnyOfLimit {
			break
		}
		for _, word := range splitWords(phrase) {
			if utf8.RuneCountInString(word) > minWordLength {
				add(word)
			}
		}
	}

	if len(tokens) > AnyOfLimit {
		tokens = tokens[:AnyOfLimit]
	}
	return tokens
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
