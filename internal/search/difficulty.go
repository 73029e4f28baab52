package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Difficulty levels as stored on recipes.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// NormalizeDifficulty capitalizes the first letter of s and lowercases the
// rest. Surrounding whitespace is trimmed; an empty input stays empty.
func NormalizeDifficulty(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// IsValidDifficulty reports whether s, once normalized, is a known level.
func IsValidDifficulty(s string) bool {
	switch NormalizeDifficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
