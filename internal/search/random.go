package search

import (
	"math/rand/v2"
	"time"
)

// MaxSampleSize caps how many documents a random fetch pulls from the store.
const MaxSampleSize = 500

// Shuffle returns a uniformly shuffled copy of items using Fisher-Yates.
// The input slice is left untouched.
func Shuffle[T any](items []T, r *rand.Rand) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// DailyIndex picks a stable index into a sample of the given size for the
// calendar day of t. Every caller on the same day gets the same index.
func DailyIndex(t time.Time, size int) int {
	if size <= 0 {
		return 0
	}
	return (t.Year()*365 + t.YearDay()) % size
}

// PageSlice returns the 1-based page of items, or nil past the end.
func PageSlice[T any](items []T, page, limit int) []T {
	start := Offset(page, limit)
	if start >= len(items) || limit < 1 {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
