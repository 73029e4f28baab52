package search

import (
	"reflect"
	"sort"
	"testing"
)

func TestBuildSearchableFields(t *testing.T) {
	got := BuildSearchableFields(
		"Stir-Fry Chicken",
		[]string{"2 cups rice", "Soy sauce"},
		[]string{"Quick", "quick"},
	)
	want := []string{
		"2 cups rice",
		"chicken",
		"cups",
		"fry",
		"quick",
		"rice",
		"sauce",
		"soy",
		"soy sauce",
		"stir",
		"stir fry chicken",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildSearchableFields = %v, want %v", got, want)
	}
}

func TestBuildSearchableFields_Sorted(t *testing.T) {
	got := BuildSearchableFields("Zesty Apple Cake", nil, []string{"baking"})
	if !sort.StringsAreSorted(got) {
		t.Errorf("fields not sorted: %v", got)
	}
}

func TestBuildSearchableFields_MatchesVariationToken(t *testing.T) {
	fields := BuildSearchableFields("One-Pot Pasta", nil, nil)
	tokens := GatherTokens("one-pot pasta", "")
	matched := false
	for _, tok := range tokens {
		for _, f := range fields {
			if tok == f {
				matched = true
			}
		}
	}
	if !matched {
		t.Errorf("no token of %v matched fields %v", tokens, fields)
	}
}

func TestBuildSearchableFields_Empty(t *testing.T) {
	if got := BuildSearchableFields("  ", nil, []string{""}); len(got) != 0 {
		t.Errorf("BuildSearchableFields(empty) = %v", got)
	}
}
