package models

import (
	"testing"

	"github.com/lib/pq"
)

func TestRecipeBeforeSave_RefreshesFields(t *testing.T) {
	r := &Recipe{
		Title:       "Stir-Fry",
		Ingredients: pq.StringArray{"Tofu"},
		Difficulty:  "hARD",
		// stale value must be replaced
		SearchableFields: pq.StringArray{"stale"},
	}
	if err := r.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if r.Difficulty != "Hard" {
		t.Errorf("Difficulty = %q, want Hard", r.Difficulty)
	}
	want := map[string]bool{"stir fry": true, "stir": true, "fry": true, "tofu": true}
	if len(r.SearchableFields) != len(want) {
		t.Fatalf("SearchableFields = %v", r.SearchableFields)
	}
	for _, f := range r.SearchableFields {
		if !want[f] {
			t.Errorf("unexpected field %q", f)
		}
	}
	if r.Source != RecipeSourceManual {
		t.Errorf("Source = %q, want manual default", r.Source)
	}
}

func TestRecipeSource_Discoverable(t *testing.T) {
	cases := map[RecipeSource]bool{
		RecipeSourceAI:       true,
		RecipeSourceSocial:   true,
		RecipeSourceManual:   false,
		RecipeSourceExternal: false,
	}
	for src, want := range cases {
		if got := src.Discoverable(); got != want {
			t.Errorf("%s.Discoverable() = %v, want %v", src, got, want)
		}
	}
}
