package search

import (
	"reflect"
	"strings"
	"testing"
)

// --- SplitPhrases ---

func TestSplitPhrases_TrimsAndCollapses(t *testing.T) {
	got := SplitPhrases("  Sweet   Potato ,, pie ,")
	want := []string{"sweet potato", "pie"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitPhrases = %v, want %v", got, want)
	}
}

func TestSplitPhrases_Empty(t *testing.T) {
	if got := SplitPhrases("   "); got != nil {
		t.Errorf("SplitPhrases(blank) = %v, want nil", got)
	}
}

// --- GenerateVariations ---

func TestGenerateVariations_Hyphen(t *testing.T) {
	got := GenerateVariations("stir-fry")
	want := []string{"stir fry"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateVariations(stir-fry) = %v, want %v", got, want)
	}
}

func TestGenerateVariations_Space(t *testing.T) {
	got := GenerateVariations("mac and cheese")
	want := []string{"mac-and-cheese"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateVariations = %v, want %v", got, want)
	}
}

func TestGenerateVariations_Mixed(t *testing.T) {
	got := GenerateVariations("gluten-free bread")
	want := []string{"gluten free bread", "gluten-free-bread"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateVariations = %v, want %v", got, want)
	}
}

func TestGenerateVariations_SingleWord(t *testing.T) {
	if got := GenerateVariations("turkey"); len(got) != 0 {
		t.Errorf("GenerateVariations(turkey) = %v, want none", got)
	}
}

func TestHyphensToSpaces_Idempotent(t *testing.T) {
	for _, in := range []string{"stir-fry", "a--b - c", "one-pot-pasta", "plain"} {
		once := HyphensToSpaces(in)
		twice := HyphensToSpaces(once)
		if once != twice {
			t.Errorf("HyphensToSpaces(%q): %q then %q", in, once, twice)
		}
		if strings.Contains(once, "-") {
			t.Errorf("HyphensToSpaces(%q) = %q still has a hyphen", in, once)
		}
	}
}

// --- GatherTokens ---

func TestGatherTokens_PhrasesFirst(t *testing.T) {
	got := GatherTokens("Thanksgiving, turkey", "")
	if len(got) < 2 || got[0] != "thanksgiving" || got[1] != "turkey" {
		t.Errorf("GatherTokens = %v, want prefix [thanksgiving turkey]", got)
	}
}

func TestGatherTokens_TagPhrasesFirst(t *testing.T) {
	got := GatherTokens("", "holiday, christmas")
	want := []string{"holiday", "christmas"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GatherTokens = %v, want %v", got, want)
	}
}

func TestGatherTokens_QueryBeforeTag(t *testing.T) {
	got := GatherTokens("pie", "dessert")
	want := []string{"pie", "dessert"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GatherTokens = %v, want %v", got, want)
	}
}

func TestGatherTokens_PassOrder(t *testing.T) {
	got := GatherTokens("stir-fry chicken", "")
	want := []string{
		"stir-fry chicken",
		"stir fry chicken",
		"stir-fry-chicken",
		"stir",
		"fry",
		"chicken",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GatherTokens = %v, want %v", got, want)
	}
}

func TestGatherTokens_SkipsShortWords(t *testing.T) {
	got := GatherTokens("mac n cheese", "")
	for _, tok := range got {
		if tok == "n" {
			t.Errorf("GatherTokens kept short word: %v", got)
		}
	}
}

func TestGatherTokens_Empty(t *testing.T) {
	if got := GatherTokens("", " , "); len(got) != 0 {
		t.Errorf("GatherTokens(empty) = %v, want none", got)
	}
}

func TestGatherTokens_CapAndUnique(t *testing.T) {
	inputs := [][2]string{
		{"a, b, c, d, e, f, g, h, i, j, k, l", "m, n"},
		{"slow-cooker pulled pork, bbq, smoked brisket sandwich", "summer-time, grill party"},
		{"pie, pie, PIE,  pie ", "pie"},
		{"one two three four five six seven eight nine ten eleven twelve", ""},
	}
	for _, in := range inputs {
		got := GatherTokens(in[0], in[1])
		if len(got) > AnyOfLimit {
			t.Errorf("GatherTokens(%q, %q) returned %d tokens", in[0], in[1], len(got))
		}
		seen := map[string]bool{}
		for _, tok := range got {
			if seen[tok] {
				t.Errorf("GatherTokens(%q, %q) duplicate %q", in[0], in[1], tok)
			}
			seen[tok] = true
			if tok != strings.ToLower(tok) {
				t.Errorf("token %q is not lowercase", tok)
			}
		}
	}
}
