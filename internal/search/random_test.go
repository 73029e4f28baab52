package search

import (
	"math/rand/v2"
	"reflect"
	"sort"
	"testing"
	"time"
)

func TestShuffle_IsPermutation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	in := []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 10, 11}
	orig := append([]uint(nil), in...)

	out := Shuffle(in, r)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	if !reflect.DeepEqual(in, orig) {
		t.Error("Shuffle modified its input")
	}
	sorted := append([]uint(nil), out...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if !reflect.DeepEqual(sorted, orig) {
		t.Errorf("Shuffle output %v is not a permutation of %v", out, orig)
	}
}

func TestShuffle_Empty(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	if out := Shuffle([]int{}, r); len(out) != 0 {
		t.Errorf("Shuffle(empty) = %v", out)
	}
}

func TestDailyIndex_StableWithinDay(t *testing.T) {
	morning := time.Date(2024, time.March, 5, 0, 1, 0, 0, time.UTC)
	evening := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)
	if DailyIndex(morning, 37) != DailyIndex(evening, 37) {
		t.Error("DailyIndex changed within one day")
	}
}

func TestDailyIndex_NextDay(t *testing.T) {
	day := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)
	want := (2024*365 + day.YearDay()) % 37
	if got := DailyIndex(day, 37); got != want {
		t.Errorf("DailyIndex = %d, want %d", got, want)
	}
	if DailyIndex(day, 37) == DailyIndex(next, 37) {
		t.Error("DailyIndex should move on the next day for a sample of 37")
	}
}

func TestDailyIndex_ZeroSize(t *testing.T) {
	if got := DailyIndex(time.Now(), 0); got != 0 {
		t.Errorf("DailyIndex(size 0) = %d, want 0", got)
	}
}

func TestPageSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	if got := PageSlice(items, 2, 2); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("PageSlice page 2 = %v", got)
	}
	if got := PageSlice(items, 3, 2); !reflect.DeepEqual(got, []int{5}) {
		t.Errorf("PageSlice page 3 = %v", got)
	}
	if got := PageSlice(items, 4, 2); got != nil {
		t.Errorf("PageSlice past end = %v, want nil", got)
	}
}
