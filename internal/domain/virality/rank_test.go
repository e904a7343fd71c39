package virality

import (
	"reflect"
	"testing"

	"github.com/forPelevin/viralcut/internal/types"
)

func TestRank_StableOnTies(t *testing.T) {
	in := []types.CandidateVideo{
		{Title: "five", ViralScore: 5},
		{Title: "nine-a", ViralScore: 9},
		{Title: "nine-b", ViralScore: 9},
	}
	got := Rank(in)
	titles := []string{got[0].Title, got[1].Title, got[2].Title}
	want := []string{"nine-a", "nine-b", "five"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("Rank order = %v, want %v", titles, want)
	}
	if in[0].Title != "five" {
		t.Fatalf("input slice was mutated: %v", in)
	}
}

func TestRank_Idempotent(t *testing.T) {
	in := []types.CandidateVideo{
		{Title: "a", ViralScore: 1},
		{Title: "b", ViralScore: 3},
		{Title: "c", ViralScore: 3},
		{Title: "d", ViralScore: 0},
		{Title: "e", ViralScore: 2},
	}
	once := Rank(in)
	twice := Rank(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Rank not idempotent:\n%v\n%v", once, twice)
	}
}

func TestTopK(t *testing.T) {
	ranked := []types.CandidateVideo{{Title: "a"}, {Title: "b"}}
	tests := []struct {
		k           int
		wantLen     int
		wantClamped bool
	}{
		{0, 0, false},
		{1, 1, false},
		{2, 2, false},
		{5, 2, true},
	}
	for _, tt := range tests {
		top, clamped := TopK(ranked, tt.k)
		if len(top) != tt.wantLen || clamped != tt.wantClamped {
			t.Fatalf("TopK(%d) = len %d clamped %v, want len %d clamped %v", tt.k, len(top), clamped, tt.wantLen, tt.wantClamped)
		}
	}
}
