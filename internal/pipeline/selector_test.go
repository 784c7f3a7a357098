package pipeline

import (
	"testing"

	"github.com/wikimirror/wikimirror/internal/wiki"
)

func TestSelectCandidates(t *testing.T) {
	revisions := []wiki.Revision{
		{ID: 60, ParentID: 50, Comment: "Reverted vandalism by 192.0.2.1"},
		{ID: 50, ParentID: 40, Comment: "added infobox"},
		{ID: 40, ParentID: 30, Comment: "rvv"},
		{ID: 30, ParentID: 20, Comment: "RVV: undo VANDALISM"},
		{ID: 20, ParentID: 10, Comment: "copyedit"},
	}

	candidates := SelectCandidates(revisions)
	want := []Candidate{
		{CleanID: 60, VandalID: 50},
		{CleanID: 30, VandalID: 20},
	}
	if len(candidates) != len(want) {
		t.Fatalf("expected %v, got %v", want, candidates)
	}
	for i := range want {
		if candidates[i] != want[i] {
			t.Errorf("candidate %d: expected %v, got %v", i, want[i], candidates[i])
		}
	}
}

func TestSelectCandidates_MatchIsCaseInsensitiveSubstring(t *testing.T) {
	revisions := []wiki.Revision{
		{ID: 3, Comment: "Undid Vandalism"},
		{ID: 2, Comment: "moved to Vandalia, Ohio"},
		{ID: 1, Comment: "initial"},
	}
	candidates := SelectCandidates(revisions)
	// Plain substring matching: "Vandalia" matches too.
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %v", candidates)
	}
	if candidates[0].CleanID != 3 || candidates[0].VandalID != 2 {
		t.Errorf("unexpected first candidate: %v", candidates[0])
	}
}

func TestSelectCandidates_OldestRevisionHasNoPredecessor(t *testing.T) {
	revisions := []wiki.Revision{
		{ID: 2, Comment: "copyedit"},
		{ID: 1, Comment: "rm vandalism"},
	}
	candidates := SelectCandidates(revisions)
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %v", candidates)
	}
}

func TestSelectCandidates_NoMatches(t *testing.T) {
	revisions := []wiki.Revision{
		{ID: 2, Comment: "copyedit"},
		{ID: 1, Comment: "initial"},
	}
	if candidates := SelectCandidates(revisions); len(candidates) != 0 {
		t.Errorf("expected no candidates, got %v", candidates)
	}
}

func TestSelectCandidates_EmptyLog(t *testing.T) {
	if candidates := SelectCandidates(nil); len(candidates) != 0 {
		t.Errorf("expected no candidates, got %v", candidates)
	}
}
