package diff

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func farDeadline() time.Time {
	return time.Now().Add(10 * time.Second)
}

func TestLCS_IdenticalSequences(t *testing.T) {
	lines := []string{"alpha", "beta", "gamma"}
	matches, err := LCS(lines, lines, farDeadline())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	for i, m := range matches {
		if m.A != i || m.B != i {
			t.Errorf("match %d: expected (%d,%d), got (%d,%d)", i, i, i, m.A, m.B)
		}
	}
}

func TestLCS_InsertionInMiddle(t *testing.T) {
	a := []string{"one", "two", "three"}
	b := []string{"one", "inserted", "two", "three"}
	matches, err := LCS(a, b, farDeadline())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Match{{0, 0}, {1, 2}, {2, 3}}
	if len(matches) != len(want) {
		t.Fatalf("expected %v, got %v", want, matches)
	}
	for i := range want {
		if matches[i] != want[i] {
			t.Errorf("match %d: expected %v, got %v", i, want[i], matches[i])
		}
	}
}

func TestLCS_Transposition(t *testing.T) {
	// Lines 1..6 vs the same with "3" and "45" swapped; the LCS keeps 5 of 6.
	a := []string{"1", "2", "3", "4", "5", "6"}
	b := []string{"1", "2", "4", "5", "3", "6"}
	matches, err := LCS(a, b, farDeadline())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("expected LCS of length 5, got %d: %v", len(matches), matches)
	}
	// Matches must be strictly increasing in both coordinates.
	for i := 1; i < len(matches); i++ {
		if matches[i].A <= matches[i-1].A || matches[i].B <= matches[i-1].B {
			t.Errorf("matches not strictly increasing: %v", matches)
		}
	}
}

func TestLCS_NoCommonLines(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"x", "y"}
	matches, err := LCS(a, b, farDeadline())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %v", matches)
	}
}

func TestLCS_EmptyInputs(t *testing.T) {
	matches, err := LCS(nil, []string{"a"}, farDeadline())
	if err != nil || len(matches) != 0 {
		t.Errorf("empty a: expected no matches and no error, got %v, %v", matches, err)
	}
	matches, err = LCS([]string{"a"}, nil, farDeadline())
	if err != nil || len(matches) != 0 {
		t.Errorf("empty b: expected no matches and no error, got %v, %v", matches, err)
	}
}

func TestLCS_ExpiredDeadline(t *testing.T) {
	a := []string{"a", "b"}
	b := []string{"a", "c"}
	_, err := LCS(a, b, time.Now().Add(-time.Millisecond))
	if !errors.Is(err, ErrDeadline) {
		t.Fatalf("expected ErrDeadline, got %v", err)
	}
}

func TestLCS_DeadlineCutsOffLargeDivergentInputs(t *testing.T) {
	// Two sequences with no lines in common force the search to full depth
	// n+m; a tight deadline must cut it off.
	a := make([]string, 3000)
	b := make([]string, 3000)
	for i := range a {
		a[i] = "a" + strconv.Itoa(i)
		b[i] = "b" + strconv.Itoa(i)
	}
	_, err := LCS(a, b, time.Now().Add(5*time.Millisecond))
	if !errors.Is(err, ErrDeadline) {
		t.Fatalf("expected ErrDeadline, got %v", err)
	}
}

func TestLCS_ReconstructsSubsequence(t *testing.T) {
	// Every reported match must pair identical lines.
	a := []string{"x", "shared 1", "y", "shared 2", "z"}
	b := []string{"shared 1", "q", "shared 2"}
	matches, err := LCS(a, b, farDeadline())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", matches)
	}
	for _, m := range matches {
		if a[m.A] != b[m.B] {
			t.Errorf("match %v pairs different lines %q and %q", m, a[m.A], b[m.B])
		}
	}
}
