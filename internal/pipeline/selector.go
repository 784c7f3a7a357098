// Package pipeline reconstitutes vandalism into an article: it mines the
// revision log for reverted-vandalism events, fans out one worker per
// section of the current wikitext, and runs each section through a cascade
// of vandal-biased three-way merges.
package pipeline

import (
	"strings"

	"github.com/wikimirror/wikimirror/internal/wiki"
)

// Candidate is one presumed vandalism event: CleanID is the revision that
// reverted it, VandalID the vandalized revision immediately preceding it.
type Candidate struct {
	CleanID  int64
	VandalID int64
}

// SelectCandidates filters a newest-first revision log down to candidate
// pairs. A revision qualifies when its edit summary contains "vandal",
// case-insensitively — the community convention for revert summaries
// ("Reverted vandalism"). A bare "rvv" without the word does not qualify.
// The oldest entry has no predecessor
// and never qualifies. Order is preserved, newest revert first.
func SelectCandidates(revisions []wiki.Revision) []Candidate {
	var candidates []Candidate
	for i := 0; i+1 < len(revisions); i++ {
		if strings.Contains(strings.ToLower(revisions[i].Comment), "vandal") {
			candidates = append(candidates, Candidate{
				CleanID:  revisions[i].ID,
				VandalID: revisions[i+1].ID,
			})
		}
	}
	return candidates
}
