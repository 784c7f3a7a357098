// Package merge implements a line-level three-way merge biased toward the
// "other" (vandalized) side. The diff3 chunking follows Khanna, Kunal, and
// Pierce, "A Formal Investigation of Diff3" (FSTTCS 2007): two LCS
// alignments against the common ancestor partition it into stable and
// unstable chunks, and each unstable chunk is classified by which sides
// changed it.
//
// Where classic diff3 reports a conflict, this merge takes the vandal text
// and brackets it in sentinel code points so the rendering layer can mark
// the span. The sentinels are drawn from a Unicode Private Use Area and
// never occur in wiki content.
package merge

import (
	"time"

	"github.com/wikimirror/wikimirror/internal/diff"
)

// Open and Close bracket spans of merged output that originate from a
// vandalized revision. They are part of the wire contract with the page
// layer: U+E000 opens a span, U+E001 closes it.
const (
	Open  = '\uE000'
	Close = '\uE001'
)

// chunk is a contiguous region of the three inputs. A stable chunk is
// matched by both sides; an unstable chunk is any region between stable
// runs.
type chunk struct {
	stable           bool
	baseLo, baseHi   int
	leftLo, leftHi   int
	rightLo, rightHi int
}

// segment is a run of output lines attributed to one side.
type segment struct {
	lines  []string
	vandal bool
}

// Merge three-way merges left (the accumulated current text) and right (the
// vandalized revision) against base (the clean revision). Regions changed on
// only one side take that side's text; regions changed identically on both
// take it once; conflicting regions and right-only changes (including
// insertions) take the right text bracketed by Open and Close. Adjacent vandal-attributed runs
// share one bracket pair.
//
// A deadline hit inside either LCS call is returned as diff.ErrDeadline and
// produces no merge output.
func Merge(base, left, right []string, deadline time.Time) ([]string, error) {
	leftMatches, err := diff.LCS(base, left, deadline)
	if err != nil {
		return nil, err
	}
	rightMatches, err := diff.LCS(base, right, deadline)
	if err != nil {
		return nil, err
	}

	segments := classify(parse(leftMatches, rightMatches, len(base), len(left), len(right)), base, left, right)
	return wrap(segments), nil
}

// parse computes the diff3 chunking of base from the two alignments.
func parse(leftMatches, rightMatches []diff.Match, baseLen, leftLen, rightLen int) []chunk {
	matchL := alignment(leftMatches, baseLen)
	matchR := alignment(rightMatches, baseLen)

	var chunks []chunk
	i, l, r := 0, 0, 0
	for {
		if i >= baseLen {
			if l < leftLen || r < rightLen {
				chunks = append(chunks, chunk{
					baseLo: i, baseHi: baseLen,
					leftLo: l, leftHi: leftLen,
					rightLo: r, rightHi: rightLen,
				})
			}
			return chunks
		}

		// Find the next base index matched by both sides.
		k := 0
		for i+k < baseLen && (matchL[i+k] < 0 || matchR[i+k] < 0) {
			k++
		}
		if i+k >= baseLen {
			chunks = append(chunks, chunk{
				baseLo: i, baseHi: baseLen,
				leftLo: l, leftHi: leftLen,
				rightLo: r, rightHi: rightLen,
			})
			return chunks
		}

		// Anything before that match on any side (including lines a side
		// inserted) is one unstable chunk.
		if k > 0 || matchL[i] != l || matchR[i] != r {
			chunks = append(chunks, chunk{
				baseLo: i, baseHi: i + k,
				leftLo: l, leftHi: matchL[i+k],
				rightLo: r, rightHi: matchR[i+k],
			})
			i += k
			l = matchL[i]
			r = matchR[i]
		}

		// Extend the stable run.
		e := 0
		for i+e < baseLen && matchL[i+e] == l+e && matchR[i+e] == r+e {
			e++
		}
		chunks = append(chunks, chunk{
			stable: true,
			baseLo: i, baseHi: i + e,
			leftLo: l, leftHi: l + e,
			rightLo: r, rightHi: r + e,
		})
		i += e
		l += e
		r += e
	}
}

// alignment flattens matches into a base-indexed lookup, -1 for unmatched.
func alignment(matches []diff.Match, baseLen int) []int {
	out := make([]int, baseLen)
	for i := range out {
		out[i] = -1
	}
	for _, m := range matches {
		out[m.A] = m.B
	}
	return out
}

// classify turns each chunk into an output segment attributed to one side.
func classify(chunks []chunk, base, left, right []string) []segment {
	var segments []segment
	for _, c := range chunks {
		if c.stable {
			segments = append(segments, segment{lines: base[c.baseLo:c.baseHi]})
			continue
		}
		o := base[c.baseLo:c.baseHi]
		a := left[c.leftLo:c.leftHi]
		b := right[c.rightLo:c.rightHi]
		switch {
		case linesEqual(o, a) && linesEqual(o, b):
			// Degenerate: nothing actually changed.
			segments = append(segments, segment{lines: o})
		case linesEqual(o, a):
			// Changed only in the vandalized revision.
			segments = append(segments, segment{lines: b, vandal: true})
		case linesEqual(o, b):
			// Changed only in the current text.
			segments = append(segments, segment{lines: a})
		case linesEqual(a, b):
			// Falsely conflicting: both sides made the same change.
			segments = append(segments, segment{lines: a})
		default:
			// True conflict: the vandal wins.
			segments = append(segments, segment{lines: b, vandal: true})
		}
	}
	return segments
}

// wrap emits the segments, bracketing each maximal run of non-empty
// vandal-attributed output in Open/Close sentinels.
func wrap(segments []segment) []string {
	var out []string
	open := false
	for _, s := range segments {
		if len(s.lines) == 0 {
			continue
		}
		if s.vandal && !open {
			out = append(out, s.lines...)
			first := len(out) - len(s.lines)
			out[first] = string(Open) + out[first]
			open = true
			continue
		}
		if !s.vandal && open {
			out[len(out)-1] = out[len(out)-1] + string(Close)
			open = false
		}
		out = append(out, s.lines...)
	}
	if open {
		out[len(out)-1] = out[len(out)-1] + string(Close)
	}
	return out
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
