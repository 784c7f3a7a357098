package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wikimirror/wikimirror/internal/diff"
	"github.com/wikimirror/wikimirror/internal/merge"
	"github.com/wikimirror/wikimirror/internal/metrics"
	"github.com/wikimirror/wikimirror/internal/wikitext"
)

// Options tune the per-section merge loop.
type Options struct {
	// MergeTimeout is the deadline budget for one three-way merge.
	MergeTimeout time.Duration
	// SizeGateBytes skips a candidate when the clean and vandalized
	// section texts differ in length by more than this many bytes; bulk
	// replacements are cheap to reject and expensive to diff.
	SizeGateBytes int
	// MaxTimeouts is the number of consecutive merge timeouts after which
	// a section is abandoned.
	MaxTimeouts int
}

// DefaultOptions matches the tuning the service runs with.
func DefaultOptions() Options {
	return Options{
		MergeTimeout:  500 * time.Millisecond,
		SizeGateBytes: 1000,
		MaxTimeouts:   3,
	}
}

// mergeSection runs the merge cascade for one section: for each candidate,
// newest first, it fetches the clean and vandalized revisions, takes their
// section at the same ordinal index, and three-way merges the vandalism
// into the accumulator. Fetch failures skip the pair. Consecutive merge
// timeouts abandon the section; the accumulator is returned as-is in every
// exit path.
func mergeSection(ctx context.Context, index int, acc string, candidates []Candidate, fetch Fetcher, opts Options, log *slog.Logger) string {
	timeouts := 0
	for _, cand := range candidates {
		if ctx.Err() != nil {
			return acc
		}

		base, ok := fetchSection(ctx, fetch, cand.CleanID, index, log)
		if !ok {
			metrics.RecordMerge(metrics.MergeOutcomeFetchSkip)
			continue
		}
		right, ok := fetchSection(ctx, fetch, cand.VandalID, index, log)
		if !ok {
			metrics.RecordMerge(metrics.MergeOutcomeFetchSkip)
			continue
		}

		if delta := len(base) - len(right); delta > opts.SizeGateBytes || -delta > opts.SizeGateBytes {
			metrics.RecordMerge(metrics.MergeOutcomeSizeSkip)
			continue
		}

		deadline := time.Now().Add(opts.MergeTimeout)
		merged, err := merge.Merge(splitLines(base), splitLines(acc), splitLines(right), deadline)
		switch {
		case errors.Is(err, diff.ErrDeadline):
			metrics.RecordMerge(metrics.MergeOutcomeTimeout)
			timeouts++
			if timeouts >= opts.MaxTimeouts {
				metrics.RecordAbandon()
				log.Info("section abandoned after consecutive merge timeouts",
					"section", index, "timeouts", timeouts)
				return acc
			}
		case err != nil:
			metrics.RecordMerge(metrics.MergeOutcomeError)
			log.Warn("merge failed", "section", index, "clean_id", cand.CleanID,
				"vandal_id", cand.VandalID, "error", err)
		default:
			metrics.RecordMerge(metrics.MergeOutcomeMerged)
			acc = joinLines(merged)
			timeouts = 0
		}
	}
	return acc
}

// fetchSection fetches a revision and returns its section at the given
// ordinal index. Missing sections are empty inputs; fetch failures are
// logged and reported as not-ok so the caller skips the pair.
func fetchSection(ctx context.Context, fetch Fetcher, id int64, index int, log *slog.Logger) (string, bool) {
	content, err := fetch.RevisionContent(ctx, id)
	if err != nil {
		log.Warn("revision fetch failed", "revision_id", id, "section", index, "error", err)
		return "", false
	}
	return wikitext.At(wikitext.Split(content), index), true
}

// splitLines converts section text to the line sequence merging operates
// on. The empty string is the empty sequence, so a missing section merges
// as pure insertion.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
