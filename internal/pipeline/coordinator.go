package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wikimirror/wikimirror/internal/wiki"
	"github.com/wikimirror/wikimirror/internal/wikitext"
)

// API is the slice of the wiki client the pipeline depends on.
type API interface {
	RevisionContent(ctx context.Context, title string, id int64) (string, error)
}

// Coordinator owns one reconstitution per call: section fan-out, the merge
// cascades, and reassembly.
type Coordinator struct {
	api  API
	opts Options
	log  *slog.Logger
}

// NewCoordinator wires a coordinator to the given API capability.
func NewCoordinator(api API, opts Options, log *slog.Logger) *Coordinator {
	return &Coordinator{api: api, opts: opts, log: log}
}

// Reconstitute merges historical vandalism back into the current wikitext
// of the page and returns the merged document. Merge trouble never fails
// the call: a section whose worker panics comes back unchanged, a failed
// fetch skips its candidate pair, and a section abandoned on timeouts keeps
// the merges made before it was abandoned. The worst case is the current
// text verbatim.
func (c *Coordinator) Reconstitute(ctx context.Context, title, current string, revisions []wiki.Revision) string {
	candidates := SelectCandidates(revisions)
	if len(candidates) == 0 {
		return current
	}

	sections := wikitext.Split(current)
	fetcher := newDedupingFetcher(FetchFunc(func(ctx context.Context, id int64) (string, error) {
		return c.api.RevisionContent(ctx, title, id)
	}))

	start := time.Now()
	results := make([]string, len(sections))
	var wg sync.WaitGroup
	for i, section := range sections {
		wg.Add(1)
		go func(index int, section wikitext.Section) {
			defer wg.Done()
			results[index] = section.Text
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("section worker panicked", "title", title,
						"section", index, "panic", r)
					results[index] = section.Text
				}
			}()
			results[index] = mergeSection(ctx, index, section.Text, candidates, fetcher, c.opts, c.log)
		}(i, section)
	}
	wg.Wait()

	c.log.Info("merged revisions into article", "title", title,
		"sections", len(sections), "candidates", len(candidates),
		"duration_ms", time.Since(start).Milliseconds())

	return strings.Join(results, "")
}
