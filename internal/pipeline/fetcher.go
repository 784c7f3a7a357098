package pipeline

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves the wikitext of a revision by id. It must be safe for
// concurrent use; section workers share one fetcher per request.
type Fetcher interface {
	RevisionContent(ctx context.Context, id int64) (string, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, id int64) (string, error)

func (f FetchFunc) RevisionContent(ctx context.Context, id int64) (string, error) {
	return f(ctx, id)
}

// dedupingFetcher collapses concurrent fetches of the same revision id into
// one upstream call and memoizes successes for the lifetime of a request.
// Every section worker walks the same candidate list, so without this each
// revision would be fetched once per section.
type dedupingFetcher struct {
	inner Fetcher
	group singleflight.Group

	mu   sync.Mutex
	memo map[int64]string
}

func newDedupingFetcher(inner Fetcher) *dedupingFetcher {
	return &dedupingFetcher{
		inner: inner,
		memo:  make(map[int64]string),
	}
}

func (f *dedupingFetcher) RevisionContent(ctx context.Context, id int64) (string, error) {
	f.mu.Lock()
	content, ok := f.memo[id]
	f.mu.Unlock()
	if ok {
		return content, nil
	}

	v, err, _ := f.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// A call that finished between the memo check above and this one
		// has already stored the content.
		f.mu.Lock()
		content, ok := f.memo[id]
		f.mu.Unlock()
		if ok {
			return content, nil
		}
		content, err := f.inner.RevisionContent(ctx, id)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.memo[id] = content
		f.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
