package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/wikimirror/wikimirror/internal/page"
	"github.com/wikimirror/wikimirror/internal/wiki"
)

// handleArticle serves /wiki/{title}: the current article with historical
// vandalism merged back in. Reconstitution trouble is never a request
// failure; whenever rendering or splicing goes wrong the handler falls
// back to the unmodified upstream article, and only an unreachable
// upstream produces an error status.
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	title := chi.URLParam(r, "title")

	canonical, err := s.wiki.CanonicalTitle(ctx, title)
	if err != nil {
		s.log.Warn("canonical title resolution failed", "title", title, "error", err)
		s.serveOriginal(w, r, title)
		return
	}
	if canonical != title {
		s.log.Info("resolved redirect", "title", title, "canonical", canonical)
	}

	// The page shell and the revision data are independent fetches.
	g, gctx := errgroup.WithContext(ctx)
	var shell, current string
	var revisions []wiki.Revision
	g.Go(func() error {
		var err error
		shell, err = s.wiki.ArticleHTML(gctx, canonical)
		return err
	})
	g.Go(func() error {
		latest, err := s.wiki.LatestRevision(gctx, canonical)
		if err != nil {
			return err
		}
		current, err = s.wiki.RevisionContent(gctx, canonical, latest.ID)
		if err != nil {
			return err
		}
		revisions, err = s.wiki.Revisions(gctx, canonical, s.cfg.RevisionLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("article data fetch failed", "title", canonical, "error", err)
		s.serveOriginal(w, r, canonical)
		return
	}

	merged := s.coordinator.Reconstitute(ctx, canonical, current, revisions)

	rendered, err := s.wiki.RenderWikitext(ctx, canonical, merged)
	if err != nil {
		s.log.Warn("wikitext rendering failed, serving original page",
			"title", canonical, "error", err)
		serveHTML(w, shell)
		return
	}

	body := page.ExpandSpans(page.Scrub(rendered))
	final, err := page.SpliceBody(shell, body)
	if err != nil {
		s.log.Warn("body splice failed, serving original page",
			"title", canonical, "error", err)
		serveHTML(w, shell)
		return
	}
	serveHTML(w, final)
}

// serveOriginal proxies the upstream article page unchanged, the fallback
// when reconstitution cannot even start.
func (s *Server) serveOriginal(w http.ResponseWriter, r *http.Request, title string) {
	html, err := s.wiki.ArticleHTML(r.Context(), title)
	if err != nil {
		s.log.Error("upstream article fetch failed", "title", title, "error", err)
		http.Error(w, "upstream wiki unreachable", http.StatusBadGateway)
		return
	}
	serveHTML(w, html)
}

func serveHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// handleProxy forwards any non-article request to the upstream wiki and
// relays the response, so asset and navigation URLs on served pages
// resolve.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	target := s.wiki.BaseURL() + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	resp, err := s.proxyClient.Do(req)
	if err != nil {
		s.log.Warn("proxy fetch failed", "url", target, "error", err)
		http.Error(w, "upstream wiki unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if isHopByHop(key) {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Warn("proxy copy failed", "url", target, "error", err)
	}
}

func isHopByHop(header string) bool {
	switch http.CanonicalHeaderKey(header) {
	case "Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	}
	return false
}
