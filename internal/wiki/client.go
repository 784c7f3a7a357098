// Package wiki is the MediaWiki API client: revision listing, revision
// content, wikitext rendering, redirect resolution, and live page HTML.
// Responses for immutable data (revision content, rendered wikitext) can be
// served from an optional response cache.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Revision is one entry of a page's revision log.
type Revision struct {
	ID       int64
	ParentID int64
	Comment  string
}

// Client talks to the wiki at a given host over its public API.
type Client struct {
	host       string
	httpClient *http.Client
	cache      Cache
	log        *slog.Logger
}

// NewClient builds a client for the wiki at host (for example
// "en.wikipedia.org" or "host:port"). cache may be nil to disable response
// caching.
func NewClient(host string, cache Cache, log *slog.Logger) *Client {
	return &Client{
		host:  host,
		cache: cache,
		log:   log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Host returns the upstream wiki host this client targets.
func (c *Client) Host() string {
	return c.host
}

// BaseURL returns the scheme-qualified root of the upstream wiki. Hosts
// configured without an explicit scheme are reached over https.
func (c *Client) BaseURL() string {
	if strings.Contains(c.host, "://") {
		return c.host
	}
	return "https://" + c.host
}

var redirectRe = regexp.MustCompile(`#REDIRECT \[\[([^\]]+)\]\]`)

// maxRedirectDepth bounds redirect chains so cyclic redirects terminate.
const maxRedirectDepth = 10

// CanonicalTitle follows redirects to the canonical name of the page at
// title.
func (c *Client) CanonicalTitle(ctx context.Context, title string) (string, error) {
	current := title
	for range maxRedirectDepth {
		latest, err := c.LatestRevision(ctx, current)
		if err != nil {
			return "", err
		}
		content, err := c.RevisionContent(ctx, current, latest.ID)
		if err != nil {
			return "", err
		}
		m := redirectRe.FindStringSubmatch(content)
		if m == nil {
			return current, nil
		}
		current = m[1]
	}
	return "", fmt.Errorf("redirect chain from %q exceeds %d hops", title, maxRedirectDepth)
}

// Revisions returns up to limit revisions of the page, newest first, with
// ids and edit summaries. The revision log changes with every edit, so it
// is never cached.
func (c *Client) Revisions(ctx context.Context, title string, limit int) ([]Revision, error) {
	body, err := c.callAPI(ctx, url.Values{
		"action":  {"query"},
		"prop":    {"revisions"},
		"titles":  {title},
		"rvprop":  {"comment|ids"},
		"rvlimit": {strconv.Itoa(limit)},
	}, false)
	if err != nil {
		return nil, err
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode revision log for %q: %w", title, err)
	}
	page, err := parsed.onlyPage()
	if err != nil {
		return nil, fmt.Errorf("revision log for %q: %w", title, err)
	}

	revisions := make([]Revision, 0, len(page.Revisions))
	for _, r := range page.Revisions {
		revisions = append(revisions, Revision{ID: r.RevID, ParentID: r.ParentID, Comment: r.Comment})
	}
	return revisions, nil
}

// LatestRevision returns the newest revision of the page.
func (c *Client) LatestRevision(ctx context.Context, title string) (Revision, error) {
	revisions, err := c.Revisions(ctx, title, 1)
	if err != nil {
		return Revision{}, err
	}
	if len(revisions) == 0 {
		return Revision{}, fmt.Errorf("no revisions found for page %q", title)
	}
	return revisions[0], nil
}

// RevisionContent returns the wikitext of the page as of revision id.
// Revision content is immutable and cacheable.
func (c *Client) RevisionContent(ctx context.Context, title string, id int64) (string, error) {
	body, err := c.callAPI(ctx, url.Values{
		"action":    {"query"},
		"prop":      {"revisions"},
		"titles":    {title},
		"rvprop":    {"content"},
		"rvlimit":   {"1"},
		"rvstartid": {strconv.FormatInt(id, 10)},
	}, true)
	if err != nil {
		return "", err
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode content of revision %d of %q: %w", id, title, err)
	}
	page, err := parsed.onlyPage()
	if err != nil {
		return "", fmt.Errorf("content of revision %d of %q: %w", id, title, err)
	}
	// Empty or missing content is an empty document, not a failure.
	if len(page.Revisions) == 0 {
		return "", nil
	}
	return page.Revisions[0].Content, nil
}

// RenderWikitext renders wikitext through the parse endpoint as though it
// were the contents of the page title, returning the HTML fragment. The
// result is a pure function of the inputs and is cacheable.
func (c *Client) RenderWikitext(ctx context.Context, title, wikitext string) (string, error) {
	body, err := c.callAPI(ctx, url.Values{
		"action":       {"parse"},
		"prop":         {"text"},
		"disablepp":    {""},
		"contentmodel": {"wikitext"},
		"title":        {title},
		"text":         {wikitext},
	}, true)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Parse struct {
			Text struct {
				HTML string `json:"*"`
			} `json:"text"`
		} `json:"parse"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode parse response for %q: %w", title, err)
	}
	if parsed.Parse.Text.HTML == "" {
		return "", fmt.Errorf("parse response for %q has no rendered text", title)
	}
	return parsed.Parse.Text.HTML, nil
}

// ArticleHTML fetches the current fully rendered page, used as the shell
// the merged body is spliced into.
func (c *Client) ArticleHTML(ctx context.Context, title string) (string, error) {
	u := fmt.Sprintf("%s/wiki/%s", c.BaseURL(), url.PathEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", u, err)
	}
	return string(body), nil
}

// callAPI posts to the api.php endpoint with format=json and returns the
// raw response body. Cacheable calls are looked up in, and populate, the
// response cache keyed by a fingerprint over the parameters.
func (c *Client) callAPI(ctx context.Context, params url.Values, cacheable bool) ([]byte, error) {
	query := params.Encode() + "&format=json"
	key := Fingerprint(query)

	if cacheable && c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			return []byte(cached), nil
		}
	}

	u := c.BaseURL() + "/w/api.php"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("call api: status %d: %s", resp.StatusCode, string(respBody))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read api response: %w", err)
	}

	if cacheable && c.cache != nil {
		c.cache.Set(ctx, key, string(body))
	}
	return body, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// queryResponse models the action=query response shape. Pages is keyed by
// page id, and queries here always name exactly one page.
type queryResponse struct {
	Query struct {
		Pages map[string]queryPage `json:"pages"`
	} `json:"query"`
}

type queryPage struct {
	Revisions []struct {
		RevID    int64  `json:"revid"`
		ParentID int64  `json:"parentid"`
		Comment  string `json:"comment"`
		Content  string `json:"*"`
	} `json:"revisions"`
}

func (r queryResponse) onlyPage() (queryPage, error) {
	if len(r.Query.Pages) != 1 {
		return queryPage{}, fmt.Errorf("expected exactly one page in response, got %d", len(r.Query.Pages))
	}
	for _, page := range r.Query.Pages {
		return page, nil
	}
	return queryPage{}, nil
}
