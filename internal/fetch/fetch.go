// Package fetch retrieves web pages and reduces them to readable plain text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// maxBodyBytes caps how much of a response body is read before parsing.
const maxBodyBytes = 512 * 1024

// userAgent is a browser-like UA; many sites serve reduced or blocked
// content to obvious bot agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// contentSelectors is tried in order; the first match wins. Falls back to
// the whole body when none match.
var contentSelectors = []string{
	"main",
	"[role=main]",
	".main-content",
	".content",
	"article",
	".post-content",
	".entry-content",
}

// strippedSelectors are removed before text extraction.
const strippedSelectors = "script, style, nav, footer, header"

// StatusError reports a non-2xx response from the target site.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned status %d", e.URL, e.Code)
}

// Fetcher retrieves a URL and extracts its readable text.
type Fetcher struct {
	client    *http.Client
	maxLength int
}

// Config controls fetch behavior.
type Config struct {
	Timeout   time.Duration // per-request timeout
	MaxLength int           // extracted text cap in bytes
}

// New creates a Fetcher. Zero config fields fall back to 10s / 8000.
func New(cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = 8000
	}
	return &Fetcher{
		maxLength: maxLength,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
			},
		},
	}
}

// Fetch retrieves targetURL and returns its readable text, whitespace
// collapsed and truncated to the configured maximum. Network errors,
// timeouts, and non-2xx statuses fail the call; there is no retry.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetch: get")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: targetURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "fetch: read body")
	}

	text, err := extractText(body)
	if err != nil {
		return "", err
	}

	if len(text) > f.maxLength {
		text = text[:f.maxLength]
	}
	return text, nil
}

// extractText parses HTML, strips chrome elements, and picks the main
// content region.
func extractText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", eris.Wrap(err, "fetch: parse html")
	}

	doc.Find(strippedSelectors).Remove()

	var raw string
	for _, sel := range contentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			raw = s.First().Text()
			break
		}
	}
	if raw == "" {
		raw = doc.Find("body").Text()
	}

	return collapseWhitespace(raw), nil
}

// collapseWhitespace reduces all whitespace runs to single spaces and trims.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
