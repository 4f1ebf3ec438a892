// Package discover finds competitor sites for an analyzed business via web
// search.
package discover

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/internal/resilience"
	"github.com/sells-group/market-intel/pkg/serper"
)

// ErrNoCredential indicates discovery was requested without a search API key.
var ErrNoCredential = eris.New("discover: no search API credential configured")

// Finder turns a search phrase into a list of competitor candidates.
type Finder struct {
	client     serper.Client
	maxResults int
	retry      resilience.RetryConfig
}

// Config controls discovery behavior.
type Config struct {
	MaxResults    int // organic results requested per search, default 10
	SearchRetries int // total search attempts, default 1 (no retry)
}

// New creates a Finder. A nil client produces a disabled Finder whose
// Discover always fails with ErrNoCredential.
func New(client serper.Client, cfg Config) *Finder {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	attempts := cfg.SearchRetries
	if attempts <= 0 {
		attempts = 1
	}
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = attempts
	retry.OnRetry = resilience.RetryLogger("serper", "search")
	return &Finder{
		client:     client,
		maxResults: maxResults,
		retry:      retry,
	}
}

// Enabled reports whether a search credential was configured. Callers use
// this to decide up front whether competitor analysis can run at all.
func (f *Finder) Enabled() bool {
	return f.client != nil
}

// Discover searches for the given phrase and returns competitor stubs in
// search-ranking order. Stubs carry the search metadata only; entity
// extraction happens in a later analysis pass, so Success stays false here.
func (f *Finder) Discover(ctx context.Context, phrase string) ([]model.CompetitorResult, error) {
	if f.client == nil {
		return nil, ErrNoCredential
	}

	resp, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*serper.SearchResponse, error) {
		return f.client.Search(ctx, phrase, f.maxResults)
	})
	if err != nil {
		return nil, eris.Wrap(err, "discover: search")
	}

	organic := resp.Organic
	if len(organic) > f.maxResults {
		organic = organic[:f.maxResults]
	}

	competitors := make([]model.CompetitorResult, 0, len(organic))
	for i, r := range organic {
		position := r.Position
		if position == 0 {
			position = i + 1
		}
		competitors = append(competitors, model.CompetitorResult{
			URL:      r.Link,
			Title:    r.Title,
			Snippet:  r.Snippet,
			Position: position,
		})
	}

	zap.L().Debug("discovered competitors",
		zap.String("phrase", phrase),
		zap.Int("count", len(competitors)),
	)
	return competitors, nil
}
