// Package pipeline orchestrates fetch, extraction, discovery, and
// aggregation for analyze requests.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/market-intel/internal/extract"
	"github.com/sells-group/market-intel/internal/model"
)

// ContentFetcher retrieves a URL's readable text.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// EntityExtractor turns page text into structured entities.
type EntityExtractor interface {
	Extract(ctx context.Context, text, url string) (*extract.Result, error)
}

// Waiter paces work between batches. *rate.Limiter satisfies it; tests
// inject a recording fake.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Analyzer runs fetch+extract over competitor stubs in bounded batches.
type Analyzer struct {
	fetcher        ContentFetcher
	extractor      EntityExtractor
	limiter        Waiter
	batchSize      int
	maxCompetitors int
}

// AnalyzerConfig controls batching. Zero fields fall back to the defaults:
// 3 concurrent per batch, 10 competitors total, 1s between batches.
type AnalyzerConfig struct {
	BatchSize      int
	MaxCompetitors int
	BatchPause     time.Duration
}

// AnalyzerOption overrides analyzer internals.
type AnalyzerOption func(*Analyzer)

// WithWaiter replaces the inter-batch limiter.
func WithWaiter(w Waiter) AnalyzerOption {
	return func(a *Analyzer) {
		a.limiter = w
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(fetcher ContentFetcher, extractor EntityExtractor, cfg AnalyzerConfig, opts ...AnalyzerOption) *Analyzer {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}
	maxCompetitors := cfg.MaxCompetitors
	if maxCompetitors <= 0 {
		maxCompetitors = 10
	}
	pause := cfg.BatchPause
	if pause <= 0 {
		pause = time.Second
	}
	a := &Analyzer{
		fetcher:        fetcher,
		extractor:      extractor,
		batchSize:      batchSize,
		maxCompetitors: maxCompetitors,
		// Burst 1 means the first batch starts immediately and each later
		// batch waits out the pause.
		limiter: rate.NewLimiter(rate.Every(pause), 1),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze completes up to MaxCompetitors stubs, BatchSize at a time. Every
// input stub comes back in order: analyzed ones with entities and
// Success=true, failed ones with Error set, overflow ones untouched.
// Analysis failures never abort the batch.
func (a *Analyzer) Analyze(ctx context.Context, stubs []model.CompetitorResult) []model.CompetitorResult {
	out := make([]model.CompetitorResult, len(stubs))
	copy(out, stubs)

	limit := len(out)
	if limit > a.maxCompetitors {
		limit = a.maxCompetitors
	}

	for start := 0; start < limit; start += a.batchSize {
		if err := a.limiter.Wait(ctx); err != nil {
			break
		}

		end := start + a.batchSize
		if end > limit {
			end = limit
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(a.batchSize)
		for i := start; i < end; i++ {
			g.Go(func() error {
				out[i] = a.analyzeOne(gCtx, out[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	return out
}

// analyzeOne fetches and extracts a single competitor site. Failures are
// recorded on the result, never returned.
func (a *Analyzer) analyzeOne(ctx context.Context, stub model.CompetitorResult) model.CompetitorResult {
	text, err := a.fetcher.Fetch(ctx, stub.URL)
	if err != nil {
		zap.L().Debug("competitor fetch failed",
			zap.String("url", stub.URL),
			zap.Error(err),
		)
		stub.Error = err.Error()
		stub.Success = false
		return stub
	}

	res, err := a.extractor.Extract(ctx, text, stub.URL)
	if err != nil {
		zap.L().Debug("competitor extraction failed",
			zap.String("url", stub.URL),
			zap.Error(err),
		)
		stub.Error = err.Error()
		stub.Success = false
		return stub
	}

	stub.Entities = res.Entities
	stub.Analysis = res.Summary
	stub.Error = ""
	stub.Success = true
	return stub
}
