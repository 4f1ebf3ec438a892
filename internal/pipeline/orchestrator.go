package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/market-intel/internal/cache"
	"github.com/sells-group/market-intel/internal/intel"
	"github.com/sells-group/market-intel/internal/model"
)

// cacheKeyPrefix namespaces analysis records in the shared cache.
const cacheKeyPrefix = "analysis:"

// Discoverer finds competitor stubs for a search phrase.
type Discoverer interface {
	Enabled() bool
	Discover(ctx context.Context, phrase string) ([]model.CompetitorResult, error)
}

// Orchestrator runs the full analysis flow for a request's URLs.
type Orchestrator struct {
	fetcher   ContentFetcher
	extractor EntityExtractor
	finder    Discoverer
	analyzer  *Analyzer
	cache     *cache.Cache[model.AnalysisResult]
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(
	fetcher ContentFetcher,
	extractor EntityExtractor,
	finder Discoverer,
	analyzer *Analyzer,
	resultCache *cache.Cache[model.AnalysisResult],
) *Orchestrator {
	return &Orchestrator{
		fetcher:   fetcher,
		extractor: extractor,
		finder:    finder,
		analyzer:  analyzer,
		cache:     resultCache,
	}
}

// Output is the outcome of one analyze request.
type Output struct {
	Results                   []model.AnalysisResult
	Intelligence              *model.MarketIntelligence
	SuccessfulAnalyses        int
	CompetitorAnalysisEnabled bool
}

// Run analyzes each URL in order. A failed URL degrades to a placeholder
// result carrying the failure message; competitor discovery failures are
// logged and swallowed. Aggregate intelligence is computed only when at
// least two sites contributed entities.
func (o *Orchestrator) Run(ctx context.Context, urls []string, findCompetitors bool) *Output {
	discoveryEnabled := o.finder.Enabled()
	out := &Output{
		Results:                   make([]model.AnalysisResult, 0, len(urls)),
		CompetitorAnalysisEnabled: findCompetitors && discoveryEnabled,
	}

	for _, url := range urls {
		base, ok := o.analyzePrimary(ctx, url)
		if ok {
			out.SuccessfulAnalyses++
		}

		result := base.Clone()
		if ok && findCompetitors && discoveryEnabled && result.SearchPhrase != "" {
			result.Competitors = o.runCompetitors(ctx, result.SearchPhrase, url)
		}
		out.Results = append(out.Results, result)
	}

	if resultBearingSites(out.Results) >= 2 {
		out.Intelligence = intel.Aggregate(out.Results)
	}
	return out
}

// analyzePrimary returns the cached or freshly computed analysis for one
// URL. The cached record never includes competitors. The second return is
// false when analysis failed and the result is a placeholder.
func (o *Orchestrator) analyzePrimary(ctx context.Context, url string) (model.AnalysisResult, bool) {
	key := cacheKeyPrefix + url
	if cached, ok := o.cache.Get(key); ok {
		zap.L().Debug("cache hit", zap.String("url", url))
		return cached, true
	}

	text, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		zap.L().Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return placeholderResult(url, err), false
	}

	res, err := o.extractor.Extract(ctx, text, url)
	if err != nil {
		zap.L().Warn("extraction failed", zap.String("url", url), zap.Error(err))
		return placeholderResult(url, err), false
	}

	result := model.AnalysisResult{
		URL:             url,
		Entities:        res.Entities,
		SearchPhrase:    res.SearchPhrase,
		Summary:         res.Summary,
		OriginalContent: text,
	}
	o.cache.Set(key, result)
	return result, true
}

// runCompetitors discovers and analyzes competitor sites. Any discovery
// failure degrades to no competitors.
func (o *Orchestrator) runCompetitors(ctx context.Context, phrase, sourceURL string) []model.CompetitorResult {
	stubs, err := o.finder.Discover(ctx, phrase)
	if err != nil {
		zap.L().Warn("competitor discovery failed",
			zap.String("url", sourceURL),
			zap.String("phrase", phrase),
			zap.Error(err),
		)
		return nil
	}
	if len(stubs) == 0 {
		return nil
	}
	return o.analyzer.Analyze(ctx, stubs)
}

// placeholderResult stands in for a URL whose analysis failed so the
// response still carries one result per requested URL.
func placeholderResult(url string, err error) model.AnalysisResult {
	return model.AnalysisResult{
		URL:      url,
		Entities: []model.Entity{},
		Summary:  "Analysis failed: " + err.Error(),
	}
}

// resultBearingSites counts sites that contributed at least one entity,
// primaries and successfully analyzed competitors alike.
func resultBearingSites(results []model.AnalysisResult) int {
	n := 0
	for _, r := range results {
		if len(r.Entities) > 0 {
			n++
		}
		for _, c := range r.Competitors {
			if c.Success && len(c.Entities) > 0 {
				n++
			}
		}
	}
	return n
}
