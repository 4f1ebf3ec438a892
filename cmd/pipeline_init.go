package main

import (
	"go.uber.org/zap"

	"github.com/sells-group/market-intel/internal/cache"
	"github.com/sells-group/market-intel/internal/discover"
	"github.com/sells-group/market-intel/internal/extract"
	"github.com/sells-group/market-intel/internal/fetch"
	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/internal/pipeline"
	anthropicpkg "github.com/sells-group/market-intel/pkg/anthropic"
	"github.com/sells-group/market-intel/pkg/serper"
)

// pipelineEnv holds the initialized clients and the orchestrator shared by
// the serve and analyze commands.
type pipelineEnv struct {
	Orchestrator  *pipeline.Orchestrator
	LLMConfigured bool
}

// initPipeline builds all pipeline stages from the loaded config.
func initPipeline() *pipelineEnv {
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	fetcher := fetch.New(fetch.Config{
		Timeout:   cfg.Fetch.Timeout(),
		MaxLength: cfg.Fetch.MaxContentLength,
	})

	extractor := extract.New(anthropicClient, extract.Config{
		Model:     cfg.Anthropic.Model,
		PromptMax: cfg.Extract.PromptContentLength,
	})

	// Discovery is optional; without a serper key the finder stays disabled
	// and requests simply skip competitor analysis.
	var searchClient serper.Client
	if cfg.Serper.Key != "" {
		searchClient = serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
		zap.L().Info("competitor discovery enabled")
	} else {
		zap.L().Debug("MARKETINTEL_SERPER_KEY not set, competitor discovery disabled")
	}
	finder := discover.New(searchClient, discover.Config{
		MaxResults:    cfg.Competitors.MaxResults,
		SearchRetries: cfg.Competitors.SearchRetries,
	})

	analyzer := pipeline.NewAnalyzer(fetcher, extractor, pipeline.AnalyzerConfig{
		BatchSize:      cfg.Competitors.BatchSize,
		MaxCompetitors: cfg.Competitors.MaxAnalyzed,
		BatchPause:     cfg.Competitors.BatchPause(),
	})

	resultCache := cache.New[model.AnalysisResult](cfg.Cache.TTL())

	return &pipelineEnv{
		Orchestrator:  pipeline.NewOrchestrator(fetcher, extractor, finder, analyzer, resultCache),
		LLMConfigured: cfg.Anthropic.Key != "",
	}
}
