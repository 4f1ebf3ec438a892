package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/market-intel/internal/model"
)

func captureCmd() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	return cmd, buf
}

func TestPrintResult(t *testing.T) {
	cmd, buf := captureCmd()

	printResult(cmd, model.AnalysisResult{
		URL:          "https://acme.com",
		Summary:      "A CRM vendor.",
		SearchPhrase: "crm software",
		Entities: []model.Entity{
			{Name: "CRM", Confidence: 85, Category: model.CategoryProduct},
		},
		Competitors: []model.CompetitorResult{
			{URL: "https://rival.com", Position: 1, Success: true, Entities: []model.Entity{{Name: "X"}}},
			{URL: "https://broken.com", Position: 2, Success: false, Error: "timeout"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "=== https://acme.com ===")
	assert.Contains(t, out, "Summary: A CRM vendor.")
	assert.Contains(t, out, "Search phrase: crm software")
	assert.Contains(t, out, "CRM (Product, 85%)")
	assert.Contains(t, out, "https://rival.com (1 entities)")
	assert.Contains(t, out, "https://broken.com (failed)")
}

func TestPrintIntelligence(t *testing.T) {
	cmd, buf := captureCmd()

	printIntelligence(cmd, &model.MarketIntelligence{
		CommonEntities:       []model.EntityFrequency{{Name: "invoicing", Frequency: 67}},
		IndustryDistribution: []model.CategoryCount{{Category: model.CategoryService, Count: 4}},
		CompetitiveGaps:      []model.EntityCoverage{{Name: "scheduling", Coverage: 25}},
		UniquePositioning: []model.SitePositioning{
			{URL: "https://acme.com", Entities: []model.Entity{{Name: "AI dispatch"}}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "invoicing (67%)")
	assert.Contains(t, out, "Service: 4")
	assert.Contains(t, out, "scheduling (25% coverage)")
	assert.Contains(t, out, "Unique positioning for https://acme.com")
	assert.Contains(t, out, "AI dispatch")
}

func TestRootSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["analyze"])
}
