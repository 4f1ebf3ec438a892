package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"above max", 150, 95},
		{"at max", 95, 95},
		{"in range", 80, 80},
		{"at min", 60, 60},
		{"below min", 10, 60},
		{"negative", -5, 60},
		{"just over max", 96, 95},
		{"just under min", 59, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampConfidence(tt.in))
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"Technology", CategoryTechnology},
		{"Product", CategoryProduct},
		{"Service", CategoryService},
		{"Industry", CategoryIndustry},
		{"Feature", CategoryFeature},
		{"Other", CategoryOther},
		{"technology", CategoryOther}, // case-sensitive enum
		{"Widget", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategory(tt.in))
		})
	}
}

func TestAnalysisResultClone(t *testing.T) {
	orig := AnalysisResult{
		URL:          "https://example.com",
		Entities:     []Entity{{Name: "CRM", Confidence: 80, Category: CategoryProduct}},
		SearchPhrase: "crm software",
		Summary:      "A CRM vendor.",
	}

	clone := orig.Clone()
	clone.Competitors = append(clone.Competitors, CompetitorResult{URL: "https://rival.com"})
	clone.Entities[0].Name = "ERP"

	assert.Empty(t, orig.Competitors, "clone must not extend the original")
	assert.Equal(t, "CRM", orig.Entities[0].Name, "clone must not share entity backing array")
	assert.Equal(t, orig.URL, clone.URL)
}
