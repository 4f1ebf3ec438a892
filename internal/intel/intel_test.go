package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/market-intel/internal/model"
)

func site(url string, names ...string) model.AnalysisResult {
	r := model.AnalysisResult{URL: url}
	for _, n := range names {
		r.Entities = append(r.Entities, model.Entity{Name: n, Confidence: 80, Category: model.CategoryProduct})
	}
	return r
}

func TestAggregateEmpty(t *testing.T) {
	assert.Nil(t, Aggregate(nil))
}

func TestCommonEntitiesThreshold(t *testing.T) {
	// "crm" on 2 of 3 sites -> 67, common. "erp" on 1 of 3 -> 33, excluded
	// from both commons (needs >=40) and gaps (33 > 30).
	results := []model.AnalysisResult{
		site("https://a.com", "CRM", "ERP"),
		site("https://b.com", "crm"),
		site("https://c.com", "Billing"),
	}

	mi := Aggregate(results)
	require.NotNil(t, mi)

	require.Len(t, mi.CommonEntities, 1)
	assert.Equal(t, "crm", mi.CommonEntities[0].Name)
	assert.Equal(t, 67, mi.CommonEntities[0].Frequency)

	for _, g := range mi.CompetitiveGaps {
		assert.NotEqual(t, "erp", g.Name, "33%% coverage falls outside the [20,30] gap band")
	}
	for _, c := range mi.CommonEntities {
		assert.GreaterOrEqual(t, c.Frequency, 40)
	}
}

func TestSingleSiteDegenerateCase(t *testing.T) {
	// With one site every frequency is 0 or 100, so the gap band is empty.
	mi := Aggregate([]model.AnalysisResult{site("https://solo.com", "CRM", "Billing", "Support")})
	require.NotNil(t, mi)

	assert.Empty(t, mi.CompetitiveGaps)
	require.NotEmpty(t, mi.CommonEntities)
	for _, c := range mi.CommonEntities {
		assert.Equal(t, 100, c.Frequency)
	}
}

func TestCompetitiveGapBand(t *testing.T) {
	// 1 of 4 sites -> 25, inside [20,30].
	results := []model.AnalysisResult{
		site("https://a.com", "Invoicing"),
		site("https://b.com", "CRM"),
		site("https://c.com", "CRM"),
		site("https://d.com", "CRM"),
	}

	mi := Aggregate(results)
	require.Len(t, mi.CompetitiveGaps, 1)
	assert.Equal(t, "invoicing", mi.CompetitiveGaps[0].Name)
	assert.Equal(t, 25, mi.CompetitiveGaps[0].Coverage)
}

func TestGapsSortedAscendingAndCapped(t *testing.T) {
	// Ten sites: entities covering 2 sites -> 20 and 3 sites -> 30.
	results := make([]model.AnalysisResult, 10)
	for i := range results {
		results[i] = site(string(rune('a'+i)) + ".com")
	}
	addEntity := func(siteIdx int, name string) {
		results[siteIdx].Entities = append(results[siteIdx].Entities,
			model.Entity{Name: name, Confidence: 70, Category: model.CategoryService})
	}
	addEntity(0, "Wide")
	addEntity(1, "Wide")
	addEntity(2, "Wide") // 30
	addEntity(3, "Narrow")
	addEntity(4, "Narrow") // 20

	mi := Aggregate(results)
	require.Len(t, mi.CompetitiveGaps, 2)
	assert.Equal(t, "narrow", mi.CompetitiveGaps[0].Name)
	assert.Equal(t, 20, mi.CompetitiveGaps[0].Coverage)
	assert.Equal(t, "wide", mi.CompetitiveGaps[1].Name)
	assert.Equal(t, 30, mi.CompetitiveGaps[1].Coverage)
}

func TestCaseInsensitiveEntityNames(t *testing.T) {
	results := []model.AnalysisResult{
		site("https://a.com", "Kubernetes"),
		site("https://b.com", "KUBERNETES"),
	}

	mi := Aggregate(results)
	require.Len(t, mi.CommonEntities, 1)
	assert.Equal(t, "kubernetes", mi.CommonEntities[0].Name)
	assert.Equal(t, 100, mi.CommonEntities[0].Frequency)
}

func TestCompetitorEntitiesJoinPoolButNotDenominator(t *testing.T) {
	primary := site("https://a.com", "CRM")
	primary.Competitors = []model.CompetitorResult{
		{
			URL:     "https://rival.com",
			Success: true,
			Entities: []model.Entity{
				{Name: "CRM", Confidence: 75, Category: model.CategoryProduct},
			},
		},
		{
			URL:     "https://failed.com",
			Success: false,
			Entities: []model.Entity{
				{Name: "Ignored", Confidence: 70, Category: model.CategoryOther},
			},
		},
	}
	other := site("https://b.com", "Billing")

	mi := Aggregate([]model.AnalysisResult{primary, other})
	require.NotNil(t, mi)

	// "crm" is on 2 distinct sites (a.com + rival.com) over 2 primary
	// sites -> 100. Failed competitors contribute nothing.
	require.NotEmpty(t, mi.CommonEntities)
	assert.Equal(t, "crm", mi.CommonEntities[0].Name)
	assert.Equal(t, 100, mi.CommonEntities[0].Frequency)

	for _, c := range mi.CommonEntities {
		assert.NotEqual(t, "ignored", c.Name)
	}
	total := 0
	for _, d := range mi.IndustryDistribution {
		total += d.Count
	}
	assert.Equal(t, 3, total, "only primary + successful competitor tuples counted")
}

func TestUniquePositioning(t *testing.T) {
	results := []model.AnalysisResult{
		site("https://a.com", "CRM", "Quantum Billing"),
		site("https://b.com", "CRM"),
		site("https://c.com", "CRM"),
	}

	mi := Aggregate(results)
	require.Len(t, mi.UniquePositioning, 1)
	assert.Equal(t, "https://a.com", mi.UniquePositioning[0].URL)
	require.Len(t, mi.UniquePositioning[0].Entities, 1)
	assert.Equal(t, "Quantum Billing", mi.UniquePositioning[0].Entities[0].Name)
}

func TestUniquePositioningCappedPerSite(t *testing.T) {
	r := site("https://a.com", "E1", "E2", "E3", "E4", "E5", "E6", "E7")
	other := site("https://b.com", "Shared")
	r.Entities = append(r.Entities, model.Entity{Name: "Shared", Confidence: 70, Category: model.CategoryOther})

	mi := Aggregate([]model.AnalysisResult{r, other})
	require.Len(t, mi.UniquePositioning, 1)
	assert.Len(t, mi.UniquePositioning[0].Entities, 5)
}

func TestIndustryDistributionSortedDescending(t *testing.T) {
	results := []model.AnalysisResult{
		{
			URL: "https://a.com",
			Entities: []model.Entity{
				{Name: "Go", Confidence: 90, Category: model.CategoryTechnology},
				{Name: "Postgres", Confidence: 85, Category: model.CategoryTechnology},
				{Name: "Consulting", Confidence: 70, Category: model.CategoryService},
			},
		},
	}

	mi := Aggregate(results)
	require.Len(t, mi.IndustryDistribution, 2)
	assert.Equal(t, model.CategoryTechnology, mi.IndustryDistribution[0].Category)
	assert.Equal(t, 2, mi.IndustryDistribution[0].Count)
	assert.Equal(t, model.CategoryService, mi.IndustryDistribution[1].Category)
	assert.Equal(t, 1, mi.IndustryDistribution[1].Count)
}

func TestFrequencyNeverExceedsHundredForPrimaryOnly(t *testing.T) {
	results := []model.AnalysisResult{
		site("https://a.com", "X"),
		site("https://b.com", "X"),
		site("https://c.com", "X"),
	}

	mi := Aggregate(results)
	for _, c := range mi.CommonEntities {
		assert.LessOrEqual(t, c.Frequency, 100)
	}
}
