// Package intel computes cross-site market intelligence from analysis results.
package intel

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/market-intel/internal/model"
)

const (
	// commonThreshold is the minimum coverage percentage for an entity to
	// count as common across the analyzed market.
	commonThreshold = 40
	// gapLow and gapHigh bound the partial-coverage band flagged as a
	// competitive gap.
	gapLow  = 20
	gapHigh = 30
	// maxCommon and maxGaps cap the returned lists.
	maxCommon = 10
	maxGaps   = 10
	// maxUniquePerSite caps the unique-positioning entities per site.
	maxUniquePerSite = 5
	// uniqueSiteLimit is the maximum distinct-site count for an entity to
	// still count as unique positioning.
	uniqueSiteLimit = 2
)

// Aggregate computes market intelligence across the given primary analyses.
// Entities from successful competitor analyses join the pool, but the
// coverage denominator stays the number of primary results; this mirrors
// the metric as historically reported and keeps frequencies comparable
// across requests with and without competitor discovery.
func Aggregate(results []model.AnalysisResult) *model.MarketIntelligence {
	totalSites := len(results)
	if totalSites == 0 {
		return nil
	}

	// Flatten every entity into (lowercased name, category, owning URL).
	type tuple struct {
		name     string
		category model.Category
		site     string
	}
	var tuples []tuple
	for _, r := range results {
		for _, e := range r.Entities {
			tuples = append(tuples, tuple{strings.ToLower(e.Name), e.Category, r.URL})
		}
		for _, c := range r.Competitors {
			if !c.Success {
				continue
			}
			for _, e := range c.Entities {
				tuples = append(tuples, tuple{strings.ToLower(e.Name), e.Category, c.URL})
			}
		}
	}

	// Distinct owning sites per entity name.
	sites := make(map[string]map[string]struct{})
	for _, t := range tuples {
		if sites[t.name] == nil {
			sites[t.name] = make(map[string]struct{})
		}
		sites[t.name][t.site] = struct{}{}
	}

	frequency := func(name string) int {
		return int(math.Round(float64(len(sites[name])) / float64(totalSites) * 100))
	}

	names := make([]string, 0, len(sites))
	for name := range sites {
		names = append(names, name)
	}
	sort.Strings(names)

	mi := &model.MarketIntelligence{}

	// Common entities: coverage at or above the threshold.
	for _, name := range names {
		if f := frequency(name); f >= commonThreshold {
			mi.CommonEntities = append(mi.CommonEntities, model.EntityFrequency{Name: name, Frequency: f})
		}
	}
	sort.SliceStable(mi.CommonEntities, func(i, j int) bool {
		return mi.CommonEntities[i].Frequency > mi.CommonEntities[j].Frequency
	})
	if len(mi.CommonEntities) > maxCommon {
		mi.CommonEntities = mi.CommonEntities[:maxCommon]
	}

	// Category distribution over all tuples.
	counts := make(map[model.Category]int)
	for _, t := range tuples {
		counts[t.category]++
	}
	for cat, n := range counts {
		mi.IndustryDistribution = append(mi.IndustryDistribution, model.CategoryCount{Category: cat, Count: n})
	}
	sort.SliceStable(mi.IndustryDistribution, func(i, j int) bool {
		if mi.IndustryDistribution[i].Count != mi.IndustryDistribution[j].Count {
			return mi.IndustryDistribution[i].Count > mi.IndustryDistribution[j].Count
		}
		return mi.IndustryDistribution[i].Category < mi.IndustryDistribution[j].Category
	})

	// Competitive gaps: partial coverage inside the band.
	for _, name := range names {
		if f := frequency(name); f >= gapLow && f <= gapHigh {
			mi.CompetitiveGaps = append(mi.CompetitiveGaps, model.EntityCoverage{Name: name, Coverage: f})
		}
	}
	sort.SliceStable(mi.CompetitiveGaps, func(i, j int) bool {
		return mi.CompetitiveGaps[i].Coverage < mi.CompetitiveGaps[j].Coverage
	})
	if len(mi.CompetitiveGaps) > maxGaps {
		mi.CompetitiveGaps = mi.CompetitiveGaps[:maxGaps]
	}

	// Unique positioning: per primary site, its entities seen at two or
	// fewer sites overall.
	for _, r := range results {
		var unique []model.Entity
		for _, e := range r.Entities {
			if len(sites[strings.ToLower(e.Name)]) <= uniqueSiteLimit {
				unique = append(unique, e)
				if len(unique) == maxUniquePerSite {
					break
				}
			}
		}
		if len(unique) > 0 {
			mi.UniquePositioning = append(mi.UniquePositioning, model.SitePositioning{URL: r.URL, Entities: unique})
		}
	}

	return mi
}
