package model

import "time"

// AnalysisResult is the full analysis of one requested URL. The cached copy
// excludes Competitors; the returned copy may carry them.
type AnalysisResult struct {
	URL             string             `json:"url"`
	Entities        []Entity           `json:"entities"`
	SearchPhrase    string             `json:"searchPhrase"`
	Summary         string             `json:"summary"`
	Competitors     []CompetitorResult `json:"competitors,omitempty"`
	OriginalContent string             `json:"originalContent,omitempty"`
}

// Clone returns a copy safe to extend with competitor data without mutating
// the cached record.
func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	out.Entities = append([]Entity(nil), r.Entities...)
	out.Competitors = append([]CompetitorResult(nil), r.Competitors...)
	return out
}

// CompetitorResult is one discovered competitor site. Discovery creates it
// as a stub (Success=false, no entities); the analyzer completes it with
// entities on success or an error message on failure.
type CompetitorResult struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Snippet  string   `json:"snippet"`
	Position int      `json:"position"`
	Entities []Entity `json:"entities,omitempty"`
	Analysis string   `json:"analysis,omitempty"`
	Error    string   `json:"error,omitempty"`
	Success  bool     `json:"success"`
}

// EntityFrequency is an entity name with its cross-site coverage percentage.
type EntityFrequency struct {
	Name      string `json:"name"`
	Frequency int    `json:"frequency"`
}

// CategoryCount is an entity category with its tuple count.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// EntityCoverage is an entity name with partial cross-site coverage,
// flagged as a competitive gap.
type EntityCoverage struct {
	Name     string `json:"name"`
	Coverage int    `json:"coverage"`
}

// SitePositioning lists the entities that make one site's positioning
// distinctive (appearing at two or fewer sites overall).
type SitePositioning struct {
	URL      string   `json:"url"`
	Entities []Entity `json:"entities"`
}

// MarketIntelligence holds aggregate statistics across all analyzed sites
// in a single request. Derived and stateless; never persisted.
type MarketIntelligence struct {
	CommonEntities       []EntityFrequency `json:"commonEntities"`
	IndustryDistribution []CategoryCount   `json:"industryDistribution"`
	CompetitiveGaps      []EntityCoverage  `json:"competitiveGaps"`
	UniquePositioning    []SitePositioning `json:"uniquePositioning"`
}

// Metadata describes one analyze request's outcome.
type Metadata struct {
	RequestID                 string    `json:"requestId"`
	TotalURLs                 int       `json:"totalUrls"`
	SuccessfulAnalyses        int       `json:"successfulAnalyses"`
	CompetitorAnalysisEnabled bool      `json:"competitorAnalysisEnabled"`
	Timestamp                 time.Time `json:"timestamp"`
}
