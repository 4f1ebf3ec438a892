package model

// Category classifies an extracted entity.
type Category string

const (
	CategoryTechnology Category = "Technology"
	CategoryProduct    Category = "Product"
	CategoryService    Category = "Service"
	CategoryIndustry   Category = "Industry"
	CategoryFeature    Category = "Feature"
	CategoryOther      Category = "Other"
)

// Confidence bounds enforced on every entity regardless of what the model returns.
const (
	MinConfidence = 60
	MaxConfidence = 95
)

// Entity is a named business concept extracted from page text. Immutable
// after creation; owned by the AnalysisResult or CompetitorResult that
// contains it.
type Entity struct {
	Name       string   `json:"name"`
	Confidence int      `json:"confidence"`
	Category   Category `json:"category"`
}

// ParseCategory maps free-form model output onto the category enum,
// defaulting to Other.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryTechnology, CategoryProduct, CategoryService,
		CategoryIndustry, CategoryFeature, CategoryOther:
		return Category(s)
	default:
		return CategoryOther
	}
}

// ClampConfidence forces a confidence score into [MinConfidence, MaxConfidence].
func ClampConfidence(c int) int {
	if c < MinConfidence {
		return MinConfidence
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return c
}
