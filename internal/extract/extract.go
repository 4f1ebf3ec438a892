// Package extract turns page text into structured business entities via an
// LLM call.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/pkg/anthropic"
)

const systemText = "You are a market analyst extracting business entities from web page text. Always return a single valid JSON object and nothing else."

const promptTemplate = `Analyze the following web page content and identify the business entities it describes.

Page URL: %s
Page content:
%s

Return a single JSON object with this shape:
{
  "entities": [{"name": "<entity name>", "confidence": <integer 60-95>, "category": "<Technology|Product|Service|Industry|Feature|Other>"}],
  "summary": "<one or two sentence summary of the business>",
  "searchPhrase": "<short search phrase a customer would use to find similar businesses>"
}`

// Fallbacks used when the model omits optional fields.
const (
	fallbackSummary      = "No summary available"
	fallbackSearchPhrase = "business services"
)

// ErrNoJSON indicates the model response contained no balanced JSON object.
var ErrNoJSON = eris.New("extract: no JSON object in model response")

// Result is the structured output of one extraction.
type Result struct {
	Entities     []model.Entity
	Summary      string
	SearchPhrase string
}

// Extractor sends page text to the model and parses the entity list.
type Extractor struct {
	client    anthropic.Client
	modelID   string
	promptMax int
}

// Config controls extraction behavior.
type Config struct {
	Model     string
	PromptMax int // text cap in bytes before prompt assembly
}

// New creates an Extractor. A zero PromptMax falls back to 4000.
func New(client anthropic.Client, cfg Config) *Extractor {
	promptMax := cfg.PromptMax
	if promptMax <= 0 {
		promptMax = 4000
	}
	return &Extractor{
		client:    client,
		modelID:   cfg.Model,
		promptMax: promptMax,
	}
}

// Extract runs entity extraction over text from sourceURL. The model is not
// guaranteed to return clean JSON, so the first balanced object span is
// located before decoding. Callers do not retry.
func (e *Extractor) Extract(ctx context.Context, text, sourceURL string) (*Result, error) {
	if len(text) > e.promptMax {
		text = text[:e.promptMax]
	}

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.modelID,
		MaxTokens: 1024,
		System:    systemText,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, sourceURL, text)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: model call")
	}
	resp.Usage.LogCost(e.modelID, "extract")

	result, err := Parse(resp.Text())
	if err != nil {
		zap.L().Warn("extract: unparseable model response",
			zap.String("url", sourceURL),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

// rawPayload matches the schema the prompt requests. Confidence is a
// pointer so entities that omit it can be dropped rather than defaulted.
type rawPayload struct {
	Entities []struct {
		Name       string   `json:"name"`
		Confidence *float64 `json:"confidence"`
		Category   string   `json:"category"`
	} `json:"entities"`
	Summary      string `json:"summary"`
	SearchPhrase string `json:"searchPhrase"`
}

// Parse locates the first balanced JSON object in raw model output and
// decodes it. Entities without a name or a numeric confidence are dropped;
// confidence is clamped and missing categories default to Other.
func Parse(text string) (*Result, error) {
	span, ok := firstJSONObject(text)
	if !ok {
		return nil, ErrNoJSON
	}

	var payload rawPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, eris.Wrap(err, "extract: decode model JSON")
	}

	result := &Result{
		Summary:      payload.Summary,
		SearchPhrase: payload.SearchPhrase,
	}
	if result.Summary == "" {
		result.Summary = fallbackSummary
	}
	if result.SearchPhrase == "" {
		result.SearchPhrase = fallbackSearchPhrase
	}

	for _, raw := range payload.Entities {
		if raw.Name == "" || raw.Confidence == nil {
			continue
		}
		result.Entities = append(result.Entities, model.Entity{
			Name:       raw.Name,
			Confidence: model.ClampConfidence(int(*raw.Confidence)),
			Category:   model.ParseCategory(raw.Category),
		})
	}

	return result, nil
}

// firstJSONObject returns the first balanced {...} span in text, tracking
// string literals and escapes so braces inside values don't break the count.
func firstJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
