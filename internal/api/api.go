// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/internal/pipeline"
)

// Runner executes the analysis pipeline for one request.
type Runner interface {
	Run(ctx context.Context, urls []string, findCompetitors bool) *pipeline.Output
}

// Handler serves the analyze API.
type Handler struct {
	runner        Runner
	llmConfigured bool
}

// NewHandler creates a Handler. llmConfigured reflects whether an Anthropic
// credential is present; without one, analyze requests fail with 500.
func NewHandler(runner Runner, llmConfigured bool) *Handler {
	return &Handler{
		runner:        runner,
		llmConfigured: llmConfigured,
	}
}

// Router builds the HTTP routing table.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(requestID)
	r.Use(requestLogger)

	r.Get("/health", handleHealth)
	r.Post("/api/analyze", h.handleAnalyze)
	return r
}

type analyzeRequest struct {
	URLs            []string `json:"urls"`
	FindCompetitors bool     `json:"findCompetitors"`
}

type analyzeResponse struct {
	Results            []model.AnalysisResult    `json:"results"`
	MarketIntelligence *model.MarketIntelligence `json:"marketIntelligence"`
	Metadata           model.Metadata            `json:"metadata"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "urls array is required",
		})
		return
	}
	if len(req.URLs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "urls array is required",
		})
		return
	}

	if !h.llmConfigured {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "analysis unavailable",
			"details": "no Anthropic API key configured",
		})
		return
	}

	out := h.runner.Run(r.Context(), req.URLs, req.FindCompetitors)

	writeJSON(w, http.StatusOK, analyzeResponse{
		Results:            out.Results,
		MarketIntelligence: out.Intelligence,
		Metadata: model.Metadata{
			RequestID:                 requestIDFrom(r.Context()),
			TotalURLs:                 len(req.URLs),
			SuccessfulAnalyses:        out.SuccessfulAnalyses,
			CompetitorAnalysisEnabled: out.CompetitorAnalysisEnabled,
			Timestamp:                 time.Now().UTC(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID assigns each request a uuid, echoed in the X-Request-ID header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestLogger logs each request with status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
