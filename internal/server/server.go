// Package server exposes the webhook and analyze endpoints over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findorigin/findorigin/internal/bot"
	"github.com/findorigin/findorigin/internal/config"
	"github.com/findorigin/findorigin/internal/model"
	"github.com/findorigin/findorigin/internal/pipeline"
	"github.com/findorigin/findorigin/pkg/telegram"
)

// Analyzer is the pipeline the HTTP API drives.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*model.AnalysisResult, error)
}

// UpdateHandler processes Telegram webhook updates.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *telegram.Update) error
}

// Server handles webhook and API traffic.
type Server struct {
	cfg      *config.Config
	analyzer Analyzer
	handler  UpdateHandler
}

// New creates a Server.
func New(cfg *config.Config, analyzer Analyzer, handler UpdateHandler) *Server {
	return &Server{cfg: cfg, analyzer: analyzer, handler: handler}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/webhook/telegram", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"message": "FindOrigin webhook доступен. POST сюда шлёт Telegram.",
		})
	})
	r.Post("/webhook/telegram", s.handleWebhook)

	r.Get("/mini", s.handleMiniPage)

	// The Mini App front end is served from another origin.
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))
		r.Post("/api/analyze", s.handleAnalyze)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

// handleWebhook accepts a Telegram update. Telegram only needs a 200; the
// update is processed before responding because the platform request
// lifetime is the only execution window we have.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	msg := update.EffectiveMessage()
	if msg == nil {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck
		return
	}

	zap.L().Info("webhook: update received",
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Int("text_len", len(msg.Text)+len(msg.Caption)),
	)

	ctx, cancel := s.pipelineContext(r.Context())
	defer cancel()
	if err := s.handler.HandleUpdate(ctx, &update); err != nil {
		zap.L().Error("webhook: update processing failed", zap.Error(err))
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK")) //nolint:errcheck
}

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	Text string `json:"text"`
}

// analyzeSource is one row of the analyze response, with a localized
// confidence label (or a category label in fallback mode).
type analyzeSource struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Confidence string `json:"confidence"`
}

// analyzeResponse is the POST /api/analyze success body.
type analyzeResponse struct {
	Summary *string         `json:"summary"`
	Sources []analyzeSource `json:"sources"`
	Message string          `json:"message,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Неверный JSON"})
		return
	}

	text := bot.NormalizeText(req.Text)
	if n := len([]rune(text)); n < s.cfg.Input.MinChars {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Введите текст не менее %d символов", s.cfg.Input.MinChars),
		})
		return
	} else if n > s.cfg.Input.MaxChars {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Текст не должен превышать %d символов", s.cfg.Input.MaxChars),
		})
		return
	}

	ctx, cancel := s.pipelineContext(r.Context())
	defer cancel()
	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		if eris.Is(err, pipeline.ErrSearchThrottled) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Превышен лимит запросов к поиску. Попробуйте позже.",
			})
			return
		}
		zap.L().Error("analyze: pipeline failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Внутренняя ошибка"})
		return
	}

	writeJSON(w, http.StatusOK, buildAnalyzeResponse(result))
}

// buildAnalyzeResponse maps an analysis result onto the API contract:
// ranked view, or flat category-labeled fallback, always with a message
// explaining which mode was used and why.
func buildAnalyzeResponse(result *model.AnalysisResult) analyzeResponse {
	switch result.Mode {
	case model.ModeRanked:
		resp := analyzeResponse{Sources: []analyzeSource{}}
		if result.Ranking.Summary != "" {
			summary := result.Ranking.Summary
			resp.Summary = &summary
		}
		for _, src := range result.Ranking.Sources {
			resp.Sources = append(resp.Sources, analyzeSource{
				URL:        src.URL,
				Title:      src.Title,
				Confidence: src.Confidence.Label(),
			})
		}
		return resp

	case model.ModeSearchUnconfigured:
		return analyzeResponse{Sources: []analyzeSource{}, Message: "Поиск не настроен."}

	case model.ModeNoResults:
		return analyzeResponse{Sources: []analyzeSource{}, Message: "По запросу ничего не найдено."}

	case model.ModeQuotaExhausted:
		resp := fallbackResponse(result)
		resp.Message = "Квота OpenAI исчерпана. Показаны все найденные кандидаты."
		return resp

	case model.ModeFallback:
		resp := fallbackResponse(result)
		resp.Message = "AI не использован. Показаны все найденные кандидаты."
		return resp
	}
	return analyzeResponse{Sources: []analyzeSource{}}
}

// fallbackResponse flattens the category-grouped candidates, carrying the
// category label in the confidence column the way the Mini App renders it.
func fallbackResponse(result *model.AnalysisResult) analyzeResponse {
	resp := analyzeResponse{Sources: []analyzeSource{}}
	for _, group := range result.GroupByCategory() {
		for _, src := range group.Sources {
			resp.Sources = append(resp.Sources, analyzeSource{
				URL:        src.URL,
				Title:      src.Title,
				Confidence: group.Category.Label(),
			})
		}
	}
	return resp
}

func (s *Server) pipelineContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.Pipeline.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(parent, timeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
