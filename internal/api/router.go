package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voicestack/beliefgraph/internal/api/handlers"
	mw "github.com/voicestack/beliefgraph/internal/api/middleware"
	"github.com/voicestack/beliefgraph/internal/config"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/embedding"
	"github.com/voicestack/beliefgraph/internal/llm"
	"github.com/voicestack/beliefgraph/internal/service"
	"github.com/voicestack/beliefgraph/internal/store"
	"go.uber.org/zap"
)

// App holds the router and request metrics for lifecycle management.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	userStore := store.NewUserStore(db)
	beliefStore := store.NewBeliefStore(db)
	tensionStore := store.NewTensionStore(db)
	traceStore := store.NewTraceStore(db)

	// External clients via provider factory
	var embeddingClient domain.EmbeddingClient
	var llmClient domain.LLMClient

	llmProvider := config.LLMProvider()
	embeddingProvider := config.EmbeddingProvider()

	var err error
	llmClient, err = llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
		llmClient = llm.NewMockClient()
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	embeddingClient, err = embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
		embeddingClient = nil
	} else {
		logger.Info("Embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Services
	traces := service.NewTraceRecorder(traceStore, logger)
	extractionSvc := service.NewExtractionService(beliefStore, tensionStore, llmClient, embeddingClient, traces, logger)
	genealogySvc := service.NewGenealogyService(beliefStore, llmClient, traces, logger)
	confidenceSvc := service.NewConfidenceService(beliefStore, llmClient, traces, logger)
	tensionSvc := service.NewTensionService(tensionStore, logger)

	// Handlers
	userHandler := handlers.NewUserHandler(userStore)
	extractionHandler := handlers.NewExtractionHandler(extractionSvc)
	beliefHandler := handlers.NewBeliefHandler(beliefStore)
	genealogyHandler := handlers.NewGenealogyHandler(genealogySvc, beliefStore)
	tensionHandler := handlers.NewTensionHandler(tensionSvc)
	topicHandler := handlers.NewTopicHandler(confidenceSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// User creation (no auth, bootstrap endpoint)
	r.Post("/v1/users", userHandler.Create)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(userStore))

		r.Route("/beliefs", func(r chi.Router) {
			r.Post("/extract", extractionHandler.Extract)
			r.Get("/", beliefHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", beliefHandler.GetByID)
				r.Post("/confirm", beliefHandler.Confirm)
			})
		})

		r.Route("/genealogy", func(r chi.Router) {
			r.Get("/", genealogyHandler.Get)
			r.Post("/rebuild", genealogyHandler.Rebuild)
		})

		r.Route("/tensions", func(r chi.Router) {
			r.Get("/", tensionHandler.List)
			r.Post("/{id}/classify", tensionHandler.Classify)
		})

		r.Route("/topics", func(r chi.Router) {
			r.Post("/score", topicHandler.Score)
			r.Post("/outcome", topicHandler.InferOutcome)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that do not need the App.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.UserStore       = (*store.UserStore)(nil)
	_ domain.BeliefStore     = (*store.BeliefStore)(nil)
	_ domain.TensionStore    = (*store.TensionStore)(nil)
	_ domain.TraceStore      = (*store.TraceStore)(nil)
	_ domain.EmbeddingClient = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient = (*embedding.MockClient)(nil)
	_ domain.LLMClient       = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient       = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient       = (*llm.MockClient)(nil)
)
