package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/noetic-labs/noesis/internal/api/handlers"
	mw "github.com/noetic-labs/noesis/internal/api/middleware"
	"github.com/noetic-labs/noesis/internal/config"
	"github.com/noetic-labs/noesis/internal/domain"
	"github.com/noetic-labs/noesis/internal/embedding"
	"github.com/noetic-labs/noesis/internal/llm"
	"github.com/noetic-labs/noesis/internal/service"
	"github.com/noetic-labs/noesis/internal/store"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router    *chi.Mux
	Audit     *service.AuditLogger
	Knowledge *service.KnowledgeService

	log          *store.FallbackLog
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires stores, services and handlers around the given primary log.
// The primary is wrapped in a fallback that degrades to in-memory storage on
// the first storage failure.
func NewApp(primary domain.TripleLog, logger *zap.Logger) (*App, error) {
	log := store.NewFallbackLog(primary, logger)

	// External clients via provider factory
	llmProvider := config.LLMProvider()
	embeddingProvider := config.EmbeddingProvider()

	llmClient, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	embeddingClient, err := embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else if embeddingClient != nil {
		logger.Info("Embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Services
	audit := service.NewAuditLogger(log, config.AuditQueueSize(), logger)

	tripleSvc := service.NewTripleService(log, logger)
	if redisURL := config.RedisURL(); redisURL != "" {
		client, err := store.ConnectRedis(redisURL)
		if err != nil {
			logger.Warn("redis unavailable, latest cache disabled", zap.Error(err))
		} else {
			tripleSvc.SetLatestCache(store.NewRedisLatestCache(client, logger))
			logger.Info("latest cache enabled")
		}
	}

	knowledgeSvc := service.NewKnowledgeService(log, logger)
	if embeddingClient != nil {
		knowledgeSvc.SetEmbeddingClient(embeddingClient)
	}

	agentSvc := service.NewAgentService(service.NewAgentRegistry(), audit, knowledgeSvc, logger)

	reasoningSvc := service.NewReasoningService(log, logger)
	if llmClient != nil {
		reasoningSvc.SetLLMClient(llmClient)
	}
	bridge := service.NewBridge(reasoningSvc, logger)

	cognitiveSvc := service.NewCognitiveService(service.DefaultPatterns(), audit, logger)
	if llmClient != nil {
		cognitiveSvc.SetLLMClient(llmClient)
	}

	// Handlers
	tripleHandler := handlers.NewTripleHandler(tripleSvc)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeSvc)
	agentHandler := handlers.NewAgentHandler(agentSvc)
	reasoningHandler := handlers.NewReasoningHandler(reasoningSvc, bridge)
	validationHandler := handlers.NewValidationHandler(cognitiveSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Audit:     audit,
		Knowledge: knowledgeSvc,
		log:       log,
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Metrics(&app.requestCount, &app.errorCount))
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		// Triples
		r.Route("/triples", func(r chi.Router) {
			r.Post("/", tripleHandler.Append)
			r.Post("/search", tripleHandler.Search)
			r.Get("/latest", tripleHandler.Latest)
			r.Get("/{id}", tripleHandler.GetByID)
		})

		// Knowledge base
		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/facts", knowledgeHandler.AddFact)
			r.Post("/rules", knowledgeHandler.AddRule)
			r.Get("/rules", knowledgeHandler.ListRules)
			r.Post("/validate", knowledgeHandler.ValidateFact)
			r.Post("/apply", knowledgeHandler.ApplyRules)
		})

		// BDI agents
		r.Route("/agents", func(r chi.Router) {
			r.Post("/", agentHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", agentHandler.GetByID)
				r.Post("/beliefs", agentHandler.AddBelief)
				r.Post("/desires", agentHandler.AddDesire)
				r.Post("/intentions", agentHandler.FormIntention)
				r.Put("/intentions/{intentionID}", agentHandler.UpdateIntention)
				r.Post("/validate", agentHandler.ValidateAgainstBeliefs)
			})
		})

		// Reasoning paradigms and the bridge
		r.Route("/reasoning", func(r chi.Router) {
			r.Post("/axiomatic", reasoningHandler.Axiomatic)
			r.Post("/operational", reasoningHandler.Operational)
			r.Post("/denotational", reasoningHandler.Denotational)
			r.Post("/translate", reasoningHandler.Translate)
		})

		// Cognitive validation
		r.Route("/validation", func(r chi.Router) {
			r.Post("/allocate", validationHandler.AllocateTokens)
			r.Post("/code", validationHandler.Validate)
			r.Get("/patterns", validationHandler.Patterns)
		})
	})

	return app, nil
}

// Log returns the fallback-wrapped triple log the app serves from.
func (app *App) Log() *store.FallbackLog {
	return app.log
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if app.log.Degraded() {
			status = "degraded"
		}
		if _, err := app.log.Count(r.Context()); err != nil {
			status = "error"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        status,
			"degraded":      app.log.Degraded(),
			"audit_dropped": app.Audit.Dropped(),
		})
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
			"audit_dropped":  app.Audit.Dropped(),
			"degraded":       app.log.Degraded(),
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
	_ domain.TripleLog          = (*store.MemoryLog)(nil)
	_ domain.TripleLog          = (*store.PostgresLog)(nil)
	_ domain.TripleLog          = (*store.SQLiteLog)(nil)
	_ domain.TripleLog          = (*store.FallbackLog)(nil)
	_ domain.SimilaritySearcher = (*store.PostgresLog)(nil)
	_ domain.LatestCache        = (*store.RedisLatestCache)(nil)
	_ domain.EmbeddingClient    = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient    = (*embedding.MockClient)(nil)
	_ domain.LLMClient          = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient          = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient          = (*llm.MockClient)(nil)
)
