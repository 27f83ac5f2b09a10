package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/opsflow/internal/api/handler"
	customMiddleware "github.com/Rrens/opsflow/internal/api/middleware"
	"github.com/Rrens/opsflow/internal/authz"
	"github.com/Rrens/opsflow/internal/config"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/llm"
	"github.com/Rrens/opsflow/internal/llm/anthropic"
	"github.com/Rrens/opsflow/internal/llm/gemini"
	"github.com/Rrens/opsflow/internal/llm/ollama"
	"github.com/Rrens/opsflow/internal/llm/openai"
	"github.com/Rrens/opsflow/internal/repository"
	"github.com/Rrens/opsflow/internal/repository/redis"
	"github.com/Rrens/opsflow/internal/security"
	"github.com/Rrens/opsflow/internal/service"
)

// NewRouter wires services over store and returns the HTTP handler.
// redisClient may be nil, which disables the analytics cache and the per-user limit.
func NewRouter(cfg *config.Config, store *repository.Store, redisClient *redis.Client) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(customMiddleware.PeerAddr)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	if cfg.Metrics.Enabled {
		r.Use(customMiddleware.Metrics)
	}

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	policy, err := authz.Load(cfg.Security.Authz.ModelPath, cfg.Security.Authz.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization policy: %w", err)
	}

	// service.AnalyticsCache and handler.CacheFlusher must stay nil interfaces without Redis
	var (
		analyticsCache service.AnalyticsCache
		cacheFlusher   handler.CacheFlusher
		userLimiter    *customMiddleware.RateLimitMiddleware
	)
	if redisClient != nil {
		c := redis.NewAnalyticsCache(redisClient, cfg.Redis.CacheTTL)
		analyticsCache, cacheFlusher = c, c
		userLimiter = customMiddleware.NewRateLimitMiddleware(redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		))
	}

	llmRouter := NewLLMRouter(cfg.LLM)

	// Services
	authService := service.NewAuthService(store.Users, jwtManager)
	workspaceService := service.NewWorkspaceService(store.Workspaces, store.Users, policy)
	formService := service.NewFormService(store.Forms, store.Workspaces, policy, analyticsCache)
	submissionService := service.NewSubmissionService(store.Forms, store.Submissions, store.Workspaces, policy, analyticsCache)
	aiService := service.NewAIService(llmRouter, store.Forms, store.Submissions, store.Workspaces, policy, analyticsCache)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.Auth.RefreshTokenTTL, cfg.IsProduction())
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	formHandler := handler.NewFormHandler(formService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	aiHandler := handler.NewAIHandler(aiService)

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager, authService)
	trustedProxies, err := customMiddleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}
	publicLimiter := customMiddleware.NewIPRateLimiter(
		cfg.Security.PublicRateLimit.RequestsPerMinute,
		cfg.Security.PublicRateLimit.Burst,
		trustedProxies...,
	)

	readyDeps := map[string]handler.Pinger{"database": store}
	if redisClient != nil {
		readyDeps["redis"] = redisClient
	}

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(readyDeps))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
			r.With(authMiddleware.Authenticate).Get("/me", authHandler.Me)
		})

		r.Route("/public/forms/{formID}", func(r chi.Router) {
			r.Get("/", formHandler.GetPublic)
			r.With(publicLimiter.Limit).Post("/submit", submissionHandler.Submit)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if userLimiter != nil {
				r.Use(userLimiter.Limit)
			}

			r.Route("/workspaces", func(r chi.Router) {
				r.Get("/", workspaceHandler.List)
				r.Post("/", workspaceHandler.Create)

				r.Route("/{workspaceID}", func(r chi.Router) {
					r.Get("/", workspaceHandler.Get)
					r.Get("/members", workspaceHandler.ListMembers)
					r.Post("/members", workspaceHandler.AddMember)
					r.Delete("/members/{memberID}", workspaceHandler.RemoveMember)
				})
			})

			r.Route("/forms", func(r chi.Router) {
				r.Get("/", formHandler.List)
				r.Post("/", formHandler.Create)

				r.Route("/{formID}", func(r chi.Router) {
					r.Get("/", formHandler.Get)
					r.Patch("/", formHandler.UpdateDetails)
					r.Delete("/", formHandler.Delete)
					r.Put("/content", formHandler.UpdateContent)
					r.Get("/submissions", submissionHandler.List)
					r.Get("/export", submissionHandler.Export)
					r.Get("/analytics", submissionHandler.Analytics)
					r.Get("/ai-insight", aiHandler.Insights)
				})
			})

			r.Route("/ai", func(r chi.Router) {
				r.Post("/generate", aiHandler.Generate)
				r.Get("/providers", aiHandler.Providers)
			})

			r.With(customMiddleware.RequireRole(domain.RoleAdmin)).Post("/cache/flush", handler.FlushCache(cacheFlusher))
		})
	})

	return r, nil
}

// NewLLMRouter registers every provider that has credentials or a host configured
func NewLLMRouter(cfg config.LLMConfig) *llm.Router {
	llmRouter := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	} else {
		log.Warn().Msg("Gemini API key is empty, skipping registration")
	}
	if cfg.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider("openai", cfg.OpenAI, cfg.Timeout))
	}
	if cfg.DeepSeek.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider("deepseek", cfg.DeepSeek, cfg.Timeout, "deepseek-chat", "deepseek-reasoner"))
	}
	if cfg.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.Anthropic, cfg.Timeout))
	}
	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.Ollama, cfg.Timeout))
	}

	return llmRouter
}
