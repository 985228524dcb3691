package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	openaiclient "github.com/teachme/platform/internal/assistant/openai"

	"github.com/teachme/platform/internal/api/handler"
	customMiddleware "github.com/teachme/platform/internal/api/middleware"
	"github.com/teachme/platform/internal/config"
	"github.com/teachme/platform/internal/mail"
	"github.com/teachme/platform/internal/repository/postgres"
	"github.com/teachme/platform/internal/repository/redis"
	"github.com/teachme/platform/internal/security"
	"github.com/teachme/platform/internal/service"
	"github.com/teachme/platform/internal/tool"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Repositories
	userRepo := postgres.NewUserRepository(db.Pool)
	orgRepo := postgres.NewOrganizationRepository(db.Pool)
	membershipRepo := postgres.NewMembershipRepository(db.Pool)
	inviteRepo := postgres.NewInviteRepository(db.Pool)
	courseRepo := postgres.NewCourseRepository(db.Pool)
	documentRepo := postgres.NewDocumentRepository(db.Pool)
	agentRepo := postgres.NewAgentRepository(db.Pool)
	statsRepo := postgres.NewStatsRepository(db.Pool)
	threadRepo := postgres.NewThreadRepository(db.Pool)
	exchangeRepo := postgres.NewExchangeRepository(db.Pool)

	// Redis-backed stores
	sessionStore := redis.NewSessionStore(redisClient, cfg.Session.TTL)
	sendLimiter := redis.NewSendLimiter(redisClient, cfg.Security.RateLimit.Window, cfg.Security.RateLimit.Burst)

	// Remote assistant client
	assistantClient := openaiclient.NewClient(cfg.OpenAI)

	// Mail
	mailer := mail.NewMailer(cfg.Mail, log.Logger)

	// Tool registry
	handlers := tool.NewHandlers(
		userRepo,
		orgRepo,
		membershipRepo,
		inviteRepo,
		courseRepo,
		documentRepo,
		agentRepo,
		statsRepo,
		sessionStore,
		assistantClient,
		mailer,
		log.Logger,
	)
	registry := tool.NewRegistry(log.Logger)
	handlers.RegisterAll(registry)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	sessionService := service.NewSessionService(sessionStore, userRepo, membershipRepo, cfg.Session.TTL)
	threadService := service.NewThreadService(threadRepo, exchangeRepo, agentRepo, membershipRepo, assistantClient)
	chatService := service.NewChatService(
		sessionService,
		threadService,
		agentRepo,
		exchangeRepo,
		threadRepo,
		registry,
		assistantClient,
		sendLimiter,
		service.PollConfig{
			InitialDelay: cfg.OpenAI.PollInitialDelay,
			MaxDelay:     cfg.OpenAI.PollMaxDelay,
			RunTimeout:   cfg.OpenAI.RunTimeout,
		},
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, sessionService)
	threadHandler := handler.NewThreadHandler(threadService, sessionService)
	chatHandler := handler.NewChatHandler(chatService)

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Post("/me/switch-role", authHandler.SwitchRole)

			r.Route("/threads", func(r chi.Router) {
				r.Get("/", threadHandler.List)
				r.Post("/", threadHandler.Start)

				r.Route("/{threadID}", func(r chi.Router) {
					r.Get("/", threadHandler.Get)
					r.Patch("/", threadHandler.Rename)
					r.Delete("/", threadHandler.Delete)
					r.Post("/archive", threadHandler.Archive)
					r.Post("/unarchive", threadHandler.Unarchive)
					r.Get("/messages", threadHandler.Messages)
					r.Post("/messages", chatHandler.Send)
				})
			})
		})
	})

	return r
}
