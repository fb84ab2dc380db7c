package server

import (
	"context"
	"net/http"

	"easyminutes/internal/auth"
	"easyminutes/internal/billing"
	"easyminutes/internal/config"
	"easyminutes/internal/entitlement"
	"easyminutes/internal/minutes"
	"easyminutes/internal/plan"
	"easyminutes/internal/subscription"
	"easyminutes/internal/summarize"
	"easyminutes/internal/usage"
	"easyminutes/internal/user"
	"easyminutes/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, prices plan.PriceMap, counters usage.CounterStore, summarizer summarize.Client) *Server {
	router := gin.Default()
	// Webhook retries from providers probe with other methods; answer 405
	// instead of 404 so misconfigured senders see the real problem.
	router.HandleMethodNotAllowed = true
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	subRepo := subscription.NewRepository(db)
	minuteRepo := minutes.NewRepository(db)

	resolver := entitlement.NewResolver(subRepo)
	gate := usage.NewGate(counters, cfg.FreeSessionLimit)

	minuteService := minutes.NewService(minuteRepo, subRepo, resolver, gate, summarizer)
	billingService := billing.NewService(userRepo, subRepo, prices, cfg.StripeSecretKey, cfg.FrontendURL)
	reconciler := webhook.NewReconciler(subRepo, userRepo, prices)

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	minuteHandler := minutes.NewHandler(minuteService)
	billingHandler := billing.NewHandler(billingService)
	webhookHandler := webhook.NewHandler(reconciler)

	authLimit := RateLimitMiddleware(5, 10)

	public := router.Group("/auth")
	public.Use(authLimit)
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	// Anonymous generation and shared minutes need no account.
	router.POST("/generate", RateLimitMiddleware(1, 5), minuteHandler.GenerateAnonymous)
	router.GET("/shared/:token", minuteHandler.GetShared)
	router.GET("/billing/plans", billingHandler.Plans)

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/lemonsqueezy", webhookHandler.Handle(webhook.NewLemonSqueezyProvider(cfg.LemonSqueezyWebhookSecret)))
		webhooks.POST("/stripe", webhookHandler.Handle(webhook.NewStripeProvider(cfg.StripeWebhookSecret)))
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/minutes/generate", minuteHandler.Generate)
		protected.GET("/minutes", minuteHandler.List)
		protected.GET("/minutes/:minuteID", minuteHandler.Get)
		protected.PUT("/minutes/:minuteID", minuteHandler.Update)
		protected.DELETE("/minutes/:minuteID", minuteHandler.Delete)
		protected.GET("/minutes/:minuteID/export", minuteHandler.Export)
		protected.POST("/minutes/:minuteID/share", minuteHandler.Share)

		protected.POST("/billing/checkout", billingHandler.Checkout)
		protected.POST("/billing/portal", billingHandler.Portal)
		protected.GET("/billing/subscription", billingHandler.Subscription)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Session-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
