package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/config"
	"github.com/jime0083/BatsuGaku/handlers"
	"github.com/jime0083/BatsuGaku/jobs"
	"github.com/jime0083/BatsuGaku/logger"
	"github.com/jime0083/BatsuGaku/middleware"
	"github.com/jime0083/BatsuGaku/mongodb"
	"github.com/jime0083/BatsuGaku/notify"
	"github.com/jime0083/BatsuGaku/oauth"
	"github.com/jime0083/BatsuGaku/security"
	"github.com/jime0083/BatsuGaku/social"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Development, logger.LogLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cipher, err := security.New(cfg.EncryptionKey)
	if err != nil {
		logger.Get().Fatal("failed to initialize token cipher", zap.Error(err))
	}

	zone, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Get().Fatal("failed to load timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := mongodb.Connect(ctx, cfg.MongoURI)
	cancel()
	if err != nil {
		logger.Get().Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer store.Close(context.Background())

	stripe.Key = cfg.StripeSecretKey

	github := &oauth.GitHubProvider{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
	}
	x := &oauth.XProvider{
		ClientID:     cfg.XClientID,
		ClientSecret: cfg.XClientSecret,
	}
	notifier := &notify.FCMSender{ServerKey: cfg.FCMServerKey}

	evaluator := &jobs.Evaluator{
		Store:    store,
		Poster:   &social.XClient{},
		Cipher:   cipher,
		Notifier: notifier,
		Zone:     zone,
		Workers:  cfg.EvaluatorWorkers,
	}

	h := &handlers.Handler{
		Store:              store,
		Cipher:             cipher,
		GitHub:             github,
		X:                  x,
		Notifier:           notifier,
		Evaluator:          evaluator,
		Zone:               zone,
		StripePriceID:      cfg.StripePriceID,
		CheckoutSuccessURL: cfg.CheckoutSuccessURL,
		CheckoutCancelURL:  cfg.CheckoutCancelURL,
	}

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Get().Fatal("failed to set trusted proxies", zap.Error(err))
	}
	r.Use(middleware.CORS())

	r.GET("/health", h.HealthCheck)

	// Browser-facing OAuth flow.
	r.GET("/oauth/:provider/start", h.OAuthStart)
	r.GET("/oauth/:provider/callback", h.OAuthCallback)

	// GitHub delivers push events here; auth is the HMAC signature.
	r.POST("/webhook", h.GitHubWebhook)

	// Stripe delivers billing events here; auth is the event signature.
	r.POST("/webhook/stripe", middleware.StripeWebhookVerifier(cfg.StripeWebhookSecret), h.StripeWebhook)

	api := r.Group("/api", middleware.Auth(cfg.JWTSecret))
	{
		api.POST("/users", h.RegisterUser)
		api.GET("/me", h.Me)
		api.PUT("/goal", h.SetGoal)
		api.PUT("/notifications", h.UpdateNotifications)
		api.GET("/badges", h.Badges)
		api.GET("/calendar", h.Calendar)
		api.POST("/subscription/checkout", h.CreateCheckoutSession)
	}

	internal := r.Group("/internal", middleware.Internal(cfg.InternalAPIKey))
	{
		internal.POST("/jobs/daily", h.RunDailyJob)
		internal.POST("/jobs/warning", h.RunWarningJob)
	}

	logger.Get().Info("starting server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Get().Fatal("server exited", zap.Error(err))
	}
}
