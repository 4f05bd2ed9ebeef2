package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/devextech/devex-api/docs" // Swagger docs
	"github.com/devextech/devex-api/internal/auth"
	"github.com/devextech/devex-api/internal/bootstrap"
	"github.com/devextech/devex-api/internal/config"
	"github.com/devextech/devex-api/internal/contact"
	"github.com/devextech/devex-api/internal/email"
	httpServer "github.com/devextech/devex-api/internal/http"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/payment"
	"github.com/devextech/devex-api/internal/ratelimit"
)

// @title           DevEx Technologies API
// @version         1.0
// @description     Sign-up, sign-in, OAuth reconciliation and Razorpay payments for the DevEx Technologies site.

// @contact.name   DevEx Technologies
// @contact.email  support@devex.tech

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
	)

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, cfg, logger, true)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer store.Close(context.Background())

	redisClient, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Interface values stay nil when Redis is off so the consumers can
	// tell the feature is disabled.
	var (
		revoker auth.TokenRevoker
		limiter ratelimit.Checker
	)
	if redisClient != nil {
		defer redisClient.Close()
		revoker = auth.NewRedisRepository(redisClient)
		limiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	} else {
		logger.Warn("redis disabled: rate limiting and sign-out revocation are off")
	}

	tokens, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	var (
		notifier  auth.Notifier
		receipts  payment.ReceiptSender
		forwarder contact.Forwarder
	)
	if cfg.Email.Enabled() {
		emailService := email.NewService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FrontendURL,
			cfg.Email.ContactInbox,
		)
		notifier, receipts, forwarder = emailService, emailService, emailService
	} else {
		logger.Warn("SMTP not configured: outgoing email is disabled")
	}

	authService := auth.NewService(
		store,
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		notifier,
		logger,
		auth.Options{
			UniformSignInErrors: cfg.Auth.UniformSignInErrors,
			OAuthProviders:      cfg.OAuth.Providers,
		},
	)

	gateway := payment.NewRazorpayClient(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.BaseURL,
		cfg.Razorpay.Timeout,
	)
	paymentService := payment.NewService(store, gateway, cfg.Razorpay.KeySecret, receipts, logger)

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth: auth.NewHandler(
			authService,
			tokens,
			revoker,
			!cfg.Server.IsDevelopment(), // isProduction
			cfg.Auth.AccessTokenDuration,
		),
		AuthMiddleware: auth.NewMiddleware(tokens, revoker),
		Payments:       payment.NewHandler(paymentService),
		Contact:        contact.NewHandler(contact.NewService(forwarder)),
		Limiter:        limiter,
		Store:          store,
	}, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	if cfg.TokenFormat == config.TokenJWT {
		return auth.NewJWTService(cfg.TokenKey)
	}
	return auth.NewPasetoService(cfg.TokenKey)
}
