package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/evea/evea_backend/config"
	"github.com/evea/evea_backend/controllers"
	"github.com/evea/evea_backend/metrics"
	"github.com/evea/evea_backend/middleware"
	"github.com/evea/evea_backend/repositories"
	"github.com/evea/evea_backend/routes"
	"github.com/evea/evea_backend/services"
	"github.com/evea/evea_backend/websocket"
)

// Document uploads to Drive get more time than plain requests
const uploadTimeout = 2 * time.Minute

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	client := config.ConnectDB(cfg)
	db := client.Database(cfg.DBName)
	registrationRepo := repositories.NewRegistrationRepository(db)
	adminRepo := repositories.NewAdminRepository(db)

	// Lockout counters and revoked tokens live in Redis when it is reachable
	var (
		attempts    services.LoginAttemptStore    = repositories.NewMemoryLoginAttemptStore()
		revocations services.TokenRevocationStore = repositories.NewMemoryTokenRevocationStore()
	)
	if redisClient := config.ConnectRedis(cfg); redisClient != nil {
		defer redisClient.Close()
		attempts = repositories.NewRedisLoginAttemptStore(redisClient)
		revocations = repositories.NewRedisTokenRevocationStore(redisClient)
	}

	documents, uploadDir := documentStore(ctx, cfg)
	notifier := mailer(cfg)

	var identity services.IdentityVerifier
	if cfg.GoogleClientID != "" {
		identity = services.NewGoogleIdentityVerifier(ctx, cfg.GoogleClientID, cfg.GoogleCertsURL)
	} else {
		log.Println("GOOGLE_CLIENT_ID not set, Google sign-in is disabled")
	}

	tokens := services.NewTokenService(services.TokenConfig{
		Secret:          cfg.JWTSecret,
		RegistrationTTL: cfg.RegistrationTokenTTL,
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
		EmailTTL:        cfg.EmailTokenTTL,
		ResetTTL:        cfg.PasswordResetTTL,
	})
	emails := services.NewEmailComposer(cfg.AppBaseURL)

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	registrationService := services.NewRegistrationService(services.RegistrationDeps{
		Store:             registrationRepo,
		Documents:         documents,
		Notifier:          notifier,
		Tokens:            tokens,
		Identity:          identity,
		Events:            wsHub,
		Emails:            emails,
		Policies:          cfg.DocumentPolicies,
		UploadConcurrency: cfg.UploadConcurrency,
	})
	reviewService := services.NewReviewService(registrationRepo, notifier, emails, wsHub, cfg.DocumentPolicies)
	authService := services.NewAuthService(services.AuthDeps{
		Registrations:   registrationRepo,
		Admins:          adminRepo,
		Attempts:        attempts,
		Revocations:     revocations,
		Tokens:          tokens,
		Identity:        identity,
		Notifier:        notifier,
		Emails:          emails,
		MaxFailedLogins: cfg.MaxFailedLogins,
		LockoutDuration: cfg.LoginLockoutDuration,
	})

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.BootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			log.Fatalf("Failed to create initial admin: %v", err)
		}
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true

	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Cleanup(time.Hour, ctx.Done())
	cors := middleware.NewCORSConfig(cfg.CORSAllowedOrigins)

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORSWithConfig(cors))
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		ConnectSources: cors.AllowOrigins,
		HSTS:           !cfg.IsDevelopment(),
	}))
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(c echo.Context) error {
		pingCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		database := "connected"
		status := http.StatusOK
		if err := client.Ping(pingCtx, nil); err != nil {
			database = "unreachable"
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, map[string]interface{}{
			"status":           http.StatusText(status),
			"database":         database,
			"websocketClients": wsHub.ConnectedClients(),
		})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	routes.SetupRoutes(e, routes.Controllers{
		Registration: controllers.NewRegistrationController(registrationService, uploadTimeout),
		Review:       controllers.NewReviewController(reviewService, cfg.RequestTimeout),
		Auth:         controllers.NewAuthController(authService, cfg.RequestTimeout),
		WebSocket:    websocket.NewHandler(wsHub, tokens, cors.AllowOrigins),
		Sessions:     middleware.NewAuthenticator(tokens, revocations),
		UploadDir:    uploadDir,
	})

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}

// documentStore picks Google Drive when credentials are configured and local disk otherwise.
// The returned directory is non-empty only for the disk store.
func documentStore(ctx context.Context, cfg *config.Config) (services.DocumentStore, string) {
	if cfg.DriveEnabled() {
		svc, err := config.NewDriveService(ctx, cfg)
		if err != nil {
			log.Fatalf("Google Drive setup failed: %v", err)
		}
		log.Println("Documents are stored in Google Drive")
		return services.NewDriveDocumentStore(svc, cfg.DriveFolderID, cfg.DrivePublicLinks), ""
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}
	log.Printf("Documents are stored on disk in %s", cfg.UploadDir)
	return services.NewDiskDocumentStore(cfg.UploadDir, cfg.APIBaseURL), cfg.UploadDir
}

func mailer(cfg *config.Config) services.Notifier {
	if !cfg.SMTPEnabled() {
		log.Println("SMTP_HOST not set, emails are written to the log")
		return services.LogMailer{}
	}
	return services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	})
}
