package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"visionm/internal/analytics"
	"visionm/internal/caching"
	"visionm/internal/handlers"
	"visionm/internal/jobs/background"
	"visionm/internal/middleware"
	"visionm/internal/repositories"
	"visionm/internal/services"
	"visionm/pkg/database"
	"visionm/pkg/mail"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; sessions will not survive restarts")
	}
	accessTTL := envInt("ACCESS_TOKEN_TTL_SECONDS", 3600)
	refreshTTL := envInt("REFRESH_TOKEN_TTL_SECONDS", 30*24*3600)

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := envInt("REDIS_DB", 0)

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewMinioStorage(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// SMTP configuration. Disabled is a valid state: workflow emails are
	// skipped and every workflow response reports email_sent=false.
	smtpSettings := mail.SMTPSettings{
		Enabled:  os.Getenv("SMTP_ENABLED") == "true",
		Host:     os.Getenv("SMTP_HOST"),
		Port:     envInt("SMTP_PORT", 587),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		UseTLS:   os.Getenv("SMTP_USE_TLS") != "false",
		Timeout:  time.Duration(envInt("SMTP_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	mailer, err := mail.NewSMTPMailer(smtpSettings)
	if err != nil {
		log.Fatalf("Invalid SMTP configuration: %v", err)
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Create repositories
	profileRepo := repositories.NewProfileRepo(pool)
	companyRepo := repositories.NewCompanyRepo(pool)
	joinRequestRepo := repositories.NewJoinRequestRepo(pool)
	inviteRepo := repositories.NewCompanyInviteRepo(pool)
	projectRepo := repositories.NewProjectRepo(pool)
	projectUserRepo := repositories.NewProjectUserRepo(pool)
	datasetRepo := repositories.NewDatasetRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	notifier := services.NewEmailNotifier(mailer)
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, accessTTL, refreshTTL)
	profileSvc := services.NewProfileService(profileRepo, companyRepo, cacheSvc)
	joinRequestSvc := services.NewJoinRequestService(joinRequestRepo, profileRepo, companyRepo, cacheSvc, notifier, baseURL)
	inviteSvc := services.NewInviteService(inviteRepo, profileRepo, companyRepo, cacheSvc, notifier, baseURL,
		services.WithInviteExpiry(time.Duration(envInt("INVITE_EXPIRY_HOURS", 72))*time.Hour))
	projectSvc := services.NewProjectService(projectRepo)
	projectInviteSvc := services.NewProjectInviteService(projectRepo, projectUserRepo, notifier, baseURL, envInt("BCRYPT_COST", 0))
	datasetSvc := services.NewDatasetService(datasetRepo, projectRepo, storageSvc, cacheSvc)
	analyticsSvc := analytics.NewAnalyticsService(projectRepo, datasetRepo, companyRepo, cacheSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(analyticsSvc, cacheSvc)
	if err != nil {
		log.Fatalf("Failed to initialize job scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, profileRepo)
	profileHandlers := handlers.NewProfileHandlers(profileSvc)
	workspaceRequestHandlers := handlers.NewWorkspaceRequestHandlers(joinRequestSvc, profileSvc)
	inviteHandlers := handlers.NewInviteHandlers(inviteSvc)
	projectHandlers := handlers.NewProjectHandlers(projectSvc, projectInviteSvc)
	datasetHandlers := handlers.NewDatasetHandlers(datasetSvc, int64(envInt("MAX_UPLOAD_MB", 512))<<20)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	rateLimiter := middleware.NewRateLimitMiddleware(cacheSvc, envInt("RATE_LIMIT_PER_MINUTE", 30), time.Minute)

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealth)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	// Public workflow routes. The capability token in the link or payload is
	// the authorization: approve/reject links land from admin emails without a
	// session, and invite validation runs on the signup form before an account
	// exists.
	decisionLimit := rateLimiter.Limit("decision")
	v1.GET("/workspace-requests/approve", workspaceRequestHandlers.Approve, decisionLimit)
	v1.POST("/workspace-requests/approve", workspaceRequestHandlers.Approve, decisionLimit)
	v1.GET("/workspace-requests/reject", workspaceRequestHandlers.Reject, decisionLimit)
	v1.POST("/workspace-requests/reject", workspaceRequestHandlers.Reject, decisionLimit)
	v1.POST("/invites/validate", inviteHandlers.Validate, rateLimiter.Limit("invite-validate"))
	v1.POST("/check-email-exists", profileHandlers.CheckEmailExists, rateLimiter.Limit("check-email"))
	v1.POST("/projects/:id/access", projectHandlers.VerifyAccess, rateLimiter.Limit("project-access"))

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware([]byte(jwtSecret)))

	protected.GET("/me", profileHandlers.Me)

	protected.POST("/workspace-requests", workspaceRequestHandlers.Create)
	protected.GET("/workspace-requests/pending", workspaceRequestHandlers.ListPending)

	protected.POST("/invites/accept", inviteHandlers.Accept)

	// Admin-only invite management
	adminMiddleware := middleware.NewAdminMiddleware(profileSvc)
	invites := protected.Group("/invites", adminMiddleware.RequireCompanyAdmin())
	invites.POST("", inviteHandlers.Create)
	invites.GET("", inviteHandlers.List)
	invites.DELETE("/:id", inviteHandlers.Revoke)

	// Project routes
	protected.GET("/projects", projectHandlers.List)
	protected.POST("/projects", projectHandlers.Create)
	protected.GET("/projects/:id", projectHandlers.Get)
	protected.PUT("/projects/:id", projectHandlers.Update)
	protected.DELETE("/projects/:id", projectHandlers.Delete)
	protected.POST("/projects/:id/users", projectHandlers.InviteUser)
	protected.GET("/projects/:id/users", projectHandlers.ListUsers)
	protected.GET("/projects/:id/datasets", datasetHandlers.ListByProject)

	// Dataset routes
	protected.POST("/datasets", datasetHandlers.Upload)
	protected.GET("/datasets/:id/status", datasetHandlers.Status)
	protected.GET("/datasets/:id/files", datasetHandlers.ListFiles)

	// Analytics
	protected.GET("/analytics/workspace", analyticsHandlers.Workspace)

	// Start server
	port := envInt("PORT", 8080)
	log.Printf("VisionM server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
