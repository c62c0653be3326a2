package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hauntedadmin/internal/analytics"
	"hauntedadmin/internal/caching"
	"hauntedadmin/internal/common"
	"hauntedadmin/internal/config"
	"hauntedadmin/internal/handlers"
	"hauntedadmin/internal/identity"
	"hauntedadmin/internal/jobs"
	"hauntedadmin/internal/jobs/background"
	"hauntedadmin/internal/middleware"
	"hauntedadmin/internal/repositories"
	"hauntedadmin/internal/services"
	"hauntedadmin/pkg/database"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	pool, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" && cfg.JWKSURL == "" {
		jwtSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; sessions will not survive restarts")
	}

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	avatarSvc, err := services.NewAvatarService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize avatar storage: %v", err)
	}
	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
	if err := avatarSvc.EnsureBucketExists(bucketCtx); err != nil {
		log.Printf("WARN: avatar bucket check failed: %v", err)
	}
	cancelBucket()

	provider := identity.NewProviderClient(cfg.IdentityBaseURL, cfg.IdentityServiceKey)

	// Repositories
	memberRepo := repositories.NewMemberRepo(pool)
	planRepo := repositories.NewPlanRepo(pool)
	adminRepo := repositories.NewAdminRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	// Services
	auditSvc := services.NewAuditLogsService(auditLogsRepo)
	memberSvc := services.NewMemberService(memberRepo, planRepo, cacheSvc, auditSvc)
	planSvc := services.NewPlanService(planRepo, cacheSvc, auditSvc)
	adminSvc := services.NewAdminService(adminRepo, provider, auditSvc)
	authSvc := services.NewAuthService(adminRepo, provider, cacheSvc, cfg.SessionTTL)
	notificationSvc := services.NewNotificationService(notificationRepo)
	analyticsSvc := analytics.NewService(memberRepo, planRepo, cacheSvc)

	// Background jobs
	expiryAlertSvc := jobs.NewExpiryAlertService(memberRepo, notificationSvc, cfg.ExpiringSoonDays)
	scheduler := background.NewJobScheduler(expiryAlertSvc, planRepo, cacheSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("WARN: failed to stop job scheduler: %v", err)
		}
	}()

	// Middleware
	sessionMw, err := middleware.NewSessionMiddleware(authSvc, cfg.JWKSURL, jwtSecret)
	if err != nil {
		log.Fatalf("Failed to initialize session middleware: %v", err)
	}
	auditMw := middleware.NewAuditMiddleware(auditSvc)
	versionMw := middleware.NewVersionMiddleware()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, adminSvc)
	memberHandlers := handlers.NewMemberHandlers(memberSvc, avatarSvc)
	planHandlers := handlers.NewPlanHandlers(planSvc)
	adminHandlers := handlers.NewAdminHandlers(adminSvc)
	notificationHandlers := handlers.NewNotificationHandlers(notificationSvc)
	auditLogsHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	dashboardHandlers := handlers.NewDashboardHandlers(analyticsSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, avatarSvc, scheduler.JobNames)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = common.HTTPErrorHandler

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(versionMw.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMw.VersionHeader("v1"))

	// Authentication routes (no session required for sign-in)
	auth := v1.Group("/auth")
	auth.POST("/sign-in", authHandlers.SignIn)

	// Protected routes
	protected := v1.Group("")
	protected.Use(sessionMw.RequireSession())
	protected.Use(auditMw.AuditRequest())

	protected.POST("/auth/sign-out", authHandlers.SignOut)
	protected.GET("/me", authHandlers.Me)
	protected.PUT("/me/password", authHandlers.ChangePassword)

	// Member routes
	protected.GET("/members", memberHandlers.ListMembers)
	protected.POST("/members", memberHandlers.CreateMember)
	protected.GET("/members/:id", memberHandlers.GetMember)
	protected.PUT("/members/:id", memberHandlers.UpdateMember)
	protected.POST("/members/:id/extend", memberHandlers.ExtendMember)
	protected.DELETE("/members/:id", memberHandlers.DeleteMember)
	protected.POST("/members/:id/restore", memberHandlers.RestoreMember)
	protected.DELETE("/members/:id/purge", memberHandlers.PurgeMember)
	protected.POST("/members/:id/avatar", memberHandlers.UploadAvatar)
	protected.GET("/members/:id/avatar", memberHandlers.GetAvatarURL)

	// Plan routes
	protected.GET("/plans", planHandlers.ListPlans)
	protected.POST("/plans", planHandlers.CreatePlan)
	protected.GET("/plans/:id", planHandlers.GetPlan)
	protected.PUT("/plans/:id", planHandlers.UpdatePlan)
	protected.DELETE("/plans/:id", planHandlers.DeletePlan)

	// Admin account routes
	protected.GET("/admins", adminHandlers.ListAdmins)
	protected.POST("/admins/invite", adminHandlers.InviteAdmin)
	protected.GET("/admins/:id", adminHandlers.GetAdmin)
	protected.POST("/admins/:id/disable", adminHandlers.DisableAdmin)
	protected.POST("/admins/:id/enable", adminHandlers.EnableAdmin)
	protected.DELETE("/admins/:id", adminHandlers.RemoveAdmin)

	// Notification routes
	protected.GET("/notifications", notificationHandlers.ListNotifications)
	protected.POST("/notifications/:id/read", notificationHandlers.MarkNotificationRead)

	// Audit log routes
	protected.GET("/audit-logs", auditLogsHandlers.ListAuditLogs)
	protected.GET("/audit-logs/:table/:record_id", auditLogsHandlers.GetEntityHistory)

	// Dashboard
	protected.GET("/dashboard/stats", dashboardHandlers.GetStats)

	log.Printf("Haunted Family admin server v%s starting on port %d", version, cfg.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
