// Package main runs the registration assistant HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/omc-club/registration/config"
	"github.com/omc-club/registration/internal/audit"
	"github.com/omc-club/registration/internal/auth"
	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/flow"
	"github.com/omc-club/registration/internal/middleware"
	"github.com/omc-club/registration/internal/platform"
	"github.com/omc-club/registration/internal/reconcile"
	"github.com/omc-club/registration/internal/registrations"
	"github.com/omc-club/registration/internal/worker"
	"github.com/omc-club/registration/pkg/database"
	"github.com/omc-club/registration/pkg/queue"
	"github.com/omc-club/registration/pkg/redis"
	"github.com/omc-club/registration/pkg/response"
	"github.com/omc-club/registration/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	gateway := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.BotToken, cfg.Platform.GuildID, logger)

	excludedRoles := eligibility.NewRoleSet(cfg.Roles.ExcludedRoleIDs)
	existingTeamRoles := eligibility.NewRoleSet(cfg.Roles.ExistingTeamRoleIDs)
	adminRoles := eligibility.NewRoleSet(cfg.Roles.AdminRoleIDs)

	auditRepo := audit.NewRepository(db)
	registrationRepo := registrations.NewRepository(db)

	// Registration flow
	sessionTimeout := time.Duration(cfg.Flow.SessionTimeoutSec) * time.Second
	sessions := flow.NewSessionStore(sessionTimeout, logger)
	flowService := flow.NewService(sessions, registrationRepo, gateway, auditRepo, excludedRoles, logger)
	flowHandler := flow.NewHandler(flowService, logger)

	// Admin registration management
	registrationHandler := registrations.NewHandler(registrationRepo, auditRepo, db, s3Client, cfg.Export.CSVPath, logger)

	// Bulk reconciliation
	jobQueue := queue.NewQueue(rdb.Client, logger)
	confirmTTL := time.Duration(cfg.Flow.ConfirmTimeoutSec) * time.Second
	confirms := reconcile.NewRedisConfirmStore(rdb.Client, confirmTTL)
	results := worker.NewRedisResults(rdb.Client)
	reconcileService := reconcile.NewService(registrationRepo, gateway, jobQueue, confirms,
		excludedRoles, existingTeamRoles, cfg.Roles.NotRenewedRoleID, cfg.Roles.UnverifiedRoleID, logger)
	reconcileHandler := reconcile.NewHandler(reconcileService, results, logger)

	// In-process bulk processor; cmd/worker runs the same loop standalone.
	processor := worker.NewBulkProcessor(gateway, auditRepo, jobQueue, results, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Liveness (fixed JSON shapes, consumed by the gateway's monitor)
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "online",
			"service": "registration-assistant",
			"message": "Membership registration service is running",
		})
	})
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "healthy"}) })
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

	// Actor flow (JWT required; actor identity comes from the token)
	flowGroup := router.Group("/flow")
	flowGroup.Use(middleware.JWT(jwtService))
	{
		flowGroup.POST("/basic-info", flowHandler.BasicInfo)
		flowGroup.POST("/contact-info", flowHandler.ContactInfo)
		flowGroup.POST("/team", flowHandler.Team)
		flowGroup.POST("/cancel", flowHandler.Cancel)
		flowGroup.GET("/session", flowHandler.Session)
	}

	// Admin (JWT + admin gate: user allow-list or live admin role check)
	admin := router.Group("/admin")
	admin.Use(middleware.JWT(jwtService))
	admin.Use(middleware.RequireAdmin(gateway, adminRoles, cfg.Roles.AdminUserIDs))
	{
		admin.POST("/panel", flowHandler.Panel)
		admin.GET("/stats", registrationHandler.Stats)
		admin.GET("/status", reconcileHandler.Status)
		admin.GET("/registrations/:id", registrationHandler.Get)
		admin.PATCH("/registrations/:id", registrationHandler.Modify)
		admin.DELETE("/registrations/:id", registrationHandler.Delete)
		admin.POST("/export", registrationHandler.Export)
		admin.POST("/roles/not-renewed", reconcileHandler.AssignNotRenewed)
		admin.POST("/roles/unverified", reconcileHandler.AssignUnverified)
		admin.POST("/kicks/preview", reconcileHandler.PreviewKicks)
		admin.POST("/kicks/confirm", reconcileHandler.ConfirmKicks)
		admin.GET("/jobs/:id", reconcileHandler.JobStatus)
		admin.GET("/db/ping", registrationHandler.DBPing)
	}

	router.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go db.KeepAlive(bgCtx)
	go sessions.Run(bgCtx)
	go processor.Run(bgCtx)
	logger.Info("bulk processor started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	bgCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
