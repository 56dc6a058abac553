package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/SapotaDA/TaskFlow/internal/api/handlers"
	"github.com/SapotaDA/TaskFlow/internal/api/middleware"
	"github.com/SapotaDA/TaskFlow/internal/api/routes"
	"github.com/SapotaDA/TaskFlow/internal/domain/activity"
	"github.com/SapotaDA/TaskFlow/internal/domain/notification"
	"github.com/SapotaDA/TaskFlow/internal/domain/reminder"
	"github.com/SapotaDA/TaskFlow/internal/domain/task"
	"github.com/SapotaDA/TaskFlow/internal/domain/user"
	"github.com/SapotaDA/TaskFlow/internal/infrastructure/cache"
	"github.com/SapotaDA/TaskFlow/internal/infrastructure/persistence/postgres/connection"
	"github.com/SapotaDA/TaskFlow/internal/infrastructure/persistence/postgres/migrations"
	"github.com/SapotaDA/TaskFlow/internal/infrastructure/scheduler"
	"github.com/SapotaDA/TaskFlow/pkg/config"
	"github.com/SapotaDA/TaskFlow/pkg/logger"
	"github.com/SapotaDA/TaskFlow/pkg/mailer"
	"github.com/SapotaDA/TaskFlow/pkg/security/auth"
)

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.Logging.Level)
	defer appLog.Sync()

	appLog.Info("Configuration loaded successfully")
	appLog.Info("Server mode: " + cfg.Server.Mode)

	db, err := connection.NewDatabase(cfg)
	if err != nil {
		appLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.RunMigrations(db, appLog); err != nil {
		appLog.Fatal("Failed to run migrations", zap.Error(err))
	}

	// The cache is an optimization: run without it if redis is down.
	var redisClient *cache.RedisClient
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(cfg, appLog)
		if err != nil {
			appLog.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// The mailer is best-effort everywhere it is used; a missing SMTP
	// config just disables the email channel.
	var sender mailer.Sender
	if cfg.Email.Host != "" {
		smtpSender, err := mailer.NewSMTPSender(cfg.Email)
		if err != nil {
			appLog.Warn("Mailer disabled", zap.Error(err))
		} else {
			sender = smtpSender
		}
	} else {
		appLog.Warn("No email host configured, email notifications disabled")
	}

	// The notification subsystem keeps its own structured logger.
	notifLog := logrus.New()
	notifLog.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Mode == "development" {
		notifLog.SetLevel(logrus.DebugLevel)
	} else {
		notifLog.SetLevel(logrus.InfoLevel)
	}

	// Repositories
	userRepo := user.NewRepository(db)
	taskRepo := task.NewRepository(db)
	notificationRepo := notification.NewRepository(db, notifLog)
	activityRepo := activity.NewRepository(db)

	// Services
	recorder := activity.NewRecorder(activityRepo, appLog)
	dispatcher := notification.NewDispatcher(notificationRepo, sender, redisClient, notifLog)
	notificationService := notification.NewService(notificationRepo, redisClient, notifLog)
	userService := user.NewService(userRepo, appLog)
	taskService := task.NewService(taskRepo, dispatcher, recorder, appLog)
	jwtService := auth.NewJWTService(cfg)

	// Background scanners
	deadlineScanner := reminder.NewDeadlineScanner(reminder.DeadlineScannerConfig{
		Tasks:         taskRepo,
		Users:         userRepo,
		Notifications: notificationRepo,
		Dispatcher:    dispatcher,
		Logger:        appLog,
		Lookahead:     cfg.Scheduler.DeadlineLookahead,
		EmailEnabled:  cfg.Scheduler.DeadlineEmailEnabled,
		FrontendURL:   cfg.Frontend.URL,
	})
	inactivityScanner := reminder.NewInactivityScanner(reminder.InactivityScannerConfig{
		Users:         userRepo,
		Tasks:         taskRepo,
		Dispatcher:    dispatcher,
		Activities:    recorder,
		Logger:        appLog,
		IdleThreshold: cfg.Scheduler.IdleThreshold,
		FrontendURL:   cfg.Frontend.URL,
	})

	sched := scheduler.New(appLog)
	sched.Register("deadline_scan", cfg.Scheduler.DeadlineInterval, deadlineScanner.Run)
	sched.Register("inactivity_scan", cfg.Scheduler.InactivityInterval, inactivityScanner.Run)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)

	// HTTP API
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(appLog))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			appLog.Warn("Health check lost the database, re-dialing", zap.Error(err))
			if err := db.Reconnect(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := middleware.NewAuthMiddleware(jwtService, userService)
	routes.Register(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(userService, jwtService),
		Tasks:         handlers.NewTaskHandler(taskService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Activities:    handlers.NewActivityHandler(activityRepo),
		AuthRequired:  authRequired,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLog.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server shutdown error", zap.Error(err))
	}

	sched.Wait()
	appLog.Info("Shutdown complete")
}
