package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garyjia/asana-automation/internal/asana"
	"github.com/garyjia/asana-automation/internal/config"
	"github.com/garyjia/asana-automation/internal/notify"
	"github.com/garyjia/asana-automation/internal/rules"
	"github.com/garyjia/asana-automation/internal/scoring"
	"github.com/garyjia/asana-automation/internal/webhook"
	"github.com/garyjia/asana-automation/pkg/database"
	"github.com/garyjia/asana-automation/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env before configuration; absence is fine
	_ = gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Asana Automation Service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database for handshake-secret persistence
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	secretStore, err := webhook.NewSecretStore(db, logger)
	if err != nil {
		logger.Fatal("Failed to initialize secret store", zap.Error(err))
	}

	// Initialize external facades
	asanaClient := asana.NewClient(asana.Config{
		BaseURL: cfg.Asana.BaseURL,
		PAT:     cfg.Asana.PAT,
		Timeout: cfg.Asana.APITimeout,
	}, logger)

	notifier := notify.New(notify.Config{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
		ChatID:    cfg.Lark.ChatID,
	}, logger)

	sheet := scoring.NewSheet(scoring.Config{
		WorkbookPath: cfg.Scoring.WorkbookPath,
		SheetName:    cfg.Scoring.SheetName,
	}, logger)

	// Initialize rule engine
	rulesCfg := rules.Config{
		WorkspaceGID:    cfg.Asana.WorkspaceGID,
		ProjectGID:      cfg.Asana.ProjectGID,
		StatusFieldGID:  cfg.Asana.StatusFieldGID,
		ProjectManagers: cfg.Rules.ProjectManagers,
		MatchThreshold:  cfg.Rules.MatchThreshold,
		HandlerTimeout:  cfg.Rules.HandlerTimeout,
	}
	engine := rules.NewEngine(asanaClient, asanaClient, asanaClient, sheet, notifier, rulesCfg, logger)
	businessValue := rules.NewBusinessValue(asanaClient, notifier, rulesCfg, logger)

	// Initialize webhook handler
	webhookHandler := webhook.NewHandler(engine, businessValue, secretStore, cfg.Asana.WebhookSecret, logger)

	// Warn when the webhook was never registered against this target
	if cfg.Asana.TargetURL != "" {
		checkWebhook(asanaClient, cfg, logger)
	}

	// Set Gin mode based on logger level
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize HTTP router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "asana-automation",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Webhook endpoint
	router.POST(cfg.Server.WebhookPath, webhookHandler.HandleWebhook)

	// Scoring-system callback
	router.POST("/scoring/business-value", webhookHandler.HandleBusinessValue)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// checkWebhook verifies at startup that the tracker still delivers to this
// service; a missing webhook is logged, not fatal.
func checkWebhook(client *asana.Client, cfg *config.Config, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	exists, err := client.WebhookExists(ctx, cfg.Asana.WorkspaceGID, cfg.Asana.ProjectGID, cfg.Asana.TargetURL)
	if err != nil {
		logger.Warn("Failed to check webhook registration", zap.Error(err))
		return
	}
	if !exists {
		logger.Warn("Webhook not found, run cmd/create-webhook to register one",
			zap.String("target_url", cfg.Asana.TargetURL))
		return
	}
	logger.Info("Webhook already registered")
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
