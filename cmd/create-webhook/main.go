// Command create-webhook registers the project webhook against the running
// service. The server must already be reachable at the target URL because
// the tracker performs the handshake during registration.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/garyjia/asana-automation/internal/asana"
	"github.com/garyjia/asana-automation/internal/config"
	"github.com/garyjia/asana-automation/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: "info", OutputPath: "stdout", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Asana.TargetURL == "" {
		logger.Fatal("asana.target_url is required to create a webhook")
	}

	client := asana.NewClient(asana.Config{
		BaseURL: cfg.Asana.BaseURL,
		PAT:     cfg.Asana.PAT,
		Timeout: cfg.Asana.APITimeout,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exists, err := client.WebhookExists(ctx, cfg.Asana.WorkspaceGID, cfg.Asana.ProjectGID, cfg.Asana.TargetURL)
	if err != nil {
		logger.Fatal("Failed to check existing webhooks", zap.Error(err))
	}
	if exists {
		logger.Info("Webhook already exists, nothing to do",
			zap.String("target_url", cfg.Asana.TargetURL))
		return
	}

	filters := []asana.WebhookFilter{
		{ResourceType: "task", Action: "changed"},
		{ResourceType: "task", Action: "added"},
		{ResourceType: "task", Action: "undeleted"},
	}

	webhook, err := client.CreateWebhook(ctx, cfg.Asana.ProjectGID, cfg.Asana.TargetURL, filters)
	if err != nil {
		logger.Fatal("Failed to create webhook", zap.Error(err))
	}

	logger.Info("Webhook created successfully",
		zap.String("webhook_gid", webhook.GID),
		zap.String("target_url", webhook.Target))
}
