// Command test-notification sends one message through the configured chat
// channel to verify credentials and chat id.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/garyjia/asana-automation/internal/config"
	"github.com/garyjia/asana-automation/internal/notify"
	"github.com/garyjia/asana-automation/pkg/utils"
	"github.com/subosito/gotenv"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: "debug", OutputPath: "stdout", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	notifier := notify.New(notify.Config{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
		ChatID:    cfg.Lark.ChatID,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	notifier.Notify(ctx, "Asana automation test notification at "+time.Now().Format(time.RFC3339))
}
