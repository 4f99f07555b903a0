// Package notify posts human-readable rule outcomes to a Lark chat. Delivery
// is best-effort: failures are logged and never escalate into the rule that
// triggered them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// Config holds Lark messaging configuration.
type Config struct {
	AppID     string
	AppSecret string
	ChatID    string // destination group chat
}

// Notifier sends text messages to the configured chat.
type Notifier struct {
	client *lark.Client
	chatID string
	logger *zap.Logger
}

// New creates a new chat notifier.
func New(cfg Config, logger *zap.Logger) *Notifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &Notifier{
		client: client,
		chatID: cfg.ChatID,
		logger: logger,
	}
}

// Notify sends one text message, fire-and-forget.
func (n *Notifier) Notify(ctx context.Context, text string) {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		n.logger.Error("Failed to encode notification", zap.Error(err))
		return
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send notification", zap.Error(err))
		return
	}
	if !resp.Success() {
		n.logger.Error("Notification API returned failure",
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return
	}

	n.logger.Info("Notification sent", zap.String("chat_id", n.chatID))
}

// NotifyRule announces a rule action taken on a task.
func (n *Notifier) NotifyRule(ctx context.Context, taskGID, action, description string) {
	n.Notify(ctx, fmt.Sprintf("Asana Rule Triggered\nAction: %s\nRule: %s\nTask: %s",
		action, description, taskURL(taskGID)))
}

// NotifyFailure reports a business lookup miss, distinguishable from the
// normal action messages.
func (n *Notifier) NotifyFailure(ctx context.Context, taskGID, reason, rule string) {
	n.Notify(ctx, fmt.Sprintf("Asana Error Notification\nRule: %s\nReason: %s\nTask: %s",
		rule, reason, taskURL(taskGID)))
}

func taskURL(taskGID string) string {
	return fmt.Sprintf("https://app.asana.com/0/0/%s/f", taskGID)
}
