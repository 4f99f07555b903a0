package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/garyjia/asana-automation/internal/event"
	"github.com/garyjia/asana-automation/internal/rules"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// secretHeader is the handshake/validation header sent by Asana.
const secretHeader = "X-Hook-Secret"

// RuleEngine dispatches one grouped batch to the background rule handlers.
type RuleEngine interface {
	Dispatch(batch event.Batch)
}

// BusinessValueUpdater is the synchronous sheet-to-tracker path.
type BusinessValueUpdater interface {
	Update(ctx context.Context, companyName string, value float64) rules.Result
}

// SecretSaver persists handshake secrets delivered by the tracker.
type SecretSaver interface {
	Save(ctx context.Context, secret string) error
}

// Payload is the inbound webhook body.
type Payload struct {
	Events []event.Event `json:"events"`
}

// Handler owns the inbound HTTP boundary: handshake, validation, grouping
// and background dispatch.
type Handler struct {
	engine        RuleEngine
	businessValue BusinessValueUpdater
	secrets       SecretSaver
	sharedSecret  string
	logger        *zap.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(engine RuleEngine, businessValue BusinessValueUpdater, secrets SecretSaver, sharedSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		engine:        engine,
		businessValue: businessValue,
		secrets:       secrets,
		sharedSecret:  sharedSecret,
		logger:        logger,
	}
}

// HandleWebhook processes one inbound webhook call. A request carrying the
// secret header is a handshake: the value is persisted and echoed back
// verbatim with status 200. Everything else must be a {"events": [...]}
// body; the batch is grouped once and the rule handlers are scheduled as
// background work, so the response never waits for them.
func (h *Handler) HandleWebhook(c *gin.Context) {
	if secret := c.GetHeader(secretHeader); secret != "" {
		h.handshake(c, secret)
		return
	}

	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("Invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "invalid payload: expected {\"events\": [...]}",
		})
		return
	}

	batch := event.GroupByTask(payload.Events, h.logger)
	h.logger.Info("Webhook batch accepted",
		zap.Int("events", len(payload.Events)),
		zap.Int("changed_tasks", len(batch[event.ActionChanged])),
		zap.Int("added_tasks", len(batch[event.ActionAdded])),
		zap.Int("undeleted_tasks", len(batch[event.ActionUndeleted])))

	h.engine.Dispatch(batch)

	c.JSON(http.StatusOK, gin.H{"status": "processing_started"})
}

// handshake validates the delivered secret against the configured shared
// secret (when one is set), persists it and echoes it back.
func (h *Handler) handshake(c *gin.Context, secret string) {
	if h.sharedSecret != "" && secret != h.sharedSecret {
		h.logger.Warn("Webhook secret mismatch")
		c.Status(http.StatusForbidden)
		return
	}

	if err := h.secrets.Save(c.Request.Context(), secret); err != nil {
		h.logger.Error("Failed to persist handshake secret", zap.Error(err))
	}

	h.logger.Info("Webhook handshake completed")
	c.Header(secretHeader, secret)
	c.Status(http.StatusOK)
}

// BusinessValueRequest is the admin payload triggering the synchronous
// sheet-to-tracker mirror. businessValue accepts a JSON number or a numeric
// string.
type BusinessValueRequest struct {
	CompanyName   string      `json:"companyName" binding:"required"`
	BusinessValue json.Number `json:"businessValue" binding:"required"`
}

// HandleBusinessValue answers the scoring sheet's business-value push with a
// structured result.
func (h *Handler) HandleBusinessValue(c *gin.Context) {
	var req BusinessValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid business value payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "invalid payload: companyName and businessValue are required",
		})
		return
	}

	value, err := req.BusinessValue.Float64()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "businessValue must be numeric",
		})
		return
	}

	result := h.businessValue.Update(c.Request.Context(), req.CompanyName, value)
	if result.Status != "success" {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
