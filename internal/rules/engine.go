package rules

import (
	"context"
	"time"

	"github.com/garyjia/asana-automation/internal/event"
	"go.uber.org/zap"
)

// Config holds the identifiers and thresholds shared by the rule handlers.
// Injected at construction; never mutated at runtime.
type Config struct {
	WorkspaceGID    string
	ProjectGID      string
	StatusFieldGID  string        // the monitored single-select status field
	ProjectManagers []string      // assignee allow-list for the feasibility gate
	MatchThreshold  int           // minimum 0-100 similarity for sales-owner resolution
	HandlerTimeout  time.Duration // bound on one rule's processing of one batch
}

// Engine owns the rule handlers and fans one grouped batch out to them.
// Handlers are independent: they share no state, promise no ordering among
// each other, and a failure in one never reaches another.
type Engine struct {
	pendingApproval       *PendingApproval
	feasibilityEvaluating *FeasibilityEvaluating
	requirementClarifying *RequirementClarifying
	forceDelete           *ForceDelete
	scoringStatus         *ScoringStatus
	timeout               time.Duration
	logger                *zap.Logger
}

// NewEngine creates the rule engine with all handlers wired to the given
// facades.
func NewEngine(tasks TaskService, users UserDirectory, options EnumOptionSource, sheet ScoreSheet, notifier Notifier, cfg Config, logger *zap.Logger) *Engine {
	timeout := cfg.HandlerTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Engine{
		pendingApproval:       NewPendingApproval(tasks, users, options, notifier, cfg, logger),
		feasibilityEvaluating: NewFeasibilityEvaluating(tasks, users, options, notifier, cfg, logger),
		requirementClarifying: NewRequirementClarifying(tasks, sheet, notifier, logger),
		forceDelete:           NewForceDelete(tasks, notifier, logger),
		scoringStatus:         NewScoringStatus(tasks, sheet, notifier, logger),
		timeout:               timeout,
		logger:                logger,
	}
}

// Dispatch schedules every rule handler for one grouped batch as an
// independent background goroutine and returns immediately. The inbound
// HTTP response never waits for handlers.
func (e *Engine) Dispatch(batch event.Batch) {
	changed := batch[event.ActionChanged]
	added := batch[event.ActionAdded]
	undeleted := batch[event.ActionUndeleted]

	e.spawn("pending_approval", changed, e.pendingApproval.Handle)
	e.spawn("feasibility_evaluating", changed, e.feasibilityEvaluating.Handle)
	e.spawn("requirement_clarifying", added, e.requirementClarifying.Handle)
	e.spawn("force_delete", undeleted, e.forceDelete.Handle)
	e.spawn("scoring_status", changed, e.scoringStatus.Handle)
}

func (e *Engine) spawn(name string, tasks event.TaskEvents, handle func(context.Context, event.TaskEvents)) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				e.logger.Error("Panic in rule handler",
					zap.String("rule", name),
					zap.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()

		handle(ctx, tasks)
	}()
}
