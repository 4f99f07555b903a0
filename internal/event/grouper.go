package event

import "go.uber.org/zap"

// GroupByTask partitions a raw webhook batch by action kind, then by the task
// the event logically belongs to. Attribution rules:
//
//   - "changed" and "undeleted" are only meaningful at task granularity;
//     events on other resource types are dropped.
//   - an "added" task whose parent is also a task is attributed to the parent
//     gid (a child added under a task acts on the parent); every other
//     "added" event is attributed to its own resource gid, falling back to a
//     task-typed parent when the resource is not a task.
//
// Events with no usable gid and events with unrecognized actions are logged
// and dropped; a malformed event never fails the batch. Per-task event order
// matches arrival order.
func GroupByTask(events []Event, logger *zap.Logger) Batch {
	batch := Batch{
		ActionAdded:     TaskEvents{},
		ActionChanged:   TaskEvents{},
		ActionUndeleted: TaskEvents{},
	}

	for _, ev := range events {
		switch ev.Action {
		case ActionChanged, ActionUndeleted:
			if ev.Resource.ResourceType != ResourceTypeTask {
				logger.Debug("Dropping non-task event",
					zap.String("action", string(ev.Action)),
					zap.String("resource_type", ev.Resource.ResourceType))
				continue
			}
			if ev.Resource.GID == "" {
				logger.Warn("Dropping event without resource gid",
					zap.String("action", string(ev.Action)))
				continue
			}
			batch[ev.Action][ev.Resource.GID] = append(batch[ev.Action][ev.Resource.GID], ev)

		case ActionAdded:
			gid := attributeAdded(ev)
			if gid == "" {
				logger.Warn("Dropping added event without attributable task",
					zap.String("resource_type", ev.Resource.ResourceType))
				continue
			}
			batch[ActionAdded][gid] = append(batch[ActionAdded][gid], ev)

		default:
			logger.Debug("Ignoring unhandled event action",
				zap.String("action", string(ev.Action)))
		}
	}

	return batch
}

// attributeAdded resolves the task gid an "added" event belongs to, or ""
// when the event cannot be attributed.
func attributeAdded(ev Event) string {
	parentIsTask := ev.Parent != nil && ev.Parent.ResourceType == ResourceTypeTask && ev.Parent.GID != ""

	if ev.Resource.ResourceType == ResourceTypeTask {
		// Subtask or similar child added under a task: the rule acts on
		// the parent.
		if parentIsTask {
			return ev.Parent.GID
		}
		return ev.Resource.GID
	}

	// Non-task child (comment, attachment): only usable through its parent.
	if parentIsTask {
		return ev.Parent.GID
	}
	return ""
}
