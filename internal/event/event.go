package event

// Action is the kind of change an Asana webhook event describes.
type Action string

const (
	ActionAdded     Action = "added"
	ActionChanged   Action = "changed"
	ActionRemoved   Action = "removed"
	ActionUndeleted Action = "undeleted"
	ActionDeleted   Action = "deleted"
)

// ResourceTypeTask is the resource_type value for tasks. Events on other
// resource types (stories, attachments, ...) are attributed to their parent
// task or dropped.
const ResourceTypeTask = "task"

// Resource identifies the Asana object an event refers to.
type Resource struct {
	GID          string `json:"gid"`
	ResourceType string `json:"resource_type"`
}

// Ref is a bare gid reference nested inside a change payload.
type Ref struct {
	GID string `json:"gid"`
}

// NewValue is the value a field was changed to. For enum fields the option
// reference is nested under enum_value; for user fields the gid is set
// directly. A cleared field arrives with no new_value at all.
type NewValue struct {
	GID       string `json:"gid"`
	EnumValue *Ref   `json:"enum_value"`
}

// Change describes the field delta carried by a "changed" event.
type Change struct {
	Field    string    `json:"field"`
	Action   string    `json:"action"`
	NewValue *NewValue `json:"new_value"`
}

// Event is one webhook notification. Asana delivers deltas only; rule
// handlers must re-fetch the task for authoritative state.
type Event struct {
	Action    Action    `json:"action"`
	Resource  Resource  `json:"resource"`
	Parent    *Resource `json:"parent"`
	Change    *Change   `json:"change"`
	CreatedAt string    `json:"created_at"`
}

// TaskEvents maps a task gid to its events, in arrival order.
type TaskEvents map[string][]Event

// Batch is one grouped webhook delivery: action kind to task gid to events.
// Built once per inbound request and read-only afterwards.
type Batch map[Action]TaskEvents
