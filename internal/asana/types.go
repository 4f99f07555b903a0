package asana

// EnumOption is one named value of a single-select custom field.
type EnumOption struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// CustomField is one custom field as returned on a task, with its rendered
// display value.
type CustomField struct {
	GID          string `json:"gid"`
	Name         string `json:"name"`
	DisplayValue string `json:"display_value"`
}

// Task is the authoritative snapshot of a task fetched at rule-evaluation
// time. It is never cached across rule invocations.
type Task struct {
	GID                    string        `json:"gid"`
	Name                   string        `json:"name"`
	Notes                  string        `json:"notes"`
	DueOn                  string        `json:"due_on"`
	CustomTypeStatusOption *EnumOption   `json:"custom_type_status_option"`
	CustomFields           []CustomField `json:"custom_fields"`
}

// StatusOptionName returns the name of the task's current status option, or
// "" when none is set.
func (t *Task) StatusOptionName() string {
	if t == nil || t.CustomTypeStatusOption == nil {
		return ""
	}
	return t.CustomTypeStatusOption.Name
}

// CustomField finds a custom field by name, or nil when absent.
func (t *Task) CustomField(name string) *CustomField {
	if t == nil {
		return nil
	}
	for i := range t.CustomFields {
		if t.CustomFields[i].Name == name {
			return &t.CustomFields[i]
		}
	}
	return nil
}

// TaskRef is a compact task reference from a project task listing.
type TaskRef struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// User is a workspace member.
type User struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Story is one entry of a task's activity feed. Comments are stories with
// resource_subtype "comment_added".
type Story struct {
	GID             string `json:"gid"`
	ResourceSubtype string `json:"resource_subtype"`
	Text            string `json:"text"`
}

// Attachment is a file attached to a task.
type Attachment struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// EnumOptions holds both directions of the option id/name mapping for one
// custom field, fetched fresh per evaluation.
type EnumOptions struct {
	ByID   map[string]string
	ByName map[string]string
}

// Webhook is an established webhook registration.
type Webhook struct {
	GID      string `json:"gid"`
	Target   string `json:"target"`
	Resource struct {
		GID string `json:"gid"`
	} `json:"resource"`
}

// WebhookFilter narrows which events a webhook delivers.
type WebhookFilter struct {
	ResourceType string `json:"resource_type"`
	Action       string `json:"action"`
}
