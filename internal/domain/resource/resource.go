// Package resource describes the five owned collections as configuration:
// which fields exist, which must be present on create, which may change
// afterwards, and what defaults the server stamps. One generic repository
// consumes these descriptors instead of five copy-pasted ones.
package resource

import "time"

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

type Descriptor struct {
	// Name is the collection name and the URL segment.
	Name string
	// Label is the singular display name used in error and result messages.
	Label string
	// Fields is every client-suppliable field; anything else in a create
	// payload is dropped.
	Fields []string
	// Required reports nil when a create payload satisfies the creation rule.
	Required func(doc map[string]any) error
	// Mutable is the update whitelist. Empty means delete-only.
	Mutable []string
	// Defaults stamps server-side values on a freshly validated create doc.
	Defaults func(doc map[string]any, now time.Time)
}

// The rich-text editor submits this when the note body is visually empty.
const emptyContentSentinel = "<p><br></p>"

var Tasks = Descriptor{
	Name:   "tasks",
	Label:  "Task",
	Fields: []string{"text", "completed", "date"},
	Required: func(doc map[string]any) error {
		if !present(doc, "text") {
			return NewValidationError("Task text required")
		}
		return nil
	},
	Mutable: []string{"text", "completed", "date"},
	Defaults: func(doc map[string]any, now time.Time) {
		doc["completed"] = false
		if !present(doc, "date") {
			doc["date"] = now.Format(time.RFC3339)
		}
	},
}

var Reminders = Descriptor{
	Name:     "reminders",
	Label:    "Reminder",
	Fields:   []string{"title", "date", "time", "notified"},
	Required: requireAll("title", "date", "time"),
	Mutable:  []string{"title", "date", "time", "notified"},
	Defaults: func(doc map[string]any, now time.Time) {
		doc["notified"] = false
	},
}

var Notes = Descriptor{
	Name:   "notes",
	Label:  "Note",
	Fields: []string{"title", "content", "attachments"},
	Required: func(doc map[string]any) error {
		if present(doc, "title") || hasContent(doc["content"]) || hasAttachments(doc["attachments"]) {
			return nil
		}
		return NewValidationError("Note must have title, content, or attachment")
	},
	Mutable: []string{"title", "content", "attachments"},
	Defaults: func(doc map[string]any, now time.Time) {
		if _, ok := doc["attachments"]; !ok {
			doc["attachments"] = []any{}
		}
	},
}

var Schedules = Descriptor{
	Name:     "schedules",
	Label:    "Schedule",
	Fields:   []string{"lesson", "date", "time", "notified", "completed"},
	Required: requireAll("lesson", "date", "time"),
	Mutable:  []string{"lesson", "date", "time", "notified", "completed"},
	Defaults: func(doc map[string]any, now time.Time) {
		doc["notified"] = false
		doc["completed"] = false
	},
}

var Notifications = Descriptor{
	Name:   "notifications",
	Label:  "Notification",
	Fields: []string{"title", "description", "source"},
	Required: func(doc map[string]any) error {
		return nil
	},
	// notifications are delete-only once created
	Mutable: nil,
	Defaults: func(doc map[string]any, now time.Time) {
		doc["timestamp"] = now.Format(time.RFC3339)
	},
}

// All lists every descriptor in route-mount order.
func All() []Descriptor {
	return []Descriptor{Tasks, Reminders, Notes, Schedules, Notifications}
}

func requireAll(keys ...string) func(doc map[string]any) error {
	return func(doc map[string]any) error {
		for _, k := range keys {
			if !present(doc, k) {
				return NewValidationError("Missing fields")
			}
		}
		return nil
	}
}

// present mirrors the frontend contract: a field counts as supplied only if
// it is there and, for strings, non-empty.
func present(doc map[string]any, key string) bool {
	v, ok := doc[key]
	if !ok || v == nil {
		return false
	}

	if s, ok := v.(string); ok {
		return s != ""
	}

	return true
}

func hasContent(v any) bool {
	s, ok := v.(string)

	return ok && s != "" && s != emptyContentSentinel
}

func hasAttachments(v any) bool {
	list, ok := v.([]any)

	return ok && len(list) > 0
}
