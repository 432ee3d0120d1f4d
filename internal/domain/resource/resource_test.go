package resource

import (
	"testing"
	"time"
)

func TestTaskRequired(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		wantErr bool
	}{
		{name: "text_present", doc: map[string]any{"text": "buy milk"}, wantErr: false},
		{name: "text_missing", doc: map[string]any{}, wantErr: true},
		{name: "text_empty", doc: map[string]any{"text": ""}, wantErr: true},
		{name: "text_nil", doc: map[string]any{"text": nil}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Tasks.Required(tt.doc)

			if (err != nil) != tt.wantErr {
				t.Fatalf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestReminderRequired(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		wantErr bool
	}{
		{name: "all_present", doc: map[string]any{"title": "call", "date": "2026-09-01", "time": "10:00"}, wantErr: false},
		{name: "missing_time", doc: map[string]any{"title": "call", "date": "2026-09-01"}, wantErr: true},
		{name: "empty_title", doc: map[string]any{"title": "", "date": "2026-09-01", "time": "10:00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Reminders.Required(tt.doc)

			if (err != nil) != tt.wantErr {
				t.Fatalf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestNoteRequiredDisjunction(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		wantErr bool
	}{
		{name: "all_empty", doc: map[string]any{"title": nil, "content": nil, "attachments": []any{}}, wantErr: true},
		{name: "editor_sentinel_counts_as_empty", doc: map[string]any{"content": "<p><br></p>"}, wantErr: true},
		{name: "title_only", doc: map[string]any{"title": "shopping"}, wantErr: false},
		{name: "content_only", doc: map[string]any{"content": "<p>hello</p>"}, wantErr: false},
		{name: "attachment_only", doc: map[string]any{"attachments": []any{"x"}}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Notes.Required(tt.doc)

			if (err != nil) != tt.wantErr {
				t.Fatalf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestNotificationRequiredIsNever(t *testing.T) {
	if err := Notifications.Required(map[string]any{}); err != nil {
		t.Fatalf("notifications should accept an empty payload, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("task", func(t *testing.T) {
		doc := map[string]any{"text": "buy milk"}
		Tasks.Defaults(doc, now)

		if doc["completed"] != false {
			t.Fatalf("completed default: got %v", doc["completed"])
		}
		if doc["date"] != now.Format(time.RFC3339) {
			t.Fatalf("date default: got %v", doc["date"])
		}
	})

	t.Run("task_keeps_supplied_date", func(t *testing.T) {
		doc := map[string]any{"text": "buy milk", "date": "2026-01-01"}
		Tasks.Defaults(doc, now)

		if doc["date"] != "2026-01-01" {
			t.Fatalf("supplied date overwritten: got %v", doc["date"])
		}
	})

	t.Run("schedule", func(t *testing.T) {
		doc := map[string]any{"lesson": "go"}
		Schedules.Defaults(doc, now)

		if doc["notified"] != false || doc["completed"] != false {
			t.Fatalf("schedule defaults: got notified=%v completed=%v", doc["notified"], doc["completed"])
		}
	})

	t.Run("note_attachments", func(t *testing.T) {
		doc := map[string]any{"title": "shopping"}
		Notes.Defaults(doc, now)

		list, ok := doc["attachments"].([]any)

		if !ok || len(list) != 0 {
			t.Fatalf("attachments default: got %v", doc["attachments"])
		}
	})

	t.Run("notification_timestamp", func(t *testing.T) {
		doc := map[string]any{"title": "reminder due"}
		Notifications.Defaults(doc, now)

		if doc["timestamp"] != now.Format(time.RFC3339) {
			t.Fatalf("timestamp default: got %v", doc["timestamp"])
		}
	})
}

func TestNotificationsHaveNoMutableFields(t *testing.T) {
	if len(Notifications.Mutable) != 0 {
		t.Fatalf("notifications must be delete-only, mutable=%v", Notifications.Mutable)
	}
}
