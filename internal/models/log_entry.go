package models

import "time"

// LogEntry is one saved record in the append-only log.
// Entries have no identity beyond their position in the sequence.
type LogEntry struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// LogEvent is published to the message queue after a LogEntry has been saved.
// Used by the gateway producer and the archiver consumer.
type LogEvent struct {
	EventID  string `json:"event_id"`
	Text     string `json:"text"`
	Category string `json:"category"`
	SavedAt  string `json:"saved_at"` // RFC3339Nano
}

// Entry returns the LogEntry carried by the event
func (e *LogEvent) Entry() LogEntry {
	return LogEntry{Text: e.Text, Category: e.Category}
}

// NewLogEvent wraps a saved entry for publishing
func NewLogEvent(id string, entry LogEntry, savedAt time.Time) *LogEvent {
	return &LogEvent{
		EventID:  id,
		Text:     entry.Text,
		Category: entry.Category,
		SavedAt:  savedAt.UTC().Format(time.RFC3339Nano),
	}
}
