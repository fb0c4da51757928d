package application

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Notifier reports user-facing outcomes of surface operations: load failures,
// rejected saves, transport errors and completed saves.
type Notifier interface {
	Notify(surface string, level slog.Level, msg string)
}

type slogNotifier struct{}

func (slogNotifier) Notify(surface string, level slog.Level, msg string) {
	slog.Log(context.Background(), level, msg, "surface", surface)
}

// Message is one notification kept by a MessageLog.
type Message struct {
	Surface string    `json:"surface"`
	Level   string    `json:"level"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// MessageLog is a Notifier that keeps the most recent messages of each
// surface for hosts that poll for them. Every message is also logged.
type MessageLog struct {
	mu       sync.Mutex
	limit    int
	messages map[string][]Message
}

// NewMessageLog creates a MessageLog keeping up to limit messages per surface.
func NewMessageLog(limit int) *MessageLog {
	if limit <= 0 {
		limit = 1
	}
	return &MessageLog{
		limit:    limit,
		messages: make(map[string][]Message),
	}
}

// Notify records a message and logs it.
func (l *MessageLog) Notify(surface string, level slog.Level, msg string) {
	slogNotifier{}.Notify(surface, level, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := append(l.messages[surface], Message{
		Surface: surface,
		Level:   level.String(),
		Text:    msg,
		At:      time.Now().UTC(),
	})
	if len(kept) > l.limit {
		kept = kept[len(kept)-l.limit:]
	}
	l.messages[surface] = kept
}

// Messages returns the retained messages of a surface, oldest first.
func (l *MessageLog) Messages(surface string) []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Message, len(l.messages[surface]))
	copy(out, l.messages[surface])
	return out
}

// Forget drops the messages of a surface.
func (l *MessageLog) Forget(surface string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.messages, surface)
}
