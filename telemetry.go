package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// popupEvent is one line of the append-only NDJSON event stream. The stream is
// the side channel for failures that are deliberately not surfaced in the UI
// (store read errors, reference-data degradations).
type popupEvent struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Detail    map[string]string `json:"detail,omitempty"`
}

type eventLogger struct {
	path      string
	sessionID string
	userID    string
	mu        sync.Mutex
}

func newEventLogger(path string) *eventLogger {
	dir := filepath.Dir(path)
	_ = os.MkdirAll(dir, 0o755)
	return &eventLogger{
		path:      path,
		sessionID: newPopupSessionID(),
	}
}

// SetUserID attaches an identity to subsequent events. Cleared on logout.
func (l *eventLogger) SetUserID(userID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.userID = strings.TrimSpace(userID)
	l.mu.Unlock()
}

func (l *eventLogger) Emit(event string, detail map[string]string) {
	if l == nil || strings.TrimSpace(event) == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	evt := popupEvent{
		SessionID: l.sessionID,
		UserID:    l.userID,
		Timestamp: time.Now().UTC(),
		Event:     event,
	}
	if len(detail) > 0 {
		evt.Detail = detail
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	data = append(data, '\n')
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}

// Error records a non-fatal failure on the event stream.
func (l *eventLogger) Error(event string, err error) {
	if err == nil {
		return
	}
	l.Emit(event, map[string]string{"error": err.Error()})
}

func newPopupSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("%x", time.Now().UnixNano())
}
