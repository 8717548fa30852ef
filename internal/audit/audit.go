// Package audit provides structured event logging for bee node lifecycle
// events. Events are stored as JSON Lines (JSONL) files, one per node.
package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/system"
)

// EventType classifies a lifecycle event.
type EventType string

const (
	EventCreate        EventType = "create"
	EventStart         EventType = "start"
	EventStop          EventType = "stop"
	EventRecreate      EventType = "recreate"
	EventDeleteRequest EventType = "delete-request"
	EventDestroy       EventType = "destroy"
	EventError         EventType = "error"
	EventHealth        EventType = "health"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Node      int       `json:"node"`
	Details   string    `json:"details,omitempty"`
}

// Logger writes and reads audit events for nodes.
// Events are stored in {dir}/node_XX.events.jsonl. A Logger with an empty
// dir (or a nil Logger) discards events.
type Logger struct {
	dir string
	fs  system.FileSystem
	mu  sync.Mutex
}

// NewLogger creates a new audit logger rooted at dir.
func NewLogger(dir string, fsys system.FileSystem) *Logger {
	if fsys == nil {
		fsys = system.DefaultFS()
	}
	return &Logger{dir: dir, fs: fsys}
}

// Enabled reports whether events are persisted.
func (l *Logger) Enabled() bool {
	return l != nil && l.dir != ""
}

func (l *Logger) eventPath(id int) string {
	return filepath.Join(l.dir, node.ContainerName(id)+".events.jsonl")
}

// Log appends an event to the node's audit log.
func (l *Logger) Log(event Event) error {
	if !l.Enabled() {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.fs.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}
	if err := l.fs.AppendFile(l.eventPath(event.Node), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, id int, details string) error {
	return l.Log(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Node:      id,
		Details:   details,
	})
}

// Events reads all events for a node in chronological order.
func (l *Logger) Events(id int) ([]Event, error) {
	if !l.Enabled() {
		return nil, nil
	}

	data, err := l.fs.ReadFile(l.eventPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	var events []Event
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}
