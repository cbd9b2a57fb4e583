package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action types for audit events
type Action string

const (
	ActionScan     Action = "scan"
	ActionCompute  Action = "compute"
	ActionAllocate Action = "allocate"
	ActionGroup    Action = "group"
	ActionExclude  Action = "exclude"
	ActionClear    Action = "clear"
)

// ResourceType represents the type of resource an event refers to
type ResourceType string

const (
	ResourceComponent  ResourceType = "component"
	ResourceGroup      ResourceType = "group"
	ResourceIdentifier ResourceType = "identifier"
	ResourceReport     ResourceType = "report"
	ResourceState      ResourceType = "state"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Event represents a single audit log entry
type Event struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	RunID        string         `json:"run_id,omitempty"`
	Action       Action         `json:"action"`
	ResourceType ResourceType   `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Status       Status         `json:"status"`
	Reason       string         `json:"reason,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Filter represents filtering criteria for audit events
type Filter struct {
	RunID        string // Filter by run (empty = all runs)
	Action       Action
	ResourceType ResourceType
	ResourceID   string
	Status       Status
	Reason       string
	StartTime    *time.Time
	EndTime      *time.Time
}

// Logger is the interface for audit logging implementations.
type Logger interface {
	// Log records an audit event
	Log(event *Event) error

	// GetEventCount returns the number of events logged
	GetEventCount() int64
}

// AuditLogger manages audit log events with a circular buffer
type AuditLogger struct {
	events     []*Event
	bufferSize int
	index      int
	count      int
	mu         sync.RWMutex
}

// NewAuditLogger creates a new audit logger with specified buffer size
func NewAuditLogger(bufferSize int) *AuditLogger {
	return &AuditLogger{
		events:     make([]*Event, bufferSize),
		bufferSize: bufferSize,
		index:      0,
		count:      0,
	}
}

// Log records an audit event
func (l *AuditLogger) Log(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Set timestamp and ID if not set
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	// Store in circular buffer
	l.events[l.index] = event
	l.index = (l.index + 1) % l.bufferSize

	// Track total count (up to buffer size)
	if l.count < l.bufferSize {
		l.count++
	}

	return nil
}

// GetEvents retrieves audit events with optional filtering
func (l *AuditLogger) GetEvents(filter *Filter) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Event, 0, l.count)

	for i := 0; i < l.count; i++ {
		// Calculate the actual index in the circular buffer
		idx := (l.index - l.count + i + l.bufferSize) % l.bufferSize
		event := l.events[idx]

		if event == nil {
			continue
		}

		if filter != nil {
			if filter.RunID != "" && event.RunID != filter.RunID {
				continue
			}
			if filter.Action != "" && event.Action != filter.Action {
				continue
			}
			if filter.ResourceType != "" && event.ResourceType != filter.ResourceType {
				continue
			}
			if filter.ResourceID != "" && event.ResourceID != filter.ResourceID {
				continue
			}
			if filter.Status != "" && event.Status != filter.Status {
				continue
			}
			if filter.Reason != "" && event.Reason != filter.Reason {
				continue
			}
			if filter.StartTime != nil && event.Timestamp.Before(*filter.StartTime) {
				continue
			}
			if filter.EndTime != nil && event.Timestamp.After(*filter.EndTime) {
				continue
			}
		}

		result = append(result, event)
	}

	return result
}

// GetRecentEvents returns the N most recent events
func (l *AuditLogger) GetRecentEvents(n int) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > l.count {
		n = l.count
	}

	result := make([]*Event, 0, n)

	for i := 0; i < n; i++ {
		idx := (l.index - 1 - i + l.bufferSize) % l.bufferSize
		if l.events[idx] != nil {
			result = append(result, l.events[idx])
		}
	}

	return result
}

// GetEventCount returns the total number of events currently stored
func (l *AuditLogger) GetEventCount() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(l.count)
}

// Clear removes all events from the logger
func (l *AuditLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = make([]*Event, l.bufferSize)
	l.index = 0
	l.count = 0
}

// NewEvent creates a standard event bound to a run
func NewEvent(runID string, action Action, resourceType ResourceType, resourceID string, status Status) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		RunID:        runID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       status,
	}
}

// NewExclusionEvent creates an event recording a component dropped from
// aggregation, carrying the machine-readable reason code
func NewExclusionEvent(runID, componentID, reason, detail string) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		RunID:        runID,
		Action:       ActionExclude,
		ResourceType: ResourceComponent,
		ResourceID:   componentID,
		Status:       StatusFailure,
		Reason:       reason,
		ErrorMessage: detail,
	}
}

// String returns a human-readable representation of an event
func (e *Event) String() string {
	runStr := e.RunID
	if runStr == "" {
		runStr = "-"
	}
	return fmt.Sprintf("[%s] run=%s %s %s %s (status: %s)",
		e.Timestamp.Format(time.RFC3339),
		runStr,
		e.Action,
		e.ResourceType,
		e.ResourceID,
		e.Status,
	)
}
