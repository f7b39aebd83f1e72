// Athenaeum - Institutional Repository Access Control & Submission Workflow
// Copyright 2026 The Athenaeum Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/athenaeum-org/athenaeum

package authorize

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/athenaeum-org/athenaeum/internal/logging"
)

// AuditEvent captures one authorization decision for the audit trail.
type AuditEvent struct {
	// ID is a unique identifier for this audit event.
	ID string `json:"id"`

	// Timestamp is when the decision was made.
	Timestamp time.Time `json:"timestamp"`

	// ActorID is the acting eperson id, or "anonymous".
	ActorID string `json:"actor_id"`

	// ObjectType and ObjectID identify the target object.
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id,omitempty"`

	// Action is the attempted action name.
	Action string `json:"action"`

	// Decision is true when access was allowed.
	Decision bool `json:"decision"`

	// Reason carries the denial message, empty for grants.
	Reason string `json:"reason,omitempty"`

	// Duration is how long the decision took.
	Duration time.Duration `json:"duration_ns"`
}

// AuditLoggerConfig configures decision audit logging.
type AuditLoggerConfig struct {
	// Enabled controls whether audit logging is active.
	Enabled bool

	// LogAllowed controls whether grants are logged. Set false to log
	// denials only and cut log volume.
	LogAllowed bool

	// LogDenied controls whether denials are logged.
	LogDenied bool

	// BufferSize is the async buffer size; events are dropped, never
	// blocked on, when the buffer is full.
	BufferSize int
}

// DefaultAuditLoggerConfig returns production defaults.
func DefaultAuditLoggerConfig() *AuditLoggerConfig {
	return &AuditLoggerConfig{
		Enabled:    true,
		LogAllowed: true,
		LogDenied:  true,
		BufferSize: 1000,
	}
}

// AuditLogger writes authorization decisions to the structured log
// asynchronously, so audit volume never slows a decision.
type AuditLogger struct {
	config   *AuditLoggerConfig
	events   chan *AuditEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAuditLogger creates an audit logger; nil config uses defaults.
func NewAuditLogger(config *AuditLoggerConfig) *AuditLogger {
	if config == nil {
		config = DefaultAuditLoggerConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}

	al := &AuditLogger{
		config:   config,
		events:   make(chan *AuditEvent, config.BufferSize),
		stopChan: make(chan struct{}),
	}
	if config.Enabled {
		al.wg.Add(1)
		go al.processEvents()
	}
	return al
}

// LogDecision queues a decision for logging. Non-blocking; the event is
// dropped with a warning when the buffer is full.
func (al *AuditLogger) LogDecision(event *AuditEvent) {
	if al == nil || !al.config.Enabled {
		return
	}
	if event.Decision && !al.config.LogAllowed {
		return
	}
	if !event.Decision && !al.config.LogDenied {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case al.events <- event:
	default:
		logging.Warn().
			Str("actor_id", event.ActorID).
			Str("action", event.Action).
			Msg("Audit log buffer full, event dropped")
	}
}

func (al *AuditLogger) processEvents() {
	defer al.wg.Done()
	for {
		select {
		case <-al.stopChan:
			al.drainEvents()
			return
		case event := <-al.events:
			al.writeEvent(event)
		}
	}
}

func (al *AuditLogger) drainEvents() {
	for {
		select {
		case event := <-al.events:
			al.writeEvent(event)
		default:
			return
		}
	}
}

func (al *AuditLogger) writeEvent(event *AuditEvent) {
	logEvent := logging.Info()
	msg := "Authorization allowed"
	if !event.Decision {
		// Denials surface as warnings for visibility.
		logEvent = logging.Warn()
		msg = "Authorization denied"
	}

	logEvent = logEvent.
		Str("event_type", "authz_decision").
		Str("audit_id", event.ID).
		Time("audit_timestamp", event.Timestamp).
		Str("actor_id", event.ActorID).
		Str("object_type", event.ObjectType).
		Str("action", event.Action).
		Bool("decision", event.Decision).
		Dur("duration", event.Duration)

	if event.ObjectID != "" {
		logEvent = logEvent.Str("object_id", event.ObjectID)
	}
	if event.Reason != "" {
		logEvent = logEvent.Str("reason", event.Reason)
	}

	logEvent.Msg(msg)
}

// Close stops the audit logger and flushes buffered events.
func (al *AuditLogger) Close() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() {
		close(al.stopChan)
	})
	al.wg.Wait()
}
