package messaging

import (
	"fmt"
	"time"
)

// Event routing keys as constants
const (
	EventSessionStarted = "session.started"
	EventRecordCreated  = "record.created"
	EventTriageFailed   = "triage.failed"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// SessionStartedEvent signals that a patient began the intake flow.
type SessionStartedEvent struct {
	BaseEvent
	Data SessionStartedData `json:"data"`
}

type SessionStartedData struct {
	SessionID string `json:"session_id"`
}

// RecordCreatedEvent signals that a terminal triage report was committed as
// a patient record. Downstream consumers (bed management, staff paging) key
// off the status.
type RecordCreatedEvent struct {
	BaseEvent
	Data RecordCreatedData `json:"data"`
}

type RecordCreatedData struct {
	RecordID    string    `json:"record_id"`
	SessionID   string    `json:"session_id"`
	PhoneNumber string    `json:"phone_number"`
	Status      string    `json:"status"`
	Department  string    `json:"department"`
	CreatedAt   time.Time `json:"created_at"`
}

// TriageFailedEvent signals that an assessment ended in the error state.
type TriageFailedEvent struct {
	BaseEvent
	Data TriageFailedData `json:"data"`
}

type TriageFailedData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     fmt.Sprintf("%d", time.Now().UnixNano()),
		Timestamp:   time.Now().UTC(), // Explicitly set to UTC
		ServiceName: "triage-service",
	}
}

func NewSessionStartedEvent(sessionID string) SessionStartedEvent {
	return SessionStartedEvent{
		BaseEvent: NewBaseEvent(EventSessionStarted),
		Data:      SessionStartedData{SessionID: sessionID},
	}
}

func NewRecordCreatedEvent(recordID, sessionID, phone, status, department string, createdAt time.Time) RecordCreatedEvent {
	return RecordCreatedEvent{
		BaseEvent: NewBaseEvent(EventRecordCreated),
		Data: RecordCreatedData{
			RecordID:    recordID,
			SessionID:   sessionID,
			PhoneNumber: phone,
			Status:      status,
			Department:  department,
			CreatedAt:   createdAt,
		},
	}
}

func NewTriageFailedEvent(sessionID, reason string) TriageFailedEvent {
	return TriageFailedEvent{
		BaseEvent: NewBaseEvent(EventTriageFailed),
		Data:      TriageFailedData{SessionID: sessionID, Reason: reason},
	}
}
