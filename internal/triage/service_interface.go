package triage

import (
	"context"
	"time"
)

// ServiceInterface defines the contract for the conversation flow, one method
// per user action the front-end can take.
type ServiceInterface interface {
	StartSession(ctx context.Context) (*SessionView, error)
	GetSession(id string) (*SessionView, error)
	SubmitPhone(ctx context.Context, id, phone string) (*SessionView, error)
	SelectLanguage(ctx context.Context, id, language string) (*SessionView, error)
	SelectProfile(ctx context.Context, id string, req SelectProfileRequest) (*SessionView, error)
	SubmitIntake(ctx context.Context, id string, intake IntakeData) (*SessionView, error)
	SubmitSymptoms(ctx context.Context, id, symptoms string) (*SessionView, error)
	SubmitAnswers(ctx context.Context, id string, answers map[string][]string) (*SessionView, error)
	SaveRecord(ctx context.Context, id string) (*SessionView, error)
	Restart(ctx context.Context, id string) (*SessionView, error)
}

// SelectProfileRequest picks between reusing a known profile (FullName set)
// and starting a fresh intake for a new family member (Relationship optional).
type SelectProfileRequest struct {
	FullName     string `json:"full_name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// Conversation is one live exchange with the triage assistant. SendTurn
// submits a single natural-language turn and returns the classified outcome.
type Conversation interface {
	SendTurn(ctx context.Context, text string) (*TurnOutcome, error)
}

// Assistant establishes fresh exchanges with the external triage service.
type Assistant interface {
	StartExchange(ctx context.Context, language string) (Conversation, error)
}

// CommittedRecord is what the record sink reports back after a commit.
type CommittedRecord struct {
	ID        string
	Status    string
	CreatedAt time.Time
}

// RecordSink is the slice of the record store the conversation flow needs:
// committing terminal results and recalling known profiles for a phone
// number.
type RecordSink interface {
	Commit(ctx context.Context, intake IntakeData, report Report) (CommittedRecord, error)
	KnownProfiles(phone string) []IntakeData
}
