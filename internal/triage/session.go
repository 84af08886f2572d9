package triage

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State identifies where a session is in the intake-to-report flow.
type State string

const (
	StateIdle              State = "idle"
	StateIdentification    State = "identification"
	StateLanguageSelection State = "language_selection"
	StateProfileSelection  State = "profile_selection"
	StateIntake            State = "intake"
	StateQuickIntake       State = "quick_intake"
	StateAnalyzingIntake   State = "analyzing_intake"
	StateClarifying        State = "clarifying_questions"
	StateAnalyzingFollowUp State = "analyzing_followup"
	StateResults           State = "results"
	StateError             State = "error"
)

// Session holds all in-progress state for one patient conversation. The
// session owns the intake data and any partial result until a record is
// committed; the record store owns everything after that.
//
// A session serializes its own operations: while an assistant call is
// outstanding the state is one of the analyzing states and every other
// user-driven transition is rejected.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	state    State
	phone    string
	language string
	intake   *IntakeData
	pending  []Question
	summary  string
	report   *Report
	saved    bool
	errMsg   string
	conv     Conversation
}

// NewSession creates a session already past the disclaimer, waiting for the
// patient to identify themselves.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		state:     StateIdentification,
	}
}

// SessionView is the read-only snapshot returned to clients.
type SessionView struct {
	ID             string       `json:"id"`
	State          State        `json:"state"`
	PhoneNumber    string       `json:"phone_number,omitempty"`
	Language       string       `json:"language,omitempty"`
	Intake         *IntakeData  `json:"intake,omitempty"`
	Profiles       []IntakeData `json:"profiles,omitempty"`
	SymptomSummary string       `json:"symptom_summary,omitempty"`
	Questions      []Question   `json:"questions,omitempty"`
	Report         *Report      `json:"report,omitempty"`
	Saved          bool         `json:"saved"`
	Error          string       `json:"error,omitempty"`
}

// view must be called with s.mu held.
func (s *Session) view() *SessionView {
	v := &SessionView{
		ID:             s.ID,
		State:          s.state,
		PhoneNumber:    s.phone,
		Language:       s.language,
		Intake:         s.intake,
		SymptomSummary: s.summary,
		Questions:      s.pending,
		Report:         s.report,
		Saved:          s.saved,
		Error:          s.errMsg,
	}
	return v
}

// fail moves the session to the terminal error state, discarding all
// in-progress clinical context. Partial clinical data must never silently
// survive a failed assessment. Must be called with s.mu held.
func (s *Session) fail(msg string) {
	s.state = StateError
	s.errMsg = msg
	s.intake = nil
	s.pending = nil
	s.summary = ""
	s.report = nil
	s.conv = nil
}

// reset returns the session to identification, clearing everything that is
// session-scoped. The conversation handle is dropped so no prior patient
// context can leak into the next exchange. Must be called with s.mu held.
func (s *Session) reset() {
	s.state = StateIdentification
	s.phone = ""
	s.language = ""
	s.intake = nil
	s.pending = nil
	s.summary = ""
	s.report = nil
	s.saved = false
	s.errMsg = ""
	s.conv = nil
}

// analyzing reports whether an assistant call is outstanding. Must be called
// with s.mu held.
func (s *Session) analyzing() bool {
	return s.state == StateAnalyzingIntake || s.state == StateAnalyzingFollowUp
}

// NormalizePhone strips everything but digits from a raw phone entry.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
