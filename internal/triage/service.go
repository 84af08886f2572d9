package triage

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jcjuneja-hospital/triage-service/internal/messaging"
	"github.com/jcjuneja-hospital/triage-service/internal/telemetry"
)

// DefaultMinPhoneDigits is the operator policy for the identification gate.
const DefaultMinPhoneDigits = 10

// Service owns the session registry and drives each session through the
// conversation flow: it calls the assistant, classifies outcomes into
// transitions, and commits terminal reports to the record sink.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	assistant Assistant
	records   RecordSink
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics

	// MinPhoneDigits is the minimum digit count accepted at identification.
	MinPhoneDigits int
}

var _ ServiceInterface = (*Service)(nil)

// NewService constructs the conversation service. publisher and metrics may
// be nil; the flow works without them.
func NewService(assistant Assistant, records RecordSink, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{
		sessions:       make(map[string]*Session),
		assistant:      assistant,
		records:        records,
		publisher:      publisher,
		metrics:        metrics,
		MinPhoneDigits: DefaultMinPhoneDigits,
	}
}

// StartSession creates a new session in the identification state.
func (s *Service) StartSession(ctx context.Context) (*SessionView, error) {
	sess := NewSession()

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSessionStarted(ctx)
	}
	s.publish(ctx, messaging.EventSessionStarted, messaging.NewSessionStartedEvent(sess.ID))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// GetSession returns a read-only snapshot of a session.
func (s *Service) GetSession(id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	v := sess.view()
	if sess.state == StateProfileSelection {
		v.Profiles = s.records.KnownProfiles(sess.phone)
	}
	return v, nil
}

// SubmitPhone validates the patient's phone number and advances to language
// selection. Only digit filtering and a minimum length are applied; anything
// stricter is the front-end's problem.
func (s *Service) SubmitPhone(ctx context.Context, id, phone string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	digits := NormalizePhone(phone)
	if len(digits) < s.MinPhoneDigits {
		return nil, ErrInvalidPhone
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.analyzing() {
		return nil, ErrAnalysisInProgress
	}
	if sess.state != StateIdentification {
		return nil, ErrInvalidTransition
	}
	sess.phone = digits
	sess.state = StateLanguageSelection
	return sess.view(), nil
}

// SelectLanguage records the patient's language and advances to profile
// selection.
func (s *Service) SelectLanguage(ctx context.Context, id, language string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if language == "" {
		return nil, ErrMissingLanguage
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.analyzing() {
		return nil, ErrAnalysisInProgress
	}
	if sess.state != StateLanguageSelection {
		return nil, ErrInvalidTransition
	}
	sess.language = language
	sess.state = StateProfileSelection
	v := sess.view()
	v.Profiles = s.records.KnownProfiles(sess.phone)
	return v, nil
}

// SelectProfile branches the flow: reusing a known profile prefills the
// intake (demographics kept, symptoms cleared) and enters quick intake;
// otherwise a fresh intake form is started, optionally carrying the
// relationship label for the new family member.
func (s *Service) SelectProfile(ctx context.Context, id string, req SelectProfileRequest) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.analyzing() {
		return nil, ErrAnalysisInProgress
	}
	if sess.state != StateProfileSelection {
		return nil, ErrInvalidTransition
	}

	if req.FullName == "" {
		sess.intake = &IntakeData{
			PhoneNumber:  sess.phone,
			Relationship: req.Relationship,
		}
		sess.state = StateIntake
		return sess.view(), nil
	}

	profile, ok := s.findProfile(sess.phone, req.FullName)
	if !ok {
		return nil, ErrProfileNotFound
	}
	profile.PhoneNumber = sess.phone
	profile.CurrentSymptoms = ""
	sess.intake = &profile
	sess.state = StateQuickIntake
	return sess.view(), nil
}

// SubmitIntake accepts a full intake form and runs the initial assessment.
// It is allowed from quick intake as well, which is how a returning patient
// edits a prefilled profile.
func (s *Service) SubmitIntake(ctx context.Context, id string, intake IntakeData) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if intake.CurrentSymptoms == "" {
		return nil, ErrMissingSymptoms
	}

	sess.mu.Lock()
	if sess.analyzing() {
		sess.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	if sess.state != StateIntake && sess.state != StateQuickIntake {
		sess.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	intake.PhoneNumber = sess.phone
	sess.intake = &intake
	sess.state = StateAnalyzingIntake
	sess.mu.Unlock()

	return s.runTurn(ctx, sess, IntakePrompt(intake))
}

// SubmitSymptoms is the quick-intake submission: the reused profile plus
// today's symptoms.
func (s *Service) SubmitSymptoms(ctx context.Context, id, symptoms string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if symptoms == "" {
		return nil, ErrMissingSymptoms
	}

	sess.mu.Lock()
	if sess.analyzing() {
		sess.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	if sess.state != StateQuickIntake || sess.intake == nil {
		sess.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	sess.intake.CurrentSymptoms = symptoms
	sess.intake.PhoneNumber = sess.phone
	intake := *sess.intake
	sess.state = StateAnalyzingIntake
	sess.mu.Unlock()

	return s.runTurn(ctx, sess, IntakePrompt(intake))
}

// SubmitAnswers validates that every pending question has at least one known
// selected option, then runs the follow-up round.
func (s *Service) SubmitAnswers(ctx context.Context, id string, answers map[string][]string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.analyzing() {
		sess.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	if sess.state != StateClarifying {
		sess.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	questions := sess.pending
	if err := validateAnswers(questions, answers); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.state = StateAnalyzingFollowUp
	sess.mu.Unlock()

	return s.runTurn(ctx, sess, AnswersPrompt(questions, answers))
}

// SaveRecord is the manual save action on the results screen. Committing is
// at-most-once per session; repeated saves are no-ops.
func (s *Service) SaveRecord(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state != StateResults || sess.report == nil {
		return nil, ErrNotTerminal
	}
	s.commitLocked(ctx, sess)
	return sess.view(), nil
}

// Restart discards all session-scoped state, drops the assistant exchange,
// and returns to identification. Committed history is unaffected.
func (s *Service) Restart(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.analyzing() {
		return nil, ErrAnalysisInProgress
	}
	sess.reset()
	return sess.view(), nil
}

// runTurn performs one assistant round trip for a session already moved into
// an analyzing state. The session mutex is released for the duration of the
// external call; concurrent submissions are rejected by the analyzing guard.
func (s *Service) runTurn(ctx context.Context, sess *Session, text string) (*SessionView, error) {
	sess.mu.Lock()
	conv := sess.conv
	language := sess.language
	sess.mu.Unlock()

	var err error
	if conv == nil {
		conv, err = s.assistant.StartExchange(ctx, language)
		if err != nil {
			return s.failTurn(ctx, sess, err)
		}
		sess.mu.Lock()
		sess.conv = conv
		sess.mu.Unlock()
	}

	start := time.Now()
	outcome, err := conv.SendTurn(ctx, text)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordTriageTurn(ctx, "error", elapsed)
		}
		return s.failTurn(ctx, sess, err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if outcome.Questions != nil {
		if s.metrics != nil {
			s.metrics.RecordTriageTurn(ctx, "clarifying", elapsed)
		}
		sess.pending = outcome.Questions.Questions
		sess.summary = outcome.Questions.SymptomSummary
		sess.state = StateClarifying
		return sess.view(), nil
	}

	if s.metrics != nil {
		s.metrics.RecordTriageTurn(ctx, "terminal", elapsed)
	}
	sess.pending = nil
	sess.summary = outcome.Report.SymptomSummary
	sess.report = outcome.Report
	sess.state = StateResults
	s.commitLocked(ctx, sess)
	return sess.view(), nil
}

// failTurn moves the session into the error state with a user-facing message.
// The transition itself succeeds, so no error is returned to the handler.
func (s *Service) failTurn(ctx context.Context, sess *Session, cause error) (*SessionView, error) {
	log.Printf("[ERROR] triage turn failed for session %s: %v", sess.ID, cause)
	s.publish(ctx, messaging.EventTriageFailed, messaging.NewTriageFailedEvent(sess.ID, cause.Error()))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.fail(cause.Error())
	return sess.view(), nil
}

// commitLocked appends a patient record for the session's terminal report.
// Guarded by the saved flag so duplicate submissions of the same result can
// never create a second record. Must be called with sess.mu held.
func (s *Service) commitLocked(ctx context.Context, sess *Session) {
	if sess.saved || sess.report == nil || sess.intake == nil {
		return
	}
	intake := *sess.intake
	intake.PhoneNumber = sess.phone

	rec, err := s.records.Commit(ctx, intake, *sess.report)
	if err != nil {
		// The store keeps the in-memory list authoritative; a commit error
		// here means the record could not be constructed at all.
		log.Printf("[ERROR] failed to commit record for session %s: %v", sess.ID, err)
		return
	}
	sess.saved = true

	if s.metrics != nil {
		s.metrics.RecordCommitted(ctx, rec.Status)
	}
	s.publish(ctx, messaging.EventRecordCreated, messaging.NewRecordCreatedEvent(
		rec.ID, sess.ID, intake.PhoneNumber, rec.Status, sess.report.RecommendedDepartment, rec.CreatedAt,
	))
}

func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

func (s *Service) lookup(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// findProfile recalls the most recent intake for a given patient name under
// the phone number, matching case-insensitively the way the profile list is
// deduplicated.
func (s *Service) findProfile(phone, fullName string) (IntakeData, bool) {
	for _, p := range s.records.KnownProfiles(phone) {
		if strings.EqualFold(p.FullName, fullName) {
			return p, true
		}
	}
	return IntakeData{}, false
}

// validateAnswers enforces the form-completeness gate: every declared
// question answered with at least one option, and every selection must map
// to a declared option id.
func validateAnswers(questions []Question, answers map[string][]string) error {
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for qid, selected := range answers {
		q, ok := byID[qid]
		if !ok {
			return ErrUnknownOption
		}
		for _, opt := range selected {
			if _, ok := q.Options[opt]; !ok {
				return ErrUnknownOption
			}
		}
	}
	for _, q := range questions {
		if len(answers[q.ID]) == 0 {
			return ErrIncompleteAnswers
		}
	}
	return nil
}
