package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jcjuneja-hospital/triage-service/internal/triage"
)

// StorageKey is the single document key holding the record history.
const StorageKey = "patient_records"

// Store owns the committed patient records for the process lifetime. The
// in-memory list is authoritative and ordered most-recent-first; every
// mutation is persisted synchronously and wholesale to the KV, and a failed
// write is logged rather than surfaced, so a storage outage never blocks the
// patient flow.
type Store struct {
	mu      sync.RWMutex
	records []PatientRecord
	kv      KV
}

// NewStore creates a store backed by kv. A nil kv runs memory-only, which is
// the degraded mode used when the database is unreachable at boot.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads the persisted history into memory. Called once at startup; a
// missing or unreadable document starts with an empty history.
func (s *Store) Load(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	raw, err := s.kv.Load(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("failed to load record history: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	var records []PatientRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("failed to decode record history: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// Append adds a record to the front of the history and persists the whole
// list. Persistence failures are logged and swallowed.
func (s *Store) Append(ctx context.Context, record PatientRecord) error {
	s.mu.Lock()
	s.records = append([]PatientRecord{record}, s.records...)
	snapshot := make([]PatientRecord, len(s.records))
	copy(snapshot, s.records)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// All returns a snapshot of the history, most-recent-first.
func (s *Store) All() []PatientRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PatientRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns a single record by id.
func (s *Store) Get(id string) (*PatientRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, true
		}
	}
	return nil, false
}

// FilterByPhone returns the records whose intake phone equals phone exactly,
// after trimming whitespace. No further normalization is applied.
func (s *Store) FilterByPhone(phone string) []PatientRecord {
	phone = strings.TrimSpace(phone)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PatientRecord
	for _, r := range s.records {
		if r.Intake.PhoneNumber == phone {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) persist(ctx context.Context, snapshot []PatientRecord) {
	if s.kv == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("[ERROR] failed to serialize record history: %v", err)
		return
	}
	if err := s.kv.Save(ctx, StorageKey, raw); err != nil {
		log.Printf("[ERROR] failed to persist record history (in-memory list remains authoritative): %v", err)
	}
}

// Commit implements the triage.RecordSink contract: build the immutable
// record and append it.
func (s *Store) Commit(ctx context.Context, intake triage.IntakeData, report triage.Report) (triage.CommittedRecord, error) {
	record := NewPatientRecord(intake, report)
	if err := s.Append(ctx, record); err != nil {
		return triage.CommittedRecord{}, err
	}
	return triage.CommittedRecord{
		ID:        record.ID,
		Status:    string(record.Status),
		CreatedAt: record.Timestamp,
	}, nil
}

// KnownProfiles returns one intake per distinct patient name seen under this
// phone number, most recent first. Used to offer quick intake to returning
// patients.
func (s *Store) KnownProfiles(phone string) []triage.IntakeData {
	seen := make(map[string]struct{})
	var profiles []triage.IntakeData
	for _, r := range s.FilterByPhone(phone) {
		key := strings.ToLower(r.Intake.FullName)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		profiles = append(profiles, r.Intake)
	}
	return profiles
}

// Ensure Store satisfies the conversation flow's sink contract.
var _ triage.RecordSink = (*Store)(nil)
