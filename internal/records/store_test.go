package records

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jcjuneja-hospital/triage-service/internal/triage"
)

// fakeKV is an in-memory KV with scriptable failures
type fakeKV struct {
	docs     map[string][]byte
	loadErr  error
	saveErr  error
	saves    int
	lastSave []byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{docs: make(map[string][]byte)}
}

func (f *fakeKV) Load(ctx context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.docs[key], nil
}

func (f *fakeKV) Save(ctx context.Context, key string, value []byte) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.docs[key] = value
	f.lastSave = value
	return nil
}

func stableReport() triage.Report {
	return triage.Report{
		SymptomSummary:        "Mild seasonal cold",
		RecommendedDepartment: "General Medicine",
	}
}

func intakeFor(name, phone string) triage.IntakeData {
	return triage.IntakeData{FullName: name, PhoneNumber: phone, CurrentSymptoms: "cough"}
}

// TestDeriveStatus tests the urgency classification rules
func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name   string
		report triage.Report
		want   Status
	}{
		{
			"red flags win",
			triage.Report{
				RedFlags: []string{"chest pain at rest"},
				ProbableConditions: []triage.ProbableCondition{
					{Name: "GERD", Probability: triage.ProbabilityLow},
				},
			},
			StatusCritical,
		},
		{
			"high probability without red flags",
			triage.Report{
				ProbableConditions: []triage.ProbableCondition{
					{Name: "Viral URI", Probability: triage.ProbabilityHigh},
				},
			},
			StatusUrgent,
		},
		{
			"moderate and low only",
			triage.Report{
				ProbableConditions: []triage.ProbableCondition{
					{Name: "Tension headache", Probability: triage.ProbabilityModerate},
					{Name: "Migraine", Probability: triage.ProbabilityLow},
				},
			},
			StatusStable,
		},
		{"empty report", triage.Report{}, StatusStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.report); got != tt.want {
				t.Errorf("DeriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestNewPatientRecord tests record construction
func TestNewPatientRecord(t *testing.T) {
	record := NewPatientRecord(intakeFor("Asha Verma", "9876543210"), stableReport())

	if !strings.HasPrefix(record.ID, "JCJH-") {
		t.Errorf("Expected id with JCJH- prefix, got '%s'", record.ID)
	}
	if record.Status != StatusStable {
		t.Errorf("Expected status '%s', got '%s'", StatusStable, record.Status)
	}
	if record.Timestamp.IsZero() {
		t.Error("Expected a creation timestamp")
	}
}

// TestStoreAppend_MostRecentFirst tests insertion order
func TestStoreAppend_MostRecentFirst(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	first := NewPatientRecord(intakeFor("First", "1111111111"), stableReport())
	second := NewPatientRecord(intakeFor("Second", "2222222222"), stableReport())
	store.Append(ctx, first)
	store.Append(ctx, second)

	all := store.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(all))
	}
	if all[0].Intake.FullName != "Second" || all[1].Intake.FullName != "First" {
		t.Errorf("Expected most-recent-first order, got %s then %s",
			all[0].Intake.FullName, all[1].Intake.FullName)
	}
}

// TestStoreAppend_PersistsWholesale tests that every append rewrites the document
func TestStoreAppend_PersistsWholesale(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)
	ctx := context.Background()

	store.Append(ctx, NewPatientRecord(intakeFor("First", "1111111111"), stableReport()))
	store.Append(ctx, NewPatientRecord(intakeFor("Second", "2222222222"), stableReport()))

	if kv.saves != 2 {
		t.Errorf("Expected 2 persists, got %d", kv.saves)
	}
	if len(kv.lastSave) == 0 {
		t.Fatal("Expected a persisted document")
	}
	// Wholesale rewrite: the final document holds both records.
	if !strings.Contains(string(kv.lastSave), "First") || !strings.Contains(string(kv.lastSave), "Second") {
		t.Error("Expected the full history in the persisted document")
	}
}

// TestStoreAppend_SurvivesSaveFailure tests that storage outages never fail an append
func TestStoreAppend_SurvivesSaveFailure(t *testing.T) {
	kv := newFakeKV()
	kv.saveErr = errors.New("connection reset")
	store := NewStore(kv)

	err := store.Append(context.Background(), NewPatientRecord(intakeFor("Asha", "9876543210"), stableReport()))

	if err != nil {
		t.Fatalf("Expected append to succeed despite save failure, got: %v", err)
	}
	if len(store.All()) != 1 {
		t.Error("Expected the in-memory list to remain authoritative")
	}
}

// TestStoreLoad_RoundTrip tests startup recovery of a persisted history
func TestStoreLoad_RoundTrip(t *testing.T) {
	kv := newFakeKV()
	ctx := context.Background()

	writer := NewStore(kv)
	writer.Append(ctx, NewPatientRecord(intakeFor("Asha Verma", "9876543210"), stableReport()))
	writer.Append(ctx, NewPatientRecord(intakeFor("Ravi Verma", "9876543210"), stableReport()))

	reader := NewStore(kv)
	if err := reader.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	all := reader.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 recovered records, got %d", len(all))
	}
	if all[0].Intake.FullName != "Ravi Verma" {
		t.Errorf("Expected order preserved across restart, got '%s' first", all[0].Intake.FullName)
	}
}

// TestStoreLoad_EmptyAndMissing tests startup with no prior history
func TestStoreLoad_EmptyAndMissing(t *testing.T) {
	store := NewStore(newFakeKV())

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Expected no error for a missing document, got: %v", err)
	}
	if len(store.All()) != 0 {
		t.Error("Expected an empty history")
	}
}

// TestStoreFilterByPhone tests exact matching after trimming
func TestStoreFilterByPhone(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	store.Append(ctx, NewPatientRecord(intakeFor("Asha", "9876543210"), stableReport()))
	store.Append(ctx, NewPatientRecord(intakeFor("Ravi", "1234567890"), stableReport()))
	store.Append(ctx, NewPatientRecord(intakeFor("Asha again", "9876543210"), stableReport()))

	tests := []struct {
		name  string
		phone string
		want  int
	}{
		{"exact match", "9876543210", 2},
		{"trimmed match", "  9876543210  ", 2},
		{"no match", "0000000000", 0},
		{"partial is not a match", "98765", 0},
		{"formatted variant is not a match", "+919876543210", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.FilterByPhone(tt.phone); len(got) != tt.want {
				t.Errorf("FilterByPhone(%q) returned %d records, want %d", tt.phone, len(got), tt.want)
			}
		})
	}
}

// TestStoreGet tests lookup by id
func TestStoreGet(t *testing.T) {
	store := NewStore(nil)
	record := NewPatientRecord(intakeFor("Asha", "9876543210"), stableReport())
	store.Append(context.Background(), record)

	got, ok := store.Get(record.ID)
	if !ok {
		t.Fatal("Expected record to be found")
	}
	if got.ID != record.ID {
		t.Errorf("Expected record '%s', got '%s'", record.ID, got.ID)
	}

	if _, ok := store.Get("JCJH-missing"); ok {
		t.Error("Expected missing id to report not found")
	}
}

// TestStoreCommit tests the sink contract used by the conversation flow
func TestStoreCommit(t *testing.T) {
	store := NewStore(nil)

	committed, err := store.Commit(context.Background(),
		intakeFor("Asha", "9876543210"),
		triage.Report{
			SymptomSummary:        "s",
			RecommendedDepartment: "ENT",
			RedFlags:              []string{"stridor"},
		})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if committed.Status != string(StatusCritical) {
		t.Errorf("Expected status '%s', got '%s'", StatusCritical, committed.Status)
	}
	if len(store.All()) != 1 {
		t.Error("Expected the committed record in the history")
	}
}

// TestKnownProfiles tests deduplication by name, most recent first
func TestKnownProfiles(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	older := intakeFor("Asha Verma", "9876543210")
	older.Age = "33"
	store.Append(ctx, NewPatientRecord(older, stableReport()))
	store.Append(ctx, NewPatientRecord(intakeFor("Ravi Verma", "9876543210"), stableReport()))
	newer := intakeFor("ASHA VERMA", "9876543210")
	newer.Age = "34"
	store.Append(ctx, NewPatientRecord(newer, stableReport()))

	profiles := store.KnownProfiles("9876543210")

	if len(profiles) != 2 {
		t.Fatalf("Expected 2 distinct profiles, got %d", len(profiles))
	}
	if profiles[0].Age != "34" {
		t.Errorf("Expected the most recent intake per name, got age '%s'", profiles[0].Age)
	}
	if store.KnownProfiles("0000000000") != nil {
		t.Error("Expected no profiles for an unknown phone")
	}
}
