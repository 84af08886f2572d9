package records

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func sampleRecords(n int) []PatientRecord {
	out := make([]PatientRecord, n)
	for i := range out {
		out[i] = NewPatientRecord(
			intakeFor(fmt.Sprintf("Patient %d", i), "9876543210"),
			stableReport(),
		)
	}
	return out
}

// TestHandlerListRecords_Success tests the default listing
func TestHandlerListRecords_Success(t *testing.T) {
	store := NewStore(nil)
	for _, r := range sampleRecords(3) {
		store.Append(context.Background(), r)
	}
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/portal/records", nil)
	rec := httptest.NewRecorder()

	handler.ListRecords(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response RecordListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if !response.Success {
		t.Error("Expected success to be true")
	}
	if len(response.Records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(response.Records))
	}
	if response.Meta.TotalRecords != 3 {
		t.Errorf("Expected total 3, got %d", response.Meta.TotalRecords)
	}
}

// TestHandlerListRecords_Paginated tests page slicing and metadata
func TestHandlerListRecords_Paginated(t *testing.T) {
	store := NewStore(nil)
	for _, r := range sampleRecords(5) {
		store.Append(context.Background(), r)
	}
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/portal/records?page=2&limit=2", nil)
	rec := httptest.NewRecorder()

	handler.ListRecords(rec, req)

	var response RecordListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Records) != 2 {
		t.Errorf("Expected 2 records on page 2, got %d", len(response.Records))
	}
	if response.Meta.CurrentPage != 2 || response.Meta.TotalPages != 3 {
		t.Errorf("Expected page 2 of 3, got %d of %d", response.Meta.CurrentPage, response.Meta.TotalPages)
	}
	if !response.Meta.HasNext || !response.Meta.HasPrevious {
		t.Error("Expected both has_next and has_previous on the middle page")
	}
}

// TestHandlerListRecords_PastEnd tests a page beyond the history
func TestHandlerListRecords_PastEnd(t *testing.T) {
	store := NewStore(nil)
	for _, r := range sampleRecords(2) {
		store.Append(context.Background(), r)
	}
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/portal/records?page=9&limit=10", nil)
	rec := httptest.NewRecorder()

	handler.ListRecords(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response RecordListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Records) != 0 {
		t.Errorf("Expected an empty page, got %d records", len(response.Records))
	}
}

// TestHandlerListRecords_PhoneFilter tests the exact phone filter
func TestHandlerListRecords_PhoneFilter(t *testing.T) {
	store := NewStore(nil)
	store.Append(context.Background(), NewPatientRecord(intakeFor("Asha", "9876543210"), stableReport()))
	store.Append(context.Background(), NewPatientRecord(intakeFor("Ravi", "1234567890"), stableReport()))
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/portal/records?phone=9876543210", nil)
	rec := httptest.NewRecorder()

	handler.ListRecords(rec, req)

	var response RecordListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Records) != 1 {
		t.Fatalf("Expected 1 filtered record, got %d", len(response.Records))
	}
	if response.Records[0].Intake.FullName != "Asha" {
		t.Errorf("Expected Asha's record, got '%s'", response.Records[0].Intake.FullName)
	}
}

// TestHandlerGetRecord_Success tests lookup by id
func TestHandlerGetRecord_Success(t *testing.T) {
	store := NewStore(nil)
	record := NewPatientRecord(intakeFor("Asha", "9876543210"), stableReport())
	store.Append(context.Background(), record)
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/portal/records/"+record.ID, nil)
	req = mux.SetURLVars(req, map[string]string{"id": record.ID})
	rec := httptest.NewRecorder()

	handler.GetRecord(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response RecordResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Record == nil || response.Record.ID != record.ID {
		t.Errorf("Expected record '%s', got %+v", record.ID, response.Record)
	}
}

// TestHandlerGetRecord_NotFound tests the 404 response
func TestHandlerGetRecord_NotFound(t *testing.T) {
	handler := NewHandler(NewStore(nil))

	req := httptest.NewRequest(http.MethodGet, "/portal/records/JCJH-missing", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "JCJH-missing"})
	rec := httptest.NewRecorder()

	handler.GetRecord(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}

	var response map[string]string
	json.NewDecoder(rec.Body).Decode(&response)

	if response["error"] != "record_not_found" {
		t.Errorf("Expected error 'record_not_found', got '%s'", response["error"])
	}
}
