package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcjuneja-hospital/triage-service/internal/auth"
	"github.com/jcjuneja-hospital/triage-service/internal/records"
	"github.com/jcjuneja-hospital/triage-service/internal/testutil"
	"github.com/jcjuneja-hospital/triage-service/internal/triage"
)

// stubAssistant always resolves the first turn into a terminal report.
type stubAssistant struct{}

func (stubAssistant) StartExchange(ctx context.Context, language string) (triage.Conversation, error) {
	return stubConversation{}, nil
}

type stubConversation struct{}

func (stubConversation) SendTurn(ctx context.Context, text string) (*triage.TurnOutcome, error) {
	return &triage.TurnOutcome{Report: &triage.Report{
		SymptomSummary:        "Fever for two days",
		RecommendedDepartment: "General Medicine",
	}}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *records.Store) {
	t.Helper()

	store := records.NewStore(nil)
	service := triage.NewService(stubAssistant{}, store, nil, nil)
	verifier := testutil.CreateTestVerifier(t)
	return SetupRouter(service, store, verifier, auth.DefaultPermissions(), nil), store
}

func postJSON(t *testing.T, router http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("Failed to encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestRouterHealth tests the public health endpoint
func TestRouterHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

// TestRouterIntakeFlow tests the full conversation over real routes
func TestRouterIntakeFlow(t *testing.T) {
	router, store := newTestRouter(t)

	rec := postJSON(t, router, "/triage/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}
	var created triage.SessionResponse
	json.NewDecoder(rec.Body).Decode(&created)
	id := created.Session.ID

	steps := []struct {
		path    string
		payload interface{}
	}{
		{"/triage/sessions/" + id + "/identify", map[string]string{"phone_number": "9876543210"}},
		{"/triage/sessions/" + id + "/language", map[string]string{"language": "English"}},
		{"/triage/sessions/" + id + "/profile", map[string]string{}},
		{"/triage/sessions/" + id + "/intake", triage.IntakeData{FullName: "Asha Verma", CurrentSymptoms: "Fever"}},
	}

	var last triage.SessionResponse
	for _, step := range steps {
		rec := postJSON(t, router, step.path, step.payload)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s: expected status 200, got %d (%s)", step.path, rec.Code, rec.Body.String())
		}
		json.NewDecoder(rec.Body).Decode(&last)
	}

	if last.Session.State != triage.StateResults {
		t.Errorf("Expected state '%s', got '%s'", triage.StateResults, last.Session.State)
	}
	if len(store.All()) != 1 {
		t.Errorf("Expected 1 committed record, got %d", len(store.All()))
	}
}

// TestRouterPortal_RequiresToken tests that the portal rejects anonymous access
func TestRouterPortal_RequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/portal/records", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

// TestRouterPortal_ExpiredToken tests rejection of stale credentials
func TestRouterPortal_ExpiredToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/portal/records", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.GenerateExpiredToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

// TestRouterPortal_DoctorAccess tests the authorized listing
func TestRouterPortal_DoctorAccess(t *testing.T) {
	router, store := newTestRouter(t)
	store.Append(context.Background(), records.NewPatientRecord(
		triage.IntakeData{FullName: "Asha Verma", PhoneNumber: "9876543210"},
		triage.Report{SymptomSummary: "s", RecommendedDepartment: "ENT"},
	))

	req := httptest.NewRequest(http.MethodGet, "/portal/records", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.GenerateDoctorToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var response records.RecordListResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if len(response.Records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(response.Records))
	}
}

// TestRouterPortal_RoleWithoutPermission tests a valid token lacking records:view
func TestRouterPortal_RoleWithoutPermission(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/portal/records", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.GenerateTestJWT(t, "clerk-1", []string{"RECEPTION"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

// TestCORSMiddleware_Preflight tests the OPTIONS short-circuit
func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected preflight not to reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/triage/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("Expected the origin to be allowed, got '%s'", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
