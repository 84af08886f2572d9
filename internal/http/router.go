package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/jcjuneja-hospital/triage-service/internal/auth"
	"github.com/jcjuneja-hospital/triage-service/internal/records"
	"github.com/jcjuneja-hospital/triage-service/internal/telemetry"
	"github.com/jcjuneja-hospital/triage-service/internal/triage"
)

// SetupRouter initializes all routes for the application. The intake flow is
// public (patients identify inside the conversation, not with a token); the
// doctor portal sits behind JWT auth plus a records:view permission check.
func SetupRouter(
	triageService triage.ServiceInterface,
	store records.StoreInterface,
	verifier *auth.Verifier,
	perms auth.Permissions,
	metrics *telemetry.Metrics,
) *mux.Router {
	triageHandler := triage.NewHandler(triageService)
	recordsHandler := records.NewHandler(store)

	// A nil *Metrics must stay a nil interface inside the middleware.
	var authMetrics auth.MetricsRecorder
	var permMetrics auth.PermissionMetricsRecorder
	if metrics != nil {
		authMetrics = metrics
		permMetrics = metrics
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("triage-service"))

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"triage-service"}`))
	}).Methods("GET")

	// Intake conversation routes (public)
	r.HandleFunc("/triage/sessions", triageHandler.StartSession).Methods("POST")
	r.HandleFunc("/triage/sessions/{id}", triageHandler.GetSession).Methods("GET")
	r.HandleFunc("/triage/sessions/{id}/identify", triageHandler.Identify).Methods("POST")
	r.HandleFunc("/triage/sessions/{id}/language", triageHandler.SelectLanguage).Methods("POST")
	r.HandleFunc("/triage/sessions/{id}/profile", triageHandler.SelectProfile).Methods("POST")
	r.HandleFunc("/triage/sessions/{id}/intake", triageHandler.SubmitIntake).Methods("POST")
	r.HandleFunc("/triage/sessions/{id}/symptoms", triageHandler.SubmitSymptoms).Methods("POST")
	r.HandleFunc("/triage/sessions/{id}/answers", triageHandler.SubmitAnswers).Methods("POST")
	r.HandleFunc("/triage/sessions/{id}/save", triageHandler.SaveRecord).Methods("POST")
	r.HandleFunc("/triage/sessions/{id}/restart", triageHandler.Restart).Methods("POST")

	// Doctor portal routes (DOCTOR and ADMIN)
	r.Handle("/portal/records",
		auth.MiddlewareWithMetrics(verifier, authMetrics)(
			auth.RequirePermissionWithMetrics("records:view", perms, permMetrics)(
				http.HandlerFunc(recordsHandler.ListRecords),
			),
		),
	).Methods("GET")

	r.Handle("/portal/records/{id}",
		auth.MiddlewareWithMetrics(verifier, authMetrics)(
			auth.RequirePermissionWithMetrics("records:view", perms, permMetrics)(
				http.HandlerFunc(recordsHandler.GetRecord),
			),
		),
	).Methods("GET")

	return r
}
