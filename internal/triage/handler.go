package triage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler exposes the conversation flow over HTTP. Every endpoint returns the
// updated session view so the front-end can render whatever screen the state
// machine says comes next.
type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type SessionResponse struct {
	Success bool         `json:"success"`
	Session *SessionView `json:"session"`
}

type identifyRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type languageRequest struct {
	Language string `json:"language"`
}

type symptomsRequest struct {
	Symptoms string `json:"symptoms"`
}

type answersRequest struct {
	Answers map[string][]string `json:"answers"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.StartSession(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session_start_failed", err.Error())
		return
	}
	respondSession(w, http.StatusCreated, view)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetSession(mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	view, err := h.service.SubmitPhone(r.Context(), mux.Vars(r)["id"], req.PhoneNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

func (h *Handler) SelectLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	view, err := h.service.SelectLanguage(r.Context(), mux.Vars(r)["id"], req.Language)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

func (h *Handler) SelectProfile(w http.ResponseWriter, r *http.Request) {
	var req SelectProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	view, err := h.service.SelectProfile(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

func (h *Handler) SubmitIntake(w http.ResponseWriter, r *http.Request) {
	var intake IntakeData
	if err := json.NewDecoder(r.Body).Decode(&intake); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	view, err := h.service.SubmitIntake(r.Context(), mux.Vars(r)["id"], intake)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

func (h *Handler) SubmitSymptoms(w http.ResponseWriter, r *http.Request) {
	var req symptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	view, err := h.service.SubmitSymptoms(r.Context(), mux.Vars(r)["id"], req.Symptoms)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	view, err := h.service.SubmitAnswers(r.Context(), mux.Vars(r)["id"], req.Answers)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

func (h *Handler) SaveRecord(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.SaveRecord(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Restart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSession(w, http.StatusOK, view)
}

// respondServiceError maps flow errors onto HTTP statuses. Anything outside
// the known taxonomy is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, ErrAnalysisInProgress):
		respondError(w, http.StatusConflict, "analysis_in_progress", err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotTerminal):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrMissingLanguage),
		errors.Is(err, ErrMissingSymptoms),
		errors.Is(err, ErrProfileNotFound),
		errors.Is(err, ErrIncompleteAnswers),
		errors.Is(err, ErrUnknownOption):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func respondSession(w http.ResponseWriter, statusCode int, view *SessionView) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(SessionResponse{Success: true, Session: view})
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
