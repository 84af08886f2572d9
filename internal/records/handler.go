package records

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jcjuneja-hospital/triage-service/internal/pagination"
)

// Handler serves the doctor portal: read-only access to the committed record
// history for staff.
type Handler struct {
	store StoreInterface
}

func NewHandler(store StoreInterface) *Handler {
	return &Handler{store: store}
}

type RecordListResponse struct {
	Success bool            `json:"success"`
	Records []PatientRecord `json:"records"`
	Meta    pagination.Meta `json:"meta"`
}

type RecordResponse struct {
	Success bool           `json:"success"`
	Record  *PatientRecord `json:"record"`
}

// ListRecords returns the history most-recent-first, optionally filtered by
// exact phone match, paginated.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	var all []PatientRecord
	if phone := r.URL.Query().Get("phone"); phone != "" {
		all = h.store.FilterByPhone(phone)
	} else {
		all = h.store.All()
	}

	lo, hi := params.Bounds(len(all))
	page := all[lo:hi]
	if page == nil {
		page = []PatientRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RecordListResponse{
		Success: true,
		Records: page,
		Meta:    params.CalculateMeta(len(all)),
	})
}

// GetRecord returns a single record by id.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	record, ok := h.store.Get(mux.Vars(r)["id"])
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "record_not_found",
			"message": "No record with that id",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RecordResponse{Success: true, Record: record})
}
