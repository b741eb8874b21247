// Package api exposes the stored transactions and patterns over a small
// read-mostly HTTP API for presentation layers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/service"
)

// Handler serves the HTTP API over a storage instance.
type Handler struct {
	storage service.Storage
}

// NewHandler creates the API handler.
func NewHandler(storage service.Storage) *Handler {
	return &Handler{storage: storage}
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", h.GetTransactions).Methods("GET")
	api.HandleFunc("/transactions/count", h.CountTransactions).Methods("GET")
	api.HandleFunc("/transactions/monthly", h.GetMonthlyTotals).Methods("GET")
	api.HandleFunc("/transactions/{id}/category", h.UpdateCategory).Methods("PUT")
	api.HandleFunc("/patterns", h.GetPatterns).Methods("GET")
	api.HandleFunc("/categories", h.GetCategories).Methods("GET")
	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetTransactions lists stored transactions, filterable by date range and
// category.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	var filter service.TransactionFilter

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid start_date %q", s))
			return
		}
		filter.StartDate = &t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid end_date %q", s))
			return
		}
		filter.EndDate = &t
	}
	filter.Category = model.Category(r.URL.Query().Get("category"))
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	txns, err := h.storage.GetTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

// CountTransactions returns the total number of stored transactions.
func (h *Handler) CountTransactions(w http.ResponseWriter, r *http.Request) {
	count, err := h.storage.CountTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// GetMonthlyTotals aggregates per-month spending and income for a date
// range, defaulting to the trailing year.
func (h *Handler) GetMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid start_date %q", s))
			return
		}
		start = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid end_date %q", s))
			return
		}
		end = t
	}

	totals, err := h.storage.GetMonthlyTotals(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": totals})
}

// UpdateCategory is the user-correction path: it overrides a stored
// transaction's category and marks the record user-corrected.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Category model.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !body.Category.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category"})
		return
	}

	err := h.storage.UpdateTransactionCategory(r.Context(), id, body.Category)
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// GetPatterns lists the learned bank patterns.
func (h *Handler) GetPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.storage.GetLearnedPatterns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patterns": patterns})
}

// categoryView is the presentation shape of one category.
type categoryView struct {
	Name               model.Category        `json:"name"`
	DisplayName        string                `json:"displayName"`
	Primary            model.PrimaryCategory `json:"primaryCategory"`
	ExcludedFromTotals bool                  `json:"excludedFromTotals"`
}

// GetCategories lists the closed category set grouped metadata included.
func (h *Handler) GetCategories(w http.ResponseWriter, _ *http.Request) {
	out := make([]categoryView, 0, len(model.AllCategories()))
	for _, c := range model.AllCategories() {
		out = append(out, categoryView{
			Name:               c,
			DisplayName:        c.DisplayName(),
			Primary:            c.Primary(),
			ExcludedFromTotals: c.ExcludedFromTotals(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
