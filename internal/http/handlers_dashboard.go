package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/summary"
	"fintrack/internal/view"
)

func (s *Server) summaryView(txs []core.Transaction, categories []core.Category) summaryView {
	return newSummaryView(summary.Build(txs, categories, s.tracker.Now()), s.currency)
}

// handleIndex renders the whole dashboard with the tab from ?tab= selected.
// The list honours the same query parameters as /ui/transactions.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := s.pageView(r.URL.Query().Get("tab"), view.ParseQuery(r.URL.Query()), nil, nil)
	s.writePage(w, r, NewHTMXResponse(), "index.html", p)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txs, categories := s.tracker.Snapshot()
	s.writePage(w, r, NewHTMXResponse(), "summary", s.summaryView(txs, categories))
}

// handleSummaryJSON serves the raw figures for scripts and charts.
func (s *Server) handleSummaryJSON(w http.ResponseWriter, r *http.Request) {
	txs, categories := s.tracker.Snapshot()
	body, err := json.Marshal(summary.Build(txs, categories, s.tracker.Now()))
	if err != nil {
		s.events.LogError(r.Context(), "Failed encoding summary", err, applog.ComponentHTTP, applog.OpRead, nil)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}
