package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reads from the storage backend; a missing key still counts as ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok", "storage": "ok"}
	if s.templates == nil {
		checks["templates"] = "not parsed"
		status, code = "not ready", http.StatusServiceUnavailable
	}
	if s.backend != nil {
		if _, err := s.backend.Get(ctx, storage.KeyTransactions); err != nil && !errors.Is(err, storage.ErrNotFound) {
			checks["storage"] = err.Error()
			status, code = "not ready", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}

// handleMetrics prints counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.Metrics()
	txs, cats := s.tracker.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "fintrack_http_requests_total %d\n", m.TotalRequests)
	fmt.Fprintf(w, "fintrack_http_client_errors_total %d\n", m.ClientErrors)
	fmt.Fprintf(w, "fintrack_http_server_errors_total %d\n", m.ServerErrors)
	fmt.Fprintf(w, "fintrack_http_last_duration_microseconds %d\n", m.LastDurationMicros)
	fmt.Fprintf(w, "fintrack_ratelimit_rejected_total %d\n", s.limiter.Rejected())
	fmt.Fprintf(w, "fintrack_ratelimit_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "fintrack_ledger_transactions %d\n", len(txs))
	fmt.Fprintf(w, "fintrack_registry_categories %d\n", len(cats))
	fmt.Fprintf(w, "fintrack_uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))
}

// handleExport downloads the ledger as CSV. An empty ledger yields 204 and
// no file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	txs := s.tracker.Transactions()
	doc, ok := export.CSV(txs)
	if !ok {
		NewHTMXResponse().
			Status(http.StatusNoContent).
			TriggerInfoNotification("Nothing to export yet").
			Write(w)
		return
	}

	name := export.Filename(s.exportPrefix, s.tracker.Now())
	s.logger.WithComponent(applog.ComponentExport).InfoContext(r.Context(), "Ledger exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(txs),
		applog.FieldFile, name)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(doc)
}

// writeCreated answers JSON clients of the create endpoints: 201 with the
// new entry, 422 with the field errors, 500 otherwise.
func (s *Server) writeCreated(w http.ResponseWriter, r *http.Request, created any, err error, what string) {
	if err == nil {
		writeJSON(w, http.StatusCreated, created)
		return
	}
	var fieldErrs core.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}
	s.events.LogError(r.Context(), "Failed to add "+what, err, applog.ComponentHTTP, applog.OpCreate, nil)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save the " + what})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
