package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/view"
)

// handleTransactions renders the filtered and sorted list.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := view.ParseQuery(r.URL.Query())
	txs, categories := s.tracker.Snapshot()
	list := newListView(s.filterer.Apply(txs, categories, q), categories, q, s.currency)
	s.writePage(w, r, NewHTMXResponse(), "transactions", list)
}

// handleTransactionForm renders an empty form; ?type= preselects the kind.
func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request) {
	in := core.TransactionInput{Kind: r.URL.Query().Get("type")}
	form := newFormView(in, nil, s.tracker.CategoriesByKind, s.tracker.Now())
	s.writePage(w, r, NewHTMXResponse(), "transaction-form", form)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeParseError(w, err)
		return
	}
	in := parser.TransactionInput()

	tx, err := s.tracker.AddTransaction(ctx, in)
	if parser.IsJSON() {
		s.writeCreated(w, r, tx, err, "transaction")
		return
	}
	if err != nil {
		var fieldErrs core.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			form := newFormView(in, fieldErrs, s.tracker.CategoriesByKind, s.tracker.Now())
			if !isHTMX(r) {
				p := s.pageView(TabAdd, view.DefaultQuery(), &form, nil)
				s.writePage(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), "index.html", p)
				return
			}
			s.writePage(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), "transaction-form", form)
		case errors.Is(err, services.ErrPersist):
			s.events.LogError(ctx, "Failed to save transaction", err, applog.ComponentHTTP, applog.OpCreate, nil)
			InternalServerError("Could not save the transaction, please retry").Write(w)
		default:
			s.events.LogError(ctx, "Failed to add transaction", err, applog.ComponentHTTP, applog.OpCreate, nil)
			InternalServerError("Could not add the transaction").Write(w)
		}
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/?tab="+TabTransactions, http.StatusSeeOther)
		return
	}
	// keep the chosen kind so consecutive entries of the same kind are quick
	form := newFormView(core.TransactionInput{Kind: string(tx.Kind)}, nil, s.tracker.CategoriesByKind, s.tracker.Now())
	b := NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added")
	s.writePage(w, r, b, "transaction-form", form)
}

// handleDeleteTransaction answers with an empty body so htmx drops the row.
// An unknown id is not an error.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.tracker.DeleteTransaction(r.Context(), id)
	if err != nil {
		s.events.LogError(r.Context(), "Failed to delete transaction", err, applog.ComponentHTTP, applog.OpDelete,
			applog.NewFields().WithTransaction(id, "", "", ""))
		InternalServerError("Could not delete the transaction, please retry").Write(w)
		return
	}
	if !isHTMX(r) {
		http.Redirect(w, r, "/?tab="+TabTransactions, http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse()
	if removed {
		b.TriggerLedgerChanged().TriggerSuccessNotification("Transaction deleted")
	} else {
		b.TriggerInfoNotification("Transaction was already removed")
	}
	b.Write(w)
}
