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

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, NewHTMXResponse(), "categories", s.categoriesView(core.CategoryInput{}, nil))
}

// handleCategoryOptions renders the <option> list for ?type=, expense when unset.
func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(r.URL.Query().Get("type"))
	if err != nil {
		kind = core.Expense
	}
	data := optionsView{
		Options:  s.tracker.CategoriesByKind(kind),
		Selected: r.URL.Query().Get("category"),
	}
	s.writePage(w, r, NewHTMXResponse(), "category-options", data)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeParseError(w, err)
		return
	}
	in := parser.CategoryInput()

	c, err := s.tracker.AddCategory(ctx, in)
	if parser.IsJSON() {
		s.writeCreated(w, r, c, err, "category")
		return
	}
	if err != nil {
		var fieldErrs core.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			cv := s.categoriesView(in, fieldErrs)
			if !isHTMX(r) {
				p := s.pageView(TabCategories, view.DefaultQuery(), nil, &cv)
				s.writePage(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), "index.html", p)
				return
			}
			s.writePage(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), "categories", cv)
		case errors.Is(err, services.ErrPersist):
			s.events.LogError(ctx, "Failed to save category", err, applog.ComponentHTTP, applog.OpCreate, nil)
			InternalServerError("Could not save the category, please retry").Write(w)
		default:
			s.events.LogError(ctx, "Failed to add category", err, applog.ComponentHTTP, applog.OpCreate, nil)
			InternalServerError("Could not add the category").Write(w)
		}
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/?tab="+TabCategories, http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().
		TriggerCategoriesChanged().
		TriggerSuccessNotification("Category " + c.Name + " added")
	s.writePage(w, r, b, "categories", s.categoriesView(core.CategoryInput{Kind: string(c.Kind)}, nil))
}

// handleDeleteCategory re-renders the manager. Transactions keep the stale
// reference, so the ledger views are refreshed as well.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.tracker.DeleteCategory(r.Context(), id)
	if err != nil {
		s.events.LogError(r.Context(), "Failed to delete category", err, applog.ComponentHTTP, applog.OpDelete,
			applog.NewFields().WithCategory(id, "", ""))
		InternalServerError("Could not delete the category, please retry").Write(w)
		return
	}
	if !isHTMX(r) {
		http.Redirect(w, r, "/?tab="+TabCategories, http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse()
	if removed {
		b.TriggerCategoriesChanged().TriggerLedgerChanged().TriggerSuccessNotification("Category deleted")
	} else {
		b.TriggerInfoNotification("Category was already removed")
	}
	s.writePage(w, r, b, "categories", s.categoriesView(core.CategoryInput{}, nil))
}
