package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/view"
	appweb "fintrack/web"
)

// Deps are the collaborators of the server.
type Deps struct {
	Tracker *services.Tracker
	// Backend is probed by /readyz.
	Backend storage.Backend
	Logger  *applog.Logger

	CurrencySymbol     string
	CollationLocale    string
	ExportPrefix       string
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	tracker   *services.Tracker
	backend   storage.Backend
	filterer  *view.Filterer
	templates *template.Template
	logger    *applog.Logger
	events    *applog.StructuredLogger

	currency     string
	exportPrefix string

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	clientIP *security.ClientIP
	started  time.Time
}

// NewServer wires routes and middleware. Template parse failures are logged
// and turn page requests into 500s; the operational endpoints keep working.
func NewServer(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = applog.New(applog.DefaultConfig())
	}
	if d.CurrencySymbol == "" {
		d.CurrencySymbol = "$"
	}
	logger := d.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		tracker:      d.Tracker,
		backend:      d.Backend,
		filterer:     view.NewFilterer(d.CollationLocale),
		logger:       logger,
		events:       applog.NewStructuredLogger(logger),
		currency:     d.CurrencySymbol,
		exportPrefix: d.ExportPrefix,
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: d.RateLimitPerMinute}),
		clientIP:     security.NewClientIP(),
		started:      time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.clientIP.Extract)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.WithComponent(applog.ComponentTemplate).Error("Failed parsing templates",
			applog.FieldOperation, applog.OpParse,
			applog.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Handler)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Page not found").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticCache(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Mutating(s.clientIP.Extract, func(w http.ResponseWriter, r *http.Request) {
			TooManyRequestsError("Too many changes, please slow down").Write(w)
		}))

		r.Get("/", s.handleIndex)
		r.Get("/ui/summary", s.handleSummary)
		r.Get("/ui/transactions", s.handleTransactions)
		r.Get("/ui/transaction-form", s.handleTransactionForm)
		r.Get("/ui/categories", s.handleCategories)
		r.Get("/ui/category-options", s.handleCategoryOptions)
		r.Get("/export.csv", s.handleExport)
		r.Get("/api/summary", s.handleSummaryJSON)

		r.Post("/transactions", s.handleCreateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
		r.Post("/transactions/{id}/delete", s.handleDeleteTransaction)

		r.Post("/categories", s.handleCreateCategory)
		r.Delete("/categories/{id}", s.handleDeleteCategory)
		r.Post("/categories/{id}/delete", s.handleDeleteCategory)
	})
	return r
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// render executes the named template into a buffer so a failing template
// never produces a half-written response.
func (s *Server) render(ctx context.Context, name string, data any) ([]byte, bool) {
	if s.templates == nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(ctx, "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithFile(name))
		return nil, false
	}
	return buf.Bytes(), true
}

// writePage renders name and sends it through b, or a 500 if rendering fails.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	body, ok := s.render(r.Context(), name, data)
	if !ok {
		InternalServerError("Page unavailable").Write(w)
		return
	}
	b.BodyHTML(body).Write(w)
}

func (s *Server) pageView(tab string, q view.Query, form *formView, cats *categoriesView) pageView {
	txs, categories := s.tracker.Snapshot()
	p := pageView{
		Tab:     validTab(tab),
		Summary: s.summaryView(txs, categories),
		List:    newListView(s.filterer.Apply(txs, categories, q), categories, q, s.currency),
	}
	if form != nil {
		p.Form = *form
	} else {
		p.Form = newFormView(core.TransactionInput{}, nil, s.tracker.CategoriesByKind, s.tracker.Now())
	}
	if cats != nil {
		p.Categories = *cats
	} else {
		p.Categories = s.categoriesView(core.CategoryInput{}, nil)
	}
	return p
}

func (s *Server) categoriesView(in core.CategoryInput, errs core.FieldErrors) categoriesView {
	if in.Kind == "" {
		in.Kind = string(core.Expense)
	}
	return categoriesView{
		Income:  s.tracker.CategoriesByKind(core.Income),
		Expense: s.tracker.CategoriesByKind(core.Expense),
		Values:  in,
		Errors:  errs,
	}
}
