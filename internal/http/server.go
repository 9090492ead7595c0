// Package http serves the ledger UI: an HTMX page for submitting book
// distribution entries plus partials for the aggregated month view and
// the drill-down modal, and the workbook download endpoint.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"soyte/internal/cache"
	"soyte/internal/core"
	"soyte/internal/excel"
	"soyte/internal/ledger"
	"soyte/internal/log"
	"soyte/internal/middleware/ratelimit"
	"soyte/internal/middleware/security"
	"soyte/internal/middleware/trace"
	"soyte/internal/store"
	appweb "soyte/web"
)

type Server struct {
	http.Server
	templates *template.Template

	store       store.Store
	reconciler  *ledger.Reconciler
	projector   excel.Projector
	defaultUser string

	tracer   *trace.Middleware
	headers  *security.HeadersMiddleware
	detector *security.Detector
	limiter  *ratelimit.Limiter

	// Cached grand summaries keyed by user|month. Employee-filtered
	// views are cheap enough to recompute on every request.
	summaryCache *cache.LRUCache[[]core.SummaryRow]
	cacheMgr     *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates. st is the read
// path; entries is the write path and may wrap st with change
// publishing, so all mutations go through the reconciler built on it.
func NewServer(addr string, st store.Store, entries store.EntryStore, projector excel.Projector, defaultUser string) *Server {
	mux := http.NewServeMux()

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:        st,
		reconciler:   ledger.NewReconciler(entries),
		projector:    projector,
		defaultUser:  defaultUser,
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		headers:      security.NewHeadersMiddleware(headersConfig()),
		detector:     detector,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		summaryCache: cache.NewLRUCache[[]core.SummaryRow](100, 5*time.Minute),
		cacheMgr:     cache.NewManager(),
	}

	s.cacheMgr.Register(s.summaryCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/employees", s.handleEmployees)
	mux.HandleFunc("/classes", s.handleClasses)
	mux.HandleFunc("/entries", s.handleEntries)
	mux.HandleFunc("/entries/edit", s.handleEditEntry)
	mux.HandleFunc("/entries/batch-delete", s.handleBatchDelete)
	mux.HandleFunc("/ui/summary", s.handleSummary)
	mux.HandleFunc("/ui/details", s.handleDetails)
	mux.HandleFunc("/export", s.handleExport)

	s.Server.Handler = s.tracer.Middleware(s.headers.Middleware(s.limitWrites(mux)))

	return s
}

// headersConfig relaxes the embedder policy so the HTMX script can load
// from unpkg, matching the CSP's script-src allowance.
func headersConfig() security.HeadersConfig {
	cfg := security.DefaultHeadersConfig()
	cfg.CrossOriginEmbedder = ""
	return cfg
}

// limitWrites rate-limits mutating requests per client IP. Reads stay
// unthrottled so month-view polling never trips the limiter.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Không tìm thấy trang").Write(w)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	userID := s.requestUser(r)
	month := requestMonth(r)

	employees, err := s.store.ListEmployees(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Employee list error", log.FieldError, err, log.FieldUserID, userID)
	}
	classes, err := s.store.ListClasses(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Class list error", log.FieldError, err, log.FieldUserID, userID, log.FieldMonth, month.Key())
	}

	data := struct {
		Month     string
		Days      int
		Employees []core.Employee
		Schools   []string
		Classes   []core.Class
	}{
		Month:     month.Key(),
		Days:      month.DaysInMonth(),
		Employees: employees,
		Schools:   schoolNames(classes),
		Classes:   classes,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func summaryCacheKey(userID string, month core.Month) string {
	return userID + "|" + month.Key()
}

func (s *Server) invalidateSummary(userID string, month core.Month) {
	s.summaryCache.Delete(summaryCacheKey(userID, month))
}
