// Package web serves the browser front-end: the submission form and a job
// list that re-renders itself every poll interval.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/psantana5/vidgen/internal/metrics"
	"github.com/psantana5/vidgen/internal/poller"
	"github.com/psantana5/vidgen/internal/registry"
	"github.com/psantana5/vidgen/internal/render"
	"github.com/psantana5/vidgen/internal/submit"
	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/middleware"
	"github.com/psantana5/vidgen/pkg/models"
	"github.com/psantana5/vidgen/pkg/ratelimit"
	"github.com/psantana5/vidgen/pkg/tracing"
)

//go:embed templates/*.html
var templateFS embed.FS

const rateLimitedAlert = "Too many submissions, please wait a moment"

// Config wires a Server
type Config struct {
	Submitter *submit.Submitter
	Registry  *registry.Registry
	Poller    *poller.Poller
	Locator   render.Locator
	Metrics   *metrics.Metrics
	Tracing   *tracing.Provider
	// Limiter guards POST /jobs; nil disables rate limiting.
	Limiter       *ratelimit.Limiter
	Logger        *logging.Logger
	PollInterval  time.Duration
	PollTerminal  bool
	DefaultRefine bool
}

// Server holds the state of the single browser session
type Server struct {
	cfg  Config
	tmpl *template.Template

	mu   sync.Mutex
	form submit.Form
}

type indexPage struct {
	Form        submit.Form
	Alert       string
	Busy        bool
	HasJobs     bool
	MinDuration int
	MaxDuration int
}

type jobsPage struct {
	Cards          []render.Card
	Refresh        bool
	RefreshSeconds int
}

// New parses the templates and creates a Server
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = poller.DefaultInterval
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		cfg:  cfg,
		tmpl: tmpl,
		form: cfg.Submitter.DefaultForm(cfg.DefaultRefine),
	}, nil
}

// Handler returns the router with request id, logging and tracing middleware
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(s.cfg.Logger, "GET /jobs", "/healthz", "/metrics"))
	if s.cfg.Tracing != nil {
		r.Use(tracing.HTTPMiddleware(s.cfg.Tracing))
	}
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all front-end routes
func (s *Server) RegisterRoutes(r *mux.Router) {
	var create http.Handler = http.HandlerFunc(s.CreateJob)
	if s.cfg.Limiter != nil {
		create = s.cfg.Limiter.Middleware(ratelimit.IPKeyFunc, s.rateLimited)(create)
	}

	r.HandleFunc("/", s.Index).Methods("GET")
	r.Handle("/jobs", create).Methods("POST")
	r.HandleFunc("/jobs", s.Jobs).Methods("GET")
	r.HandleFunc("/api/jobs", s.APIJobs).Methods("GET")
	r.HandleFunc("/healthz", s.Health).Methods("GET")
	if s.cfg.Metrics != nil {
		r.Handle("/metrics", s.cfg.Metrics).Methods("GET")
	}
}

func (s *Server) currentForm() submit.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Server) setForm(f submit.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, alert string) {
	s.execute(w, status, "index", indexPage{
		Form:        s.currentForm(),
		Alert:       alert,
		Busy:        s.cfg.Submitter.Busy(),
		HasJobs:     s.cfg.Registry.Len() > 0,
		MinDuration: models.MinDurationSeconds,
		MaxDuration: models.MaxDurationSeconds,
	})
}

func (s *Server) execute(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.cfg.Logger.Error("Failed to render template", logging.Fields{"template": name, "error": err})
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Index renders the form and, once a job exists, the job list frame
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, http.StatusOK, "")
}

func parseForm(r *http.Request) (submit.Form, error) {
	if err := r.ParseForm(); err != nil {
		return submit.Form{}, &submit.ValidationError{Field: "form", Reason: err.Error()}
	}

	form := submit.Form{
		Prompt:       r.PostFormValue("prompt"),
		RefineWithAI: r.PostFormValue("refine_with_ai") != "",
	}

	raw := strings.TrimSpace(r.PostFormValue("duration_seconds"))
	if raw == "" {
		return form, nil
	}
	d, err := strconv.Atoi(raw)
	if err != nil {
		return form, &submit.ValidationError{Field: "duration", Reason: "not a whole number"}
	}
	form.DurationSeconds = d
	return form, nil
}

// CreateJob submits the posted form. Success redirects back to the index
// with a reset form; any error re-renders the index with the alert and the
// form as entered.
func (s *Server) CreateJob(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err == nil {
		var next submit.Form
		next, _, err = s.cfg.Submitter.Submit(r.Context(), form)
		if err == nil {
			s.setForm(next)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	s.setForm(form)

	var verr *submit.ValidationError
	status := http.StatusBadGateway
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, submit.ErrSubmitInFlight):
		status = http.StatusConflict
	}
	s.renderIndex(w, status, submit.AlertText(err))
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.cfg.Logger.Warn("Submission rate limited", logging.Fields{
		"remote_addr": ratelimit.IPKeyFunc(r),
		"request_id":  middleware.GetRequestID(r),
	})
	s.cfg.Metrics.RecordSubmission(metrics.SubmissionRateLimited)
	s.renderIndex(w, http.StatusTooManyRequests, rateLimitedAlert)
}

// Jobs renders the job list fragment
func (s *Server) Jobs(w http.ResponseWriter, r *http.Request) {
	ids := s.cfg.Registry.IDs()
	statuses := s.cfg.Poller.Snapshot()

	refresh := len(ids) > 0 && (s.cfg.PollTerminal || !render.Settled(ids, statuses))
	secs := int(math.Ceil(s.cfg.PollInterval.Seconds()))
	if secs < 1 {
		secs = 1
	}

	s.execute(w, http.StatusOK, "jobs", jobsPage{
		Cards:          render.Cards(ids, statuses, s.cfg.Locator),
		Refresh:        refresh,
		RefreshSeconds: secs,
	})
}

// APIJobs returns the tracked identifiers and their latest records
func (s *Server) APIJobs(w http.ResponseWriter, r *http.Request) {
	snap := render.Snapshot{
		JobIDs:   s.cfg.Registry.IDs(),
		Statuses: s.cfg.Poller.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := render.WriteJSON(w, snap); err != nil {
		s.cfg.Logger.Error("Failed to write job snapshot", logging.Fields{"error": err})
	}
}

// Health returns the health status of the front-end
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "healthy",
		"tracked_jobs": s.cfg.Registry.Len(),
	})
}
