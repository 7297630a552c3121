package backendstub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/psantana5/vidgen/pkg/logging"
	"github.com/psantana5/vidgen/pkg/models"
)

// placeholderVideo is the body served for every finished job: an ISO BMFF
// ftyp box, enough for clients to recognise an mp4.
var placeholderVideo = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'm', 'p', '4', '1',
}

// Handler serves the backend API over a Store
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a handler
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/video").Subrouter()
	api.HandleFunc("/generate", h.Generate).Methods("POST")
	api.HandleFunc("/status/{id}", h.Status).Methods("GET")
	api.HandleFunc("/file/{id}", h.File).Methods("GET")

	r.HandleFunc("/videos/{name}", h.Video).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/", h.Index).Methods("GET")
}

// Router returns a router with every route registered
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// Generate creates a job
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	req := models.GenerationRequest{
		DurationSeconds: models.DefaultDurationSeconds,
		RefineWithAI:    true,
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeDetail(w, http.StatusBadRequest, "Prompt cannot be empty")
		return
	}
	if req.DurationSeconds < MinDurationSeconds || req.DurationSeconds > MaxDurationSeconds {
		writeDetail(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("duration_seconds must be between %d and %d", MinDurationSeconds, MaxDurationSeconds))
		return
	}

	id := h.store.Create(req)
	h.logger.Info("Job created", logging.Fields{
		"job_id":   id,
		"duration": req.DurationSeconds,
		"refine":   req.RefineWithAI,
	})

	writeJSON(w, http.StatusOK, models.GenerateResponse{JobID: id})
}

// Status reports the current state of a job
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) serveVideo(w http.ResponseWriter, id string, attachment bool) {
	rec, err := h.store.Get(id)
	if err != nil || rec.Status != models.JobStatusDone {
		writeDetail(w, http.StatusNotFound, "Video not available")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.mp4"`, id))
	}
	w.Write(placeholderVideo)
}

// File downloads the video of a finished job
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	h.serveVideo(w, mux.Vars(r)["id"], true)
}

// Video serves the playback locator reported in video_url
func (h *Handler) Video(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !strings.HasSuffix(name, ".mp4") {
		writeDetail(w, http.StatusNotFound, "Video not available")
		return
	}
	h.serveVideo(w, strings.TrimSuffix(name, ".mp4"), false)
}

// Health returns the health status of the stub
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"jobs":   h.store.Len(),
	})
}

// Index describes the available endpoints
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "vidgen stub backend",
		"endpoints": map[string]string{
			"POST /api/video/generate":       "Submit a video generation job",
			"GET /api/video/status/{job_id}": "Get job status and video URL",
			"GET /api/video/file/{job_id}":   "Download the generated video",
		},
	})
}
