package models

// JobStatus represents the status of a video generation job
type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// IsTerminal reports whether no further progress is expected for the job.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// Valid reports whether s is one of the statuses the backend emits.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusQueued, JobStatusRunning, JobStatusDone, JobStatusFailed:
		return true
	default:
		return false
	}
}

// Duration bounds offered by the input widgets. The backend enforces its own.
const (
	MinDurationSeconds     = 3
	MaxDurationSeconds     = 60
	DefaultDurationSeconds = 10
)

// GenerationRequest is the body of POST /api/video/generate
type GenerationRequest struct {
	Prompt          string `json:"prompt"`
	DurationSeconds int    `json:"duration_seconds"`
	RefineWithAI    bool   `json:"refine_with_ai"`
}

// GenerateResponse is returned by the backend once a job has been created
type GenerateResponse struct {
	JobID string `json:"job_id"`
}

// StatusRecord is the latest known state of a job, returned by
// GET /api/video/status/{job_id}. Each fetch supersedes the previous one.
type StatusRecord struct {
	JobID    string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Message  string    `json:"message,omitempty"`
	VideoURL *string   `json:"video_url,omitempty"`
}

// HasVideoURL reports whether the backend supplied a non-empty video locator
func (r StatusRecord) HasVideoURL() bool {
	return r.VideoURL != nil && *r.VideoURL != ""
}
