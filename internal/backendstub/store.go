// Package backendstub is an in-memory stand-in for the video generation
// backend. Jobs advance from queued to running to done on a clock instead of
// rendering anything.
package backendstub

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/psantana5/vidgen/pkg/models"
)

var ErrJobNotFound = errors.New("job not found")

const (
	msgCreated    = "Job created"
	msgGenerating = "Generating video..."
	msgCompleted  = "Completed"
	msgFailed     = "Video generation failed"

	// Bounds accepted by the generate endpoint
	MinDurationSeconds = 3
	MaxDurationSeconds = 120
)

type job struct {
	id        string
	request   models.GenerationRequest
	createdAt time.Time
	failure   string
}

// Timing controls how long a job stays in each non-terminal state
type Timing struct {
	QueueDelay  time.Duration
	RenderDelay time.Duration
}

// DefaultTiming keeps a job queued for 2s and running for 8s
var DefaultTiming = Timing{QueueDelay: 2 * time.Second, RenderDelay: 8 * time.Second}

// Store keeps every job for the life of the process
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*job
	timing Timing
	// Prompts containing failKeyword fail instead of completing.
	failKeyword string
	now         func() time.Time
}

// NewStore creates an empty store
func NewStore(timing Timing, failKeyword string) *Store {
	return &Store{
		jobs:        make(map[string]*job),
		timing:      timing,
		failKeyword: strings.ToLower(failKeyword),
		now:         time.Now,
	}
}

// Create registers a new job and returns its identifier
func (s *Store) Create(req models.GenerationRequest) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := &job{
		id:        uuid.New().String(),
		request:   req,
		createdAt: s.now(),
	}
	s.jobs[j.id] = j
	return j.id
}

// Fail marks a job as failed with the given message
func (s *Store) Fail(id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	j.failure = message
	return nil
}

// Get returns the current status of a job
func (s *Store) Get(id string) (models.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return models.StatusRecord{}, ErrJobNotFound
	}
	return s.record(j), nil
}

// Len returns the number of jobs created so far
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *Store) record(j *job) models.StatusRecord {
	rec := models.StatusRecord{JobID: j.id}
	if j.failure != "" {
		rec.Status = models.JobStatusFailed
		rec.Message = j.failure
		return rec
	}

	elapsed := s.now().Sub(j.createdAt)
	switch {
	case elapsed < s.timing.QueueDelay:
		rec.Status = models.JobStatusQueued
		rec.Message = msgCreated
	case elapsed < s.timing.QueueDelay+s.timing.RenderDelay:
		rec.Status = models.JobStatusRunning
		rec.Message = msgGenerating
	case s.failKeyword != "" && strings.Contains(strings.ToLower(j.request.Prompt), s.failKeyword):
		rec.Status = models.JobStatusFailed
		rec.Message = msgFailed
	default:
		rec.Status = models.JobStatusDone
		rec.Message = msgCompleted
		videoURL := VideoPath(j.id)
		rec.VideoURL = &videoURL
	}
	return rec
}

// VideoPath is the backend-relative locator reported for a finished job
func VideoPath(id string) string {
	return "/videos/" + id + ".mp4"
}
