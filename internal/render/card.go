// Package render turns status records into job cards. Everything here is a
// pure function of the latest known record, so every front-end shows the same
// thing for the same state.
package render

import (
	"github.com/psantana5/vidgen/pkg/models"
)

const (
	// Placeholder is shown while a job has no message to report
	Placeholder = "Initializing..."
	// StatusUnknown labels a job whose status has not been fetched yet
	StatusUnknown = "unknown"

	shortIDLen = 8
)

// Locator builds backend resource locators for a job
type Locator interface {
	FileURL(jobID string) string
	ResolveURL(locator string) string
}

// Card is the view model of one tracked job
type Card struct {
	JobID       string `json:"job_id"`
	ShortID     string `json:"short_id"`
	StatusLabel string `json:"status"`
	StatusClass string `json:"status_class"`

	// Message is set for unknown, queued and running jobs.
	Message     string `json:"message,omitempty"`
	ShowMessage bool   `json:"show_message"`

	ShowVideo   bool   `json:"show_video"`
	VideoSrc    string `json:"video_src,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`

	ShowError bool   `json:"show_error"`
	ErrorText string `json:"error,omitempty"`
}

// Header is the card title, e.g. "Job ID: abc12345..."
func (c Card) Header() string {
	return "Job ID: " + c.ShortID + "..."
}

// ShortID truncates a job identifier for display
func ShortID(jobID string) string {
	if len(jobID) <= shortIDLen {
		return jobID
	}
	return jobID[:shortIDLen]
}

// NewCard renders one job. rec is nil until the first successful fetch.
func NewCard(jobID string, rec *models.StatusRecord, loc Locator) Card {
	card := Card{
		JobID:       jobID,
		ShortID:     ShortID(jobID),
		StatusLabel: StatusUnknown,
	}
	if rec != nil && rec.Status != "" {
		card.StatusLabel = string(rec.Status)
	}
	card.StatusClass = "status-" + card.StatusLabel

	var status models.JobStatus
	if rec != nil {
		status = rec.Status
	}

	switch status {
	case models.JobStatusDone:
		card.ShowVideo = true
		card.DownloadURL = loc.FileURL(jobID)
		if rec.HasVideoURL() {
			card.VideoSrc = loc.ResolveURL(*rec.VideoURL)
		} else {
			card.VideoSrc = card.DownloadURL
		}
	case models.JobStatusFailed:
		card.ShowError = true
		card.ErrorText = rec.Message
	default:
		card.ShowMessage = true
		card.Message = Placeholder
		if rec != nil && rec.Message != "" {
			card.Message = rec.Message
		}
	}
	return card
}

// Cards renders every tracked job in registry order
func Cards(ids []string, statuses map[string]models.StatusRecord, loc Locator) []Card {
	cards := make([]Card, 0, len(ids))
	for _, id := range ids {
		var rec *models.StatusRecord
		if r, ok := statuses[id]; ok {
			rec = &r
		}
		cards = append(cards, NewCard(id, rec, loc))
	}
	return cards
}

// Settled reports whether every job has reached a terminal state
func Settled(ids []string, statuses map[string]models.StatusRecord) bool {
	for _, id := range ids {
		rec, ok := statuses[id]
		if !ok || !rec.Status.IsTerminal() {
			return false
		}
	}
	return true
}
