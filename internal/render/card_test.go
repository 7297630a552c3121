package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/vidgen/pkg/client"
	"github.com/psantana5/vidgen/pkg/models"
)

func strPtr(s string) *string { return &s }

func TestNewCardUnknownBeforeFirstFetch(t *testing.T) {
	card := NewCard("abc123", nil, client.New(""))

	assert.Equal(t, StatusUnknown, card.StatusLabel)
	assert.Equal(t, "status-unknown", card.StatusClass)
	assert.True(t, card.ShowMessage)
	assert.Equal(t, Placeholder, card.Message)
	assert.False(t, card.ShowVideo)
	assert.False(t, card.ShowError)
}

func TestNewCardQueuedAndRunning(t *testing.T) {
	loc := client.New("")

	queued := NewCard("abc123", &models.StatusRecord{JobID: "abc123", Status: models.JobStatusQueued}, loc)
	assert.Equal(t, "queued", queued.StatusLabel)
	assert.Equal(t, Placeholder, queued.Message)

	running := NewCard("abc123", &models.StatusRecord{
		JobID:   "abc123",
		Status:  models.JobStatusRunning,
		Message: "Generating video...",
	}, loc)
	assert.Equal(t, "running", running.StatusLabel)
	assert.Equal(t, "Generating video...", running.Message)
}

func TestNewCardDoneUsesRecordLocator(t *testing.T) {
	card := NewCard("abc123", &models.StatusRecord{
		JobID:    "abc123",
		Status:   models.JobStatusDone,
		VideoURL: strPtr("/files/abc123.mp4"),
	}, client.New(""))

	assert.True(t, card.ShowVideo)
	assert.Equal(t, "/files/abc123.mp4", card.VideoSrc)
	assert.Equal(t, "/api/video/file/abc123", card.DownloadURL)
	assert.False(t, card.ShowMessage)
}

func TestNewCardDoneFallsBackToFileLocator(t *testing.T) {
	for _, rec := range []models.StatusRecord{
		{JobID: "abc123", Status: models.JobStatusDone},
		{JobID: "abc123", Status: models.JobStatusDone, VideoURL: strPtr("")},
	} {
		card := NewCard("abc123", &rec, client.New("http://backend:8081"))
		assert.Equal(t, "http://backend:8081/api/video/file/abc123", card.VideoSrc)
		assert.Equal(t, card.VideoSrc, card.DownloadURL)
	}
}

func TestNewCardDoneResolvesRelativeLocatorAgainstBackend(t *testing.T) {
	card := NewCard("abc123", &models.StatusRecord{
		JobID:    "abc123",
		Status:   models.JobStatusDone,
		VideoURL: strPtr("/videos/abc123.mp4"),
	}, client.New("http://backend:8081"))

	assert.Equal(t, "http://backend:8081/videos/abc123.mp4", card.VideoSrc)
}

func TestNewCardFailedShowsMessage(t *testing.T) {
	card := NewCard("abc123", &models.StatusRecord{
		JobID:   "abc123",
		Status:  models.JobStatusFailed,
		Message: "model crashed",
	}, client.New(""))

	assert.True(t, card.ShowError)
	assert.Equal(t, "model crashed", card.ErrorText)
	assert.False(t, card.ShowVideo)
	assert.False(t, card.ShowMessage)
}

func TestNewCardUnexpectedStatusShowsPlaceholder(t *testing.T) {
	card := NewCard("abc123", &models.StatusRecord{JobID: "abc123", Status: "paused"}, client.New(""))
	assert.Equal(t, "paused", card.StatusLabel)
	assert.True(t, card.ShowMessage)
	assert.Equal(t, Placeholder, card.Message)
}

func TestHeaderTruncatesID(t *testing.T) {
	assert.Equal(t, "Job ID: 0f8fad5b...", NewCard("0f8fad5b-d9cb-469f-a165-70867728950e", nil, client.New("")).Header())
	assert.Equal(t, "Job ID: abc123...", NewCard("abc123", nil, client.New("")).Header())
}

func TestCardsKeepRegistryOrder(t *testing.T) {
	statuses := map[string]models.StatusRecord{
		"b": {JobID: "b", Status: models.JobStatusRunning},
	}
	cards := Cards([]string{"b", "a"}, statuses, client.New(""))

	require.Len(t, cards, 2)
	assert.Equal(t, "b", cards[0].JobID)
	assert.Equal(t, "running", cards[0].StatusLabel)
	assert.Equal(t, StatusUnknown, cards[1].StatusLabel)
}

func TestSettled(t *testing.T) {
	statuses := map[string]models.StatusRecord{
		"a": {Status: models.JobStatusDone},
		"b": {Status: models.JobStatusRunning},
	}
	assert.True(t, Settled([]string{"a"}, statuses))
	assert.False(t, Settled([]string{"a", "b"}, statuses))
	assert.False(t, Settled([]string{"c"}, statuses))
}

func TestWriteTable(t *testing.T) {
	cards := Cards([]string{"abc123", "def456"}, map[string]models.StatusRecord{
		"abc123": {Status: models.JobStatusDone, VideoURL: strPtr("/files/abc123.mp4")},
		"def456": {Status: models.JobStatusFailed, Message: "boom"},
	}, client.New(""))

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, cards))

	out := buf.String()
	assert.Contains(t, out, "/files/abc123.mp4")
	assert.Contains(t, out, "/api/video/file/abc123")
	assert.Contains(t, out, "Error: boom")
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Snapshot{}))
	assert.JSONEq(t, `{"job_ids":[],"statuses":{}}`, buf.String())
}
