package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/psantana5/vidgen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsRequestBody(t *testing.T) {
	var got models.GenerationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/video/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"job_id":"abc123"}`))
	}))
	defer server.Close()

	c := New(server.URL + "/")
	id, err := c.Generate(context.Background(), models.GenerationRequest{Prompt: "a cat", DurationSeconds: 10, RefineWithAI: true})
	require.NoError(t, err)

	assert.Equal(t, "abc123", id)
	assert.Equal(t, models.GenerationRequest{Prompt: "a cat", DurationSeconds: 10, RefineWithAI: true}, got)
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Prompt cannot be empty"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := New(server.URL).Generate(context.Background(), models.GenerationRequest{Prompt: " "})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "API error (status 400)")
}

func TestGenerateEmptyJobID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Generate(context.Background(), models.GenerationRequest{Prompt: "x"})
	assert.Error(t, err)
}

func TestGenerateNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url).Generate(context.Background(), models.GenerationRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach backend")
}

func TestStatusDecodesRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/video/status/abc123", r.URL.Path)
		w.Write([]byte(`{"job_id":"abc123","status":"done","message":"Completed","video_url":"/files/abc123.mp4"}`))
	}))
	defer server.Close()

	rec, err := New(server.URL).Status(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusDone, rec.Status)
	assert.Equal(t, "Completed", rec.Message)
	require.NotNil(t, rec.VideoURL)
	assert.Equal(t, "/files/abc123.mp4", *rec.VideoURL)
}

func TestStatusFillsMissingJobID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"queued"}`))
	}))
	defer server.Close()

	rec, err := New(server.URL).Status(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", rec.JobID)
}

func TestStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Job not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL).Status(context.Background(), "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestStatusHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(server.URL).Status(ctx, "abc123")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocators(t *testing.T) {
	c := New("http://localhost:8081/")
	assert.Equal(t, "http://localhost:8081/api/video/file/abc123", c.FileURL("abc123"))
	assert.Equal(t, "http://localhost:8081/videos/abc123.mp4", c.ResolveURL("/videos/abc123.mp4"))
	assert.Equal(t, "http://localhost:8081/videos/abc123.mp4", c.ResolveURL("videos/abc123.mp4"))
	assert.Equal(t, "https://cdn.example.com/v.mp4", c.ResolveURL("https://cdn.example.com/v.mp4"))
	assert.Equal(t, "http://cdn.example.com/a.mp4", c.ResolveURL("//cdn.example.com/a.mp4"))
	assert.Equal(t, "https://cdn.example.com/a.mp4", New("https://video.example.com").ResolveURL("//cdn.example.com/a.mp4"))

	relative := New("")
	assert.Equal(t, "/api/video/file/abc123", relative.FileURL("abc123"))
	assert.Equal(t, "/files/abc123.mp4", relative.ResolveURL("/files/abc123.mp4"))
	assert.Equal(t, "/api/video/file/a%2Fb", relative.FileURL("a/b"))
}
