package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/journallm/journallm/internal/archive"
	"github.com/journallm/journallm/internal/pipeline"
)

type fakeReporter struct {
	report string
	err    error
}

func (r *fakeReporter) Report(_ context.Context, _ string) (string, error) {
	return r.report, r.err
}

func setupTestServer(t *testing.T, reporter Reporter) *Server {
	t.Helper()

	pipe := pipeline.New(archive.DefaultLimits(), nil, zap.NewNop())
	server, err := NewServer(pipe, reporter, NewJobStore(time.Hour), zap.NewNop(), nil)
	require.NoError(t, err)
	return server
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// waitForJob polls until the job leaves StatusProcessing.
func waitForJob(t *testing.T, server *Server, id string) Job {
	t.Helper()

	var job Job
	require.Eventually(t, func() bool {
		j, ok := server.jobs.Get(id)
		if !ok || j.Status == StatusProcessing {
			return false
		}
		job = j
		return true
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

const sampleJournal = `{"entries": [
	{"creationDate": "2024-03-01T08:00:00Z", "text": "Morning pages."},
	{"creationDate": "2024-03-02T08:00:00Z", "text": "Slept badly."}
]}`

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		pipe := pipeline.New(archive.DefaultLimits(), nil, zap.NewNop())
		cfg := &Config{Host: "localhost", Port: 8080, MaxUploadBytes: 1 << 20}

		server, err := NewServer(pipe, nil, NewJobStore(time.Hour), zap.NewNop(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, server.echo)
		assert.Equal(t, cfg, server.config)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server := setupTestServer(t, nil)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 8080, server.config.Port)
		assert.Equal(t, int64(100<<20), server.config.MaxUploadBytes)
	})

	t.Run("returns error when pipeline is nil", func(t *testing.T) {
		_, err := NewServer(nil, nil, NewJobStore(time.Hour), zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "pipeline cannot be nil")
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		pipe := pipeline.New(archive.DefaultLimits(), nil, zap.NewNop())
		_, err := NewServer(pipe, nil, NewJobStore(time.Hour), nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when job store is nil", func(t *testing.T) {
		pipe := pipeline.New(archive.DefaultLimits(), nil, zap.NewNop())
		_, err := NewServer(pipe, nil, nil, zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "job store cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleIndex(t *testing.T) {
	server := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "JournalLM")
	assert.Contains(t, rec.Body.String(), `action="/api/v1/jobs"`)
}

func TestHandleUpload(t *testing.T) {
	t.Run("accepts journal json and completes job", func(t *testing.T) {
		server := setupTestServer(t, &fakeReporter{report: "# Advice\n\nSleep earlier."})

		body, contentType := multipartUpload(t, "daily.json", []byte(sampleJournal))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, StatusProcessing, resp.Status)

		job := waitForJob(t, server, resp.ID)
		assert.Equal(t, StatusComplete, job.Status)
		assert.Equal(t, 1, job.Journals)
		assert.Equal(t, 2, job.Entries)
		assert.Contains(t, job.Document, "<journal>")
		assert.Contains(t, job.Document, "Morning pages.")
		assert.Equal(t, "# Advice\n\nSleep earlier.", job.Report)
	})

	t.Run("fails job when extraction fails", func(t *testing.T) {
		server := setupTestServer(t, nil)

		body, contentType := multipartUpload(t, "broken.json", []byte("not json at all"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		job := waitForJob(t, server, resp.ID)
		assert.Equal(t, StatusError, job.Status)
		assert.Contains(t, job.Error, "extraction failed")
	})

	t.Run("fails job when reporter fails", func(t *testing.T) {
		server := setupTestServer(t, &fakeReporter{err: errors.New("api unavailable")})

		body, contentType := multipartUpload(t, "daily.json", []byte(sampleJournal))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		job := waitForJob(t, server, resp.ID)
		assert.Equal(t, StatusError, job.Status)
		assert.Contains(t, job.Error, "advice generation failed")
	})

	t.Run("rejects missing file field", func(t *testing.T) {
		server := setupTestServer(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(""))
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unsupported file type", func(t *testing.T) {
		server := setupTestServer(t, nil)

		body, contentType := multipartUpload(t, "notes.txt", []byte("plain text"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("rejects oversized upload", func(t *testing.T) {
		pipe := pipeline.New(archive.DefaultLimits(), nil, zap.NewNop())
		server, err := NewServer(pipe, nil, NewJobStore(time.Hour), zap.NewNop(), &Config{
			Host:           "localhost",
			Port:           8080,
			MaxUploadBytes: 64,
		})
		require.NoError(t, err)

		body, contentType := multipartUpload(t, "daily.json", bytes.Repeat([]byte("x"), 200))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestHandleJobStatus(t *testing.T) {
	server := setupTestServer(t, nil)

	t.Run("unknown job returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns job fields", func(t *testing.T) {
		job := server.jobs.Create("backup.zip")
		server.jobs.Complete(job.ID, "<journal/>", "", 1, 3, 0, false)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got Job
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, StatusComplete, got.Status)
		assert.Equal(t, 3, got.Entries)

		// The document and report never travel through the status API.
		assert.NotContains(t, rec.Body.String(), "<journal/>")
	})
}

func TestHandleReportPage(t *testing.T) {
	server := setupTestServer(t, nil)

	t.Run("processing job gets wait page", func(t *testing.T) {
		job := server.jobs.Create("backup.zip")

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID, nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http-equiv=\"refresh\"")
	})

	t.Run("complete job renders markdown", func(t *testing.T) {
		job := server.jobs.Create("daily.json")
		server.jobs.Complete(job.ID, "<journal/>", "# Advice\n\nGo to bed **earlier**.", 1, 2, 0, false)

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID, nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1")
		assert.Contains(t, rec.Body.String(), "<strong>earlier</strong>")
		assert.Contains(t, rec.Body.String(), "/jobs/"+job.ID+"/journal.xml")
	})

	t.Run("complete job without reporter offers download", func(t *testing.T) {
		job := server.jobs.Create("daily.json")
		server.jobs.Complete(job.ID, "<journal/>", "", 1, 2, 0, false)

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID, nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Insights are disabled")
	})

	t.Run("failed job shows error", func(t *testing.T) {
		job := server.jobs.Create("backup.zip")
		server.jobs.Fail(job.ID, "extraction failed: invalid zip archive")

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID, nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid zip archive")
	})

	t.Run("unknown job returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs/nope", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleDownload(t *testing.T) {
	server := setupTestServer(t, nil)

	t.Run("serves canonical document", func(t *testing.T) {
		job := server.jobs.Create("daily.json")
		server.jobs.Complete(job.ID, "<?xml version=\"1.0\"?>\n<journal/>\n", "", 1, 1, 0, false)

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID+"/journal.xml", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "journal.xml")
		assert.Contains(t, rec.Body.String(), "<journal/>")
	})

	t.Run("incomplete job returns 409", func(t *testing.T) {
		job := server.jobs.Create("daily.json")

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID+"/journal.xml", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)
	server.metrics.RecordJob("complete", 1.5)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "journallm_jobs_total")
}
