package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/journallm/journallm/internal/pipeline"
)

// Reporter turns a canonical journal document into advice markdown.
// *insights.Prompter satisfies it.
type Reporter interface {
	Report(ctx context.Context, doc string) (string, error)
}

// Server provides the upload shell endpoints.
type Server struct {
	echo     *echo.Echo
	pipeline *pipeline.Pipeline
	reporter Reporter
	jobs     *JobStore
	metrics  *Metrics
	logger   *zap.Logger
	config   *Config
	markdown goldmark.Markdown
}

// Config holds HTTP server configuration.
type Config struct {
	Host           string
	Port           int
	MaxUploadBytes int64
}

// NewServer creates the upload shell. The reporter may be nil, in which
// case jobs stop after extraction and the report page serves the
// canonical document instead of advice.
func NewServer(pipe *pipeline.Pipeline, reporter Reporter, jobs *JobStore, logger *zap.Logger, cfg *Config) (*Server, error) {
	if pipe == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:           "localhost",
			Port:           8080,
			MaxUploadBytes: 100 << 20,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		pipeline: pipe,
		reporter: reporter,
		jobs:     jobs,
		metrics:  NewMetrics(),
		logger:   logger,
		config:   cfg,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check and metrics
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	// Browser pages
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/jobs/:id", s.handleReportPage)
	s.echo.GET("/jobs/:id/journal.xml", s.handleDownload)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/jobs", s.handleUpload)
	v1.GET("/jobs/:id", s.handleJobStatus)
}

// UploadResponse is the response body for POST /api/v1/jobs.
type UploadResponse struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleIndex serves the upload form.
func (s *Server) handleIndex(c echo.Context) error {
	return c.HTML(http.StatusOK, indexPage)
}

// handleUpload accepts a multipart backup upload and starts a job.
func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required")
	}
	if fh.Size > s.config.MaxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds %d byte limit", s.config.MaxUploadBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read upload")
	}
	defer f.Close()

	// The multipart header size is client-supplied; re-check while reading.
	data, err := io.ReadAll(io.LimitReader(f, s.config.MaxUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read upload")
	}
	if int64(len(data)) > s.config.MaxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds %d byte limit", s.config.MaxUploadBytes))
	}

	in, err := pipeline.DetectBytes(fh.Filename, data)
	if err != nil {
		if errors.Is(err, pipeline.ErrUnsupportedFileType) {
			return echo.NewHTTPError(http.StatusUnsupportedMediaType,
				"expected a .zip backup, .json journal, or .xml document")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job := s.jobs.Create(fh.Filename)
	s.metrics.RecordUpload(int64(len(data)))
	s.logger.Info("upload accepted",
		zap.String("job_id", job.ID),
		zap.String("filename", fh.Filename),
		zap.Int("bytes", len(data)),
	)

	go s.process(job.ID, in)

	return c.JSON(http.StatusAccepted, UploadResponse{ID: job.ID, Status: job.Status})
}

// process runs extraction and the advice prompt for one job. It runs in
// its own goroutine, detached from the upload request's context.
func (s *Server) process(id string, in pipeline.Input) {
	start := time.Now()
	ctx := context.Background()

	result, err := s.pipeline.Run(ctx, in)
	if err != nil {
		s.failJob(id, start, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	var report string
	if s.reporter != nil {
		report, err = s.reporter.Report(ctx, result.Document)
		if err != nil {
			s.failJob(id, start, fmt.Sprintf("advice generation failed: %v", err))
			return
		}
	}

	s.jobs.Complete(id, result.Document, report,
		result.Journals, result.Entries, result.Skipped, result.Truncated)
	s.metrics.RecordJob("complete", time.Since(start).Seconds())
	s.logger.Info("job complete",
		zap.String("job_id", id),
		zap.Int("journals", result.Journals),
		zap.Int("entries", result.Entries),
		zap.Int("skipped", result.Skipped),
		zap.Bool("truncated", result.Truncated),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *Server) failJob(id string, start time.Time, message string) {
	s.jobs.Fail(id, message)
	s.metrics.RecordJob("error", time.Since(start).Seconds())
	s.logger.Warn("job failed", zap.String("job_id", id), zap.String("error", message))
}

// handleJobStatus returns the job as JSON for polling.
func (s *Server) handleJobStatus(c echo.Context) error {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "job not found or expired")
	}
	return c.JSON(http.StatusOK, job)
}

// handleReportPage renders the advice as HTML. While the job is still
// processing it serves a self-refreshing wait page.
func (s *Server) handleReportPage(c echo.Context) error {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "job not found or expired")
	}

	switch job.Status {
	case StatusProcessing:
		return c.HTML(http.StatusOK, processingPage)
	case StatusError:
		return s.renderPage(c, reportTemplate, reportData{
			Filename: job.Filename,
			Error:    job.Error,
		})
	}

	body, err := s.renderMarkdown(job.Report)
	if err != nil {
		s.logger.Error("render report", zap.String("job_id", job.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot render report")
	}

	return s.renderPage(c, reportTemplate, reportData{
		Filename:  job.Filename,
		Body:      body,
		Document:  job.Report == "",
		JobID:     job.ID,
		Journals:  job.Journals,
		Entries:   job.Entries,
		Skipped:   job.Skipped,
		Truncated: job.Truncated,
	})
}

// handleDownload serves the canonical XML document.
func (s *Server) handleDownload(c echo.Context) error {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "job not found or expired")
	}
	if job.Status != StatusComplete {
		return echo.NewHTTPError(http.StatusConflict, "job is not complete")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="journal.xml"`)
	return c.Blob(http.StatusOK, "application/xml", []byte(job.Document))
}

// renderMarkdown converts advice markdown to HTML. The result is
// trusted: it comes from our own prompt, not from user input.
func (s *Server) renderMarkdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

type reportData struct {
	Filename  string
	Body      template.HTML
	Error     string
	Document  bool
	JobID     string
	Journals  int
	Entries   int
	Skipped   int
	Truncated bool
}

func (s *Server) renderPage(c echo.Context, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot render page")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
