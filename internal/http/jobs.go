package http

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an upload job.
type Status string

const (
	// StatusProcessing means the job is being extracted or prompted.
	StatusProcessing Status = "processing"
	// StatusComplete means the document (and report, when insights are
	// enabled) are ready.
	StatusComplete Status = "complete"
	// StatusError means the job failed; Job.Error holds the message.
	StatusError Status = "error"
)

// Job tracks one uploaded backup through extraction and reporting.
type Job struct {
	ID       string    `json:"id"`
	Filename string    `json:"filename"`
	Status   Status    `json:"status"`
	Created  time.Time `json:"created"`

	// Document is the canonical XML, kept for download.
	Document string `json:"-"`
	// Report is the advice markdown, empty until complete.
	Report string `json:"-"`
	// Error is set only when Status is StatusError.
	Error string `json:"error,omitempty"`

	Journals  int  `json:"journals"`
	Entries   int  `json:"entries"`
	Skipped   int  `json:"skipped"`
	Truncated bool `json:"truncated"`
}

// JobStore is an in-memory job table with TTL expiry. Jobs are swept
// lazily on Create, so an idle server holds finished jobs until the
// next upload; that is acceptable for a single-user shell.
type JobStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	jobs map[string]*Job
	now  func() time.Time
}

// NewJobStore creates a store whose jobs expire ttl after creation.
func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		ttl:  ttl,
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Create registers a new processing job and returns a snapshot of it.
// Expired jobs are swept as a side effect.
func (s *JobStore) Create(filename string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	job := &Job{
		ID:       uuid.NewString(),
		Filename: filename,
		Status:   StatusProcessing,
		Created:  s.now(),
	}
	s.jobs[job.ID] = job
	return *job
}

// Get returns a snapshot of the job, or false if it does not exist or
// has expired.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok || s.now().Sub(job.Created) > s.ttl {
		return Job{}, false
	}
	return *job, true
}

// Complete marks the job finished and records its outputs.
func (s *JobStore) Complete(id, document, report string, journals, entries, skipped int, truncated bool) {
	s.update(id, func(job *Job) {
		job.Status = StatusComplete
		job.Document = document
		job.Report = report
		job.Journals = journals
		job.Entries = entries
		job.Skipped = skipped
		job.Truncated = truncated
	})
}

// Fail marks the job errored with the given message.
func (s *JobStore) Fail(id, message string) {
	s.update(id, func(job *Job) {
		job.Status = StatusError
		job.Error = message
	})
}

// Len reports the number of live (unswept) jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *JobStore) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

func (s *JobStore) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, job := range s.jobs {
		if job.Created.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
