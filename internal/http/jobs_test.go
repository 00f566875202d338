package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStoreCreateAndGet(t *testing.T) {
	store := NewJobStore(time.Hour)

	job := store.Create("backup.zip")
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "backup.zip", job.Filename)
	assert.Equal(t, StatusProcessing, job.Status)

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, job.ID, got.ID)

	_, ok = store.Get("no-such-job")
	assert.False(t, ok)
}

func TestJobStoreComplete(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := store.Create("daily.json")

	store.Complete(job.ID, "<journal/>", "# Advice", 2, 40, 1, true)

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, "<journal/>", got.Document)
	assert.Equal(t, "# Advice", got.Report)
	assert.Equal(t, 2, got.Journals)
	assert.Equal(t, 40, got.Entries)
	assert.Equal(t, 1, got.Skipped)
	assert.True(t, got.Truncated)
	assert.Empty(t, got.Error)
}

func TestJobStoreFail(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := store.Create("daily.json")

	store.Fail(job.ID, "extraction failed: bad zip")

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "extraction failed: bad zip", got.Error)
}

func TestJobStoreExpiry(t *testing.T) {
	store := NewJobStore(time.Hour)

	now := time.Now()
	store.now = func() time.Time { return now }
	old := store.Create("old.zip")

	// An expired job is invisible to Get even before it is swept.
	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, ok := store.Get(old.ID)
	assert.False(t, ok)

	// The next Create sweeps it out of the table.
	fresh := store.Create("fresh.zip")
	assert.Equal(t, 1, store.Len())

	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)
}

func TestJobStoreUpdateUnknownID(t *testing.T) {
	store := NewJobStore(time.Hour)

	// Updates to expired or unknown jobs are dropped silently; the
	// background goroutine may outlive its job's TTL.
	store.Complete("gone", "doc", "report", 1, 1, 0, false)
	store.Fail("gone", "too late")
	assert.Equal(t, 0, store.Len())
}
