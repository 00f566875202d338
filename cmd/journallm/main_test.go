package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/journallm/journallm/internal/archive"
	"github.com/journallm/journallm/internal/config"
	"github.com/journallm/journallm/internal/pipeline"
)

func TestDefaultName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 9, 0, time.UTC)

	assert.Equal(t, "journal-20240309-140509.xml", defaultName("journal", "xml", now))
	assert.Equal(t, "advice-20240309-140509.md", defaultName("advice", "md", now))
}

func TestResolveInput(t *testing.T) {
	resetFlags := func() {
		flagJournal = ""
		flagGoogleDrive = false
	}

	cfg := &config.Config{}
	logger := zap.NewNop()

	t.Run("rejects multiple sources", func(t *testing.T) {
		defer resetFlags()
		flagJournal = "journal.xml"

		_, err := resolveInput(context.Background(), cfg, logger, []string{"backup.zip"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "choose one input")
	})

	t.Run("rejects no source", func(t *testing.T) {
		defer resetFlags()

		_, err := resolveInput(context.Background(), cfg, logger, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provide a backup file")
	})

	t.Run("journal flag selects canonical input", func(t *testing.T) {
		defer resetFlags()
		flagJournal = "journal.xml"

		in, err := resolveInput(context.Background(), cfg, logger, nil)
		require.NoError(t, err)
		assert.Equal(t, pipeline.KindCanonicalPath, in.Kind())
	})
}

func TestBuildEnforcerDisabledBudget(t *testing.T) {
	cfg := &config.Config{}
	cfg.Budget.MaxTokens = 0

	enforcer, err := buildEnforcer(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, enforcer)
}

func TestExtractLimits(t *testing.T) {
	cfg := &config.Config{}
	cfg.Extract.MaxArchiveBytes = 1 << 20
	cfg.Extract.MaxArchiveEntries = 42

	limits := extractLimits(cfg)
	assert.Equal(t, archive.Limits{MaxUncompressedBytes: 1 << 20, MaxEntries: 42}, limits)
}
