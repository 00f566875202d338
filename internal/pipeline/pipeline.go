package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/journallm/journallm/internal/archive"
	"github.com/journallm/journallm/internal/budget"
	"github.com/journallm/journallm/internal/canonical"
	"github.com/journallm/journallm/internal/journal"
)

// Pipeline runs the extraction stages over one input. It carries no
// per-run state and is safe for concurrent use; each Run owns its own
// workspace and journal set.
type Pipeline struct {
	limits   archive.Limits
	enforcer *budget.Enforcer
	logger   *zap.Logger
}

// Result is the outcome of a successful run. A run with zero journals
// is a valid empty result, distinguished from a failure.
type Result struct {
	// Document is the canonical XML document, already budget-bounded.
	Document string
	// Journals and Entries count what was merged.
	Journals int
	Entries  int
	// Skipped counts source documents dropped for per-file decode or
	// schema failures during a multi-document run.
	Skipped int
	// Truncated reports that the budget enforcer cut older content.
	// Truncation is a lossy-but-successful outcome, not an error.
	Truncated bool
}

// New creates a pipeline. A nil enforcer disables budget enforcement;
// a nil logger silences the pipeline.
func New(limits archive.Limits, enforcer *budget.Enforcer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{limits: limits, enforcer: enforcer, logger: logger}
}

// Run executes unpack, load, merge, serialize and budget enforcement
// over the input, in that order, and returns the bounded canonical
// document.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	switch in.kind {
	case KindCanonicalPath:
		data, err := readInputFile(in.path)
		if err != nil {
			return nil, err
		}
		return p.finish(ctx, &Result{}, string(data))
	case KindCanonicalBytes:
		return p.finish(ctx, &Result{}, string(in.data))
	case KindArchivePath, KindArchiveBytes:
		return p.runArchive(ctx, in)
	case KindDocumentPath, KindDocumentBytes:
		return p.runDocument(ctx, in)
	default:
		return nil, fmt.Errorf("%w: unknown input kind %d", ErrUnsupportedFileType, in.kind)
	}
}

func (p *Pipeline) runArchive(ctx context.Context, in Input) (*Result, error) {
	var (
		ws  *archive.Workspace
		err error
	)
	if in.kind == KindArchivePath {
		if _, statErr := os.Stat(in.path); os.IsNotExist(statErr) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, in.path)
		}
		ws, err = archive.Unpack(in.path, p.limits)
	} else {
		ws, err = archive.UnpackBytes(in.data, p.limits)
	}
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	docs, err := ws.Documents()
	if err != nil {
		return nil, err
	}
	p.logger.Debug("archive unpacked",
		zap.Int("documents", len(docs)),
		zap.String("workspace", ws.Root()))

	result := &Result{}
	set := journal.NewJournalSet()
	for _, path := range docs {
		data, err := os.ReadFile(path)
		if err != nil {
			p.logger.Warn("skipping unreadable document",
				zap.String("file", path), zap.Error(err))
			result.Skipped++
			continue
		}
		j, err := journal.LoadDocument(data, journal.NameFromFile(path))
		if err != nil {
			// Per-file input-shape failures are recoverable in a
			// multi-document run.
			p.logger.Warn("skipping invalid journal document",
				zap.String("file", path), zap.Error(err))
			result.Skipped++
			continue
		}
		set.Add(j)
	}
	return p.serialize(ctx, result, set)
}

func (p *Pipeline) runDocument(ctx context.Context, in Input) (*Result, error) {
	data := in.data
	name := in.name
	if in.kind == KindDocumentPath {
		var err error
		data, err = readInputFile(in.path)
		if err != nil {
			return nil, err
		}
		name = journal.NameFromFile(in.path)
	}

	// Single-document runs have nothing to fall back on; validation
	// failures are fatal.
	j, err := journal.LoadDocument(data, name)
	if err != nil {
		return nil, err
	}

	set := journal.NewJournalSet()
	set.Add(j)
	return p.serialize(ctx, &Result{}, set)
}

func (p *Pipeline) serialize(ctx context.Context, result *Result, set *journal.JournalSet) (*Result, error) {
	result.Journals = set.Len()
	result.Entries = set.EntryCount()

	doc, err := canonical.Serialize(set)
	if err != nil {
		return nil, err
	}
	p.logger.Info("canonical document built",
		zap.Int("journals", result.Journals),
		zap.Int("entries", result.Entries),
		zap.Int("skipped", result.Skipped),
		zap.Int("bytes", len(doc)))

	return p.finish(ctx, result, doc)
}

// finish applies budget enforcement to the assembled document.
func (p *Pipeline) finish(ctx context.Context, result *Result, doc string) (*Result, error) {
	if p.enforcer != nil {
		bounded, truncated, err := p.enforcer.Enforce(ctx, doc)
		if err != nil {
			return nil, err
		}
		if truncated {
			p.logger.Info("document truncated to fit budget",
				zap.Int("original_bytes", len(doc)),
				zap.Int("bounded_bytes", len(bounded)))
		}
		doc = bounded
		result.Truncated = truncated
	}
	result.Document = doc
	return result, nil
}

func readInputFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}
