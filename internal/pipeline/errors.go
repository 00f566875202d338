package pipeline

import (
	"errors"

	"github.com/journallm/journallm/internal/archive"
	"github.com/journallm/journallm/internal/journal"
)

// Input resolution errors.
var (
	// ErrFileNotFound indicates the input path does not exist. Reported
	// before any processing begins.
	ErrFileNotFound = errors.New("input file not found")

	// ErrUnsupportedFileType indicates the input extension is not one of
	// .zip, .json or .xml.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// Stage errors re-exported so callers can match the full taxonomy with
// a single import.
var (
	ErrInvalidArchive  = archive.ErrInvalidArchive
	ErrArchiveTooLarge = archive.ErrArchiveTooLarge
	ErrTooManyEntries  = archive.ErrTooManyEntries
	ErrDecode          = journal.ErrDecode
	ErrSchema          = journal.ErrSchema
)
