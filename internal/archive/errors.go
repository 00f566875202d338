package archive

import "errors"

// Archive validation errors.
var (
	// ErrInvalidArchive indicates the input is not a readable zip archive.
	ErrInvalidArchive = errors.New("input is not a valid archive")

	// ErrArchiveTooLarge indicates the archive's uncompressed size exceeds
	// the configured limit.
	ErrArchiveTooLarge = errors.New("archive uncompressed size exceeds limit")

	// ErrTooManyEntries indicates the archive holds more members than the
	// configured limit.
	ErrTooManyEntries = errors.New("archive entry count exceeds limit")

	// ErrUnsafePath indicates an archive member path would escape the
	// extraction workspace.
	ErrUnsafePath = errors.New("archive member path escapes workspace")
)
