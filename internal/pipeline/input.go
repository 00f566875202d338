package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind tags the resolved input variant. Input handling is resolved once
// at the pipeline boundary; the stages never sniff types again.
type Kind int

const (
	// KindArchivePath is a zip backup on disk.
	KindArchivePath Kind = iota
	// KindArchiveBytes is a zip backup held in memory.
	KindArchiveBytes
	// KindDocumentPath is a single journal JSON document on disk.
	KindDocumentPath
	// KindDocumentBytes is a single journal JSON document in memory.
	KindDocumentBytes
	// KindCanonicalPath is a pre-built canonical XML document on disk,
	// passed through unchanged.
	KindCanonicalPath
	// KindCanonicalBytes is a pre-built canonical XML document in memory.
	KindCanonicalBytes
)

// Input is a tagged pipeline input.
type Input struct {
	kind Kind
	path string
	data []byte
	name string
}

// Kind returns the input's resolved variant.
func (in Input) Kind() Kind {
	return in.kind
}

// ArchiveFromPath wraps a zip backup on disk.
func ArchiveFromPath(path string) Input {
	return Input{kind: KindArchivePath, path: path}
}

// ArchiveFromBytes wraps an in-memory zip backup.
func ArchiveFromBytes(data []byte) Input {
	return Input{kind: KindArchiveBytes, data: data}
}

// DocumentFromPath wraps a single journal document on disk. The journal
// name derives from the filename.
func DocumentFromPath(path string) Input {
	return Input{kind: KindDocumentPath, path: path}
}

// DocumentFromBytes wraps an in-memory journal document under an
// explicit journal name.
func DocumentFromBytes(data []byte, name string) Input {
	return Input{kind: KindDocumentBytes, data: data, name: name}
}

// CanonicalFromPath wraps a pre-built canonical document on disk.
func CanonicalFromPath(path string) Input {
	return Input{kind: KindCanonicalPath, path: path}
}

// CanonicalFromBytes wraps an in-memory pre-built canonical document.
func CanonicalFromBytes(data []byte) Input {
	return Input{kind: KindCanonicalBytes, data: data}
}

// Detect resolves a file path into a tagged input by extension. The
// file must exist; a missing path is an environment error reported
// before any processing begins.
func Detect(path string) (Input, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Input{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Input{}, fmt.Errorf("stat input: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return ArchiveFromPath(path), nil
	case ".json":
		return DocumentFromPath(path), nil
	case ".xml":
		return CanonicalFromPath(path), nil
	default:
		return Input{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(path))
	}
}

// DetectBytes resolves uploaded bytes into a tagged input using the
// original filename's extension.
func DetectBytes(filename string, data []byte) (Input, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip":
		return ArchiveFromBytes(data), nil
	case ".json":
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return DocumentFromBytes(data, name), nil
	case ".xml":
		return CanonicalFromBytes(data), nil
	default:
		return Input{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(filename))
	}
}
