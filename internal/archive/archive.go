package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Limits bounds how much an archive may expand to on disk.
type Limits struct {
	// MaxUncompressedBytes caps the total declared uncompressed size of
	// all members combined.
	MaxUncompressedBytes int64

	// MaxEntries caps the number of members in the archive.
	MaxEntries int
}

// DefaultLimits returns the standard bounds for journal backups:
// 500 MiB uncompressed, 10,000 members.
func DefaultLimits() Limits {
	return Limits{
		MaxUncompressedBytes: 500 * 1024 * 1024,
		MaxEntries:           10000,
	}
}

// Workspace is a scoped temporary directory holding the extracted
// contents of one archive. It exists only for the duration of a single
// pipeline run.
type Workspace struct {
	root string
}

// Root returns the workspace directory path.
func (w *Workspace) Root() string {
	return w.root
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.root)
}

// Documents returns the paths of all .json documents in the workspace,
// sorted for deterministic load order.
func (w *Workspace) Documents() ([]string, error) {
	var docs []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace: %w", err)
	}
	sort.Strings(docs)
	return docs, nil
}

// Unpack extracts the zip archive at path into a fresh workspace,
// enforcing limits before any file is written.
func Unpack(path string, limits Limits) (*Workspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	return extract(zr, limits)
}

// UnpackBytes extracts an in-memory zip archive into a fresh workspace,
// enforcing limits before any file is written.
func UnpackBytes(data []byte, limits Limits) (*Workspace, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	return extract(zr, limits)
}

func extract(zr *zip.Reader, limits Limits) (*Workspace, error) {
	if err := validate(zr, limits); err != nil {
		return nil, err
	}

	root, err := os.MkdirTemp("", "journallm-"+uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	ws := &Workspace{root: root}

	// remaining re-enforces the byte limit during the copy, so a member
	// whose header under-declares its size cannot blow past the budget.
	remaining := limits.MaxUncompressedBytes
	for _, member := range zr.File {
		written, err := extractMember(root, member, remaining)
		if err != nil {
			ws.Close()
			return nil, err
		}
		remaining -= written
	}
	return ws, nil
}

// validate checks the central directory against both limits. Nothing is
// written to disk until this passes.
func validate(zr *zip.Reader, limits Limits) error {
	if len(zr.File) > limits.MaxEntries {
		return fmt.Errorf("%w: %d members, limit %d",
			ErrTooManyEntries, len(zr.File), limits.MaxEntries)
	}

	var total uint64
	for _, member := range zr.File {
		total += member.UncompressedSize64
		if total > uint64(limits.MaxUncompressedBytes) {
			return fmt.Errorf("%w: declared size exceeds %d bytes",
				ErrArchiveTooLarge, limits.MaxUncompressedBytes)
		}
	}
	return nil
}

func extractMember(root string, member *zip.File, remaining int64) (int64, error) {
	dest, err := memberPath(root, member.Name)
	if err != nil {
		return 0, err
	}

	if member.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return 0, fmt.Errorf("creating directory %s: %w", member.Name, err)
		}
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("creating parent for %s: %w", member.Name, err)
	}

	src, err := member.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: opening member %s: %v", ErrInvalidArchive, member.Name, err)
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating file %s: %w", member.Name, err)
	}
	defer out.Close()

	// Copy at most one byte past the remaining budget so overruns are
	// detectable without reading unbounded data.
	written, err := io.Copy(out, io.LimitReader(src, remaining+1))
	if err != nil {
		return written, fmt.Errorf("%w: reading member %s: %v", ErrInvalidArchive, member.Name, err)
	}
	if written > remaining {
		return written, fmt.Errorf("%w: member %s overran declared size",
			ErrArchiveTooLarge, member.Name)
	}
	return written, nil
}

// memberPath resolves an archive member name inside root, rejecting
// absolute paths and traversal sequences that would escape it.
func memberPath(root, name string) (string, error) {
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	dest := filepath.Join(root, filepath.Clean(name))
	rel, err := filepath.Rel(root, dest)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return dest, nil
}
