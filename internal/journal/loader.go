package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// rawEntry mirrors the shape of one record in a Day One JSON export.
// Unknown fields are ignored; absent optionals decode to "".
type rawEntry struct {
	CreationDate string `json:"creationDate"`
	ModifiedDate string `json:"modifiedDate"`
	Location     struct {
		Address string `json:"address"`
	} `json:"location"`
	Text string `json:"text"`
}

// NameFromFile derives a journal name from a source file path by
// stripping the directory and extension.
func NameFromFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadDocument parses one structured journal document into a Journal.
// The document must be UTF-8 JSON whose top level is an object carrying
// an "entries" array. Decoding failures return ErrDecode; structural
// failures return ErrSchema. Missing optional fields on a record become
// empty strings in the canonical entry, never absent.
func LoadDocument(data []byte, name string) (*Journal, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrDecode)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrDecode)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: top level is not a keyed record", ErrSchema)
	}

	entriesRaw, ok := top["entries"]
	if !ok {
		return nil, fmt.Errorf("%w: missing entries field", ErrSchema)
	}
	// A JSON null unmarshals into a slice without error; require an
	// actual array so "entries": null is rejected rather than treated
	// as an empty journal.
	if trimmed := bytes.TrimSpace(entriesRaw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: entries is not a list", ErrSchema)
	}

	var raw []rawEntry
	if err := json.Unmarshal(entriesRaw, &raw); err != nil {
		return nil, fmt.Errorf("%w: entries is not a list of records", ErrSchema)
	}

	j := &Journal{Name: name, Entries: make([]Entry, 0, len(raw))}
	for _, r := range raw {
		j.Entries = append(j.Entries, Entry{
			Created:  r.CreationDate,
			Modified: r.ModifiedDate,
			Location: r.Location.Address,
			Text:     r.Text,
		})
	}
	return j, nil
}
