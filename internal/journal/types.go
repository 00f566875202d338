package journal

import (
	"sort"
	"strings"
)

// Entry is one journaling record. Timestamp fields keep their raw
// source-provided string form; they are used only for ordering and
// display and are never parsed as dates.
type Entry struct {
	// Created is the creation timestamp, ISO-8601-like when present.
	// Empty when the source record had none; empty sorts first.
	Created string

	// Modified is the last-modification timestamp, optional.
	Modified string

	// Location is a free-text place description, optional.
	Location string

	// JournalName labels the owning journal. Set only when entries from
	// more than one journal are merged; a display label, not a pointer.
	JournalName string

	// Text is the body content. May embed newlines and markup-unsafe
	// characters; escaping is the serializer's job.
	Text string
}

// Journal is a named collection of entries from one source document.
type Journal struct {
	Name    string
	Entries []Entry
}

// Sorted returns a copy of the journal's entries in ascending order of
// the raw Created string, ties keeping input order.
func (j *Journal) Sorted() []Entry {
	out := make([]Entry, len(j.Entries))
	copy(out, j.Entries)
	sortEntries(out)
	return out
}

// JournalSet is an ordered mapping from journal name to journal,
// produced by one extraction run. It is not safe for concurrent
// mutation; each pipeline run owns its own set.
type JournalSet struct {
	names    []string
	journals map[string]*Journal
}

// NewJournalSet returns an empty set. An empty set is a valid result,
// distinct from an extraction failure.
func NewJournalSet() *JournalSet {
	return &JournalSet{journals: make(map[string]*Journal)}
}

// Add inserts a journal into the set. Adding a journal whose name is
// already present replaces the previous one; names come from filenames,
// which are unique within an extraction workspace.
func (s *JournalSet) Add(j *Journal) {
	if _, exists := s.journals[j.Name]; !exists {
		s.names = append(s.names, j.Name)
	}
	s.journals[j.Name] = j
}

// Len returns the number of journals in the set.
func (s *JournalSet) Len() int {
	return len(s.journals)
}

// EntryCount returns the total number of entries across all journals.
func (s *JournalSet) EntryCount() int {
	n := 0
	for _, j := range s.journals {
		n += len(j.Entries)
	}
	return n
}

// Names returns the journal names sorted lexicographically. Callers
// that emit journals must iterate in this order so the same set always
// serializes to the same bytes.
func (s *JournalSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	sort.Strings(out)
	return out
}

// Journal looks up a journal by name.
func (s *JournalSet) Journal(name string) (*Journal, bool) {
	j, ok := s.journals[name]
	return j, ok
}

// Merge flattens the set into a single entry slice sorted by the raw
// Created string, ascending. When the set holds more than one journal,
// every returned entry carries its owning journal's name; a
// single-journal set leaves JournalName empty to keep the canonical
// document compact. Journals are visited in sorted-name order so ties
// resolve deterministically.
func (s *JournalSet) Merge() []Entry {
	tag := len(s.journals) > 1
	merged := make([]Entry, 0, s.EntryCount())
	for _, name := range s.Names() {
		for _, e := range s.journals[name].Entries {
			if tag {
				e.JournalName = name
			}
			merged = append(merged, e)
		}
	}
	sortEntries(merged)
	return merged
}

// sortEntries orders entries by lexicographic comparison of the raw
// Created string. Stable, so equal (including empty) timestamps keep
// their input order.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, k int) bool {
		return strings.Compare(entries[i].Created, entries[k].Created) < 0
	})
}
