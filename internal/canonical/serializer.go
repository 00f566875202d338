package canonical

import (
	"encoding/xml"
	"fmt"

	"github.com/journallm/journallm/internal/journal"
)

// entryElement is the canonical XML shape of one entry.
type entryElement struct {
	XMLName  xml.Name `xml:"entry"`
	Created  string   `xml:"created"`
	Modified string   `xml:"modified"`
	Loc      string   `xml:"loc,omitempty"`
	Journal  string   `xml:"journal,omitempty"`
	Text     string   `xml:"text"`
}

// flatDocument is the single-journal document: entries directly under
// the root.
type flatDocument struct {
	XMLName xml.Name       `xml:"journal"`
	Entries []entryElement `xml:"entry"`
}

// groupElement is one named journal inside a grouped document.
type groupElement struct {
	XMLName xml.Name       `xml:"journal"`
	Name    string         `xml:"name,attr"`
	Entries []entryElement `xml:"entry"`
}

// groupedDocument is the multi-journal document: one sub-element per
// named journal.
type groupedDocument struct {
	XMLName xml.Name       `xml:"journals"`
	Groups  []groupElement `xml:"journal"`
}

// Serialize renders the set as the canonical document. Sets holding one
// journal (or none) produce the flat shape; sets holding more produce
// the grouped shape with journals in sorted name order.
func Serialize(set *journal.JournalSet) (string, error) {
	if set.Len() > 1 {
		return serializeGrouped(set)
	}
	return serializeFlat(set.Merge())
}

// SerializeEntries renders an already-merged entry slice as a flat
// document. Entries tagged with a journal name keep the tag as a
// <journal> child element.
func SerializeEntries(entries []journal.Entry) (string, error) {
	return serializeFlat(entries)
}

func serializeFlat(entries []journal.Entry) (string, error) {
	doc := flatDocument{Entries: toElements(entries)}
	return render(doc)
}

func serializeGrouped(set *journal.JournalSet) (string, error) {
	doc := groupedDocument{}
	for _, name := range set.Names() {
		j, _ := set.Journal(name)
		doc.Groups = append(doc.Groups, groupElement{
			Name:    name,
			Entries: toElements(j.Sorted()),
		})
	}
	return render(doc)
}

func toElements(entries []journal.Entry) []entryElement {
	out := make([]entryElement, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryElement{
			Created:  e.Created,
			Modified: e.Modified,
			Loc:      e.Location,
			Journal:  e.JournalName,
			Text:     e.Text,
		})
	}
	return out
}

func render(doc any) (string, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing canonical document: %w", err)
	}
	return xml.Header + string(body) + "\n", nil
}

// ParseFlat parses a flat canonical document back into entries. Used by
// tests and by callers that accept a pre-built canonical document.
func ParseFlat(doc string) ([]journal.Entry, error) {
	var parsed flatDocument
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, fmt.Errorf("parsing canonical document: %w", err)
	}
	entries := make([]journal.Entry, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		entries = append(entries, journal.Entry{
			Created:     e.Created,
			Modified:    e.Modified,
			Location:    e.Loc,
			JournalName: e.Journal,
			Text:        e.Text,
		})
	}
	return entries, nil
}
