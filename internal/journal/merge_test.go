package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalSet_MergeSingleJournal(t *testing.T) {
	set := NewJournalSet()
	set.Add(&Journal{Name: "Daily", Entries: []Entry{
		{Created: "2024-03-01T10:00:00Z", Text: "b"},
		{Created: "2024-01-01T10:00:00Z", Text: "a"},
	}})

	merged := set.Merge()
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].Text)
	assert.Equal(t, "b", merged[1].Text)

	// Single-journal sets do not tag entries with the journal name.
	for _, e := range merged {
		assert.Empty(t, e.JournalName)
	}
}

func TestJournalSet_MergeMultipleJournals(t *testing.T) {
	set := NewJournalSet()
	set.Add(&Journal{Name: "Work", Entries: []Entry{
		{Created: "2024-02-01T09:00:00Z", Text: "standup"},
	}})
	set.Add(&Journal{Name: "Daily", Entries: []Entry{
		{Created: "2024-01-15T09:00:00Z", Text: "morning"},
		{Created: "2024-03-01T09:00:00Z", Text: "spring"},
	}})

	merged := set.Merge()
	require.Len(t, merged, 3)

	// Global order is ascending by the raw created string.
	assert.Equal(t, []string{"morning", "standup", "spring"},
		[]string{merged[0].Text, merged[1].Text, merged[2].Text})

	// Every entry carries its owning journal's name.
	assert.Equal(t, "Daily", merged[0].JournalName)
	assert.Equal(t, "Work", merged[1].JournalName)
	assert.Equal(t, "Daily", merged[2].JournalName)
}

func TestJournalSet_MergeEmptyCreatedSortsFirst(t *testing.T) {
	set := NewJournalSet()
	set.Add(&Journal{Name: "Daily", Entries: []Entry{
		{Created: "2024-01-01T00:00:00Z", Text: "dated"},
		{Created: "", Text: "undated one"},
		{Created: "", Text: "undated two"},
	}})

	merged := set.Merge()
	require.Len(t, merged, 3)
	assert.Equal(t, "undated one", merged[0].Text)
	assert.Equal(t, "undated two", merged[1].Text, "stable sort keeps input order for ties")
	assert.Equal(t, "dated", merged[2].Text)
}

func TestJournalSet_EmptySetIsValid(t *testing.T) {
	set := NewJournalSet()
	assert.Zero(t, set.Len())
	assert.Zero(t, set.EntryCount())
	assert.Empty(t, set.Merge())
}

func TestJournalSet_NamesSorted(t *testing.T) {
	set := NewJournalSet()
	set.Add(&Journal{Name: "zebra"})
	set.Add(&Journal{Name: "alpha"})
	set.Add(&Journal{Name: "mid"})

	assert.Equal(t, []string{"alpha", "mid", "zebra"}, set.Names())
}

func TestJournalSet_AddReplacesSameName(t *testing.T) {
	set := NewJournalSet()
	set.Add(&Journal{Name: "Daily", Entries: []Entry{{Text: "old"}}})
	set.Add(&Journal{Name: "Daily", Entries: []Entry{{Text: "new"}}})

	require.Equal(t, 1, set.Len())
	j, ok := set.Journal("Daily")
	require.True(t, ok)
	require.Len(t, j.Entries, 1)
	assert.Equal(t, "new", j.Entries[0].Text)
}

func TestJournal_SortedDoesNotMutate(t *testing.T) {
	j := &Journal{Name: "Daily", Entries: []Entry{
		{Created: "2024-02-01", Text: "second"},
		{Created: "2024-01-01", Text: "first"},
	}}

	sorted := j.Sorted()
	assert.Equal(t, "first", sorted[0].Text)
	assert.Equal(t, "second", j.Entries[0].Text, "original order preserved")
}
