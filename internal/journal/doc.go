// Package journal holds the canonical in-memory model for journaling
// records: entries, the named journals that own them, and the journal
// set produced by one extraction run.
//
// The package supports:
//   - Parsing a Day One style JSON export into a validated Journal
//   - Deriving journal names from source filenames
//   - Merging multiple journals into one chronologically ordered slice
//
// # Ordering
//
// Entries are ordered by their raw creation timestamp string using plain
// lexicographic comparison, not date parsing. ISO-8601 timestamps order
// correctly under this scheme; malformed or missing timestamps never
// cause an error, they simply sort first. This is a deliberate
// robustness trade-off and downstream consumers depend on it, so it must
// not be replaced with timezone-aware parsing.
//
// A JournalSet and its journals are built fresh for every extraction run
// and discarded once the canonical document has been produced. Nothing
// in this package is persisted or shared between runs.
package journal
