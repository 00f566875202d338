// Package archive safely unpacks untrusted zip backups into a scoped
// temporary workspace.
//
// Two independent limits guard against decompression bombs: total
// declared uncompressed size and member count. Both are checked against
// the archive's central directory before a single byte is written, and
// the declared sizes are re-enforced while copying so an archive that
// lies in its headers is still stopped. Member paths are validated
// against zip-slip traversal before extraction.
//
// A Workspace is private to one extraction run; its path embeds a
// generated run identifier so concurrent runs never collide. Close
// removes it entirely, and every failure path cleans up partial
// extraction before returning.
package archive
