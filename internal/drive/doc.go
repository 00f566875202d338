// Package drive downloads journal backups from a Google Drive folder.
//
// It is strictly a fetch collaborator: it authenticates, finds the
// newest zip backup in the configured folder and hands its bytes to
// the pipeline, which treats them like any other archive input. OAuth
// tokens are cached on disk and refreshed automatically; the first run
// needs a one-time authorization-code exchange via Authorize.
package drive
