// Package http provides the browser shell for JournalLM: upload a
// journal backup, watch the job, and read the rendered advice.
//
// Uploads are processed asynchronously. Each upload creates a job with
// a UUID, runs extraction and the advice prompt in a background
// goroutine, and expires from the in-memory store after a TTL. The
// server exposes JSON endpoints for polling plus HTML pages for the
// upload form and the finished report.
package http
