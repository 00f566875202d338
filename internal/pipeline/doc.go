// Package pipeline ties the extraction stages together: unpack an
// untrusted backup, load and validate its journal documents, merge them
// into one chronologically ordered set, serialize the canonical XML
// document, and fit it to the consumer's token budget.
//
// The pipeline is synchronous and single-threaded per invocation; the
// stages run strictly in order and all blocking work is local
// filesystem and memory access bounded by the archive limits. A run
// owns its temporary workspace and shares no mutable state with other
// runs, so callers may execute pipelines concurrently without locking.
// There is no mid-run cancellation: a run completes or fails outright,
// and callers wanting timeouts wrap the whole Run call.
//
// # Error classification
//
// Stage failures cross the pipeline boundary as one of the sentinel
// errors re-exported in errors.go, never as raw internal errors. In
// multi-document runs a per-file decode or schema failure is logged,
// counted in Result.Skipped and does not fail the run; the same failure
// on a single-document input is fatal. Resource-limit violations are
// always fatal and leave nothing extracted on disk.
package pipeline
