// Package budget fits a canonical document into a consumer-supplied
// size budget.
//
// The unit of measurement comes from a Measurer collaborator, typically
// token counts: the local tiktoken tokenizer, or the model provider's
// own counting endpoint. When a document exceeds its budget the
// Enforcer cuts the same fraction of leading characters as the
// fractional excess and prepends a visible truncation marker. There is
// no re-measure after cutting, so the result lands near the budget
// rather than exactly on it, and the cut is blind to element boundaries
// and may land mid-record. Both are accepted trade-offs: journal text
// is oldest-first, so leading truncation drops the oldest content, and
// a few percent of slack is tolerable for an LLM context window.
package budget
