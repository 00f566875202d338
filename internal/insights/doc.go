// Package insights turns a canonical journal document into a
// personalized advice report using the Anthropic Messages API.
//
// The Client speaks the raw HTTP API: typed request and response
// structs, API-key auth headers, and classified error responses. It
// also exposes the provider's token-counting endpoint, so the budget
// enforcer can measure documents in the same units the model bills.
// The Prompter owns the JournalLM prompt: the life-coach system prompt,
// the response-format and instruction sections wrapped around the
// journal document, and the dated assistant prefill that anchors the
// report heading.
package insights
