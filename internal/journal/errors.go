package journal

import "errors"

// Document validation errors.
var (
	// ErrDecode indicates the document bytes are not valid UTF-8 JSON.
	ErrDecode = errors.New("document could not be decoded")

	// ErrSchema indicates the document decoded but is not a keyed record
	// with an "entries" list.
	ErrSchema = errors.New("document does not match journal schema")
)
