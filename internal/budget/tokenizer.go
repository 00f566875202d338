package budget

import (
	"context"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// Tokenizer measures text in tokens using a local tiktoken encoding.
// It is the default Measurer when the model provider's counting
// endpoint is not in use.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer loads the named BPE encoding, falling back to
// DefaultEncoding when name is empty.
func NewTokenizer(name string) (*Tokenizer, error) {
	if name == "" {
		name = DefaultEncoding
	}
	encoding, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("loading encoding %q: %w", name, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// Measure returns the token count of text. The context is unused; the
// tokenizer works locally.
func (t *Tokenizer) Measure(_ context.Context, text string) (int, error) {
	return len(t.encoding.Encode(text, nil, nil)), nil
}
