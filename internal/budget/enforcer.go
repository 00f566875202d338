package budget

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// TruncationMarker is prepended to a truncated document so both the
// model and any human reviewer can see that older content was dropped.
// An XML comment keeps the (possibly mid-element) tail consumable.
const TruncationMarker = "<!-- older entries truncated to fit the model's context window -->\n"

// ErrInvalidBudget indicates a zero or negative budget.
var ErrInvalidBudget = errors.New("budget must be positive")

// Measurer reports the size of a text in budget units, typically
// tokens. Implementations may call out to the model provider, so the
// context is honored.
type Measurer interface {
	Measure(ctx context.Context, text string) (int, error)
}

// Enforcer truncates documents that exceed a budget.
type Enforcer struct {
	measurer Measurer
	limit    int
}

// NewEnforcer returns an enforcer that fits documents into limit units
// as reported by the measurer.
func NewEnforcer(measurer Measurer, limit int) (*Enforcer, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBudget, limit)
	}
	return &Enforcer{measurer: measurer, limit: limit}, nil
}

// Enforce returns the document unchanged when it measures within the
// budget. Otherwise it drops the leading fraction of characters equal
// to the fractional excess, prepends TruncationMarker, and reports
// truncation. Truncation is a lossy-but-successful outcome, not an
// error.
func (e *Enforcer) Enforce(ctx context.Context, doc string) (string, bool, error) {
	measured, err := e.measurer.Measure(ctx, doc)
	if err != nil {
		return "", false, fmt.Errorf("measuring document: %w", err)
	}
	if measured <= e.limit {
		return doc, false, nil
	}

	excess := float64(measured-e.limit) / float64(measured)
	cut := int(float64(len(doc)) * excess)
	if cut > len(doc) {
		cut = len(doc)
	}
	// Never split a multi-byte rune.
	for cut < len(doc) && !utf8.RuneStart(doc[cut]) {
		cut++
	}

	return TruncationMarker + doc[cut:], true, nil
}
