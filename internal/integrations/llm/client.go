// Package llm talks to remote text-generation services.
package llm

import (
	"context"
	"errors"
)

// ErrTimeout is returned when a generation call runs past its deadline
var ErrTimeout = errors.New("generation timed out")

// Completer produces text for a system instruction and a user prompt.
// Implementations make a single attempt and never retry.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// timeoutErr maps deadline expiry to ErrTimeout and leaves other errors alone
func timeoutErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return ErrTimeout
	}
	return err
}
