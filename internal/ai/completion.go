package ai

import (
	"context"
	"strings"
)

// FailurePrefix marks completion output that describes an error instead of generated text.
const FailurePrefix = "Error:"

// Options tunes a single completion request.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Completer generates text for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Failed reports whether a completion result must be treated as a failure.
// Providers may signal failure either with err or with FailurePrefix-prefixed text.
func Failed(text string, err error) bool {
	if err != nil {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(text), FailurePrefix)
}
