package llm

import "context"

// TextGenerator is an interface for generating text from a prompt. The
// clipper depends on it so tests can swap in a canned implementation.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
