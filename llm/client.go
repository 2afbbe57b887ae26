// Package llm defines the language model collaborator contract used for
// relevance scoring and final answer synthesis, with an OpenAI-backed
// production adapter.
package llm

import (
	"context"
	"errors"
)

// ErrScoreUnavailable reports that the scoring capability failed for a
// candidate. The reranker treats it as a signal to fall back to the
// candidate's retrieval score instead of dropping the candidate.
var ErrScoreUnavailable = errors.New("relevance scoring unavailable")

// Completer produces a completion from a system and user message
type Completer interface {
	Complete(ctx context.Context, system string, user string) (string, error)
}

// Scorer rates the relevance of a candidate text to a question.
// Implementations return a value where higher means more relevant; the
// scale only needs to be internally consistent. Failures must wrap
// ErrScoreUnavailable so callers can distinguish them from context
// cancellation.
type Scorer interface {
	Score(ctx context.Context, question string, candidate string) (float64, error)
}

// Client is the full language model service contract
type Client interface {
	Completer
	Scorer
}
