package fusion

import "errors"

var (
	// ErrNoEvidence reports that retrieval produced no citable chunks
	// for a question. The orchestrator still attempts synthesis with an
	// explicit no-grounding note instead of fabricating citations.
	ErrNoEvidence = errors.New("no grounded evidence retrieved")

	// ErrSynthesis reports that the final answer completion failed
	ErrSynthesis = errors.New("answer synthesis failed")
)
