package engine

import "context"

// Oracle proposes candidate placements for a level. Implementations are
// external services and explicitly untrusted: callers must re-validate every
// proposal, treat failures as an empty response, and never block a run on
// oracle availability.
type Oracle interface {
	Recommend(ctx context.Context, constraints Constraints, level int) ([]Proposal, error)
}
