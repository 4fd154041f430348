package services

import (
	"github.com/shopspring/decimal"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// Default resolver thresholds.
const (
	DefaultDecreaseTolerance    = 0.9
	DefaultMaterialityThreshold = 0.05
)

// ResolverOptions configures the plausibility filters for monetary fields.
type ResolverOptions struct {
	// DecreaseTolerance drops a new value below old*DecreaseTolerance.
	DecreaseTolerance float64
	// MaterialityThreshold drops a relative change at or below this fraction.
	MaterialityThreshold float64
}

// DefaultResolverOptions returns the standard thresholds.
func DefaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		DecreaseTolerance:    DefaultDecreaseTolerance,
		MaterialityThreshold: DefaultMaterialityThreshold,
	}
}

// Resolver reduces raw candidates to at most one per (startup, field) and
// drops implausible or immaterial changes.
type Resolver struct {
	tolerance   decimal.Decimal
	materiality decimal.Decimal
}

// NewResolver creates a resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	return &Resolver{
		tolerance:   decimal.NewFromFloat(opts.DecreaseTolerance),
		materiality: decimal.NewFromFloat(opts.MaterialityThreshold),
	}
}

// Resolve keeps one winner per (startup, field) group, then filters the winners.
// Output follows the order in which groups were first seen.
func (r *Resolver) Resolve(candidates []entities.CandidateChange) []entities.CandidateChange {
	winners := make(map[entities.CandidateKey]int, len(candidates))
	var order []entities.CandidateKey
	var chosen []entities.CandidateChange

	for _, c := range candidates {
		key := c.Key()
		idx, seen := winners[key]
		if !seen {
			winners[key] = len(chosen)
			order = append(order, key)
			chosen = append(chosen, c)
			continue
		}
		if beats(c, chosen[idx]) {
			chosen[idx] = c
		}
	}

	out := make([]entities.CandidateChange, 0, len(order))
	for _, key := range order {
		c := chosen[winners[key]]
		if r.keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// beats reports whether challenger replaces incumbent: higher confidence, or
// equal confidence and strictly later observation.
func beats(challenger, incumbent entities.CandidateChange) bool {
	cr, ir := challenger.Confidence.Rank(), incumbent.Confidence.Rank()
	if cr != ir {
		return cr > ir
	}
	return challenger.ObservedAt.After(incumbent.ObservedAt)
}

func (r *Resolver) keep(c entities.CandidateChange) bool {
	if c.IsNoOp() {
		return false
	}
	if !isFinite(c.OldValue) || !isFinite(c.NewValue) {
		return false
	}
	if !c.Field.IsMonetary() {
		return true
	}

	newNum, ok := c.NewValue.Number()
	if !ok {
		return false
	}
	oldNum, _ := c.OldValue.Number()

	oldVal := decimal.NewFromFloat(oldNum)
	newVal := decimal.NewFromFloat(newNum)

	if newVal.LessThan(oldVal.Mul(r.tolerance)) {
		return false
	}

	base := decimal.Max(oldVal, decimal.NewFromInt(1))
	change := newVal.Sub(oldVal).Abs().Div(base)
	return change.GreaterThan(r.materiality)
}

// isFinite reports whether v is not a number or is a finite one.
func isFinite(v entities.Value) bool {
	n, ok := v.Number()
	if !ok {
		return true
	}
	_, ok = finiteFloat(n)
	return ok
}
