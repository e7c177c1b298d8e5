package protocol

import (
	"fmt"
	"math"
)

const epsilon = 1e-9

// Validate checks that a protocol can classify every total it accepts:
// bands sorted, each min <= max, adjacent bands exactly one step apart so
// they neither overlap nor leave gaps.
func Validate(p Protocol) error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidCatalog)
	}
	if p.Step <= 0 {
		return fmt.Errorf("%w: step must be positive", ErrInvalidCatalog)
	}
	if len(p.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidCatalog)
	}
	seen := make(map[string]bool, len(p.Items))
	for _, it := range p.Items {
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate item %q", ErrInvalidCatalog, it.ID)
		}
		seen[it.ID] = true
		if it.Step <= 0 || it.Min > it.Max {
			return fmt.Errorf("%w: item %q has an invalid scale", ErrInvalidCatalog, it.ID)
		}
	}
	if len(p.Bands) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidCatalog)
	}
	for i, b := range p.Bands {
		if b.Min > b.Max {
			return fmt.Errorf("%w: band %q has min > max", ErrInvalidCatalog, b.Label)
		}
		if i == 0 {
			continue
		}
		prev := p.Bands[i-1]
		if b.Min <= prev.Max {
			return fmt.Errorf("%w: band %q overlaps or is out of order with %q", ErrInvalidCatalog, b.Label, prev.Label)
		}
		if math.Abs(b.Min-prev.Max-p.Step) > epsilon {
			return fmt.Errorf("%w: gap between %q and %q", ErrInvalidCatalog, prev.Label, b.Label)
		}
	}
	return nil
}

// onScale reports whether v is one of the item's valid scores.
func onScale(it Item, v float64) bool {
	if v < it.Min-epsilon || v > it.Max+epsilon {
		return false
	}
	steps := (v - it.Min) / it.Step
	return math.Abs(steps-math.Round(steps)) < 1e-6
}
