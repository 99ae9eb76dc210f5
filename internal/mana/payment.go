// internal/mana/payment.go
package mana

import "fmt"

// CanPay reports whether pool covers cost: every colored requirement is
// met by same-colored mana, and whatever remains after the colored
// requirements are set aside sums to at least the generic requirement.
func CanPay(pool Pool, cost Cost) bool {
	leftover := 0
	for _, col := range Colors {
		have := pool.Get(col)
		need := cost.Colored(col)
		if have < need {
			return false
		}
		leftover += have - need
	}
	return leftover >= cost.Generic
}

// Pay deducts cost from pool and returns the resulting pool. The colored
// requirements are deducted directly; the generic requirement is covered
// by the caller-chosen alloc (color -> count). Pay never partially
// mutates: on any failure the input pool is returned unchanged alongside
// the error.
func Pay(pool Pool, cost Cost, alloc map[Color]int) (Pool, error) {
	allocTotal := 0
	for col, n := range alloc {
		if !IsValidColor(string(col)) {
			return pool, fmt.Errorf("invalid color %q in generic allocation", col)
		}
		if n < 0 {
			return pool, fmt.Errorf("negative allocation for %s", col)
		}
		allocTotal += n
	}
	if allocTotal != cost.Generic {
		return pool, fmt.Errorf("generic allocation sums to %d, cost requires %d", allocTotal, cost.Generic)
	}

	out := pool
	for _, col := range Colors {
		need := cost.Colored(col) + alloc[col]
		have := out.Get(col)
		if have < need {
			return pool, fmt.Errorf("not enough %s mana: have %d, need %d", col, have, need)
		}
		out.set(col, have-need)
	}
	return out, nil
}

// SuggestGenericPayment implements the auto-resolution policy that sits
// just above payment: after colored requirements are set aside, if only
// one color has leftover mana, or the leftover total exactly equals the
// generic requirement, the allocation is unambiguous and is returned
// with ok=true. Otherwise the caller must prompt for an explicit
// allocation. Note the unambiguous choice can still be strategically
// suboptimal for later spells this turn; the suggestion is advisory.
func SuggestGenericPayment(pool Pool, cost Cost) (map[Color]int, bool) {
	if !CanPay(pool, cost) {
		return nil, false
	}
	if cost.Generic == 0 {
		return map[Color]int{}, true
	}

	leftover := map[Color]int{}
	leftoverTotal := 0
	colorsWithLeftover := 0
	for _, col := range Colors {
		rem := pool.Get(col) - cost.Colored(col)
		if rem > 0 {
			leftover[col] = rem
			leftoverTotal += rem
			colorsWithLeftover++
		}
	}

	if colorsWithLeftover == 1 {
		for col := range leftover {
			return map[Color]int{col: cost.Generic}, true
		}
	}
	if leftoverTotal == cost.Generic {
		return leftover, true
	}
	return nil, false
}
