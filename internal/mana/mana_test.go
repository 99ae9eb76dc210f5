package mana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCost(t *testing.T) {
	c := ParseCost("{2}{U}")
	assert.Equal(t, 2, c.Generic)
	assert.Equal(t, 1, c.U)
	assert.Equal(t, 3, c.Total())

	c = ParseCost("{X}{R}{R}")
	assert.Equal(t, 0, c.Generic, "X counts as 0 until resolved")
	assert.Equal(t, 2, c.R)
	assert.Equal(t, 2, c.Total())

	c = ParseCost("{W/U}{3}")
	assert.Equal(t, 4, c.Generic, "hybrid symbols fold into generic")
	assert.Equal(t, 0, c.W)
	assert.Equal(t, 0, c.U)
}

func TestParseCostFreeSpell(t *testing.T) {
	assert.True(t, ParseCost("").Free())
	assert.True(t, ParseCost("no braces here").Free())
	assert.True(t, ParseCost("{0}").Free())
}

func TestCanPay(t *testing.T) {
	cost := ParseCost("{2}{U}")

	// {U:1, C:2} covers blue plus 2 generic.
	assert.True(t, CanPay(Pool{U: 1, C: 2}, cost))

	// Without the blue source the colored requirement fails even though
	// the total would suffice.
	assert.False(t, CanPay(Pool{C: 2}, cost))

	// Colored requirement satisfied but generic short.
	assert.False(t, CanPay(Pool{U: 1, C: 1}, cost))

	// Excess colored mana spills into generic.
	assert.True(t, CanPay(Pool{U: 3}, cost))
}

func TestPayDeductsExactly(t *testing.T) {
	cost := ParseCost("{2}{U}")
	pool := Pool{U: 1, C: 2, G: 1}

	out, err := Pay(pool, cost, map[Color]int{Colorless: 2})
	require.NoError(t, err)
	assert.Equal(t, Pool{U: 0, C: 0, G: 1}, out)
}

func TestPayRejectsBadAllocation(t *testing.T) {
	cost := ParseCost("{2}{U}")
	pool := Pool{U: 1, C: 2}

	// Allocation must sum exactly to the generic requirement.
	_, err := Pay(pool, cost, map[Color]int{Colorless: 1})
	assert.Error(t, err)

	_, err = Pay(pool, cost, map[Color]int{Colorless: 3})
	assert.Error(t, err)

	// Allocation may not exceed what the pool holds.
	_, err = Pay(pool, cost, map[Color]int{Green: 2})
	assert.Error(t, err)

	// No underflow: double-spending the colored source fails whole.
	_, err = Pay(pool, cost, map[Color]int{Blue: 2})
	assert.Error(t, err)
}

func TestPayIsAtomic(t *testing.T) {
	cost := ParseCost("{3}{B}")
	pool := Pool{B: 1, R: 1}

	out, err := Pay(pool, cost, map[Color]int{Red: 1, White: 2})
	require.Error(t, err)
	assert.Equal(t, pool, out, "failed payment must not mutate the pool")
}

func TestSuggestGenericPayment(t *testing.T) {
	cost := ParseCost("{2}{U}")

	// Single leftover color: auto-resolved.
	alloc, ok := SuggestGenericPayment(Pool{U: 1, C: 3}, cost)
	require.True(t, ok)
	assert.Equal(t, map[Color]int{Colorless: 2}, alloc)

	// Leftover total exactly equals generic: auto-resolved.
	alloc, ok = SuggestGenericPayment(Pool{U: 1, R: 1, G: 1}, cost)
	require.True(t, ok)
	assert.Equal(t, map[Color]int{Red: 1, Green: 1}, alloc)

	// Ambiguous surplus across colors: caller must choose.
	_, ok = SuggestGenericPayment(Pool{U: 1, R: 2, G: 2}, cost)
	assert.False(t, ok)

	// Unaffordable costs are never auto-resolved.
	_, ok = SuggestGenericPayment(Pool{C: 1}, cost)
	assert.False(t, ok)

	// Zero generic requirement resolves to an empty allocation.
	alloc, ok = SuggestGenericPayment(Pool{U: 2}, ParseCost("{U}"))
	require.True(t, ok)
	assert.Empty(t, alloc)
}
