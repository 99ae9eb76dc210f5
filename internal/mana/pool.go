// internal/mana/pool.go
package mana

// Color is one of the five mana colors or colorless.
type Color string

const (
	White     Color = "W"
	Blue      Color = "U"
	Black     Color = "B"
	Red       Color = "R"
	Green     Color = "G"
	Colorless Color = "C"
)

// Colors lists every pool color in canonical WUBRGC order.
var Colors = []Color{White, Blue, Black, Red, Green, Colorless}

// IsValidColor reports whether s names a pool color.
func IsValidColor(s string) bool {
	switch Color(s) {
	case White, Blue, Black, Red, Green, Colorless:
		return true
	}
	return false
}

// Pool is a player's currently available mana, per color. It is cleared
// on untap and never persists across turns. Counts never go negative;
// any deduction that would underflow must fail instead.
type Pool struct {
	W int `json:"W"`
	U int `json:"U"`
	B int `json:"B"`
	R int `json:"R"`
	G int `json:"G"`
	C int `json:"C"`
}

// Get returns the amount of mana of the given color.
func (p Pool) Get(c Color) int {
	switch c {
	case White:
		return p.W
	case Blue:
		return p.U
	case Black:
		return p.B
	case Red:
		return p.R
	case Green:
		return p.G
	case Colorless:
		return p.C
	}
	return 0
}

// Add returns a copy of the pool with n mana of the given color added.
// Negative results are floored at zero.
func (p Pool) Add(c Color, n int) Pool {
	v := p.Get(c) + n
	if v < 0 {
		v = 0
	}
	p.set(c, v)
	return p
}

func (p *Pool) set(c Color, v int) {
	switch c {
	case White:
		p.W = v
	case Blue:
		p.U = v
	case Black:
		p.B = v
	case Red:
		p.R = v
	case Green:
		p.G = v
	case Colorless:
		p.C = v
	}
}

// Total returns the sum of all mana in the pool.
func (p Pool) Total() int {
	return p.W + p.U + p.B + p.R + p.G + p.C
}
