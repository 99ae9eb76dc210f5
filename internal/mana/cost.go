// internal/mana/cost.go
package mana

import (
	"strconv"
	"strings"
)

// Cost is a parsed mana cost: per-color requirements plus the generic
// portion payable with mana of any color. Hybrid and other exotic
// symbols are folded into Generic for affordability purposes; {X}
// contributes nothing until resolved. This is a deliberate
// simplification for playtesting, not full rules coverage.
type Cost struct {
	W       int `json:"W"`
	U       int `json:"U"`
	B       int `json:"B"`
	R       int `json:"R"`
	G       int `json:"G"`
	C       int `json:"C"`
	Generic int `json:"generic"`
}

// ParseCost tokenizes a brace-delimited mana cost string such as
// "{2}{U}" or "{X}{B}{B}". An empty or unrecognizable string parses to
// the zero Cost (a free spell).
func ParseCost(cost string) Cost {
	var out Cost
	for _, sym := range symbols(cost) {
		switch sym {
		case "W":
			out.W++
		case "U":
			out.U++
		case "B":
			out.B++
		case "R":
			out.R++
		case "G":
			out.G++
		case "C":
			out.C++
		case "X":
			// X is 0 until the caller resolves it.
		default:
			if n, err := strconv.Atoi(sym); err == nil {
				out.Generic += n
			} else {
				// Hybrid ({W/U}), Phyrexian ({G/P}), snow, etc.
				// count as one generic each.
				out.Generic++
			}
		}
	}
	return out
}

// symbols extracts the contents of each {...} group, uppercased.
func symbols(cost string) []string {
	var syms []string
	for {
		open := strings.IndexByte(cost, '{')
		if open < 0 {
			return syms
		}
		close := strings.IndexByte(cost[open:], '}')
		if close < 0 {
			return syms
		}
		sym := strings.TrimSpace(cost[open+1 : open+close])
		if sym != "" {
			syms = append(syms, strings.ToUpper(sym))
		}
		cost = cost[open+close+1:]
	}
}

// Colored returns the requirement for a single color.
func (c Cost) Colored(col Color) int {
	switch col {
	case White:
		return c.W
	case Blue:
		return c.U
	case Black:
		return c.B
	case Red:
		return c.R
	case Green:
		return c.G
	case Colorless:
		return c.C
	}
	return 0
}

// Total returns the converted cost: colored requirements plus generic.
func (c Cost) Total() int {
	return c.W + c.U + c.B + c.R + c.G + c.C + c.Generic
}

// Free reports whether the cost requires no mana at all.
func (c Cost) Free() bool {
	return c.Total() == 0
}

// String renders the cost back into brace notation.
func (c Cost) String() string {
	var b strings.Builder
	if c.Generic > 0 {
		b.WriteString("{" + strconv.Itoa(c.Generic) + "}")
	}
	for _, col := range Colors {
		for i := 0; i < c.Colored(col); i++ {
			b.WriteString("{" + string(col) + "}")
		}
	}
	if b.Len() == 0 {
		return "{0}"
	}
	return b.String()
}
