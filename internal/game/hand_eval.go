// internal/game/hand_eval.go
package game

import (
	"fmt"

	"github.com/tolaria/playtable/internal/mana"
)

// HandEvaluation is advisory coaching over an opening hand. It is never
// authoritative game state; the keep score is a heuristic blend of land
// ratio, curve, and color spread.
type HandEvaluation struct {
	KeepScore     int      `json:"keepScore"` // 0-100
	LandCount     int      `json:"landCount"`
	NonLandCount  int      `json:"nonLandCount"`
	AverageCMC    float64  `json:"averageCmc"`
	HasEarlyPlay  bool     `json:"hasEarlyPlay"`
	HasMidGame    bool     `json:"hasMidGame"`
	ColorCoverage int      `json:"colorCoverage"`
	Suggestions   []string `json:"suggestions"`
}

// EvaluateOpeningHand scores the player's current hand for keepability.
func (p *Player) EvaluateOpeningHand() HandEvaluation {
	ev := HandEvaluation{Suggestions: []string{}}

	var cmcSum float64
	spellColors := map[string]bool{}
	produced := map[mana.Color]bool{}

	for _, c := range p.Hand {
		if c.IsLand() {
			ev.LandCount++
			for _, col := range c.ProducedColors() {
				produced[col] = true
			}
			continue
		}
		ev.NonLandCount++
		cmcSum += c.CMC
		if c.CMC <= 2 {
			ev.HasEarlyPlay = true
		}
		if c.CMC >= 3 && c.CMC <= 5 {
			ev.HasMidGame = true
		}
		for _, col := range c.Colors {
			spellColors[col] = true
		}
	}
	if ev.NonLandCount > 0 {
		ev.AverageCMC = cmcSum / float64(ev.NonLandCount)
	}
	for col := range spellColors {
		if produced[mana.Color(col)] {
			ev.ColorCoverage++
		}
	}

	score := 50

	// Land ratio: 2-5 lands in a 7-card hand is workable, 3-4 is ideal.
	switch {
	case ev.LandCount < 2:
		score -= 30
		ev.Suggestions = append(ev.Suggestions, "Very few lands; risky keep")
	case ev.LandCount == 2:
		score -= 10
		ev.Suggestions = append(ev.Suggestions, "Light on lands; needs early draws")
	case ev.LandCount <= 4:
		score += 20
	case ev.LandCount == 5:
		score -= 5
	default:
		score -= 25
		ev.Suggestions = append(ev.Suggestions, "Flooded with lands")
	}

	if ev.HasEarlyPlay {
		score += 10
	} else if ev.NonLandCount > 0 {
		score -= 10
		ev.Suggestions = append(ev.Suggestions, "No plays before turn 3")
	}
	if ev.HasMidGame {
		score += 10
	}

	if ev.AverageCMC > 4.0 && ev.NonLandCount > 0 {
		score -= 10
		ev.Suggestions = append(ev.Suggestions, fmt.Sprintf("High curve (avg %.1f)", ev.AverageCMC))
	}

	if len(spellColors) > 0 {
		covered := float64(ev.ColorCoverage) / float64(len(spellColors))
		if covered >= 1.0 {
			score += 10
		} else if covered < 0.5 {
			score -= 10
			ev.Suggestions = append(ev.Suggestions, "Lands don't cover your spell colors")
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	ev.KeepScore = score

	if len(ev.Suggestions) == 0 {
		ev.Suggestions = append(ev.Suggestions, "Looks keepable")
	}
	return ev
}
