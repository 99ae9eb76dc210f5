// internal/game/phase.go
package game

// Phase is one step of the fixed turn sequence. Phases are player-driven
// jumps rather than auto-advancing: the engine does not simulate
// priority, so any phase may be set directly at any time.
type Phase string

const (
	PhaseUntap           Phase = "untap"
	PhaseUpkeep          Phase = "upkeep"
	PhaseDraw            Phase = "draw"
	PhaseMain1           Phase = "main1"
	PhaseCombatBegin     Phase = "combat_begin"
	PhaseCombatAttackers Phase = "combat_attackers"
	PhaseCombatBlockers  Phase = "combat_blockers"
	PhaseCombatDamage    Phase = "combat_damage"
	PhaseCombatEnd       Phase = "combat_end"
	PhaseMain2           Phase = "main2"
	PhaseEnd             Phase = "end"
	PhaseCleanup         Phase = "cleanup"

	// PhaseNone is the pre-game state before the first explicit phase is
	// set or the first turn cycle runs.
	PhaseNone Phase = ""
)

// PhaseOrder is the canonical in-turn sequence, cycling back to untap.
var PhaseOrder = []Phase{
	PhaseUntap, PhaseUpkeep, PhaseDraw, PhaseMain1,
	PhaseCombatBegin, PhaseCombatAttackers, PhaseCombatBlockers,
	PhaseCombatDamage, PhaseCombatEnd,
	PhaseMain2, PhaseEnd, PhaseCleanup,
}

// ParsePhase validates a wire phase name.
func ParsePhase(s string) (Phase, bool) {
	for _, p := range PhaseOrder {
		if string(p) == s {
			return p, true
		}
	}
	return PhaseNone, false
}

// Next returns the phase following p in the turn sequence, wrapping from
// cleanup to untap. The pre-game phase advances to untap.
func (p Phase) Next() Phase {
	for i, cur := range PhaseOrder {
		if cur == p {
			return PhaseOrder[(i+1)%len(PhaseOrder)]
		}
	}
	return PhaseUntap
}
