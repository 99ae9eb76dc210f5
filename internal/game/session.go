// internal/game/session.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tolaria/playtable/internal/mana"
	"github.com/tolaria/playtable/internal/models"
)

// Mode distinguishes solo goldfish practice from synchronized
// multiplayer play. The engine semantics are shared; solo mode
// auto-draws on turn rollover while multiplayer leaves drawing as an
// explicit per-player action.
type Mode string

const (
	ModeSolo        Mode = "solo"
	ModeMultiplayer Mode = "multiplayer"
)

// ActionRecord is one accepted action in the session's chronological
// history. The same record shape is published to the action queue for
// the historian.
type ActionRecord struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  int64     `json:"timestamp"`
	PlayerID   uuid.UUID `json:"playerId"`
	ActionType string    `json:"type"`
	InstanceID string    `json:"cardInstanceId,omitempty"`
	ToZone     string    `json:"toZone,omitempty"`
	Details    string    `json:"details,omitempty"`
}

// Session owns the authoritative state of one game: the players with
// their zones, the turn/phase machine, and the action history. Every
// mutation flows through Apply; validation failures reject the action
// whole and leave state untouched. A Session is not safe for concurrent
// use; the owner (the server's room, or the solo controller) serializes
// access.
type Session struct {
	ID   uuid.UUID
	Mode Mode

	Players   map[uuid.UUID]*Player
	TurnOrder []uuid.UUID

	ActivePlayerID uuid.UUID
	TurnNumber     int
	Phase          Phase
	Started        bool

	History []ActionRecord

	// PublishFn, when set, receives every accepted action (e.g. to push
	// onto the Redis historian queue). Called synchronously under the
	// owner's lock; implementations must not block.
	PublishFn func(rec ActionRecord)
}

// NewSession builds an empty session in the given mode.
func NewSession(mode Mode) *Session {
	return &Session{
		ID:      uuid.New(),
		Mode:    mode,
		Players: make(map[uuid.UUID]*Player),
	}
}

// AddPlayer registers a player before the session starts.
func (s *Session) AddPlayer(p *Player) *ActionError {
	if s.Started {
		return reject(ErrAlreadyStarted, "game already started")
	}
	s.Players[p.ID] = p
	return nil
}

// Start randomizes the turn order and opens turn 1 in main1, matching
// the casual flow where opening hands are settled pre-start.
func (s *Session) Start() *ActionError {
	if s.Started {
		return reject(ErrAlreadyStarted, "game already started")
	}
	if len(s.Players) == 0 {
		return reject(ErrNotStarted, "no players in game")
	}
	order := make([]uuid.UUID, 0, len(s.Players))
	for id := range s.Players {
		order = append(order, id)
	}
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	s.TurnOrder = order
	s.ActivePlayerID = order[0]
	s.TurnNumber = 1
	s.Phase = PhaseMain1
	s.Started = true
	return nil
}

// AllReady reports whether every player has kept an opening hand.
func (s *Session) AllReady() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Apply validates and executes a single player action. It is the only
// entry point for state mutation: on success the action is appended to
// the history (and published, if a publisher is attached); on failure a
// typed ActionError is returned and no state changes.
func (s *Session) Apply(playerID uuid.UUID, a models.GameAction) *ActionError {
	p, ok := s.Players[playerID]
	if !ok {
		return reject(ErrPlayerNotFound, "player not in game")
	}

	// Pre-game actions settle opening hands.
	if !s.Started {
		var err *ActionError
		switch a.Type {
		case "mulligan":
			err = p.Mulligan()
		case "keep_hand":
			p.Ready = true
		case "draw_opening_hand":
			if p.HasDrawnOpening {
				err = reject(ErrInvalidArgument, "opening hand already drawn")
			} else {
				p.DrawOpeningHand()
			}
		default:
			err = reject(ErrNotStarted, "game has not started yet")
		}
		if err != nil {
			return err
		}
		s.record(playerID, a)
		return nil
	}

	if err := s.applyStarted(p, a); err != nil {
		return err
	}
	s.record(playerID, a)
	return nil
}

func (s *Session) applyStarted(p *Player, a models.GameAction) *ActionError {
	switch a.Type {
	case "draw_card":
		if len(p.Library) == 0 {
			return reject(ErrLibraryEmpty, "library is empty")
		}
		p.Draw(1)
		return nil

	case "play_card":
		return s.playCard(p, a.InstanceID)

	case "play_card_with_mana":
		return s.playCardWithMana(p, a.InstanceID, a.GenericPayment)

	case "move_card":
		return s.moveCard(p, a)

	case "discard_card":
		id, err := parseInstanceID(a.InstanceID)
		if err != nil {
			return err
		}
		return p.MoveCard(id, ZoneHand, ZoneGraveyard)

	case "tap_card":
		id, err := parseInstanceID(a.InstanceID)
		if err != nil {
			return err
		}
		return p.ToggleTap(id)

	case "tap_for_mana":
		return s.tapLandForMana(p, a.InstanceID, a.Color)

	case "untap_all":
		p.UntapAll()
		return nil

	case "add_mana", "remove_mana":
		if !mana.IsValidColor(a.Color) {
			return reject(ErrInvalidArgument, "invalid mana color: %s", a.Color)
		}
		amount := a.Amount
		if amount == 0 {
			amount = 1
		}
		if a.Type == "remove_mana" {
			amount = -amount
		}
		p.ManaPool = p.ManaPool.Add(mana.Color(a.Color), amount)
		return nil

	case "clear_mana_pool":
		p.ManaPool = mana.Pool{}
		return nil

	case "shuffle_library":
		p.ShuffleLibrary()
		return nil

	case "mill":
		count := a.Count
		if count == 0 {
			count = 1
		}
		if len(p.Library) == 0 {
			return reject(ErrLibraryEmpty, "library is empty")
		}
		p.Mill(count)
		return nil

	case "update_life":
		p.Life += a.Change
		return nil

	case "update_poison":
		p.Poison += a.Change
		if p.Poison < 0 {
			p.Poison = 0
		}
		return nil

	case "commander_damage":
		if a.TargetID == "" {
			return reject(ErrInvalidArgument, "missing commander damage source")
		}
		n := p.CommanderDamage[a.TargetID] + a.Change
		if n < 0 {
			n = 0
		}
		p.CommanderDamage[a.TargetID] = n
		return nil

	case "add_counter", "remove_counter":
		id, err := parseInstanceID(a.InstanceID)
		if err != nil {
			return err
		}
		kind := a.CounterType
		if kind == "" {
			kind = "+1/+1"
		}
		delta := 1
		if a.Type == "remove_counter" {
			delta = -1
		}
		return p.AddCounter(id, kind, delta)

	case "attach_card":
		id, err := parseInstanceID(a.InstanceID)
		if err != nil {
			return err
		}
		target := uuid.Nil
		if a.TargetID != "" {
			target, err = parseInstanceID(a.TargetID)
			if err != nil {
				return err
			}
		}
		return p.Attach(id, target)

	case "flip_card":
		id, err := parseInstanceID(a.InstanceID)
		if err != nil {
			return err
		}
		return p.FlipFaceDown(id)

	case "set_phase":
		ph, ok := ParsePhase(a.Phase)
		if !ok {
			return reject(ErrInvalidArgument, "invalid phase: %s", a.Phase)
		}
		s.Phase = ph
		return nil

	case "next_turn":
		s.nextTurn()
		return nil

	default:
		return reject(ErrUnknownAction, "unknown action: %s", a.Type)
	}
}

// playCard is the free path: lands and zero-cost spells move from hand
// to battlefield without touching the mana pool. Costed cards must go
// through playCardWithMana after the caller resolves payment.
func (s *Session) playCard(p *Player, instanceID string) *ActionError {
	id, err := parseInstanceID(instanceID)
	if err != nil {
		return err
	}
	c, idx := p.findInZone(id, ZoneHand)
	if idx < 0 {
		return reject(ErrCardNotFound, "card not found in hand")
	}
	if !c.IsLand() && !mana.ParseCost(c.ManaCost).Free() {
		return reject(ErrNotEnoughMana, "card has a mana cost; use play_card_with_mana")
	}
	p.removeFromZone(ZoneHand, idx)
	c.Zone = ZoneBattlefield
	c.Tapped = false
	p.Battlefield = append(p.Battlefield, c)
	return nil
}

// playCardWithMana validates affordability, applies payment, then moves
// the card from hand to battlefield. All-or-nothing: any failure leaves
// both the mana pool and the hand untouched.
func (s *Session) playCardWithMana(p *Player, instanceID string, allocStrs map[string]int) *ActionError {
	id, aerr := parseInstanceID(instanceID)
	if aerr != nil {
		return aerr
	}
	c, idx := p.findInZone(id, ZoneHand)
	if idx < 0 {
		return reject(ErrCardNotFound, "card not found in hand")
	}

	cost := mana.ParseCost(c.ManaCost)
	if !mana.CanPay(p.ManaPool, cost) {
		return reject(ErrNotEnoughMana, "not enough mana")
	}

	var alloc map[mana.Color]int
	if allocStrs != nil {
		alloc = make(map[mana.Color]int, len(allocStrs))
		for col, n := range allocStrs {
			alloc[mana.Color(col)] = n
		}
	} else {
		suggested, ok := mana.SuggestGenericPayment(p.ManaPool, cost)
		if !ok {
			return reject(ErrBadPayment, "generic payment is ambiguous; supply an allocation")
		}
		alloc = suggested
	}

	paid, err := mana.Pay(p.ManaPool, cost, alloc)
	if err != nil {
		return reject(ErrBadPayment, "%v", err)
	}

	p.ManaPool = paid
	p.removeFromZone(ZoneHand, idx)
	c.Zone = ZoneBattlefield
	c.Tapped = false
	p.Battlefield = append(p.Battlefield, c)
	return nil
}

// tapLandForMana taps an untapped land and adds one mana of the chosen
// color. Already-tapped and non-land instances are a deliberate no-op
// rather than an error.
func (s *Session) tapLandForMana(p *Player, instanceID, color string) *ActionError {
	id, err := parseInstanceID(instanceID)
	if err != nil {
		return err
	}
	if !mana.IsValidColor(color) {
		return reject(ErrInvalidArgument, "invalid mana color: %s", color)
	}
	c, idx := p.findInZone(id, ZoneBattlefield)
	if idx < 0 {
		return reject(ErrCardNotFound, "card not found on battlefield")
	}
	if c.Tapped || !c.IsLand() {
		return nil
	}
	c.Tapped = true
	p.ManaPool = p.ManaPool.Add(mana.Color(color), 1)
	return nil
}

func (s *Session) moveCard(p *Player, a models.GameAction) *ActionError {
	id, err := parseInstanceID(a.InstanceID)
	if err != nil {
		return err
	}
	to, ok := ParseZone(a.ToZone)
	if !ok {
		return reject(ErrInvalidArgument, "invalid zone: %s", a.ToZone)
	}
	_, from, found := p.FindCard(id)
	if !found {
		return reject(ErrCardNotFound, "card not found")
	}
	return p.MoveCard(id, from, to)
}

// nextTurn is the compound rollover: untap the active player's
// permanents, clear their mana pool, advance the turn counter and the
// active player (round-robin), and reset to the untap phase. Solo mode
// additionally auto-draws for the new turn; multiplayer drawing stays an
// explicit action per player.
func (s *Session) nextTurn() {
	if active, ok := s.Players[s.ActivePlayerID]; ok {
		active.UntapAll()
		active.ManaPool = mana.Pool{}
	}

	if len(s.TurnOrder) > 0 {
		cur := -1
		for i, id := range s.TurnOrder {
			if id == s.ActivePlayerID {
				cur = i
				break
			}
		}
		s.ActivePlayerID = s.TurnOrder[(cur+1)%len(s.TurnOrder)]
	}
	s.TurnNumber++
	s.Phase = PhaseUntap

	if s.Mode == ModeSolo {
		if next, ok := s.Players[s.ActivePlayerID]; ok {
			next.Draw(1)
		}
	}
}

func (s *Session) record(playerID uuid.UUID, a models.GameAction) {
	rec := ActionRecord{
		ID:         uuid.New(),
		Timestamp:  time.Now().UnixMilli(),
		PlayerID:   playerID,
		ActionType: a.Type,
		InstanceID: a.InstanceID,
		ToZone:     a.ToZone,
		Details:    a.Details,
	}
	s.History = append(s.History, rec)
	if s.PublishFn != nil {
		s.PublishFn(rec)
	}
}

func parseInstanceID(s string) (uuid.UUID, *ActionError) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, reject(ErrInvalidArgument, "invalid instance id: %s", s)
	}
	return id, nil
}
