// cmd/goldfish/main.go is an interactive solo playtesting REPL: load a
// deck list from a JSON file and goldfish it in the terminal against the
// same engine the multiplayer server runs.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	rl "github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/tolaria/playtable/internal/game"
	"github.com/tolaria/playtable/internal/models"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: goldfish <deck.json>")
	fmt.Fprintln(os.Stderr, "  deck.json is an array of deck entries: {card, quantity, is_commander}")
	os.Exit(2)
}

func loadDeckFile(path string) ([]models.DeckCard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var cards []models.DeckCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("invalid deck file: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("deck file is empty")
	}
	return cards, nil
}

type repl struct {
	session *game.Session
	player  *game.Player
}

func main() {
	if len(os.Args) != 2 {
		usage()
	}
	deckCards, err := loadDeckFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	library, command := game.InstantiateDeck(deckCards)
	player := game.NewPlayer(uuid.New(), "goldfish", library, command)
	player.ShuffleLibrary()

	session := game.NewSession(game.ModeSolo)
	session.AddPlayer(player)
	session.Apply(player.ID, models.GameAction{Type: "draw_opening_hand"})

	r := &repl{session: session, player: player}

	completer := rl.NewPrefixCompleter(
		rl.PcItem("hand"),
		rl.PcItem("battlefield"),
		rl.PcItem("graveyard"),
		rl.PcItem("pool"),
		rl.PcItem("state"),
		rl.PcItem("eval"),
		rl.PcItem("mulligan"),
		rl.PcItem("keep"),
		rl.PcItem("draw"),
		rl.PcItem("play"),
		rl.PcItem("tap"),
		rl.PcItem("untap"),
		rl.PcItem("mana"),
		rl.PcItem("mill"),
		rl.PcItem("shuffle"),
		rl.PcItem("life"),
		rl.PcItem("phase"),
		rl.PcItem("next"),
		rl.PcItem("help"),
		rl.PcItem("exit"),
	)

	l, err := rl.NewEx(&rl.Config{
		Prompt:          "goldfish» ",
		HistoryFile:     os.TempDir() + "/goldfish_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer l.Close()

	fmt.Printf("Loaded %d cards. Opening hand drawn; 'keep' to start, 'mulligan' to redraw.\n", len(player.AllCards()))
	r.showHand()

	for {
		line, err := l.Readline()
		if err == rl.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			break
		}
		r.dispatch(fields)
	}
}

func (r *repl) dispatch(fields []string) {
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help":
		fmt.Println("hand battlefield graveyard pool state eval | mulligan keep | draw play <n> tap <n> [color] untap mana <color> [n] mill [n] shuffle life <delta> phase <name> next")

	case "hand":
		r.showHand()
	case "battlefield":
		r.showZone("battlefield", r.player.Battlefield)
	case "graveyard":
		r.showZone("graveyard", r.player.Graveyard)
	case "pool":
		fmt.Printf("pool: %s (library %d)\n", formatPool(r.player), len(r.player.Library))
	case "state":
		fmt.Printf("turn %d, phase %s, life %d, hand %d, library %d\n",
			r.session.TurnNumber, r.session.Phase, r.player.Life, len(r.player.Hand), len(r.player.Library))
	case "eval":
		ev := r.player.EvaluateOpeningHand()
		fmt.Printf("keep score %d/100 (%d lands, %d spells, avg cmc %.1f)\n",
			ev.KeepScore, ev.LandCount, ev.NonLandCount, ev.AverageCMC)
		for _, s := range ev.Suggestions {
			fmt.Println("  - " + s)
		}

	case "mulligan":
		r.apply(models.GameAction{Type: "mulligan"})
		r.showHand()
	case "keep":
		if r.apply(models.GameAction{Type: "keep_hand"}) {
			if err := r.session.Start(); err != nil {
				fmt.Println("error:", err.Reason)
				return
			}
			fmt.Println("game started, turn 1, main1")
		}
	case "draw":
		r.apply(models.GameAction{Type: "draw_card"})
		r.showHand()

	case "play":
		c, ok := r.pick(args, r.player.Hand)
		if !ok {
			return
		}
		action := models.GameAction{Type: "play_card", InstanceID: c.InstanceID.String()}
		if !c.IsLand() && c.ManaCost != "" {
			action.Type = "play_card_with_mana"
		}
		if r.apply(action) {
			fmt.Printf("played %s\n", c.Name)
		}

	case "tap":
		c, ok := r.pick(args, r.player.Battlefield)
		if !ok {
			return
		}
		if c.IsLand() && !c.Tapped {
			color := string(c.ProducedColors()[0])
			if len(args) > 1 {
				color = strings.ToUpper(args[1])
			}
			if r.apply(models.GameAction{Type: "tap_for_mana", InstanceID: c.InstanceID.String(), Color: color}) {
				fmt.Printf("tapped %s for {%s}\n", c.Name, color)
			}
		} else {
			r.apply(models.GameAction{Type: "tap_card", InstanceID: c.InstanceID.String()})
		}
	case "untap":
		r.apply(models.GameAction{Type: "untap_all"})

	case "mana":
		if len(args) == 0 {
			fmt.Println("usage: mana <color> [n]")
			return
		}
		amount := 1
		if len(args) > 1 {
			amount, _ = strconv.Atoi(args[1])
		}
		r.apply(models.GameAction{Type: "add_mana", Color: strings.ToUpper(args[0]), Amount: amount})
		fmt.Printf("pool: %s\n", formatPool(r.player))

	case "mill":
		count := 1
		if len(args) > 0 {
			count, _ = strconv.Atoi(args[0])
		}
		r.apply(models.GameAction{Type: "mill", Count: count})
	case "shuffle":
		r.apply(models.GameAction{Type: "shuffle_library"})
	case "life":
		if len(args) == 0 {
			fmt.Printf("life: %d\n", r.player.Life)
			return
		}
		delta, _ := strconv.Atoi(args[0])
		r.apply(models.GameAction{Type: "update_life", Change: delta})
		fmt.Printf("life: %d\n", r.player.Life)
	case "phase":
		if len(args) == 0 {
			fmt.Printf("phase: %s\n", r.session.Phase)
			return
		}
		r.apply(models.GameAction{Type: "set_phase", Phase: args[0]})
	case "next":
		if r.apply(models.GameAction{Type: "next_turn"}) {
			fmt.Printf("turn %d (drew a card, hand %d)\n", r.session.TurnNumber, len(r.player.Hand))
		}

	default:
		fmt.Printf("unknown command %q; try 'help'\n", cmd)
	}
}

// apply runs an action and prints any rejection.
func (r *repl) apply(a models.GameAction) bool {
	if err := r.session.Apply(r.player.ID, a); err != nil {
		fmt.Printf("rejected (%s): %s\n", err.Code, err.Reason)
		return false
	}
	return true
}

// pick resolves a 1-based index argument against a zone listing.
func (r *repl) pick(args []string, zone []*game.Card) (*game.Card, bool) {
	if len(args) == 0 {
		fmt.Println("which card? give its number from the listing")
		return nil, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(zone) {
		fmt.Printf("no card #%s in that zone\n", args[0])
		return nil, false
	}
	return zone[n-1], true
}

func (r *repl) showHand() {
	r.showZone("hand", r.player.Hand)
}

func (r *repl) showZone(name string, cards []*game.Card) {
	if len(cards) == 0 {
		fmt.Printf("%s: empty\n", name)
		return
	}
	fmt.Printf("%s (%d):\n", name, len(cards))
	for i, c := range cards {
		marker := ""
		if c.Tapped {
			marker = " [tapped]"
		}
		cost := ""
		if c.ManaCost != "" {
			cost = " " + c.ManaCost
		}
		fmt.Printf("  %2d. %s%s%s\n", i+1, c.Name, cost, marker)
	}
}

func formatPool(p *game.Player) string {
	pool := p.ManaPool
	parts := []string{}
	for _, col := range []struct {
		sym string
		n   int
	}{
		{"W", pool.W}, {"U", pool.U}, {"B", pool.B},
		{"R", pool.R}, {"G", pool.G}, {"C", pool.C},
	} {
		if col.n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", col.sym, col.n))
		}
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, " ")
}
