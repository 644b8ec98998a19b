// Package bracket models the knockout phase as a directed graph of
// match slots and advances winners through it as results come in.
package bracket

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/aminebarka/7oumaligue-engine/internal/model"
)

var (
	ErrInsufficientQualifiers = errors.New("not enough qualified teams for an 8-team bracket")
	ErrUnknownSlot            = errors.New("unknown bracket slot")
	ErrSlotNotFilled          = errors.New("bracket slot is not fully assigned yet")
	ErrDrawnKnockout          = errors.New("knockout matches cannot end in a draw")
)

const (
	sideHome = "home"
	sideAway = "away"
)

// Slot is one node of the bracket: a quarterfinal, semifinal or the
// final. Home/Away hold real team IDs once known; until then the
// PlaceholderHome/PlaceholderAway codes stand in for them.
type Slot struct {
	Code   string
	Round  model.Round
	Home   string
	Away   string
	Winner string
}

// PlaceholderHome returns the synthetic team identifier for the home
// side of a slot, e.g. "QF1_HOME".
func PlaceholderHome(code string) string { return code + "_HOME" }

// PlaceholderAway returns the synthetic team identifier for the away
// side of a slot, e.g. "QF1_AWAY".
func PlaceholderAway(code string) string { return code + "_AWAY" }

// SlotCodes returns the bracket slots in scheduling order.
func SlotCodes() []string {
	return []string{"QF1", "QF2", "QF3", "QF4", "SF1", "SF2", "FINAL"}
}

// RoundOf maps a slot code to its round label.
func RoundOf(code string) model.Round {
	switch code {
	case "SF1", "SF2":
		return model.RoundSemi
	case "FINAL":
		return model.RoundFinal
	default:
		return model.RoundQuarter
	}
}

// Bracket is a single-elimination tree for 8 entrants: four
// quarterfinals feeding two semifinals feeding the final.
type Bracket struct {
	slots map[string]*Slot
	tree  graph.Graph[string, string]
}

// New builds an empty bracket with placeholder identifiers in every
// slot.
func New() *Bracket {
	b := &Bracket{
		slots: make(map[string]*Slot),
		tree:  graph.New(graph.StringHash, graph.Directed(), graph.Acyclic()),
	}

	for _, code := range SlotCodes() {
		b.slots[code] = &Slot{
			Code:  code,
			Round: RoundOf(code),
			Home:  PlaceholderHome(code),
			Away:  PlaceholderAway(code),
		}
		_ = b.tree.AddVertex(code)
	}

	link := func(child, parent, side string) {
		_ = b.tree.AddEdge(child, parent, graph.EdgeAttribute("side", side))
	}
	link("QF1", "SF1", sideHome)
	link("QF2", "SF1", sideAway)
	link("QF3", "SF2", sideHome)
	link("QF4", "SF2", sideAway)
	link("SF1", "FINAL", sideHome)
	link("SF2", "FINAL", sideAway)

	return b
}

// Seed fills the quarterfinal slots from the qualifier list in order:
// quarterfinal i gets qualified[2i] at home and qualified[2i+1] away.
// Fewer than 8 qualifiers is a typed error; the caller decides whether
// that is fatal.
func (b *Bracket) Seed(qualified []string) error {
	if len(qualified) < 8 {
		return fmt.Errorf("%w: got %d", ErrInsufficientQualifiers, len(qualified))
	}

	for i, code := range []string{"QF1", "QF2", "QF3", "QF4"} {
		slot := b.slots[code]
		slot.Home = qualified[2*i]
		slot.Away = qualified[2*i+1]
	}
	return nil
}

// Slot returns the slot with the given code.
func (b *Bracket) Slot(code string) (*Slot, bool) {
	s, ok := b.slots[code]
	return s, ok
}

// Slots returns all slots in scheduling order.
func (b *Bracket) Slots() []*Slot {
	out := make([]*Slot, 0, len(b.slots))
	for _, code := range SlotCodes() {
		out = append(out, b.slots[code])
	}
	return out
}

// SetTeams assigns both sides of a slot directly. Used when
// reconstructing a bracket from persisted matches.
func (b *Bracket) SetTeams(code, home, away string) error {
	slot, ok := b.slots[code]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, code)
	}
	slot.Home = home
	slot.Away = away
	return nil
}

// ReportResult records the score of a slot's match and propagates the
// winner into the parent slot's open side. Knockout matches cannot end
// in a draw.
func (b *Bracket) ReportResult(code string, homeScore, awayScore int) error {
	slot, ok := b.slots[code]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, code)
	}
	if IsPlaceholder(slot.Home) || IsPlaceholder(slot.Away) {
		return fmt.Errorf("%w: %q", ErrSlotNotFilled, code)
	}
	if homeScore == awayScore {
		return fmt.Errorf("%w: %s %d-%d", ErrDrawnKnockout, code, homeScore, awayScore)
	}

	if homeScore > awayScore {
		slot.Winner = slot.Home
	} else {
		slot.Winner = slot.Away
	}

	adjacency, err := b.tree.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("bracket adjacency: %w", err)
	}
	for parentCode, edge := range adjacency[code] {
		parent := b.slots[parentCode]
		if edge.Properties.Attributes["side"] == sideHome {
			parent.Home = slot.Winner
		} else {
			parent.Away = slot.Winner
		}
	}

	return nil
}

// Champion returns the tournament winner once the final is decided.
func (b *Bracket) Champion() (string, bool) {
	final := b.slots["FINAL"]
	if final.Winner == "" {
		return "", false
	}
	return final.Winner, true
}

// IsPlaceholder reports whether a team identifier is one of the
// synthetic bracket slot codes rather than a real team.
func IsPlaceholder(teamID string) bool {
	for _, code := range SlotCodes() {
		if teamID == PlaceholderHome(code) || teamID == PlaceholderAway(code) {
			return true
		}
	}
	return false
}
