package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/economy"
	"github.com/talgya/hogday/internal/world"
)

// interaction is a candidate pairing of a hog with a facility.
type interaction struct {
	hog      *agents.Hog
	facility economy.Facility
}

// interactionQueue collects the pairings accepted during one phase.
type interactionQueue struct {
	pairs []interaction
}

func (q *interactionQueue) claimants(f economy.Facility) []*agents.Hog {
	var hogs []*agents.Hog
	for _, p := range q.pairs {
		if p.facility == f {
			hogs = append(hogs, p.hog)
		}
	}
	return hogs
}

func (q *interactionQueue) add(h *agents.Hog, f economy.Facility) {
	q.pairs = append(q.pairs, interaction{hog: h, facility: f})
}

func (q *interactionQueue) remove(h *agents.Hog, f economy.Facility) {
	for i, p := range q.pairs {
		if p.hog == h && p.facility == f {
			q.pairs = append(q.pairs[:i], q.pairs[i+1:]...)
			return
		}
	}
}

// matcher pairs hogs with facilities of one kind.
type matcher struct {
	kind  economy.Kind
	prefs map[agents.HogID][]economy.Facility
	work  []*agents.Hog
	queue interactionQueue
}

// preferences lists the facilities straight ahead, to the right and to the
// left of a hog. Empty slots stay in the list as nil.
func (b *Board) preferences(h *agents.Hog) []economy.Facility {
	dirs := [3]world.Direction{h.Facing, h.Facing.Right(), h.Facing.Left()}
	prefs := make([]economy.Facility, 0, len(dirs))
	for _, d := range dirs {
		prefs = append(prefs, b.Facilities.At(b.Grid.Neighbor(h.Pos, d)))
	}
	return prefs
}

func cargoName(h *agents.Hog) string {
	if h.Holding == nil {
		return ""
	}
	return h.Holding.Name
}

// consultNext lets the hog at the front of the work queue try its next
// preference. A hog whose preference is of the wrong kind goes to the back
// of the queue; a hog that fills a facility past capacity bumps the
// claimant standing on the facility's least preferred tile.
func (m *matcher) consultNext() {
	h := m.work[0]
	m.work = m.work[1:]

	prefs := m.prefs[h.ID]
	if len(prefs) == 0 {
		return
	}
	target := prefs[0]
	m.prefs[h.ID] = prefs[1:]
	if target == nil || target.Kind() != m.kind {
		m.work = append(m.work, h)
		return
	}

	good := cargoName(h)
	competing := m.queue.claimants(target)
	if m.kind == economy.KindSink {
		same := competing[:0:0]
		for _, c := range competing {
			if cargoName(c) == good {
				same = append(same, c)
			}
		}
		competing = same
	}

	m.queue.add(h, target)
	if len(competing) < target.Capacity(good) {
		return
	}

	competing = append(competing, h)
	sort.SliceStable(competing, func(i, j int) bool {
		return economy.Rank(target, competing[i].Pos) < economy.Rank(target, competing[j].Pos)
	})
	evicted := competing[len(competing)-1]
	m.queue.remove(evicted, target)
	m.work = append(m.work, evicted)
}

// match runs one phase to completion and returns the accepted pairings.
func (b *Board) match(hogs []*agents.Hog, kind economy.Kind) []interaction {
	m := &matcher{
		kind:  kind,
		prefs: make(map[agents.HogID][]economy.Facility, len(hogs)),
		work:  append([]*agents.Hog(nil), hogs...),
	}
	for _, h := range hogs {
		m.prefs[h.ID] = b.preferences(h)
	}
	for len(m.work) > 0 {
		m.consultNext()
	}
	return m.queue.pairs
}

// exchangeTile is the facility tile the hog trades across. A facility that
// is not next to the hog means position bookkeeping is corrupt.
func (b *Board) exchangeTile(h *agents.Hog, f economy.Facility) world.Coord {
	tile, ok := economy.AdjacentTile(b.Grid, f, h.Pos)
	if !ok {
		panic(fmt.Sprintf("engine: hog %d at %v paired with %s it does not touch", h.ID, h.Pos, f.Name()))
	}
	b.Grid.MustDirectionOf(h.Pos, tile)
	return tile
}

// resolve executes every pairing. Capacity was decided for the whole phase
// before the first exchange runs.
func (b *Board) resolve(pairs []interaction) {
	for _, p := range pairs {
		tile := b.exchangeTile(p.hog, p.facility)
		switch f := p.facility.(type) {
		case economy.Sink:
			f.Absorb(*p.hog.Holding)
			p.hog.Holding = nil
			p.hog.GaveTo = &tile
			slog.Debug("hog dropped off", "hog", p.hog.ID, "facility", f.Name(), "tile", tile)
		case economy.Source:
			g := f.Emit()
			p.hog.Holding = &g
			p.hog.TookFrom = &tile
			slog.Debug("hog picked up", "hog", p.hog.ID, "good", g.Name, "facility", f.Name(), "tile", tile)
		}
	}
}

// MatchInteractions pairs the hogs that moved this tick with the facilities
// around them. Drop-offs resolve before pick-ups are matched.
func (b *Board) MatchInteractions() {
	hogs := b.Herd.InBoardOrder()
	var active []*agents.Hog
	for _, h := range hogs {
		h.PreviousHolding = h.Holding
		h.GaveTo = nil
		h.TookFrom = nil
		if h.Moved() {
			active = append(active, h)
		}
	}
	b.Facilities.RememberHoldings()

	var holders []*agents.Hog
	for _, h := range active {
		if h.Holding != nil {
			holders = append(holders, h)
		}
	}
	drops := b.match(holders, economy.KindSink)
	b.resolve(drops)

	var seekers []*agents.Hog
	for _, h := range active {
		if h.Holding == nil {
			seekers = append(seekers, h)
		}
	}
	picks := b.match(seekers, economy.KindSource)
	b.resolve(picks)

	if len(drops)+len(picks) > 0 {
		b.record("exchange", "%d drop-offs, %d pick-ups", len(drops), len(picks))
	}
}
