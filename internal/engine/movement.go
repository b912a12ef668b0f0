package engine

import (
	"log/slog"

	"github.com/talgya/hogday/internal/agents"
	"github.com/talgya/hogday/internal/world"
)

// ResolveMovement runs one step for every hog in the given order. Steps
// recurse into the hog ahead so that a procession clears from its head
// backwards; HasStepped memoizes finished hogs.
func (b *Board) ResolveMovement(hogs []*agents.Hog) {
	for _, h := range hogs {
		b.step(h)
	}
}

// heading is the direction a hog at pos facing f would move: straight if
// the road continues, else right, else left, else None.
func (b *Board) heading(pos world.Coord, f world.Direction) world.Direction {
	for _, d := range [3]world.Direction{f, f.Right(), f.Left()} {
		if d != world.None && b.Grid.IsRoad(b.Grid.Neighbor(pos, d)) {
			return d
		}
	}
	return world.None
}

func (b *Board) going(h *agents.Hog) world.Direction {
	return b.heading(h.Pos, h.Facing)
}

// following returns the hog h is queued behind: the first hog on h's
// target tile that will leave it the way h would leave it after arriving.
// It returns nil when h has nowhere to go or nobody is in the way.
func (b *Board) following(h *agents.Hog) *agents.Hog {
	d := b.going(h)
	if d == world.None {
		return nil
	}
	target := b.Grid.Neighbor(h.Pos, d)
	onward := b.heading(target, d)
	for _, o := range b.Herd.Occupants(target) {
		if b.going(o) == onward {
			return o
		}
	}
	return nil
}

// goingToT reports whether h's next tile is a T junction: no road straight
// on, road on both sides.
func (b *Board) goingToT(h *agents.Hog, d world.Direction) bool {
	target := b.Grid.Neighbor(h.Pos, d)
	if target == h.Pos {
		return false
	}
	return !b.Grid.IsRoad(b.Grid.Neighbor(target, d)) &&
		b.Grid.IsRoad(b.Grid.Neighbor(target, d.Right())) &&
		b.Grid.IsRoad(b.Grid.Neighbor(target, d.Left()))
}

// competitor returns the hog that has right of way into h's T junction: one
// on the junction's left turning right into it, which has not stepped yet.
func (b *Board) competitor(h *agents.Hog, d world.Direction) *agents.Hog {
	if !b.goingToT(h, d) {
		return nil
	}
	target := b.Grid.Neighbor(h.Pos, d)
	side := b.Grid.Neighbor(target, d.Left())
	for _, o := range b.Herd.Occupants(side) {
		if o == h || b.going(o) != d.Right() {
			continue
		}
		if o.HasStepped {
			return nil
		}
		return o
	}
	return nil
}

func (b *Board) move(h *agents.Hog, d world.Direction) {
	from := h.Pos
	h.HoppedFrom = &from
	b.Herd.MoveTo(h, b.Grid.Neighbor(from, d), d)
}

func (b *Board) markStuck(h *agents.Hog) {
	h.Stuck = true
	h.HasStepped = true
	slog.Debug("hog stuck", "hog", h.ID, "pos", h.Pos)
	b.record("stuck", "hog %d stuck at %v", h.ID, h.Pos)
}

func (b *Board) step(h *agents.Hog) {
	if h.HasStepped || h.Stuck {
		return
	}
	// A hog already waiting further up the call chain is resolved by that
	// frame, unless a loop cascade has taken it over.
	if h.IsWaiting && !h.Looped {
		return
	}

	d := b.going(h)
	if d == world.None {
		h.HasStepped = true
		return
	}

	next := b.following(h)
	if next == h {
		b.markStuck(h)
		return
	}

	if h.Looped {
		h.HasStepped = true
		b.move(h, d)
		if next != nil {
			b.step(next)
		}
		return
	}

	if next != nil {
		if next.Looped || next.Stuck {
			b.markStuck(h)
			return
		}
		if next.IsWaiting {
			b.closeLoop(h, next, d)
			return
		}

		h.IsWaiting = true
		b.step(next)
		h.IsWaiting = false
		if h.HasStepped {
			return
		}

		if blocker := b.following(h); blocker != nil {
			if blocker.Stuck || blocker.Looped {
				b.markStuck(h)
				return
			}
			h.HasStepped = true
			return
		}
	}

	b.advanceOrYield(h, d)
}

// advanceOrYield moves h into its free target tile unless a hog with right
// of way at the junction goes first.
func (b *Board) advanceOrYield(h *agents.Hog, d world.Direction) {
	if c := b.competitor(h, d); c != nil {
		if !c.IsWaiting {
			b.step(c)
		}
		h.HasStepped = true
		return
	}
	b.move(h, d)
	h.HasStepped = true
}

// closeLoop handles h finding the hog ahead already waiting: the wait chain
// from next leads back to h. Every member is marked looped and the loop
// advances one tile. If the chain does not lead back to h, h idles.
func (b *Board) closeLoop(h, next *agents.Hog, d world.Direction) {
	members := []*agents.Hog{h}
	limit := b.Herd.Len()
	for f := next; f != h; f = b.following(f) {
		if f == nil || !f.IsWaiting || len(members) > limit {
			h.HasStepped = true
			return
		}
		members = append(members, f)
	}
	for _, m := range members {
		m.Looped = true
	}
	slog.Debug("hog loop closed", "hog", h.ID, "size", len(members))
	b.record("loop", "loop of %d hogs closed at %v", len(members), h.Pos)

	b.move(h, d)
	h.HasStepped = true
	b.step(next)
}
