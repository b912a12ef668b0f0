// Package world provides the toroidal tile grid the hogs walk on.
// Coordinates wrap on both axes; north is +Y, east is +X.
package world

import (
	"errors"
	"fmt"
)

// Coord is a tile position. Grid methods always return wrapped coordinates.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns the unwrapped sum of two coordinates.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y}
}

// Direction is one of the four cardinal directions, or None.
type Direction uint8

const (
	None Direction = iota
	North
	East
	South
	West
)

// ErrBadDirection is returned when parsing an unknown direction name.
var ErrBadDirection = errors.New("world: bad direction")

// Cardinals lists the four real directions in N, E, S, W order.
var Cardinals = [4]Direction{North, East, South, West}

var directionOffsets = [5]Coord{
	None:  {0, 0},
	North: {0, 1},
	East:  {1, 0},
	South: {0, -1},
	West:  {-1, 0},
}

// Offset returns the unit step for the direction.
func (d Direction) Offset() Coord {
	if d > West {
		return Coord{}
	}
	return directionOffsets[d]
}

// Right returns the direction after a clockwise quarter turn.
func (d Direction) Right() Direction {
	switch d {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	case West:
		return North
	}
	return None
}

// Left returns the direction after a counter-clockwise quarter turn.
func (d Direction) Left() Direction {
	switch d {
	case North:
		return West
	case West:
		return South
	case South:
		return East
	case East:
		return North
	}
	return None
}

// Back returns the opposite direction.
func (d Direction) Back() Direction {
	return d.Right().Right()
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return ""
}

// Arrow returns the glyph used by text renderings of the board.
func (d Direction) Arrow() string {
	switch d {
	case North:
		return "↑"
	case East:
		return "→"
	case South:
		return "↓"
	case West:
		return "←"
	}
	return "·"
}

// ParseDirection parses "N", "E", "S", "W" or the empty string (None).
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "N", "n":
		return North, nil
	case "E", "e":
		return East, nil
	case "S", "s":
		return South, nil
	case "W", "w":
		return West, nil
	case "":
		return None, nil
	}
	return None, fmt.Errorf("%w: %q", ErrBadDirection, s)
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
