// Package game defines the core value types for a tank battle.
//
// These types hold the minimal state needed by the turn engine, the renderers
// and the archive writers. State is designed to be cheaply clonable so
// observers never alias engine internals.
package game

// Point is a board coordinate.
// (0,0) is the top-left cell; X grows to the right and Y grows downwards.
type Point struct {
	X int
	Y int
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Tank is one record of the tank arena. Records are created once, in
// row-major scan order, and are never removed: a destroyed tank only has
// Alive cleared so birth-order indices stay stable for the whole run.
type Tank struct {
	ID       int // birth order across both players
	Player   int // 1 or 2
	Index    int // birth order within Player
	Pos      Point
	Dir      Direction
	Alive    bool
	Shells   int
	Cooldown int
}

// Shell is an in-flight projectile.
type Shell struct {
	Pos Point
	Dir Direction
}

// State is a read-only snapshot of a battle between ticks.
type State struct {
	Turn   int
	Board  *Board
	Tanks  []Tank
	Shells []Shell
}

// Clone performs a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	out := &State{
		Turn:  s.Turn,
		Board: s.Board.Clone(),
	}

	if len(s.Tanks) > 0 {
		out.Tanks = make([]Tank, len(s.Tanks))
		copy(out.Tanks, s.Tanks)
	}

	if len(s.Shells) > 0 {
		out.Shells = make([]Shell, len(s.Shells))
		copy(out.Shells, s.Shells)
	}

	return out
}

// AliveCount returns the number of living tanks owned by player.
func (s *State) AliveCount(player int) int {
	n := 0
	for _, t := range s.Tanks {
		if t.Alive && t.Player == player {
			n++
		}
	}
	return n
}
