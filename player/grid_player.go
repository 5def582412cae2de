package player

import (
	"reflect"

	"github.com/brensch/tanks/game"
)

// GridPlayer copies the satellite view into a GridInfo, locates the
// querying tank and injects the starting ammo count on the first update each
// tank receives. Tanks are told apart by the id on the view; views without
// one fall back to the strategy value, and a strategy that cannot be a map
// key gets the ammo count on every update.
type GridPlayer struct {
	index     int
	rows      int
	cols      int
	maxSteps  int
	numShells int

	informed map[any]bool
}

// NewGridPlayer is a PlayerFactoryFunc.
func NewGridPlayer(playerIndex, rows, cols, maxSteps, numShells int) Player {
	return &GridPlayer{
		index:     playerIndex,
		rows:      rows,
		cols:      cols,
		maxSteps:  maxSteps,
		numShells: numShells,
		informed:  make(map[any]bool),
	}
}

// DefaultPlayerFactory builds a GridPlayer for each side.
var DefaultPlayerFactory PlayerFactory = PlayerFactoryFunc(NewGridPlayer)

func (p *GridPlayer) Index() int { return p.index }

func (p *GridPlayer) UpdateTankWithBattleInfo(s Strategy, view SatelliteView) {
	info := &GridInfo{
		Rows:       p.rows,
		Cols:       p.cols,
		Grid:       make([][]byte, p.rows),
		Self:       game.Point{X: -1, Y: -1},
		ShellsLeft: -1,
	}
	for y := 0; y < p.rows; y++ {
		row := make([]byte, p.cols)
		for x := 0; x < p.cols; x++ {
			c := view.ObjectAt(x, y)
			if c == SelfChar {
				info.Self = game.Point{X: x, Y: y}
			}
			row[x] = c
		}
		info.Grid[y] = row
	}
	key, ok := tankKey(s, view)
	if !ok || !p.informed[key] {
		if ok {
			p.informed[key] = true
		}
		info.ShellsLeft = p.numShells
	}
	s.UpdateBattleInfo(info)
}

func tankKey(s Strategy, view SatelliteView) (any, bool) {
	if v, ok := view.(interface{ TankID() (int, bool) }); ok {
		if id, ok := v.TankID(); ok {
			return id, true
		}
	}
	if t := reflect.TypeOf(s); t != nil && t.Comparable() {
		return s, true
	}
	return nil, false
}
