package rules

import (
	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/player"
)

// cellChar maps board content to the SatelliteView legend.
func cellChar(c game.Cell) byte {
	switch c.Kind {
	case game.Wall:
		return player.WallChar
	case game.Mine:
		return player.MineChar
	case game.Tank1:
		return player.Tank1Char
	case game.Tank2:
		return player.Tank2Char
	}
	return player.EmptyChar
}

// satelliteView copies the board into a character grid for tank k. Shells in
// flight over empty cells show as '*' and the querying tank's own cell as '%'.
func (e *Engine) satelliteView(k int) *player.GridView {
	w, h := e.board.Width, e.board.Height
	cells := make([]byte, w*h)
	e.board.Each(func(p game.Point, c game.Cell) {
		cells[p.Y*w+p.X] = cellChar(c)
	})
	for _, s := range e.shells {
		if i := s.Pos.Y*w + s.Pos.X; cells[i] == player.EmptyChar {
			cells[i] = player.ShellChar
		}
	}
	self := e.tanks[k].Pos
	cells[self.Y*w+self.X] = player.SelfChar
	return player.NewGridView(w, h, cells).ForTank(k)
}

// SatelliteView builds the snapshot a tank receives on GetBattleInfo. It is
// exported for observers and tests; the returned view shares nothing with
// the engine.
func (e *Engine) SatelliteView(playerIndex, tankIndex int) (*player.GridView, bool) {
	t, ok := e.Tank(playerIndex, tankIndex)
	if !ok || !t.Alive {
		return nil, false
	}
	return e.satelliteView(t.ID), true
}
