package rules

import "github.com/brensch/tanks/game"

// destination is the cell a move action would reach. ok is false when the
// move would leave a non-wrapping board.
func (e *Engine) destination(tank *game.Tank, a game.Action) (p game.Point, ok bool) {
	dir := tank.Dir
	if a == game.MoveBackward {
		dir = dir.Opposite()
	}
	p = tank.Pos.Add(dir.Delta())
	if a == game.MoveBackward || e.settings.WrapForward {
		return e.board.Wrap(p), true
	}
	return p, e.board.InBounds(p)
}

// moveTanks computes every tentative destination, resolves tank-tank
// collisions in priority order (head-on swaps, moves into stationary tanks,
// shared destinations) and commits the surviving moves.
//
// Destinations are read from the board as it stood before any move, and a
// mine only goes off when a surviving mover commits onto it. Each collision
// class is evaluated against the tanks that survived the previous classes,
// so the result does not depend on arena order.
func (e *Engine) moveTanks(t *turn) {
	n := len(e.tanks)
	origin := make([]game.Point, n)
	dest := make([]game.Point, n)
	moving := make([]bool, n)

	for k := range e.tanks {
		tank := &e.tanks[k]
		origin[k], dest[k] = tank.Pos, tank.Pos
		if !tank.Alive || t.ignored[k] || !t.actions[k].IsMove() {
			continue
		}
		p, ok := e.destination(tank, t.actions[k])
		if !ok {
			t.ignored[k] = true
			continue
		}
		if e.board.Get(p).Kind == game.Wall {
			t.ignored[k] = true
			continue
		}
		dest[k] = p
		moving[k] = true
	}

	alive := func(k int) bool { return e.tanks[k].Alive }
	doomed := make([]bool, n)
	apply := func(cause string) {
		for k := range doomed {
			if doomed[k] {
				e.kill(t, k, cause)
				doomed[k] = false
			}
		}
	}

	// head-on swaps
	for i := 0; i < n; i++ {
		if !moving[i] || !alive(i) {
			continue
		}
		for j := i + 1; j < n; j++ {
			if !moving[j] || !alive(j) {
				continue
			}
			if dest[i] == origin[j] && dest[j] == origin[i] {
				doomed[i], doomed[j] = true, true
			}
		}
	}
	apply("head-on collision")

	// moves into a tank that stays put
	for k := 0; k < n; k++ {
		if !moving[k] || !alive(k) {
			continue
		}
		for j := 0; j < n; j++ {
			if j == k || moving[j] || !alive(j) {
				continue
			}
			if dest[k] == origin[j] {
				doomed[k], doomed[j] = true, true
			}
		}
	}
	apply("rammed stationary tank")

	// several movers sharing a destination
	byDest := make(map[game.Point][]int)
	for k := 0; k < n; k++ {
		if moving[k] && alive(k) {
			byDest[dest[k]] = append(byDest[dest[k]], k)
		}
	}
	for _, ks := range byDest {
		if len(ks) < 2 {
			continue
		}
		for _, k := range ks {
			doomed[k] = true
		}
	}
	apply("shared destination")

	for k := 0; k < n; k++ {
		if !moving[k] || !alive(k) {
			continue
		}
		if s, ok := e.shellAt(dest[k]); ok {
			e.shells = append(e.shells[:s], e.shells[s+1:]...)
			e.kill(t, k, "drove into shell")
			continue
		}
		if e.board.Get(dest[k]).Kind == game.Mine {
			e.board.Set(dest[k], game.Empty)
			e.kill(t, k, "mine")
			continue
		}
		e.tanks[k].Pos = dest[k]
	}

	e.syncTankMarks()
}

// syncTankMarks rewrites every tank cell from the arena.
func (e *Engine) syncTankMarks() {
	e.board.ClearTankMarks()
	for _, tank := range e.tanks {
		if tank.Alive {
			e.board.Set(tank.Pos, game.TankCell(tank.Player))
		}
	}
}

func (e *Engine) shellAt(p game.Point) (int, bool) {
	for i, s := range e.shells {
		if s.Pos == p {
			return i, true
		}
	}
	return 0, false
}
