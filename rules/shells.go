package rules

import "github.com/brensch/tanks/game"

// ShellSubSteps is the number of unit moves a shell makes per tick.
const ShellSubSteps = 2

// shoot spawns a shell one cell ahead of every tank that fires with ammo
// and a cold barrel. The spawn cell is checked immediately.
func (e *Engine) shoot(t *turn) {
	for k := range e.tanks {
		tank := &e.tanks[k]
		if !tank.Alive || t.actions[k] != game.Shoot {
			continue
		}
		if tank.Cooldown > 0 || tank.Shells == 0 {
			t.ignored[k] = true
			continue
		}
		tank.Shells--
		tank.Cooldown = e.settings.ReloadTicks

		spawn := e.board.Wrap(tank.Pos.Add(tank.Dir.Delta()))
		if e.shellHits(t, spawn) {
			continue
		}
		e.shells = append(e.shells, game.Shell{Pos: spawn, Dir: tank.Dir})
	}
}

// shellHits applies a shell arriving at p and reports whether the shell is
// destroyed. Walls take a hit, tanks are destroyed, mines and empty cells let
// the shell through.
func (e *Engine) shellHits(t *turn, p game.Point) bool {
	cell := e.board.Get(p)
	switch {
	case cell.Kind == game.Wall:
		destroyed := e.board.HitWall(p)
		e.log.Debug("wall hit", "turn", e.step+1, "x", p.X, "y", p.Y, "destroyed", destroyed)
		return true
	case cell.Kind.IsTank():
		if k, ok := e.tankAt(p, cell.Kind.Player()); ok {
			e.kill(t, k, "shell")
		}
		e.board.Set(p, game.Empty)
		return true
	}
	return false
}

// shellMoves records which shells passed through each cell during the
// current tick, and which shells were destroyed mid-step.
type shellMoves struct {
	visits  map[game.Point][]int
	removed map[int]bool
}

// visit records shell i at p. A shell that wraps back onto a cell it already
// crossed this tick is recorded once.
func (m *shellMoves) visit(p game.Point, i int) {
	idxs := m.visits[p]
	if n := len(idxs); n > 0 && idxs[n-1] == i {
		return
	}
	m.visits[p] = append(idxs, i)
}

// advanceShells moves every shell ShellSubSteps unit steps, wrapping at the
// board edges and checking collisions after each step.
func (e *Engine) advanceShells(t *turn) *shellMoves {
	e.board.ClearShellMarks()
	m := &shellMoves{
		visits:  make(map[game.Point][]int),
		removed: make(map[int]bool),
	}
	for i := range e.shells {
		s := &e.shells[i]
		for sub := 0; sub < ShellSubSteps; sub++ {
			s.Pos = e.board.Wrap(s.Pos.Add(s.Dir.Delta()))
			if e.shellHits(t, s.Pos) {
				m.removed[i] = true
				break
			}
			m.visit(s.Pos, i)
		}
	}
	return m
}

// resolveShellCollisions destroys every shell that crossed a cell another
// shell also crossed this tick, drops destroyed shells and marks the
// survivors for rendering.
func (e *Engine) resolveShellCollisions(m *shellMoves) {
	for p, idxs := range m.visits {
		if len(idxs) < 2 {
			continue
		}
		for _, i := range idxs {
			m.removed[i] = true
		}
		e.log.Debug("shells collided", "turn", e.step+1, "x", p.X, "y", p.Y, "count", len(idxs))
	}

	remaining := make([]game.Shell, 0, len(e.shells))
	for i, s := range e.shells {
		if m.removed[i] {
			continue
		}
		remaining = append(remaining, s)
		e.board.MarkShell(s.Pos)
	}
	e.shells = remaining
}
