package rules

import "github.com/brensch/tanks/game"

// turn is the per-tick bookkeeping, indexed by arena index.
type turn struct {
	wasAlive  []bool
	requested []game.Action // first answer of the strategy
	actions   []game.Action // action actually executed
	ignored   []bool
	killed    []bool
}

func (e *Engine) beginTurn() *turn {
	n := len(e.tanks)
	t := &turn{
		wasAlive:  make([]bool, n),
		requested: make([]game.Action, n),
		actions:   make([]game.Action, n),
		ignored:   make([]bool, n),
		killed:    make([]bool, n),
	}
	for k := range e.tanks {
		t.wasAlive[k] = e.tanks[k].Alive
	}
	return t
}

// collectActions asks every living tank for its action. A GetBattleInfo
// answer triggers one synchronous round trip through the owning Player
// before the strategy is asked again for the action executed this tick.
func (e *Engine) collectActions(t *turn) {
	for k := range e.tanks {
		tank := &e.tanks[k]
		if !tank.Alive {
			continue
		}
		s := e.strategies[k]
		req := s.GetAction()
		t.requested[k] = req
		t.actions[k] = req
		if req != game.GetBattleInfo {
			continue
		}

		e.players[tank.Player].UpdateTankWithBattleInfo(s, e.satelliteView(k))
		act := s.GetAction()
		if act == game.GetBattleInfo {
			// one round trip per tick
			act = game.DoNothing
		}
		t.actions[k] = act
	}
}

func (e *Engine) applyRotations(t *turn) {
	for k := range e.tanks {
		if !e.tanks[k].Alive {
			continue
		}
		if r := t.actions[k].Rotation(); r != 0 {
			e.tanks[k].Dir = e.tanks[k].Dir.Rotate(r)
		}
	}
}

func (e *Engine) handleMines(t *turn) {
	for k := range e.tanks {
		tank := &e.tanks[k]
		if !tank.Alive || e.board.Get(tank.Pos).Kind != game.Mine {
			continue
		}
		e.board.Set(tank.Pos, game.Empty)
		e.kill(t, k, "mine")
	}
}

func (e *Engine) tickCooldowns() {
	for k := range e.tanks {
		if e.tanks[k].Alive && e.tanks[k].Cooldown > 0 {
			e.tanks[k].Cooldown--
		}
	}
}

// checkBackwardMoves ignores backward moves whose wrapped destination is a wall.
func (e *Engine) checkBackwardMoves(t *turn) {
	for k := range e.tanks {
		tank := &e.tanks[k]
		if !tank.Alive || t.actions[k] != game.MoveBackward {
			continue
		}
		dest := e.board.Wrap(tank.Pos.Add(tank.Dir.Opposite().Delta()))
		if e.board.Get(dest).Kind == game.Wall {
			t.ignored[k] = true
		}
	}
}
