package strategy

import (
	"log/slog"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/player"
)

// refreshEvery is how many acting ticks a plan is trusted before asking for a
// fresh battle info.
const refreshEvery = 4

// Aggressive hunts the nearest enemy. With an enemy in a straight line it
// turns and fires, shooting through walls when it has the ammo for it.
// Otherwise it drives toward the closest position with a clear shot.
type Aggressive struct {
	player int
	tank   int
	log    *slog.Logger

	info     *player.GridInfo
	pos      game.Point
	dir      game.Direction
	shells   int
	cooldown int
	stale    bool
	acted    int
	plan     []game.Action
}

func NewAggressive(playerIndex, tankIndex int, log *slog.Logger) *Aggressive {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Aggressive{
		player: playerIndex,
		tank:   tankIndex,
		log:    log,
		dir:    game.InitialDirection(playerIndex),
		shells: -1,
	}
}

func (a *Aggressive) UpdateBattleInfo(info player.BattleInfo) {
	gi, ok := info.(*player.GridInfo)
	if !ok {
		a.log.Warn("unsupported battle info", "player", a.player, "tank", a.tank)
		return
	}
	a.info = gi
	a.pos = gi.Self
	if gi.ShellsLeft >= 0 {
		a.shells = gi.ShellsLeft
	}
	a.stale = false
	a.acted = 0
	a.plan = nil
}

func (a *Aggressive) GetAction() game.Action {
	if a.info == nil || a.stale {
		a.stale = false
		return game.GetBattleInfo
	}
	if a.cooldown > 0 {
		a.cooldown--
	}
	act := a.decide()
	a.apply(act)
	return act
}

// apply mirrors the expected effect of act on the tank's own bookkeeping.
func (a *Aggressive) apply(act game.Action) {
	switch act {
	case game.Shoot:
		if a.shells > 0 {
			a.shells--
		}
		a.cooldown = game.DefaultReloadTicks
		a.stale = true
	case game.MoveForward:
		a.pos = wrap(a.info, a.pos.Add(a.dir.Delta()))
	default:
		a.dir = a.dir.Rotate(act.Rotation())
	}
	a.acted++
	if a.acted >= refreshEvery {
		a.stale = true
	}
}

func (a *Aggressive) canShoot() bool {
	return a.cooldown == 0 && a.shells != 0
}

func (a *Aggressive) decide() game.Action {
	if walls, ok := lineOfSight(a.info, a.player, a.pos, a.dir); ok && a.affordable(walls) {
		if a.canShoot() {
			return game.Shoot
		}
		return game.DoNothing
	}
	for _, d := range turnOrder(a.dir) {
		if walls, ok := lineOfSight(a.info, a.player, a.pos, d); ok && a.affordable(walls) {
			a.plan = nil
			return rotationToward(a.dir, d)
		}
	}

	if len(a.plan) == 0 {
		a.plan = a.route()
		a.log.Debug("planned route", "player", a.player, "tank", a.tank, "len", len(a.plan))
	}
	if len(a.plan) == 0 {
		return a.roam()
	}
	act := a.plan[0]
	a.plan = a.plan[1:]
	return act
}

// affordable reports whether enough ammo remains to break through walls.
// Unknown ammo counts as plenty.
func (a *Aggressive) affordable(walls int) bool {
	return a.shells < 0 || a.shells >= ShotsNeeded(walls)
}

func (a *Aggressive) roam() game.Action {
	if passable(a.info, wrap(a.info, a.pos.Add(a.dir.Delta()))) {
		return game.MoveForward
	}
	return game.RotateRight45
}

// turnOrder lists the other seven directions, closest rotation first.
func turnOrder(from game.Direction) []game.Direction {
	out := make([]game.Direction, 0, 7)
	for step := 1; step <= 4; step++ {
		out = append(out, from.Rotate(step))
		if step != 4 {
			out = append(out, from.Rotate(-step))
		}
	}
	return out
}

type pose struct {
	pos game.Point
	dir game.Direction
}

// route runs a breadth-first search over (cell, facing) until it finds a pose
// with a wall-free shot at an enemy. Forward moves stay on the board so the
// plan holds whatever the edge policy is.
func (a *Aggressive) route() []game.Action {
	type node struct {
		prev pose
		act  game.Action
	}
	start := pose{a.pos, a.dir}
	seen := map[pose]node{start: {}}
	queue := []pose{start}
	moves := []game.Action{game.MoveForward, game.RotateLeft45, game.RotateRight45, game.RotateLeft90, game.RotateRight90}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur != start {
			if walls, ok := lineOfSight(a.info, a.player, cur.pos, cur.dir); ok && walls == 0 {
				var path []game.Action
				for p := cur; p != start; p = seen[p].prev {
					path = append(path, seen[p].act)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
		}
		for _, m := range moves {
			next := cur
			if m == game.MoveForward {
				np := cur.pos.Add(cur.dir.Delta())
				if np.X < 0 || np.Y < 0 || np.X >= a.info.Cols || np.Y >= a.info.Rows || !passable(a.info, np) {
					continue
				}
				next.pos = np
			} else {
				next.dir = cur.dir.Rotate(m.Rotation())
			}
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = node{prev: cur, act: m}
			queue = append(queue, next)
		}
	}
	return nil
}
