package strategy

import (
	"log/slog"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/player"
)

// safeDistance is the shell distance at which the evasive tank stops dodging
// and takes shots of its own.
const safeDistance = 3

// evasiveOrder breaks ties between equally safe candidates.
var evasiveOrder = []game.Action{
	game.MoveBackward,
	game.MoveForward,
	game.RotateLeft45,
	game.RotateRight45,
	game.RotateLeft90,
	game.RotateRight90,
	game.DoNothing,
}

// Evasive refreshes its view every tick and moves to the pose furthest from
// shells in flight and out of clear enemy lines of fire. When nothing is
// close it returns fire along its facing.
type Evasive struct {
	player int
	tank   int
	log    *slog.Logger

	info     *player.GridInfo
	dir      game.Direction
	shells   int
	cooldown int
}

func NewEvasive(playerIndex, tankIndex int, log *slog.Logger) *Evasive {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Evasive{
		player: playerIndex,
		tank:   tankIndex,
		log:    log,
		dir:    game.InitialDirection(playerIndex),
		shells: -1,
	}
}

func (e *Evasive) UpdateBattleInfo(info player.BattleInfo) {
	gi, ok := info.(*player.GridInfo)
	if !ok {
		e.log.Warn("unsupported battle info", "player", e.player, "tank", e.tank)
		return
	}
	e.info = gi
	if gi.ShellsLeft >= 0 {
		e.shells = gi.ShellsLeft
	}
}

func (e *Evasive) GetAction() game.Action {
	if e.info == nil {
		return game.GetBattleInfo
	}
	info := e.info
	e.info = nil
	if e.cooldown > 0 {
		e.cooldown--
	}

	act := e.decide(info)
	switch act {
	case game.Shoot:
		if e.shells > 0 {
			e.shells--
		}
		e.cooldown = game.DefaultReloadTicks
	default:
		e.dir = e.dir.Rotate(act.Rotation())
	}
	return act
}

func (e *Evasive) decide(info *player.GridInfo) game.Action {
	here := info.Self
	if e.shellDistance(info, here) >= safeDistance && e.cooldown == 0 && e.shells != 0 {
		if walls, ok := lineOfSight(info, e.player, here, e.dir); ok && walls == 0 {
			return game.Shoot
		}
	}

	best, bestScore := game.DoNothing, -1<<31
	for _, act := range evasiveOrder {
		pos, dir, ok := e.candidate(info, act)
		if !ok {
			continue
		}
		if s := e.safety(info, pos, dir); s > bestScore {
			best, bestScore = act, s
		}
	}
	e.log.Debug("evasive choice", "player", e.player, "tank", e.tank, "action", best, "score", bestScore)
	return best
}

// candidate returns the pose act would lead to, or false when the move would
// be ignored or drive onto something harmful.
func (e *Evasive) candidate(info *player.GridInfo, act game.Action) (game.Point, game.Direction, bool) {
	here := info.Self
	switch act {
	case game.MoveForward:
		np := here.Add(e.dir.Delta())
		if np.X < 0 || np.Y < 0 || np.X >= info.Cols || np.Y >= info.Rows || !passable(info, np) {
			return here, e.dir, false
		}
		return np, e.dir, true
	case game.MoveBackward:
		np := wrap(info, here.Add(e.dir.Opposite().Delta()))
		if !passable(info, np) {
			return here, e.dir, false
		}
		return np, e.dir, true
	}
	return here, e.dir.Rotate(act.Rotation()), true
}

// safety scores a pose: distance to the nearest shell, less a penalty for
// standing in a clear enemy line of fire.
func (e *Evasive) safety(info *player.GridInfo, pos game.Point, dir game.Direction) int {
	score := e.shellDistance(info, pos) * 2
	for d := game.Up; d <= game.UpLeft; d++ {
		if walls, ok := lineOfSight(info, e.player, pos, d); ok && walls == 0 {
			score--
			if d == dir {
				// facing the threat keeps a shot available
				score++
			}
		}
	}
	return score
}

// shellDistance is the wrapped chessboard distance from p to the closest
// visible shell, capped at the larger board dimension.
func (e *Evasive) shellDistance(info *player.GridInfo, p game.Point) int {
	limit := info.Rows
	if info.Cols > limit {
		limit = info.Cols
	}
	best := limit
	for y := 0; y < info.Rows; y++ {
		for x := 0; x < info.Cols; x++ {
			if info.Grid[y][x] != player.ShellChar {
				continue
			}
			if d := wrappedDistance(info, p, game.Point{X: x, Y: y}); d < best {
				best = d
			}
		}
	}
	return best
}

func wrappedDistance(info *player.GridInfo, a, b game.Point) int {
	dx := abs(a.X - b.X)
	if w := info.Cols - dx; w < dx {
		dx = w
	}
	dy := abs(a.Y - b.Y)
	if h := info.Rows - dy; h < dy {
		dy = h
	}
	if dx > dy {
		return dx
	}
	return dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
