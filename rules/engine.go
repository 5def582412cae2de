// Package rules implements the turn resolution engine.
//
// An Engine owns the board, the tank arena and the in-flight shells. Every
// call to Advance runs the same fixed pipeline over the whole population:
//
//  1. collect one action per living tank (with at most one battle-info round trip)
//  2. rotations
//  3. tanks standing on mines
//  4. reload cooldowns
//  5. backward-move legality
//  6. tank movement and tank-tank collisions
//  7. shooting
//  8. shell advancement, two unit steps with mid-step collision checks
//  9. shell-shell collisions
//  10. termination
//  11. tick counter
//
// The engine is single threaded and fully synchronous. Strategies and players
// are called as plain functions and only ever receive copies of engine state.
package rules

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/player"
)

type Engine struct {
	settings Settings
	log      *slog.Logger

	board  *game.Board
	tanks  []game.Tank
	shells []game.Shell

	// byPlayer[p][i] is the arena index of tank i of player p.
	byPlayer   [3][]int
	strategies []player.Strategy
	players    [3]player.Player

	step         int
	starvedTicks int
	over         bool
	result       Result
}

// New builds an engine over a copy of board. Tanks are created by scanning
// the board for tank cells in row-major order. A nil PlayerFactory selects
// player.DefaultPlayerFactory.
func New(board *game.Board, settings Settings, players player.PlayerFactory, strategies player.StrategyFactory) (*Engine, error) {
	if board == nil {
		return nil, errors.New("board is required")
	}
	if strategies == nil {
		return nil, errors.New("strategy factory is required")
	}
	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if players == nil {
		players = player.DefaultPlayerFactory
	}

	e := &Engine{
		settings: settings,
		log:      settings.logger(),
		board:    board.Clone(),
	}
	e.board.ClearShellMarks()

	e.board.Each(func(p game.Point, c game.Cell) {
		owner := c.Kind.Player()
		if owner == 0 {
			return
		}
		e.tanks = append(e.tanks, game.Tank{
			ID:     len(e.tanks),
			Player: owner,
			Index:  len(e.byPlayer[owner]),
			Pos:    p,
			Dir:    game.InitialDirection(owner),
			Alive:  true,
			Shells: settings.NumShells,
		})
		e.byPlayer[owner] = append(e.byPlayer[owner], len(e.tanks)-1)
	})

	for p := 1; p <= 2; p++ {
		e.players[p] = players.NewPlayer(p, e.board.Height, e.board.Width, settings.MaxSteps, settings.NumShells)
	}
	e.strategies = make([]player.Strategy, len(e.tanks))
	for k, t := range e.tanks {
		e.strategies[k] = strategies.NewStrategy(t.Player, t.Index)
		if e.strategies[k] == nil {
			return nil, fmt.Errorf("strategy factory returned nil for player %d tank %d", t.Player, t.Index)
		}
	}

	e.log.Debug("engine initialised",
		"width", e.board.Width,
		"height", e.board.Height,
		"tanks_p1", len(e.byPlayer[1]),
		"tanks_p2", len(e.byPlayer[2]),
		"max_steps", settings.MaxSteps,
		"num_shells", settings.NumShells,
	)
	return e, nil
}

// Advance runs one tick. Once the battle is over it does nothing and returns
// a zero record and false.
func (e *Engine) Advance() (TurnRecord, bool) {
	if e.over {
		return TurnRecord{}, false
	}

	t := e.beginTurn()
	e.collectActions(t)
	e.applyRotations(t)
	e.handleMines(t)
	e.tickCooldowns()
	e.checkBackwardMoves(t)
	e.moveTanks(t)
	e.shoot(t)
	visits := e.advanceShells(t)
	e.resolveShellCollisions(visits)
	e.checkGameOver()
	e.step++

	rec := e.record(t)
	e.log.Debug("tick", "turn", rec.Turn, "actions", rec.Line, "shells", len(e.shells))
	if e.over {
		e.log.Debug("battle over", "turn", rec.Turn, "result", e.result.String())
	}
	return rec, true
}

// IsGameOver reports whether a termination condition has been met.
func (e *Engine) IsGameOver() bool { return e.over }

// Result is the final outcome; Outcome is Ongoing until the game is over.
func (e *Engine) Result() Result { return e.result }

// Step is the number of completed ticks.
func (e *Engine) Step() int { return e.step }

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() Settings { return e.settings }

// State returns a deep copy of the current battle state.
func (e *Engine) State() *game.State {
	s := &game.State{
		Turn:   e.step,
		Board:  e.board.Clone(),
		Tanks:  make([]game.Tank, len(e.tanks)),
		Shells: make([]game.Shell, len(e.shells)),
	}
	copy(s.Tanks, e.tanks)
	copy(s.Shells, e.shells)
	return s
}

// Tank looks a tank up by player and per-player birth order.
func (e *Engine) Tank(playerIndex, tankIndex int) (game.Tank, bool) {
	if playerIndex < 1 || playerIndex > 2 || tankIndex < 0 || tankIndex >= len(e.byPlayer[playerIndex]) {
		return game.Tank{}, false
	}
	return e.tanks[e.byPlayer[playerIndex][tankIndex]], true
}

// kill destroys tank k and clears the cell it stands on.
func (e *Engine) kill(t *turn, k int, cause string) {
	tank := &e.tanks[k]
	if !tank.Alive {
		return
	}
	tank.Alive = false
	t.killed[k] = true
	if e.board.Get(tank.Pos).Kind == game.TankCell(tank.Player) {
		e.board.Set(tank.Pos, game.Empty)
	}
	e.log.Debug("tank destroyed",
		"turn", e.step+1,
		"player", tank.Player,
		"tank", tank.Index,
		"x", tank.Pos.X,
		"y", tank.Pos.Y,
		"cause", cause,
	)
}

// tankAt returns the arena index of the living tank of player at p.
func (e *Engine) tankAt(p game.Point, playerIndex int) (int, bool) {
	for _, k := range e.byPlayer[playerIndex] {
		if e.tanks[k].Alive && e.tanks[k].Pos == p {
			return k, true
		}
	}
	return 0, false
}
