// Package player defines the narrow boundary between the turn engine and the
// decision-making collaborators: per-tank strategies and per-side players.
//
// The engine never hands a strategy a reference to its own state. When a tank
// asks for battle info the engine builds a copied SatelliteView and passes it
// to the tank's Player, which shapes it into a BattleInfo for the strategy.
package player

import "github.com/brensch/tanks/game"

// Strategy drives one tank.
type Strategy interface {
	// GetAction is called once per tick, and a second time in the same tick
	// when the first call returned game.GetBattleInfo.
	GetAction() game.Action
	// UpdateBattleInfo receives the info produced by the owning Player.
	UpdateBattleInfo(info BattleInfo)
}

// Player shapes raw satellite views into battle info for its own tanks.
type Player interface {
	UpdateTankWithBattleInfo(s Strategy, view SatelliteView)
}

// PlayerFactory builds the Player of one side.
type PlayerFactory interface {
	NewPlayer(playerIndex, rows, cols, maxSteps, numShells int) Player
}

// StrategyFactory builds the strategy of one tank. tankIndex is the birth
// order of the tank within its player.
type StrategyFactory interface {
	NewStrategy(playerIndex, tankIndex int) Strategy
}

// PlayerFactoryFunc adapts a function to PlayerFactory.
type PlayerFactoryFunc func(playerIndex, rows, cols, maxSteps, numShells int) Player

func (f PlayerFactoryFunc) NewPlayer(playerIndex, rows, cols, maxSteps, numShells int) Player {
	return f(playerIndex, rows, cols, maxSteps, numShells)
}

// StrategyFactoryFunc adapts a function to StrategyFactory.
type StrategyFactoryFunc func(playerIndex, tankIndex int) Strategy

func (f StrategyFactoryFunc) NewStrategy(playerIndex, tankIndex int) Strategy {
	return f(playerIndex, tankIndex)
}

// BattleInfo is the sum type handed to strategies. The only variant is
// *GridInfo; the unexported marker keeps other packages from adding more.
type BattleInfo interface {
	battleInfo()
}

// GridInfo is a copied character grid plus the querying tank's position.
type GridInfo struct {
	Rows int
	Cols int
	// Grid is indexed [y][x] and uses the SatelliteView legend.
	Grid [][]byte
	Self game.Point
	// ShellsLeft is the starting ammo of the tank on its first update and
	// -1 afterwards.
	ShellsLeft int
}

func (*GridInfo) battleInfo() {}

// At returns the grid character at p, or OutOfBounds.
func (g *GridInfo) At(p game.Point) byte {
	if p.X < 0 || p.Y < 0 || p.Y >= len(g.Grid) || p.X >= len(g.Grid[p.Y]) {
		return OutOfBounds
	}
	return g.Grid[p.Y][p.X]
}
