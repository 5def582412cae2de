package rules

import (
	"fmt"
	"log/slog"

	"github.com/brensch/tanks/game"
)

// DefaultReloadTicks is the number of ticks a tank waits after firing before
// it may fire again.
const DefaultReloadTicks = game.DefaultReloadTicks

// Settings controls one battle.
//
// WrapForward selects the board-edge policy for forward tank moves. Shells
// and backward moves always wrap; with WrapForward false a forward move that
// would leave the board is ignored like a move into a wall.
//
// ShellStarvationTicks enables the optional tie rule: when every living tank
// on both sides has no shells left for that many consecutive ticks the battle
// ends in a tie. Zero disables the rule.
type Settings struct {
	MaxSteps             int
	NumShells            int
	ReloadTicks          int
	WrapForward          bool
	ShellStarvationTicks int
	Logger               *slog.Logger
}

// DefaultSettings returns the standard rules with the given limits.
func DefaultSettings(maxSteps, numShells int) Settings {
	return Settings{
		MaxSteps:    maxSteps,
		NumShells:   numShells,
		ReloadTicks: DefaultReloadTicks,
		WrapForward: true,
	}
}

func (s Settings) validate() error {
	if s.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", s.MaxSteps)
	}
	if s.NumShells < 0 {
		return fmt.Errorf("shell count must not be negative, got %d", s.NumShells)
	}
	if s.ReloadTicks < 0 {
		return fmt.Errorf("reload ticks must not be negative, got %d", s.ReloadTicks)
	}
	if s.ShellStarvationTicks < 0 {
		return fmt.Errorf("shell starvation ticks must not be negative, got %d", s.ShellStarvationTicks)
	}
	return nil
}

func (s Settings) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
