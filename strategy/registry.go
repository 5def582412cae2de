package strategy

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/brensch/tanks/player"
)

// Constructor builds a strategy for one tank.
type Constructor func(playerIndex, tankIndex int, log *slog.Logger) player.Strategy

var registry = map[string]Constructor{
	"aggressive": func(p, t int, log *slog.Logger) player.Strategy { return NewAggressive(p, t, log) },
	"evasive":    func(p, t int, log *slog.Logger) player.Strategy { return NewEvasive(p, t, log) },
	"spinner":    func(int, int, *slog.Logger) player.Strategy { return &Spinner{} },
	"idle":       func(int, int, *slog.Logger) player.Strategy { return &Idle{} },
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a registered strategy by name, case-insensitively.
func Lookup(name string) (Constructor, error) {
	c, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// ByPlayer returns a factory that builds every tank of player 1 with p1 and
// every tank of player 2 with p2.
func ByPlayer(p1, p2 Constructor, log *slog.Logger) player.StrategyFactory {
	return player.StrategyFactoryFunc(func(playerIndex, tankIndex int) player.Strategy {
		if playerIndex == 1 {
			return p1(playerIndex, tankIndex, log)
		}
		return p2(playerIndex, tankIndex, log)
	})
}

// Named resolves two strategy names into a factory.
func Named(p1, p2 string, log *slog.Logger) (player.StrategyFactory, error) {
	c1, err := Lookup(p1)
	if err != nil {
		return nil, fmt.Errorf("player 1: %w", err)
	}
	c2, err := Lookup(p2)
	if err != nil {
		return nil, fmt.Errorf("player 2: %w", err)
	}
	return ByPlayer(c1, c2, log), nil
}
