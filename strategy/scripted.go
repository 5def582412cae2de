// Package strategy provides tank strategies for the engine: a scripted
// strategy for replays and tests, and rule-based players that read the
// battle-info grid.
package strategy

import (
	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/player"
)

// Scripted returns a fixed sequence of actions, then DoNothing forever.
type Scripted struct {
	actions []game.Action
	next    int

	// Infos holds every battle info received, oldest first.
	Infos []*player.GridInfo
}

func NewScripted(actions ...game.Action) *Scripted {
	return &Scripted{actions: append([]game.Action(nil), actions...)}
}

func (s *Scripted) GetAction() game.Action {
	if s.next >= len(s.actions) {
		return game.DoNothing
	}
	a := s.actions[s.next]
	s.next++
	return a
}

func (s *Scripted) UpdateBattleInfo(info player.BattleInfo) {
	if gi, ok := info.(*player.GridInfo); ok {
		s.Infos = append(s.Infos, gi)
	}
}

// Script maps (player, tank index) to the scripted strategy of that tank.
// Tanks without an entry do nothing.
type Script map[[2]int]*Scripted

func (s Script) NewStrategy(playerIndex, tankIndex int) player.Strategy {
	if sc, ok := s[[2]int{playerIndex, tankIndex}]; ok {
		return sc
	}
	return NewScripted()
}

// Idle never acts.
type Idle struct{}

func (*Idle) GetAction() game.Action              { return game.DoNothing }
func (*Idle) UpdateBattleInfo(player.BattleInfo) {}

// Spinner asks for battle info and then turns right by 90 degrees, forever.
type Spinner struct {
	informed bool
}

func (s *Spinner) GetAction() game.Action {
	if !s.informed {
		return game.GetBattleInfo
	}
	s.informed = false
	return game.RotateRight90
}

func (s *Spinner) UpdateBattleInfo(player.BattleInfo) {
	s.informed = true
}
