package game

import (
	"fmt"
	"strings"
)

// Action is the closed set of requests a tank strategy can make in one tick.
type Action uint8

const (
	DoNothing Action = iota
	MoveForward
	MoveBackward
	RotateLeft90
	RotateRight90
	RotateLeft45
	RotateRight45
	Shoot
	GetBattleInfo
)

var actionNames = [...]string{
	DoNothing:     "DoNothing",
	MoveForward:   "MoveForward",
	MoveBackward:  "MoveBackward",
	RotateLeft90:  "RotateLeft90",
	RotateRight90: "RotateRight90",
	RotateLeft45:  "RotateLeft45",
	RotateRight45: "RotateRight45",
	Shoot:         "Shoot",
	GetBattleInfo: "GetBattleInfo",
}

// Actions lists every action in declaration order.
var Actions = []Action{
	DoNothing, MoveForward, MoveBackward,
	RotateLeft90, RotateRight90, RotateLeft45, RotateRight45,
	Shoot, GetBattleInfo,
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return actionNames[DoNothing]
}

// IsMove reports whether a moves the tank.
func (a Action) IsMove() bool {
	return a == MoveForward || a == MoveBackward
}

// Rotation is the facing change of a in octants (0 for non-rotations).
func (a Action) Rotation() int {
	switch a {
	case RotateLeft90:
		return -2
	case RotateRight90:
		return 2
	case RotateLeft45:
		return -1
	case RotateRight45:
		return 1
	}
	return 0
}

// ParseAction accepts the log spelling of an action, case-insensitively.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	for _, a := range Actions {
		if strings.EqualFold(a.String(), s) {
			return a, nil
		}
	}
	return DoNothing, fmt.Errorf("unknown action %q", s)
}
