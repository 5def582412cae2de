package strategy

import (
	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/player"
)

// ShotsNeeded is the number of shells needed to hit a target behind the given
// number of walls, since each wall absorbs two hits before it disappears.
func ShotsNeeded(walls int) int {
	return walls*2 + 1
}

func ownChar(playerIndex int) byte {
	if playerIndex == 1 {
		return player.Tank1Char
	}
	return player.Tank2Char
}

func enemyChar(playerIndex int) byte {
	if playerIndex == 1 {
		return player.Tank2Char
	}
	return player.Tank1Char
}

func wrap(info *player.GridInfo, p game.Point) game.Point {
	if info.Cols > 0 {
		p.X = ((p.X % info.Cols) + info.Cols) % info.Cols
	}
	if info.Rows > 0 {
		p.Y = ((p.Y % info.Rows) + info.Rows) % info.Rows
	}
	return p
}

// lineOfSight follows a shell's path from `from` along dir, wrapping at the
// edges, and reports whether it reaches an enemy tank and through how many
// walls. Friendly tanks block the line; mines are transparent to shells.
// A wrapped ray returns to its start after at most lcm(rows, cols) steps.
func lineOfSight(info *player.GridInfo, playerIndex int, from game.Point, dir game.Direction) (walls int, found bool) {
	limit := lcm(info.Rows, info.Cols)
	p := from
	for i := 0; i < limit; i++ {
		p = wrap(info, p.Add(dir.Delta()))
		if p == from {
			return 0, false
		}
		switch info.At(p) {
		case player.WallChar:
			walls++
		case enemyChar(playerIndex):
			return walls, true
		case ownChar(playerIndex), player.SelfChar:
			return 0, false
		}
	}
	return 0, false
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	return a / gcd(a, b) * b
}

// passable reports whether a tank can safely drive onto p.
func passable(info *player.GridInfo, p game.Point) bool {
	switch info.At(p) {
	case player.EmptyChar, player.SelfChar:
		return true
	}
	return false
}

// rotationToward picks the rotation that turns from toward to fastest.
func rotationToward(from, to game.Direction) game.Action {
	diff := int(to.Norm()-from.Norm()+8) % 8
	switch {
	case diff == 0:
		return game.DoNothing
	case diff == 1:
		return game.RotateRight45
	case diff == 7:
		return game.RotateLeft45
	case diff <= 4:
		return game.RotateRight90
	}
	return game.RotateLeft90
}
