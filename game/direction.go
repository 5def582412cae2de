package game

// Direction is an octant facing: 0 is up and values increase clockwise.
type Direction int

const (
	Up Direction = iota
	UpRight
	Right
	DownRight
	Down
	DownLeft
	Left
	UpLeft
)

var deltas = [8]Point{
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
}

var arrows = [8]string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// Norm reduces d into [0,8).
func (d Direction) Norm() Direction {
	return ((d % 8) + 8) % 8
}

// Rotate turns d by the given number of octants; positive is clockwise.
func (d Direction) Rotate(octants int) Direction {
	return (d + Direction(octants)).Norm()
}

// Opposite is the facing 180 degrees away from d.
func (d Direction) Opposite() Direction {
	return d.Rotate(4)
}

// Delta is the unit step for d.
func (d Direction) Delta() Point {
	return deltas[d.Norm()]
}

// Arrow is the glyph used by the console board dump.
func (d Direction) Arrow() string {
	return arrows[d.Norm()]
}

// InitialDirection is the facing a tank of player has at the start of a
// battle: player 1 faces left and player 2 faces right.
func InitialDirection(player int) Direction {
	if player == 1 {
		return Left
	}
	return Right
}
