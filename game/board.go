package game

// CellKind classifies the static content of a board cell.
type CellKind uint8

const (
	Empty CellKind = iota
	Wall
	Mine
	Tank1
	Tank2
)

// WallHitsToDestroy is the number of shell hits that turn a wall into an
// empty cell.
const WallHitsToDestroy = 2

// DefaultReloadTicks is the standard cooldown after a shot.
const DefaultReloadTicks = 4

// TankCell is the cell kind marking a tank of player.
func TankCell(player int) CellKind {
	if player == 1 {
		return Tank1
	}
	return Tank2
}

// IsTank reports whether k marks a tank.
func (k CellKind) IsTank() bool { return k == Tank1 || k == Tank2 }

// Player is the owner of a tank cell, or 0.
func (k CellKind) Player() int {
	switch k {
	case Tank1:
		return 1
	case Tank2:
		return 2
	}
	return 0
}

// Cell is one grid square. ShellOverlay is recomputed every tick for
// rendering and never affects the rules.
type Cell struct {
	Kind         CellKind
	WallHits     int
	ShellOverlay bool
}

// Board is a fixed-size grid of cells stored row-major.
type Board struct {
	Width  int
	Height int
	cells  []Cell
}

// NewBoard returns an empty width x height board.
func NewBoard(width, height int) *Board {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Board{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
	}
}

// Clone performs a deep copy of the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := &Board{Width: b.Width, Height: b.Height, cells: make([]Cell, len(b.cells))}
	copy(out.cells, b.cells)
	return out
}

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p Point) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// Wrap reduces p modulo the board size, always toward non-negative residues.
func (b *Board) Wrap(p Point) Point {
	if b.Width > 0 {
		p.X = ((p.X % b.Width) + b.Width) % b.Width
	}
	if b.Height > 0 {
		p.Y = ((p.Y % b.Height) + b.Height) % b.Height
	}
	return p
}

// Get returns the cell at p. Out-of-bounds reads return an empty cell.
func (b *Board) Get(p Point) Cell {
	if !b.InBounds(p) {
		return Cell{}
	}
	return b.cells[p.Y*b.Width+p.X]
}

// Set overwrites the content of p. The wall hit counter and the shell
// overlay are reset.
func (b *Board) Set(p Point, kind CellKind) {
	if !b.InBounds(p) {
		return
	}
	b.cells[p.Y*b.Width+p.X] = Cell{Kind: kind}
}

// HitWall records one shell hit on the wall at p and reports whether the
// wall was destroyed by it. It is a no-op for cells that are not walls.
func (b *Board) HitWall(p Point) (destroyed bool) {
	if !b.InBounds(p) {
		return false
	}
	c := &b.cells[p.Y*b.Width+p.X]
	if c.Kind != Wall {
		return false
	}
	c.WallHits++
	if c.WallHits >= WallHitsToDestroy {
		*c = Cell{}
		return true
	}
	return false
}

// MarkShell sets the rendering overlay on p.
func (b *Board) MarkShell(p Point) {
	if b.InBounds(p) {
		b.cells[p.Y*b.Width+p.X].ShellOverlay = true
	}
}

// ClearShellMarks removes every shell overlay.
func (b *Board) ClearShellMarks() {
	for i := range b.cells {
		b.cells[i].ShellOverlay = false
	}
}

// ClearTankMarks turns every tank cell back into an empty cell.
func (b *Board) ClearTankMarks() {
	for i := range b.cells {
		if b.cells[i].Kind.IsTank() {
			b.cells[i] = Cell{ShellOverlay: b.cells[i].ShellOverlay}
		}
	}
}

// Each calls fn for every cell in row-major order.
func (b *Board) Each(fn func(p Point, c Cell)) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			fn(Point{X: x, Y: y}, b.cells[y*b.Width+x])
		}
	}
}
