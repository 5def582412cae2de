package player

// SatelliteView legend.
const (
	WallChar    byte = '#'
	MineChar    byte = '@'
	Tank1Char   byte = '1'
	Tank2Char   byte = '2'
	SelfChar    byte = '%'
	ShellChar   byte = '*'
	EmptyChar   byte = ' '
	OutOfBounds byte = '&'
)

// SatelliteView is a read-only character view of the whole board.
type SatelliteView interface {
	// ObjectAt returns one of the legend characters; OutOfBounds for
	// coordinates outside the board.
	ObjectAt(x, y int) byte
}

// GridView is the concrete SatelliteView built by the engine.
type GridView struct {
	width  int
	height int
	cells  []byte
	tank   int
}

// NewGridView copies cells (row-major, width*height) into a new view.
func NewGridView(width, height int, cells []byte) *GridView {
	v := &GridView{width: width, height: height, cells: make([]byte, width*height), tank: -1}
	copy(v.cells, cells)
	return v
}

// ForTank tags the view with the arena id of the tank it was built for.
func (v *GridView) ForTank(id int) *GridView {
	v.tank = id
	return v
}

// TankID reports the tank the view was built for, if known.
func (v *GridView) TankID() (int, bool) {
	return v.tank, v.tank >= 0
}

func (v *GridView) Width() int  { return v.width }
func (v *GridView) Height() int { return v.height }

func (v *GridView) ObjectAt(x, y int) byte {
	if x < 0 || y < 0 || x >= v.width || y >= v.height {
		return OutOfBounds
	}
	return v.cells[y*v.width+x]
}

// String renders the view one row per line.
func (v *GridView) String() string {
	buf := make([]byte, 0, (v.width+1)*v.height)
	for y := 0; y < v.height; y++ {
		buf = append(buf, v.cells[y*v.width:(y+1)*v.width]...)
		buf = append(buf, '\n')
	}
	return string(buf)
}
