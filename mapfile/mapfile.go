// Package mapfile reads battle maps.
//
// A map file starts with the header keys MaxSteps, NumShells, Rows and Cols
// written as Key=Value, in any order. Any other line before the header is
// complete is taken as the map name. The Rows lines after the header are the
// grid: '#' wall, '@' mine, '1' and '2' tanks, anything else empty. Short
// rows are padded with empty cells and long rows are cut at Cols.
package mapfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brensch/tanks/game"
)

var (
	ErrMissingHeader = errors.New("missing header key")
	ErrBadDimensions = errors.New("bad map dimensions")
	ErrShortGrid     = errors.New("grid has fewer rows than declared")
)

var headerKeys = []string{"MaxSteps", "NumShells", "Rows", "Cols"}

// Map is a parsed map file.
type Map struct {
	Name      string
	MaxSteps  int
	NumShells int
	Board     *game.Board
}

// Load reads the map at path.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Parse reads a map from r.
func Parse(r io.Reader) (*Map, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	header := make(map[string]int, len(headerKeys))
	m := &Map{}
	for len(header) < len(headerKeys) && sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		key, value, ok := headerLine(line)
		if !ok {
			if m.Name == "" && strings.TrimSpace(line) != "" {
				m.Name = strings.TrimSpace(line)
			}
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", key, err)
		}
		header[key] = n
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for _, k := range headerKeys {
		if _, ok := header[k]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, k)
		}
	}

	rows, cols := header["Rows"], header["Cols"]
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, cols, rows)
	}
	if header["MaxSteps"] <= 0 || header["NumShells"] < 0 {
		return nil, fmt.Errorf("%w: MaxSteps=%d NumShells=%d", ErrBadDimensions, header["MaxSteps"], header["NumShells"])
	}
	m.MaxSteps = header["MaxSteps"]
	m.NumShells = header["NumShells"]
	m.Board = game.NewBoard(cols, rows)

	y := 0
	for ; y < rows && sc.Scan(); y++ {
		line := strings.TrimRight(sc.Text(), "\r")
		for x := 0; x < cols && x < len(line); x++ {
			if kind, ok := cellKind(line[x]); ok {
				m.Board.Set(game.Point{X: x, Y: y}, kind)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	if y < rows {
		return nil, fmt.Errorf("%w: got %d of %d", ErrShortGrid, y, rows)
	}
	return m, nil
}

// headerLine splits "Key = Value" for the known header keys.
func headerLine(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	for _, hk := range headerKeys {
		if strings.EqualFold(k, hk) {
			return hk, strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

func cellKind(c byte) (game.CellKind, bool) {
	switch c {
	case '#':
		return game.Wall, true
	case '@':
		return game.Mine, true
	case '1':
		return game.Tank1, true
	case '2':
		return game.Tank2, true
	}
	return game.Empty, false
}

// ActionsPath names the actions file written for a map: "maps/basic.txt"
// becomes "maps/basic_actions.txt".
func ActionsPath(mapPath string) string {
	ext := filepath.Ext(mapPath)
	return strings.TrimSuffix(mapPath, ext) + "_actions" + ext
}

// Format writes m in the map file format. Parse(Format(m)) reproduces the
// board.
func Format(w io.Writer, m *Map) error {
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintln(bw, m.Name)
	}
	fmt.Fprintf(bw, "MaxSteps=%d\nNumShells=%d\nRows=%d\nCols=%d\n", m.MaxSteps, m.NumShells, m.Board.Height, m.Board.Width)
	row := make([]byte, m.Board.Width)
	for y := 0; y < m.Board.Height; y++ {
		for x := range row {
			switch m.Board.Get(game.Point{X: x, Y: y}).Kind {
			case game.Wall:
				row[x] = '#'
			case game.Mine:
				row[x] = '@'
			case game.Tank1:
				row[x] = '1'
			case game.Tank2:
				row[x] = '2'
			default:
				row[x] = ' '
			}
		}
		bw.Write(row)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
