// Package render draws battle states as text and HTML replays.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/brensch/tanks/game"
)

// Board draws the grid one row per line, top row first: '_' empty, '#'
// wall, '@' mine, '*' shell over an empty cell and an arrow for each tank
// pointing where it faces.
func Board(state *game.State) string {
	w, h := state.Board.Width, state.Board.Height
	grid := make([][]string, h)
	for y := range grid {
		grid[y] = make([]string, w)
	}
	state.Board.Each(func(p game.Point, c game.Cell) {
		switch {
		case c.Kind == game.Wall:
			grid[p.Y][p.X] = "#"
		case c.Kind == game.Mine:
			grid[p.Y][p.X] = "@"
		case c.ShellOverlay && !c.Kind.IsTank():
			grid[p.Y][p.X] = "*"
		default:
			grid[p.Y][p.X] = "_"
		}
	})
	for _, t := range state.Tanks {
		if t.Alive && state.Board.InBounds(t.Pos) {
			grid[t.Pos.Y][t.Pos.X] = t.Dir.Arrow()
		}
	}

	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sb.WriteString(grid[y][x])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PrintTurn writes the turn header, the board and the action line.
func PrintTurn(w io.Writer, state *game.State, actions string) {
	fmt.Fprintf(w, "\n=== Turn %d ===\n%s", state.Turn, Board(state))
	if actions != "" {
		fmt.Fprintf(w, "%s\n", actions)
	}
}
