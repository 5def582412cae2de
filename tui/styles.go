// Package tui holds the bubbletea programs: a live battle viewer and a
// tournament progress dashboard.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/tanks/game"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	wallStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	damageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("172"))
	mineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	shellStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	tankStyles  = [3]lipgloss.Style{
		{},
		lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	}
	boardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	resultStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// ColorBoard draws the board like render.Board with each element coloured:
// tanks in their player's colour, damaged walls highlighted.
func ColorBoard(state *game.State) string {
	w, h := state.Board.Width, state.Board.Height
	tanks := make(map[game.Point]game.Tank, len(state.Tanks))
	for _, t := range state.Tanks {
		if t.Alive {
			tanks[t.Pos] = t
		}
	}

	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := game.Point{X: x, Y: y}
			if t, ok := tanks[p]; ok {
				sb.WriteString(tankStyles[t.Player].Render(t.Dir.Arrow()))
				continue
			}
			c := state.Board.Get(p)
			switch {
			case c.Kind == game.Wall && c.WallHits > 0:
				sb.WriteString(damageStyle.Render("#"))
			case c.Kind == game.Wall:
				sb.WriteString(wallStyle.Render("#"))
			case c.Kind == game.Mine:
				sb.WriteString(mineStyle.Render("@"))
			case c.ShellOverlay:
				sb.WriteString(shellStyle.Render("*"))
			default:
				sb.WriteString(emptyStyle.Render("_"))
			}
		}
		if y < h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
