package rules

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/strategy"
)

// boardFrom builds a board from map rows using the file legend.
func boardFrom(rows ...string) *game.Board {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	b := game.NewBoard(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			p := game.Point{X: x, Y: y}
			switch r[x] {
			case '#':
				b.Set(p, game.Wall)
			case '@':
				b.Set(p, game.Mine)
			case '1':
				b.Set(p, game.Tank1)
			case '2':
				b.Set(p, game.Tank2)
			}
		}
	}
	return b
}

func dumpEngine(e *Engine) string {
	if e == nil {
		return "<nil engine>"
	}
	s := e.State()

	var b strings.Builder
	fmt.Fprintf(&b, "Turn=%d Size=%dx%d Over=%v\n", s.Turn, s.Board.Width, s.Board.Height, e.IsGameOver())
	for _, t := range s.Tanks {
		fmt.Fprintf(&b, "Tank p%d#%d Pos=(%d,%d) Dir=%s Alive=%v Shells=%d Cooldown=%d\n",
			t.Player, t.Index, t.Pos.X, t.Pos.Y, t.Dir.Arrow(), t.Alive, t.Shells, t.Cooldown)
	}
	fmt.Fprintf(&b, "Shells(%d):", len(s.Shells))
	for _, sh := range s.Shells {
		fmt.Fprintf(&b, " (%d,%d)%s", sh.Pos.X, sh.Pos.Y, sh.Dir.Arrow())
	}
	b.WriteString("\nBoard:\n")
	for y := 0; y < s.Board.Height; y++ {
		for x := 0; x < s.Board.Width; x++ {
			c := s.Board.Get(game.Point{X: x, Y: y})
			switch {
			case c.Kind == game.Wall:
				b.WriteByte('#')
			case c.Kind == game.Mine:
				b.WriteByte('@')
			case c.Kind == game.Tank1:
				b.WriteByte('1')
			case c.Kind == game.Tank2:
				b.WriteByte('2')
			case c.ShellOverlay:
				b.WriteByte('*')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func logTick(t *testing.T, name string, e *Engine, rec TurnRecord) {
	t.Helper()
	t.Logf("=== %s turn %d ===\nActions: %s\n%s", name, rec.Turn, rec.Line, dumpEngine(e))
}

// newEngine builds an engine with default settings for the given board and
// scripted tanks.
func newEngine(t *testing.T, settings Settings, board *game.Board, script strategy.Script) *Engine {
	t.Helper()
	e, err := New(board, settings, nil, script)
	require.NoError(t, err)
	return e
}

func script(entries map[[2]int][]game.Action) strategy.Script {
	s := strategy.Script{}
	for k, actions := range entries {
		s[k] = strategy.NewScripted(actions...)
	}
	return s
}

func repeat(a game.Action, n int) []game.Action {
	out := make([]game.Action, n)
	for i := range out {
		out[i] = a
	}
	return out
}

// advance runs n ticks, logging each, and returns the records.
func advance(t *testing.T, name string, e *Engine, n int) []TurnRecord {
	t.Helper()
	var recs []TurnRecord
	for i := 0; i < n; i++ {
		rec, ok := e.Advance()
		if !ok {
			break
		}
		logTick(t, name, e, rec)
		recs = append(recs, rec)
	}
	return recs
}
