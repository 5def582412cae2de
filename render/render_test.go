package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/tanks/game"
)

func testState() *game.State {
	b := game.NewBoard(4, 2)
	b.Set(game.Point{X: 0, Y: 0}, game.Wall)
	b.Set(game.Point{X: 1, Y: 0}, game.Mine)
	b.Set(game.Point{X: 3, Y: 0}, game.Tank2)
	b.Set(game.Point{X: 0, Y: 1}, game.Tank1)
	b.MarkShell(game.Point{X: 2, Y: 1})
	return &game.State{
		Turn:  7,
		Board: b,
		Tanks: []game.Tank{
			{ID: 0, Player: 2, Pos: game.Point{X: 3, Y: 0}, Dir: game.Right, Alive: true},
			{ID: 1, Player: 1, Pos: game.Point{X: 0, Y: 1}, Dir: game.UpLeft, Alive: true},
			{ID: 2, Player: 1, Pos: game.Point{X: 1, Y: 1}, Dir: game.Down, Alive: false},
		},
		Shells: []game.Shell{{Pos: game.Point{X: 2, Y: 1}, Dir: game.Left}},
	}
}

func TestBoard(t *testing.T) {
	got := Board(testState())
	t.Logf("\n%s", got)
	assert.Equal(t, "#@_→\n↖_*_\n", got)
}

func TestPrintTurn(t *testing.T) {
	var buf bytes.Buffer
	PrintTurn(&buf, testState(), "Shoot, DoNothing")
	out := buf.String()
	assert.Contains(t, out, "=== Turn 7 ===")
	assert.True(t, strings.HasSuffix(out, "Shoot, DoNothing\n"))
}

func TestWriteHTML(t *testing.T) {
	r := &Replay{Title: "duel <1>", Result: "Player 1 won with 1 tanks still alive"}
	s := testState()
	r.Add(s, "MoveForward, Shoot")
	s.Turn = 8
	r.Add(s, "killed, DoNothing")

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.Equal(t, "duel <1>", doc.Find("title").Text())
	turns := doc.Find("section.turn")
	require.Equal(t, 2, turns.Length())
	assert.Equal(t, "7", turns.First().AttrOr("data-turn", ""))
	assert.True(t, turns.First().HasClass("current"))
	assert.False(t, turns.Last().HasClass("current"))
	assert.Equal(t, "killed, DoNothing", turns.Last().Find("p.actions").Text())
	assert.Equal(t, Board(s), turns.Last().Find("pre.board").Text())
	assert.Equal(t, r.Result, doc.Find("#result").Text())
}
