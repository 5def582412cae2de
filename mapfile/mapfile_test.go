package mapfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/tanks/game"
)

const basic = `Basic arena
MaxSteps=500
NumShells = 16
Rows=3
Cols=5
#1.@#
..x
#  2#
`

func TestParse_Basic(t *testing.T) {
	m, err := Parse(strings.NewReader(basic))
	require.NoError(t, err)

	assert.Equal(t, "Basic arena", m.Name)
	assert.Equal(t, 500, m.MaxSteps)
	assert.Equal(t, 16, m.NumShells)
	assert.Equal(t, 5, m.Board.Width)
	assert.Equal(t, 3, m.Board.Height)

	cases := map[game.Point]game.CellKind{
		{X: 0, Y: 0}: game.Wall,
		{X: 1, Y: 0}: game.Tank1,
		{X: 2, Y: 0}: game.Empty,
		{X: 3, Y: 0}: game.Mine,
		{X: 2, Y: 1}: game.Empty, // unknown character
		{X: 4, Y: 1}: game.Empty, // padded
		{X: 3, Y: 2}: game.Tank2,
		{X: 4, Y: 2}: game.Wall,
	}
	for p, want := range cases {
		assert.Equal(t, want, m.Board.Get(p).Kind, "cell %v", p)
	}
}

func TestParse_HeaderAnyOrderCRLF(t *testing.T) {
	src := "Cols=2\r\nRows=1\r\nNumShells=0\r\nMaxSteps=9\r\n12\r\n"
	m, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "", m.Name)
	assert.Equal(t, 9, m.MaxSteps)
	assert.Equal(t, game.Tank1, m.Board.Get(game.Point{X: 0, Y: 0}).Kind)
	assert.Equal(t, game.Tank2, m.Board.Get(game.Point{X: 1, Y: 0}).Kind)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"missing cols", "MaxSteps=1\nNumShells=1\nRows=1\n", ErrMissingHeader},
		{"zero rows", "MaxSteps=1\nNumShells=1\nRows=0\nCols=3\n", ErrBadDimensions},
		{"zero steps", "MaxSteps=0\nNumShells=1\nRows=1\nCols=3\n1 2\n", ErrBadDimensions},
		{"short grid", "MaxSteps=1\nNumShells=1\nRows=3\nCols=3\n1 2\n", ErrShortGrid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse(strings.NewReader("MaxSteps=lots\nNumShells=1\nRows=1\nCols=1\n"))
	assert.Error(t, err)
}

func TestLoad_NameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "duel.txt")
	require.NoError(t, os.WriteFile(path, []byte("MaxSteps=10\nNumShells=2\nRows=1\nCols=3\n1 2\n"), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "duel", m.Name)

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestFormat_RoundTrip(t *testing.T) {
	m, err := Parse(strings.NewReader(basic))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, m))
	t.Logf("formatted:\n%s", buf.String())

	again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Name, again.Name)
	assert.Equal(t, m.MaxSteps, again.MaxSteps)
	assert.Equal(t, m.NumShells, again.NumShells)
	m.Board.Each(func(p game.Point, c game.Cell) {
		assert.Equal(t, c.Kind, again.Board.Get(p).Kind, "cell %v", p)
	})
}

func TestActionsPath(t *testing.T) {
	assert.Equal(t, "maps/basic_actions.txt", ActionsPath("maps/basic.txt"))
	assert.Equal(t, "arena_actions", ActionsPath("arena"))
}
