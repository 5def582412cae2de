package tournament

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/tanks/mapfile"
	"github.com/brensch/tanks/rules"
	"github.com/brensch/tanks/store"
)

func testMap(t *testing.T, name string) *mapfile.Map {
	t.Helper()
	m, err := mapfile.Parse(strings.NewReader("MaxSteps=20\nNumShells=3\nRows=3\nCols=6\n2    #\n  ##  \n#    1\n"))
	require.NoError(t, err)
	m.Name = name
	return m
}

func TestSchedule(t *testing.T) {
	maps := []*mapfile.Map{testMap(t, "a"), testMap(t, "b")}
	got := Schedule(maps, []string{"idle", "spinner", "evasive"}, 2)
	// 3*2 ordered pairs, 2 maps, 2 rounds
	assert.Len(t, got, 24)

	keys := map[string]bool{}
	for _, p := range got {
		assert.NotEqual(t, p.P1, p.P2)
		keys[p.Key()] = true
	}
	assert.Len(t, keys, 24)
	assert.Equal(t, "a|idle|spinner|0", got[0].Key())
}

func TestRun_PlaysAndResumes(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ledger, err := store.OpenLedger(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	defer ledger.Close()

	pairings := Schedule([]*mapfile.Map{testMap(t, "small")}, []string{"idle", "spinner", "aggressive"}, 1)
	require.Len(t, pairings, 6)

	played, err := store.OpenPlayedLog(filepath.Join(dir, "played.log"))
	require.NoError(t, err)

	updates := make(chan Update, len(pairings))
	summary, err := Run(ctx, Config{
		Pairings:      pairings,
		Workers:       3,
		Played:        played,
		Ledger:        ledger,
		ArchiveDir:    filepath.Join(dir, "archive"),
		GamesPerFlush: 4,
		Updates:       updates,
		Settings: func(m *mapfile.Map) rules.Settings {
			return rules.DefaultSettings(m.MaxSteps, m.NumShells)
		},
	})
	require.NoError(t, err)
	require.NoError(t, played.Close())

	assert.Equal(t, 6, summary.Played)
	assert.Equal(t, 0, summary.Skipped)
	assert.Positive(t, summary.Turns)
	assert.Len(t, updates, 6)

	recent, err := ledger.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, recent, 6)

	entries, err := os.ReadDir(filepath.Join(dir, "archive"))
	require.NoError(t, err)
	var batches []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".parquet") {
			batches = append(batches, e.Name())
		}
	}
	// 6 matches flushed 4 at a time
	assert.Len(t, batches, 2)

	var rows int
	for _, b := range batches {
		r, err := store.ReadArchiveParquet(filepath.Join(dir, "archive", b))
		require.NoError(t, err)
		rows += len(r)
	}
	assert.Equal(t, int(summary.Turns)+6, rows)

	played, err = store.OpenPlayedLog(filepath.Join(dir, "played.log"))
	require.NoError(t, err)
	defer played.Close()
	again, err := Run(ctx, Config{Pairings: pairings, Workers: 2, Played: played})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Played)
	assert.Equal(t, 6, again.Skipped)
}

func TestRun_UnknownStrategy(t *testing.T) {
	_, err := Run(context.Background(), Config{
		Pairings: []Pairing{{Map: testMap(t, "x"), P1: "idle", P2: "nobody"}},
	})
	assert.Error(t, err)
}

func TestUpdate_Winner(t *testing.T) {
	u := Update{Pairing: Pairing{P1: "a", P2: "b"}, Result: rules.Result{Outcome: rules.Player2Wins}}
	assert.Equal(t, "b", u.Winner())
	u.Result.Outcome = rules.TieMaxSteps
	assert.Equal(t, "", u.Winner())
}
