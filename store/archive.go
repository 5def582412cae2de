// Package store persists battles: parquet turn archives, the append-only
// log of played matches and the sqlite results ledger.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/rules"
)

const archiveSchema = "tank_turn_v1"

// ArchiveTurnRow is a single (match, turn) snapshot intended for long-term
// storage: one row per turn with the tanks nested.
//
// Turn 0 is the starting position and has no actions. Result is set on the
// final row only.
type ArchiveTurnRow struct {
	MatchID string `parquet:"match_id,dict"`
	Map     string `parquet:"map,dict"`
	Turn    int32  `parquet:"turn"`
	Width   int32  `parquet:"width"`
	Height  int32  `parquet:"height"`

	WallX    []int32 `parquet:"wall_x"`
	WallY    []int32 `parquet:"wall_y"`
	WallHits []int32 `parquet:"wall_hits"`

	MineX []int32 `parquet:"mine_x"`
	MineY []int32 `parquet:"mine_y"`

	ShellX   []int32 `parquet:"shell_x"`
	ShellY   []int32 `parquet:"shell_y"`
	ShellDir []int32 `parquet:"shell_dir"`

	Tanks []ArchiveTank `parquet:"tanks"`

	Actions string `parquet:"actions"`
	Result  string `parquet:"result,optional"`
}

type ArchiveTank struct {
	ID       int32 `parquet:"id"`
	Player   int32 `parquet:"player"`
	Index    int32 `parquet:"index"`
	Alive    bool  `parquet:"alive"`
	X        int32 `parquet:"x"`
	Y        int32 `parquet:"y"`
	Dir      int32 `parquet:"dir"`
	Shells   int32 `parquet:"shells"`
	Cooldown int32 `parquet:"cooldown"`

	Requested string `parquet:"requested,dict"`
	Executed  string `parquet:"executed,dict"`
	Ignored   bool   `parquet:"ignored"`
	Killed    bool   `parquet:"killed"`
}

// ArchiveRow snapshots state after rec. Pass a zero TurnRecord for the
// starting position.
func ArchiveRow(matchID, mapName string, state *game.State, rec rules.TurnRecord) ArchiveTurnRow {
	row := ArchiveTurnRow{
		MatchID: matchID,
		Map:     mapName,
		Turn:    int32(state.Turn),
		Width:   int32(state.Board.Width),
		Height:  int32(state.Board.Height),
		Actions: rec.Line,
	}
	state.Board.Each(func(p game.Point, c game.Cell) {
		switch c.Kind {
		case game.Wall:
			row.WallX = append(row.WallX, int32(p.X))
			row.WallY = append(row.WallY, int32(p.Y))
			row.WallHits = append(row.WallHits, int32(c.WallHits))
		case game.Mine:
			row.MineX = append(row.MineX, int32(p.X))
			row.MineY = append(row.MineY, int32(p.Y))
		}
	})
	for _, s := range state.Shells {
		row.ShellX = append(row.ShellX, int32(s.Pos.X))
		row.ShellY = append(row.ShellY, int32(s.Pos.Y))
		row.ShellDir = append(row.ShellDir, int32(s.Dir))
	}

	row.Tanks = make([]ArchiveTank, len(state.Tanks))
	for i, t := range state.Tanks {
		at := ArchiveTank{
			ID:       int32(t.ID),
			Player:   int32(t.Player),
			Index:    int32(t.Index),
			Alive:    t.Alive,
			X:        int32(t.Pos.X),
			Y:        int32(t.Pos.Y),
			Dir:      int32(t.Dir),
			Shells:   int32(t.Shells),
			Cooldown: int32(t.Cooldown),
		}
		if i < len(rec.Tanks) {
			o := rec.Tanks[i]
			at.Requested = o.Requested.String()
			at.Executed = o.Executed.String()
			at.Ignored = o.Ignored
			at.Killed = o.Killed
		}
		row.Tanks[i] = at
	}
	return row
}

// WriteArchiveParquet writes rows to outPath through a temp file and rename.
func WriteArchiveParquet(outPath string, rows []ArchiveTurnRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", archiveSchema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadArchiveParquet loads every row of an archive file.
func ReadArchiveParquet(path string) ([]ArchiveTurnRow, error) {
	rows, err := parquet.ReadFile[ArchiveTurnRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}

// ArchivePath names the archive of one match inside dir.
func ArchivePath(dir, matchID string) string {
	return filepath.Join(dir, fmt.Sprintf("match_%s_%d.parquet", matchID, time.Now().UnixNano()))
}

// State rebuilds the snapshot the row was taken from. Per-tank outcomes
// are not part of the state.
func (r ArchiveTurnRow) State() *game.State {
	b := game.NewBoard(int(r.Width), int(r.Height))
	for i := range r.WallX {
		p := game.Point{X: int(r.WallX[i]), Y: int(r.WallY[i])}
		b.Set(p, game.Wall)
		if i < len(r.WallHits) {
			for h := int32(0); h < r.WallHits[i]; h++ {
				b.HitWall(p)
			}
		}
	}
	for i := range r.MineX {
		b.Set(game.Point{X: int(r.MineX[i]), Y: int(r.MineY[i])}, game.Mine)
	}

	s := &game.State{Turn: int(r.Turn), Board: b}
	for _, t := range r.Tanks {
		tank := game.Tank{
			ID:       int(t.ID),
			Player:   int(t.Player),
			Index:    int(t.Index),
			Pos:      game.Point{X: int(t.X), Y: int(t.Y)},
			Dir:      game.Direction(t.Dir),
			Alive:    t.Alive,
			Shells:   int(t.Shells),
			Cooldown: int(t.Cooldown),
		}
		if tank.Alive {
			b.Set(tank.Pos, game.TankCell(tank.Player))
		}
		s.Tanks = append(s.Tanks, tank)
	}
	for i := range r.ShellX {
		sh := game.Shell{Pos: game.Point{X: int(r.ShellX[i]), Y: int(r.ShellY[i])}, Dir: game.Direction(r.ShellDir[i])}
		s.Shells = append(s.Shells, sh)
		b.MarkShell(sh.Pos)
	}
	return s
}

// GroupMatches splits rows read from one or more archive files into
// matches, each sorted by turn, in order of first appearance.
func GroupMatches(rows []ArchiveTurnRow) [][]ArchiveTurnRow {
	index := make(map[string]int)
	var out [][]ArchiveTurnRow
	for _, r := range rows {
		i, ok := index[r.MatchID]
		if !ok {
			i = len(out)
			index[r.MatchID] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], r)
	}
	for _, m := range out {
		sort.SliceStable(m, func(a, b int) bool { return m[a].Turn < m[b].Turn })
	}
	return out
}
