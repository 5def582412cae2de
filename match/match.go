// Package match runs a single battle from start to finish and fans its
// turns out to the actions file, the console, the archive, the ledger and
// any observer.
package match

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/mapfile"
	"github.com/brensch/tanks/player"
	"github.com/brensch/tanks/render"
	"github.com/brensch/tanks/rules"
	"github.com/brensch/tanks/store"
)

// Observer receives every state after it is produced. The first call has a
// zero record and the starting position.
type Observer func(state *game.State, rec rules.TurnRecord)

type Options struct {
	// MatchID identifies the run; a random UUID when empty.
	MatchID string
	Map     *mapfile.Map
	// Settings overrides the map limits when MaxSteps is set.
	Settings rules.Settings

	Players    player.PlayerFactory
	Strategies player.StrategyFactory
	// Names are the strategy names of player 1 and 2, for the ledger.
	Names [2]string

	// ActionsPath receives one log line per turn followed by the result.
	ActionsPath string
	// ArchiveDir receives a parquet archive of every turn.
	ArchiveDir string
	// KeepRows returns the archive rows in the Outcome.
	KeepRows bool
	// HTMLPath receives a standalone replay page.
	HTMLPath string
	Ledger   *store.Ledger
	// Console receives a board dump every turn.
	Console io.Writer
	Observe Observer
	// TickInterval paces the battle for live viewers.
	TickInterval time.Duration

	Logger *slog.Logger
}

type Outcome struct {
	MatchID     string
	Result      rules.Result
	Turns       int
	Lines       []string
	ArchivePath string
	Rows        []store.ArchiveTurnRow
}

// Run plays the battle to completion or until ctx is cancelled.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	if opts.Map == nil {
		return nil, fmt.Errorf("map is required")
	}
	id := opts.MatchID
	if id == "" {
		id = uuid.NewString()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("match", id, "map", opts.Map.Name)

	settings := opts.Settings
	if settings.MaxSteps == 0 {
		settings.MaxSteps = opts.Map.MaxSteps
		settings.NumShells = opts.Map.NumShells
		settings.ReloadTicks = rules.DefaultReloadTicks
		settings.WrapForward = true
	}
	if settings.Logger == nil {
		settings.Logger = log
	}

	engine, err := rules.New(opts.Map.Board, settings, opts.Players, opts.Strategies)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	out := &Outcome{MatchID: id}
	keepRows := opts.KeepRows || opts.ArchiveDir != ""
	var replay *render.Replay
	if opts.HTMLPath != "" {
		replay = &render.Replay{Title: fmt.Sprintf("%s %s vs %s", opts.Map.Name, opts.Names[0], opts.Names[1])}
	}

	emit := func(rec rules.TurnRecord) {
		state := engine.State()
		if opts.Console != nil {
			render.PrintTurn(opts.Console, state, rec.Line)
		}
		if keepRows {
			out.Rows = append(out.Rows, store.ArchiveRow(id, opts.Map.Name, state, rec))
		}
		if replay != nil {
			replay.Add(state, rec.Line)
		}
		if opts.Observe != nil {
			opts.Observe(state, rec)
		}
	}

	log.Info("battle started", "p1", opts.Names[0], "p2", opts.Names[1], "max_steps", settings.MaxSteps)
	start := time.Now()
	emit(rules.TurnRecord{})

	var ticker *time.Ticker
	if opts.TickInterval > 0 {
		ticker = time.NewTicker(opts.TickInterval)
		defer ticker.Stop()
	}
	for !engine.IsGameOver() {
		if ticker != nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("battle %s interrupted at turn %d: %w", id, engine.Step(), err)
		}
		rec, ok := engine.Advance()
		if !ok {
			break
		}
		out.Lines = append(out.Lines, rec.Line)
		emit(rec)
	}

	out.Result = engine.Result()
	out.Turns = engine.Step()
	if n := len(out.Rows); n > 0 {
		out.Rows[n-1].Result = out.Result.String()
	}
	if replay != nil {
		replay.Result = out.Result.String()
	}
	log.Info("battle over", "result", out.Result.String(), "turns", out.Turns, "took", time.Since(start))

	if err := writeOutputs(ctx, opts, out, replay); err != nil {
		return out, err
	}
	if !opts.KeepRows {
		out.Rows = nil
	}
	return out, nil
}

func writeOutputs(ctx context.Context, opts Options, out *Outcome, replay *render.Replay) error {
	if opts.ActionsPath != "" {
		if err := WriteActions(opts.ActionsPath, out.Lines, out.Result.String()); err != nil {
			return err
		}
	}
	if opts.ArchiveDir != "" {
		path := store.ArchivePath(opts.ArchiveDir, out.MatchID)
		if err := store.WriteArchiveParquet(path, out.Rows); err != nil {
			return fmt.Errorf("archive battle: %w", err)
		}
		out.ArchivePath = path
	}
	if replay != nil {
		if err := WriteReplay(opts.HTMLPath, replay); err != nil {
			return err
		}
	}
	if opts.Ledger != nil {
		err := opts.Ledger.Record(ctx, &store.MatchResult{
			MatchID: out.MatchID,
			Map:     opts.Map.Name,
			Player1: opts.Names[0],
			Player2: opts.Names[1],
			Outcome: out.Result.Outcome.String(),
			Winner:  out.Result.Winner(),
			Alive1:  out.Result.Alive[0],
			Alive2:  out.Result.Alive[1],
			Turns:   out.Turns,
			Result:  out.Result.String(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteActions writes the per-turn log lines and the result string.
func WriteActions(path string, lines []string, result string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create actions dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create actions file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	w.WriteString(result)
	w.WriteByte('\n')
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write actions file: %w", err)
	}
	return f.Close()
}

// WriteReplay writes replay as a standalone HTML page.
func WriteReplay(path string, replay *render.Replay) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create replay: %w", err)
	}
	defer f.Close()
	if err := render.WriteHTML(f, replay); err != nil {
		return err
	}
	return f.Close()
}
