// Package tournament plays every pairing of a set of strategies on a set of
// maps with a pool of workers. Finished pairings are written to a played
// log so an interrupted tournament resumes where it stopped.
package tournament

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brensch/tanks/mapfile"
	"github.com/brensch/tanks/match"
	"github.com/brensch/tanks/rules"
	"github.com/brensch/tanks/store"
	"github.com/brensch/tanks/strategy"
)

// Pairing is one scheduled battle.
type Pairing struct {
	Map   *mapfile.Map
	P1    string
	P2    string
	Round int
}

// Key identifies the pairing in the played log.
func (p Pairing) Key() string {
	return fmt.Sprintf("%s|%s|%s|%d", p.Map.Name, p.P1, p.P2, p.Round)
}

// Schedule lists every ordered pair of distinct strategies on every map, for
// each round. Both seatings are played so neither side keeps the first move
// in birth order.
func Schedule(maps []*mapfile.Map, strategies []string, rounds int) []Pairing {
	var out []Pairing
	for r := 0; r < rounds; r++ {
		for _, m := range maps {
			for _, a := range strategies {
				for _, b := range strategies {
					if a == b {
						continue
					}
					out = append(out, Pairing{Map: m, P1: a, P2: b, Round: r})
				}
			}
		}
	}
	return out
}

// Update reports one finished pairing.
type Update struct {
	Worker  int
	Pairing Pairing
	MatchID string
	Result  rules.Result
	Turns   int
}

type Config struct {
	Pairings []Pairing
	Workers  int
	// Settings derives engine settings from a map.
	Settings func(m *mapfile.Map) rules.Settings

	Played *store.PlayedLog
	Ledger *store.Ledger
	// ArchiveDir receives parquet batches of finished matches.
	ArchiveDir    string
	GamesPerFlush int

	// Updates, when set, receives every finished pairing. Sends never block.
	Updates chan<- Update
	Logger  *slog.Logger
}

type Summary struct {
	Played  int
	Skipped int
	Turns   int64
}

type archiveRequest struct {
	rows []store.ArchiveTurnRow
}

// Run plays every pairing not yet in the played log.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	settings := cfg.Settings
	if settings == nil {
		settings = func(m *mapfile.Map) rules.Settings { return rules.DefaultSettings(m.MaxSteps, m.NumShells) }
	}

	var summary Summary
	var turns atomic.Int64
	var played atomic.Int64

	jobs := make(chan Pairing)
	var archive chan archiveRequest
	archiveDone := make(chan error, 1)
	if cfg.ArchiveDir != "" {
		archive = make(chan archiveRequest, workers*4)
		go func() {
			archiveDone <- archiveLoop(cfg.ArchiveDir, cfg.GamesPerFlush, archive, log)
		}()
	} else {
		archiveDone <- nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for _, p := range cfg.Pairings {
			if cfg.Played != nil && cfg.Played.Has(p.Key()) {
				summary.Skipped++
				continue
			}
			select {
			case jobs <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		workerID := i
		g.Go(func() error {
			for p := range jobs {
				strategies, err := strategy.Named(p.P1, p.P2, log)
				if err != nil {
					return err
				}
				out, err := match.Run(gctx, match.Options{
					Map:        p.Map,
					Settings:   settings(p.Map),
					Strategies: strategies,
					Names:      [2]string{p.P1, p.P2},
					KeepRows:   archive != nil,
					Ledger:     cfg.Ledger,
					Logger:     log.With("worker", workerID),
				})
				if err != nil {
					return fmt.Errorf("pairing %s: %w", p.Key(), err)
				}
				turns.Add(int64(out.Turns))
				played.Add(1)

				if archive != nil {
					select {
					case archive <- archiveRequest{rows: out.Rows}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
				if cfg.Played != nil {
					if err := cfg.Played.Add(p.Key()); err != nil {
						return err
					}
				}
				if cfg.Updates != nil {
					select {
					case cfg.Updates <- Update{Worker: workerID, Pairing: p, MatchID: out.MatchID, Result: out.Result, Turns: out.Turns}:
					default:
					}
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if archive != nil {
		close(archive)
	}
	if archErr := <-archiveDone; err == nil {
		err = archErr
	}
	summary.Played = int(played.Load())
	summary.Turns = turns.Load()
	log.Info("tournament finished", "played", summary.Played, "skipped", summary.Skipped, "turns", summary.Turns)
	return summary, err
}

// archiveLoop batches finished matches into parquet files of gamesPerFlush
// matches each.
func archiveLoop(outDir string, gamesPerFlush int, in <-chan archiveRequest, log *slog.Logger) error {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var w *store.BatchWriter
	flush := func() error {
		if w == nil {
			return nil
		}
		path, rows, matches, err := w.Finalize()
		w = nil
		if err != nil {
			log.Error("parquet flush failed", "error", err)
			return err
		}
		log.Info("parquet flush ok", "path", path, "matches", matches, "rows", rows)
		return nil
	}

	var firstErr error
	for req := range in {
		if firstErr != nil || len(req.rows) == 0 {
			continue
		}
		if w == nil {
			var err error
			if w, err = store.NewBatchWriter(outDir); err != nil {
				firstErr = err
				continue
			}
		}
		if err := w.WriteMatch(req.rows); err != nil {
			firstErr = err
			continue
		}
		if w.Matches() >= gamesPerFlush {
			if err := flush(); err != nil {
				firstErr = err
			}
		}
	}
	if err := flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Rate is a throughput helper for progress displays.
func Rate(n int64, since time.Time) float64 {
	d := time.Since(since).Seconds()
	if d < 1 {
		return 0
	}
	return float64(n) / d
}

// Winner names the winning strategy of u, or "" for a tie.
func (u Update) Winner() string {
	switch u.Result.Winner() {
	case 1:
		return u.Pairing.P1
	case 2:
		return u.Pairing.P2
	}
	return ""
}
