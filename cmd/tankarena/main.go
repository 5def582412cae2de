package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/brensch/tanks/config"
	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/logging"
	"github.com/brensch/tanks/mapfile"
	"github.com/brensch/tanks/match"
	"github.com/brensch/tanks/render"
	"github.com/brensch/tanks/rules"
	"github.com/brensch/tanks/spectate"
	"github.com/brensch/tanks/store"
	"github.com/brensch/tanks/strategy"
	"github.com/brensch/tanks/tournament"
	"github.com/brensch/tanks/tui"
)

const usage = `usage: tankarena <command> [flags] <map files...>

commands:
  run          play each map once and write <map>_actions<ext>
  watch        play one map in a terminal viewer
  serve        play maps in a loop and stream them to websocket spectators
  tournament   play every pairing of strategies on every map
  standings    print the results ledger
  replay       rebuild actions files and HTML pages from parquet archives
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = cmdRun(ctx, os.Args[2:])
	case "watch":
		err = cmdWatch(ctx, os.Args[2:])
	case "serve":
		err = cmdServe(ctx, os.Args[2:])
	case "tournament":
		err = cmdTournament(ctx, os.Args[2:])
	case "standings":
		err = cmdStandings(ctx, os.Args[2:])
	case "replay":
		err = cmdReplay(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "tankarena %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// common holds the flags shared by every command. Set flags override the
// config file and environment.
type common struct {
	configPath string
	logLevel   string
	logFormat  string
	p1         string
	p2         string
	archiveDir string
	ledgerPath string
}

func addCommon(fs *flag.FlagSet) *common {
	c := &common{}
	fs.StringVar(&c.configPath, "config", "", "Optional config file (yaml, json or toml)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&c.logFormat, "log-format", "", "Log format: text, json, pretty-json")
	fs.StringVar(&c.p1, "p1", "", "Strategy of player 1 ("+strings.Join(strategy.Names(), ", ")+")")
	fs.StringVar(&c.p2, "p2", "", "Strategy of player 2")
	fs.StringVar(&c.archiveDir, "archive", "", "Directory for parquet turn archives")
	fs.StringVar(&c.ledgerPath, "ledger", "", "Sqlite results ledger path")
	return c
}

func (c *common) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, nil, err
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.LogLevel, c.logLevel)
	override(&cfg.LogFormat, c.logFormat)
	override(&cfg.Strategy.Player1, c.p1)
	override(&cfg.Strategy.Player2, c.p2)
	override(&cfg.Archive.Dir, c.archiveDir)
	override(&cfg.Ledger.Path, c.ledgerPath)

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(os.Stderr, cfg.LogFormat, level)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func openLedger(cfg config.Config) (*store.Ledger, error) {
	if cfg.Ledger.Path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(cfg.Ledger.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	return store.OpenLedger(cfg.Ledger.Path)
}

// loadMaps reads every map named by args. Arguments may be glob patterns.
func loadMaps(args []string) ([]*mapfile.Map, []string, error) {
	var maps []*mapfile.Map
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, nil, fmt.Errorf("bad map pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}
		for _, p := range matches {
			if strings.Contains(filepath.Base(p), "_actions") {
				continue
			}
			m, err := mapfile.Load(p)
			if err != nil {
				return nil, nil, err
			}
			maps = append(maps, m)
			paths = append(paths, p)
		}
	}
	if len(maps) == 0 {
		return nil, nil, errors.New("no map files given")
	}
	return maps, paths, nil
}

func mapSettings(cfg config.Config) func(m *mapfile.Map) rules.Settings {
	return func(m *mapfile.Map) rules.Settings {
		return cfg.Settings(m.MaxSteps, m.NumShells)
	}
}

func cmdRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	c := addCommon(fs)
	console := fs.Bool("console", false, "Print the board after every turn")
	htmlOut := fs.Bool("html", false, "Write <map>.html replay pages next to the maps")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, err := c.load()
	if err != nil {
		return err
	}
	maps, paths, err := loadMaps(fs.Args())
	if err != nil {
		return err
	}
	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}
	settings := mapSettings(cfg)

	for i, m := range maps {
		strategies, err := strategy.Named(cfg.Strategy.Player1, cfg.Strategy.Player2, log)
		if err != nil {
			return err
		}
		opts := match.Options{
			Map:         m,
			Settings:    settings(m),
			Strategies:  strategies,
			Names:       [2]string{cfg.Strategy.Player1, cfg.Strategy.Player2},
			ActionsPath: mapfile.ActionsPath(paths[i]),
			ArchiveDir:  cfg.Archive.Dir,
			Ledger:      ledger,
			Logger:      log,
		}
		if *console {
			opts.Console = os.Stdout
		}
		if *htmlOut {
			opts.HTMLPath = strings.TrimSuffix(paths[i], filepath.Ext(paths[i])) + ".html"
		}
		out, err := match.Run(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (%d turns) -> %s\n", m.Name, out.Result.String(), out.Turns, opts.ActionsPath)
	}
	return nil
}

func cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	c := addCommon(fs)
	tick := fs.Duration("tick", 0, "Delay between turns (default serve.tickInterval)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, _, err := c.load()
	if err != nil {
		return err
	}
	maps, _, err := loadMaps(fs.Args())
	if err != nil {
		return err
	}
	m := maps[0]
	strategies, err := strategy.Named(cfg.Strategy.Player1, cfg.Strategy.Player2, logging.Discard())
	if err != nil {
		return err
	}
	interval := *tick
	if interval <= 0 {
		interval = cfg.Serve.TickInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan tea.Msg, 16)
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}
	go func() {
		out, err := match.Run(ctx, match.Options{
			Map:        m,
			Settings:   cfg.Settings(m.MaxSteps, m.NumShells),
			Strategies: strategies,
			Names:      [2]string{cfg.Strategy.Player1, cfg.Strategy.Player2},
			Observe: func(state *game.State, rec rules.TurnRecord) {
				send(tui.FrameMsg{State: state, Record: rec})
			},
			TickInterval: interval,
		})
		if err != nil {
			send(tui.DoneMsg{Err: err})
			return
		}
		send(tui.DoneMsg{Result: out.Result})
	}()

	title := fmt.Sprintf("%s: %s vs %s", m.Name, cfg.Strategy.Player1, cfg.Strategy.Player2)
	p := tea.NewProgram(tui.NewWatchModel(title, events), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func cmdServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	c := addCommon(fs)
	addr := fs.String("addr", "", "HTTP listen address (default serve.addr)")
	tick := fs.Duration("tick", 0, "Delay between turns (default serve.tickInterval)")
	pause := fs.Duration("pause", 3*time.Second, "Delay between battles")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, err := c.load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}
	if *tick > 0 {
		cfg.Serve.TickInterval = *tick
	}
	maps, _, err := loadMaps(fs.Args())
	if err != nil {
		return err
	}
	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	hub := spectate.NewHub(log)
	defer hub.Close()
	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           spectate.NewServer(hub, ledger, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("spectator server listening", "addr", cfg.Serve.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() {
		_, err := spectate.Loop(loopCtx, hub, spectate.LoopConfig{
			Maps:         maps,
			Strategies:   [2]string{cfg.Strategy.Player1, cfg.Strategy.Player2},
			Settings:     mapSettings(cfg),
			Ledger:       ledger,
			TickInterval: cfg.Serve.TickInterval,
			Pause:        *pause,
			Logger:       log,
		})
		loopErr <- err
	}()

	select {
	case err = <-serveErr:
	case err = <-loopErr:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	log.Info("spectator server stopped")
	return err
}

func cmdTournament(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tournament", flag.ContinueOnError)
	c := addCommon(fs)
	names := fs.String("strategies", strings.Join(strategy.Names(), ","), "Comma-separated strategies to pair")
	rounds := fs.Int("rounds", 1, "Times every pairing is played")
	workers := fs.Int("workers", 0, "Concurrent matches (default tournament.workers)")
	playedLog := fs.String("played-log", "", "Append-only log of finished pairings (default tournament.playedLog)")
	gamesPerFlush := fs.Int("games-per-flush", 50, "Matches per parquet batch file")
	useTUI := fs.Bool("tui", false, "Show a live dashboard instead of log lines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, err := c.load()
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Tournament.Workers = *workers
	}
	if *playedLog != "" {
		cfg.Tournament.PlayedLog = *playedLog
	}
	maps, _, err := loadMaps(fs.Args())
	if err != nil {
		return err
	}
	var strategies []string
	for _, n := range strings.Split(*names, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, err := strategy.Lookup(n); err != nil {
			return err
		}
		strategies = append(strategies, n)
	}
	if len(strategies) < 2 {
		return errors.New("a tournament needs at least two strategies")
	}

	played, err := store.OpenPlayedLog(cfg.Tournament.PlayedLog)
	if err != nil {
		return err
	}
	defer played.Close()
	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	pairings := tournament.Schedule(maps, strategies, *rounds)
	remaining := 0
	for _, p := range pairings {
		if !played.Has(p.Key()) {
			remaining++
		}
	}
	log.Info("starting tournament",
		"maps", len(maps),
		"strategies", strings.Join(strategies, ","),
		"pairings", len(pairings),
		"remaining", remaining,
		"workers", cfg.Tournament.Workers)

	updates := make(chan tournament.Update, 64)
	tcfg := tournament.Config{
		Pairings:      pairings,
		Workers:       cfg.Tournament.Workers,
		Settings:      mapSettings(cfg),
		Played:        played,
		Ledger:        ledger,
		ArchiveDir:    cfg.Archive.Dir,
		GamesPerFlush: *gamesPerFlush,
		Updates:       updates,
		Logger:        log,
	}

	if *useTUI {
		return tournamentTUI(ctx, tcfg, updates, remaining)
	}

	type finished struct {
		summary tournament.Summary
		err     error
	}
	done := make(chan finished, 1)
	go func() {
		s, err := tournament.Run(ctx, tcfg)
		done <- finished{s, err}
	}()

	startTime := time.Now()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	var games, turns int64
	for {
		select {
		case u := <-updates:
			games++
			turns += int64(u.Turns)
			log.Info("match finished", "worker", u.Worker, "pairing", u.Pairing.Key(), "result", u.Result.String(), "turns", u.Turns)
		case <-ticker.C:
			log.Info("progress", "games", games, "games_per_sec", tournament.Rate(games, startTime), "turns_per_sec", tournament.Rate(turns, startTime))
		case f := <-done:
			if f.err != nil && ctx.Err() != nil {
				log.Info("tournament interrupted; rerun to resume", "played", f.summary.Played)
				return nil
			}
			return f.err
		}
	}
}

func tournamentTUI(ctx context.Context, tcfg tournament.Config, updates <-chan tournament.Update, remaining int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// log lines would tear the dashboard
	tcfg.Logger = logging.Discard()

	p := tea.NewProgram(tui.NewTournamentModel(remaining, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	errc := make(chan error, 1)
	go func() {
		s, err := tournament.Run(ctx, tcfg)
		p.Send(tui.FinishedMsg{Summary: s, Err: err})
		errc <- err
	}()
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	cancel()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func cmdStandings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("standings", flag.ContinueOnError)
	c := addCommon(fs)
	recent := fs.Int("recent", 0, "Also list this many recent matches")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, _, err := c.load()
	if err != nil {
		return err
	}
	if cfg.Ledger.Path == "" {
		return errors.New("no ledger configured (use -ledger or ledger.path)")
	}
	ledger, err := store.OpenLedger(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	standings, err := ledger.Standings(ctx)
	if err != nil {
		return err
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("STRATEGY", "PLAYED", "WON", "LOST", "TIED", "POINTS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, s := range standings {
		t.Row(s.Strategy, strconv.Itoa(s.Played), strconv.Itoa(s.Wins), strconv.Itoa(s.Losses), strconv.Itoa(s.Ties), strconv.Itoa(s.Points()))
	}
	fmt.Println(t.Render())

	if *recent > 0 {
		rows, err := ledger.Recent(ctx, *recent)
		if err != nil {
			return err
		}
		for _, r := range rows {
			fmt.Printf("%s  %-10s %s vs %s: %s\n", r.CreatedAt.Format(time.DateTime), r.Map, r.Player1, r.Player2, r.Result)
		}
	}
	return nil
}

func cmdReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	outDir := fs.String("out-dir", "replays", "Directory for the rebuilt files")
	matchID := fs.String("match", "", "Only rebuild this match")
	console := fs.Bool("console", false, "Print every turn instead of writing files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("no archive files given")
	}

	var rows []store.ArchiveTurnRow
	for _, arg := range fs.Args() {
		paths, err := filepath.Glob(arg)
		if err != nil {
			return fmt.Errorf("bad archive pattern %q: %w", arg, err)
		}
		if len(paths) == 0 {
			paths = []string{arg}
		}
		for _, p := range paths {
			r, err := store.ReadArchiveParquet(p)
			if err != nil {
				return err
			}
			rows = append(rows, r...)
		}
	}

	found := 0
	for _, m := range store.GroupMatches(rows) {
		if *matchID != "" && m[0].MatchID != *matchID {
			continue
		}
		found++
		r, err := match.FromArchive(m)
		if err != nil {
			return err
		}
		if *console {
			for _, row := range m {
				render.PrintTurn(os.Stdout, row.State(), row.Actions)
			}
			fmt.Println(r.Result)
			continue
		}
		base := filepath.Join(*outDir, r.Map+"_"+r.MatchID)
		if err := match.WriteActions(base+"_actions.txt", r.Lines, r.Result); err != nil {
			return err
		}
		if err := match.WriteReplay(base+".html", r.Replay); err != nil {
			return err
		}
		fmt.Printf("%s: %d turns, %s -> %s.html\n", r.MatchID, len(r.Lines), r.Result, base)
	}
	if found == 0 {
		return errors.New("no matching battles in the archives")
	}
	return nil
}
