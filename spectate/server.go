package spectate

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/tanks/mapfile"
	"github.com/brensch/tanks/match"
	"github.com/brensch/tanks/rules"
	"github.com/brensch/tanks/store"
	"github.com/brensch/tanks/strategy"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server exposes the hub over websocket and the ledger over JSON.
type Server struct {
	hub    *Hub
	ledger *store.Ledger
	log    *slog.Logger
}

// NewServer builds a server. ledger may be nil, in which case the results
// endpoints answer 404.
func NewServer(hub *Hub, ledger *store.Ledger, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{hub: hub, ledger: ledger, log: log}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/matches", s.handleMatches)
	mux.HandleFunc("/api/standings", s.handleStandings)
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c, ok := s.hub.join(conn)
	if !ok {
		conn.Close()
		return
	}
	s.log.Debug("spectator joined", "remote", r.RemoteAddr)
	go s.hub.writePump(c)
	s.hub.readPump(c)
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.ledger == nil {
		http.Error(w, "no ledger configured", http.StatusNotFound)
		return
	}
	limit := parseIntQuery(r, "limit", 20)
	if limit <= 0 || limit > 1000 {
		http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
		return
	}
	rows, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

type standingJSON struct {
	Strategy string `json:"strategy"`
	Played   int    `json:"played"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Ties     int    `json:"ties"`
	Points   int    `json:"points"`
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.ledger == nil {
		http.Error(w, "no ledger configured", http.StatusNotFound)
		return
	}
	standings, err := s.ledger.Standings(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]standingJSON, len(standings))
	for i, st := range standings {
		out[i] = standingJSON{
			Strategy: st.Strategy,
			Played:   st.Played,
			Wins:     st.Wins,
			Losses:   st.Losses,
			Ties:     st.Ties,
			Points:   st.Points(),
		}
	}
	writeJSON(w, out)
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; background: #1e1e1e; color: #ddd; }
pre#board { font-size: 22px; line-height: 1.1; }
#result { font-weight: bold; color: #6c6; }
</style>
</head>
<body>
<h1 id="title">{{.Title}}</h1>
<p id="turn"></p>
<pre id="board"></pre>
<p id="actions"></p>
<p id="result"></p>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (msg) => {
  const ev = JSON.parse(msg.data);
  if (ev.type === "game_info") {
    document.getElementById("title").textContent = ev.data.map + ": " + ev.data.player1 + " vs " + ev.data.player2;
    document.getElementById("result").textContent = "";
  } else if (ev.type === "frame") {
    document.getElementById("turn").textContent = "Turn " + ev.data.turn;
    document.getElementById("board").textContent = ev.data.board;
    document.getElementById("actions").textContent = ev.data.actions;
  } else if (ev.type === "game_end") {
    document.getElementById("result").textContent = ev.data.result;
  }
};
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, struct{ Title string }{"Tank battle"}); err != nil {
		s.log.Error("failed to render index", "error", err)
	}
}

func withCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func parseIntQuery(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// LoopConfig describes the battles a spectator server plays.
type LoopConfig struct {
	Maps       []*mapfile.Map
	Strategies [2]string
	Settings   func(m *mapfile.Map) rules.Settings
	Ledger     *store.Ledger
	// TickInterval paces each battle.
	TickInterval time.Duration
	// Pause is the gap between battles.
	Pause time.Duration
	// Matches stops the loop after this many battles; 0 runs until ctx ends.
	Matches int
	Logger  *slog.Logger
}

// Loop plays battles on the maps in turn and publishes them to hub. It
// returns the number of battles played.
func Loop(ctx context.Context, hub *Hub, cfg LoopConfig) (int, error) {
	if len(cfg.Maps) == 0 {
		return 0, fmt.Errorf("no maps to play")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	played := 0
	for cfg.Matches == 0 || played < cfg.Matches {
		m := cfg.Maps[played%len(cfg.Maps)]
		strategies, err := strategy.Named(cfg.Strategies[0], cfg.Strategies[1], log)
		if err != nil {
			return played, err
		}
		var settings rules.Settings
		if cfg.Settings != nil {
			settings = cfg.Settings(m)
		}

		matchID := fmt.Sprintf("live_%d_%d", time.Now().UnixNano(), played)
		hub.StartMatch(GameInfo{
			MatchID: matchID,
			Map:     m.Name,
			Player1: cfg.Strategies[0],
			Player2: cfg.Strategies[1],
			Width:   m.Board.Width,
			Height:  m.Board.Height,
		})
		out, err := match.Run(ctx, match.Options{
			MatchID:      matchID,
			Map:          m,
			Settings:     settings,
			Strategies:   strategies,
			Names:        cfg.Strategies,
			Ledger:       cfg.Ledger,
			Observe:      hub.Observer(),
			TickInterval: cfg.TickInterval,
			Logger:       log,
		})
		if err != nil {
			if ctx.Err() != nil {
				return played, nil
			}
			return played, err
		}
		hub.EndMatch(out.Result)
		played++
		log.Info("live match finished", "match", matchID, "map", m.Name, "result", out.Result.String(), "spectators", hub.Clients())

		if cfg.Matches != 0 && played >= cfg.Matches {
			break
		}
		select {
		case <-ctx.Done():
			return played, nil
		case <-time.After(cfg.Pause):
		}
	}
	return played, nil
}
