// Package spectate streams live battles to websocket clients. Each battle
// is sent as a game_info event, one frame event per turn and a game_end
// event. Clients that connect mid-battle receive the battle so far first.
package spectate

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/match"
	"github.com/brensch/tanks/render"
	"github.com/brensch/tanks/rules"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

// Event is the envelope of every websocket message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type GameInfo struct {
	MatchID string `json:"match_id"`
	Map     string `json:"map"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type TankData struct {
	Player int    `json:"player"`
	Index  int    `json:"index"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Dir    int    `json:"dir"`
	Alive  bool   `json:"alive"`
	Shells int    `json:"shells"`
	Token  string `json:"token,omitempty"`
}

type FrameData struct {
	Turn    int        `json:"turn"`
	Board   string     `json:"board"`
	Actions string     `json:"actions"`
	Tanks   []TankData `json:"tanks"`
	Shells  int        `json:"shells"`
}

type GameEnd struct {
	Result  string `json:"result"`
	Outcome string `json:"outcome"`
	Winner  int    `json:"winner"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans battle events out to every connected client.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	history [][]byte
	closed  bool
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{clients: make(map[*client]struct{}), log: log}
}

// StartMatch begins a new battle and forgets the previous one.
func (h *Hub) StartMatch(info GameInfo) {
	h.publish(Event{Type: "game_info", Data: info}, true)
}

// Observer returns a match observer publishing every turn.
func (h *Hub) Observer() match.Observer {
	return func(state *game.State, rec rules.TurnRecord) {
		h.publish(Event{Type: "frame", Data: frameData(state, rec)}, false)
	}
}

// EndMatch publishes the result of the current battle.
func (h *Hub) EndMatch(res rules.Result) {
	h.publish(Event{Type: "game_end", Data: GameEnd{
		Result:  res.String(),
		Outcome: res.Outcome.String(),
		Winner:  res.Winner(),
	}}, false)
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Later events are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func frameData(state *game.State, rec rules.TurnRecord) FrameData {
	f := FrameData{
		Turn:    state.Turn,
		Board:   render.Board(state),
		Actions: rec.Line,
		Tanks:   make([]TankData, len(state.Tanks)),
		Shells:  len(state.Shells),
	}
	for i, t := range state.Tanks {
		td := TankData{
			Player: t.Player,
			Index:  t.Index,
			X:      t.Pos.X,
			Y:      t.Pos.Y,
			Dir:    int(t.Dir),
			Alive:  t.Alive,
			Shells: t.Shells,
		}
		if i < len(rec.Tanks) {
			td.Token = rec.Tanks[i].Token()
		}
		f.Tanks[i] = td
	}
	return f
}

func (h *Hub) publish(ev Event, reset bool) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode event", "type", ev.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if reset {
		h.history = h.history[:0]
	}
	h.history = append(h.history, msg)
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// too slow to keep up
			h.log.Warn("dropping slow spectator", "remote", c.conn.RemoteAddr().String())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// join registers conn and queues the battle so far.
func (h *Hub) join(conn *websocket.Conn) (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := &client{conn: conn, send: make(chan []byte, len(h.history)+sendBuffer)}
	for _, msg := range h.history {
		c.send <- msg
	}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and returns when the client goes away.
func (h *Hub) readPump(c *client) {
	defer h.leave(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("spectator read failed", "error", err)
			}
			return
		}
	}
}
