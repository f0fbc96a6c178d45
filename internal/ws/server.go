package ws

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"agent-arena/internal/events"
)

const (
	writeWait       = 10 * time.Second
	maxMessageBytes = 4096
)

// Client is one spectator connection. All writes go through send so only
// writeLoop touches the socket.
type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	mu    sync.Mutex
	allow map[events.Type]bool
}

func (c *Client) accepts(ev events.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return events.Filter(c.allow, ev)
}

func (c *Client) setAllow(allow map[events.Type]bool) {
	c.mu.Lock()
	c.allow = allow
	c.mu.Unlock()
}

// Server streams the lifecycle event log to websocket spectators: a replay
// after ?last_event_id, then every new event matching the client's filter.
type Server struct {
	buf          *events.Buffer
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	mu           sync.Mutex
	clients      map[*Client]bool
}

func NewServer(buf *events.Buffer) *Server {
	return &Server{
		buf:          buf,
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		pingInterval: 15 * time.Second,
		clients:      map[*Client]bool{},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.HandleWS(w, r)
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade failed")
		return
	}
	q := r.URL.Query()
	allow := events.ParseTypes(q["types"])
	client := &Client{conn: conn, send: make(chan []byte, 64), done: make(chan struct{}), allow: allow}
	s.register(client)

	lastEventID := q.Get("last_event_id")
	ch := s.buf.Subscribe()
	s.sendJSON(client, Hello{
		Type:            "hello",
		ProtocolVersion: ProtocolVersion,
		Types:           typeNames(allow),
		LastEventID:     lastEventID,
	})

	go s.writeLoop(client)
	go s.pump(client, ch, lastEventID)
	s.readLoop(client, ch)
}

// Close drops every open connection. Used on shutdown, after the event
// buffer has been closed.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.conn.Close()
	}
}

func (s *Server) ActiveClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) readLoop(c *Client, ch chan events.Event) {
	defer func() {
		close(c.done)
		s.buf.Unsubscribe(ch)
		s.unregister(c)
		_ = c.conn.Close()
	}()

	pongWait := 2 * s.pingInterval
	c.conn.SetReadLimit(maxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case "subscribe":
			var sub SubscribeMessage
			if err := json.Unmarshal(msg, &sub); err != nil {
				s.sendJSON(c, SubscribeResult{Type: "subscribe_result", ProtocolVersion: ProtocolVersion, Error: "invalid_message"})
				continue
			}
			allow := events.ParseTypes(sub.Types)
			c.setAllow(allow)
			s.sendJSON(c, SubscribeResult{Type: "subscribe_result", ProtocolVersion: ProtocolVersion, Ok: true, Types: typeNames(allow)})
		case "ping":
			s.sendJSON(c, Pong{Type: "pong", TS: time.Now().UnixMilli()})
		}
	}
}

// pump replays buffered events and then forwards live ones. Replay waits
// for the writer; live events are dropped when the client lags. Live events
// already covered by the replay are skipped.
func (s *Server) pump(c *Client, ch chan events.Event, lastEventID string) {
	defer safeClose(c.send)
	var sent int64
	for _, ev := range s.buf.ReplayAfter(lastEventID) {
		sent = eventSeq(ev)
		msg, ok := encode(c, ev)
		if !ok {
			continue
		}
		select {
		case c.send <- msg:
		case <-c.done:
			return
		}
	}
	for ev := range ch {
		if eventSeq(ev) <= sent {
			continue
		}
		msg, ok := encode(c, ev)
		if !ok {
			continue
		}
		if !safeSend(c.send, msg) {
			log.Warn().Str("event", string(ev.Event)).Str("event_id", ev.EventID).Msg("ws client lagging, event dropped")
		}
	}
}

func encode(c *Client, ev events.Event) ([]byte, bool) {
	if !c.accepts(ev) {
		return nil, false
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", string(ev.Event)).Msg("ws marshal event failed")
		return nil, false
	}
	return msg, true
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) sendJSON(c *Client, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}
	safeSend(c.send, msg)
}

func (s *Server) register(c *Client) {
	s.mu.Lock()
	s.clients[c] = true
	n := len(s.clients)
	s.mu.Unlock()
	log.Info().Int("clients", n).Msg("ws spectator connected")
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	n := len(s.clients)
	s.mu.Unlock()
	log.Info().Int("clients", n).Msg("ws spectator disconnected")
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

// safeSend never blocks. It reports false when the buffer is full or the
// channel has already been closed.
func safeSend(ch chan []byte, msg []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}

func eventSeq(ev events.Event) int64 {
	n, _ := strconv.ParseInt(ev.EventID, 10, 64)
	return n
}

func typeNames(allow map[events.Type]bool) []string {
	out := make([]string, 0, len(allow))
	for t := range allow {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}
