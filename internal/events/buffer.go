package events

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

type Event struct {
	EventID  string  `json:"event_id"`
	Event    Type    `json:"event"`
	ServerTS int64   `json:"server_ts"`
	Data     Payload `json:"data"`
}

// Buffer is the append-only lifecycle log. It keeps the last max events for
// replay and fans every new event out to subscribers. Slow subscribers drop
// events rather than block the appender.
type Buffer struct {
	mu       sync.Mutex
	nextID   int64
	max      int
	events   []Event
	watchers map[chan Event]struct{}
	closed   bool
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 500
	}
	return &Buffer{
		max:      max,
		watchers: map[chan Event]struct{}{},
	}
}

func (b *Buffer) Append(p Payload) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || p == nil {
		return Event{}
	}
	b.nextID++
	ev := Event{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    p.EventType(),
		ServerTS: time.Now().UnixMilli(),
		Data:     p,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID. An empty or
// unparsable id replays the whole buffer.
func (b *Buffer) ReplayAfter(lastEventID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		out := make([]Event, len(b.events))
		copy(out, b.events)
		return out
	}
	out := make([]Event, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Buffer) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Buffer) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}

// Filter reports whether ev should be delivered given an allowlist of event
// types. An empty allowlist accepts everything.
func Filter(allow map[Type]bool, ev Event) bool {
	if len(allow) == 0 {
		return true
	}
	return allow[ev.Event]
}

// ParseTypes turns a comma separated list of event names into an allowlist
// for Filter. Blank entries are ignored.
func ParseTypes(list []string) map[Type]bool {
	allow := map[Type]bool{}
	for _, item := range list {
		for _, name := range strings.Split(item, ",") {
			if name = strings.TrimSpace(name); name != "" {
				allow[Type(name)] = true
			}
		}
	}
	return allow
}
