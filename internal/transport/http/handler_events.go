package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"agent-arena/internal/events"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

var ssePingInterval = 15 * time.Second

// EventsSSEHandler replays buffered lifecycle events after Last-Event-ID and
// then streams new ones. ?types=a,b restricts the event types delivered.
func EventsSSEHandler(buf *events.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}
		allow := events.ParseTypes(r.URL.Query()["types"])

		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		events.SetSSEHeaders(w)
		reqID := chimw.GetReqID(r.Context())
		log.Info().Str("request_id", reqID).Int("types", len(allow)).Msg("sse stream opened")

		// Subscribe before replaying so nothing appended in between is lost.
		ch := buf.Subscribe()
		defer buf.Unsubscribe(ch)

		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			lastEventID = r.URL.Query().Get("last_event_id")
		}
		var sent int64
		for _, ev := range buf.ReplayAfter(lastEventID) {
			sent = eventSeq(ev)
			if !events.Filter(allow, ev) {
				continue
			}
			if err := events.WriteSSE(w, ev); err != nil {
				return
			}
			logSSEEvent(reqID, "replay", ev)
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				log.Info().Str("request_id", reqID).Err(r.Context().Err()).Msg("sse stream closed")
				return
			case ev, ok := <-ch:
				if !ok {
					log.Info().Str("request_id", reqID).Msg("sse stream channel closed")
					return
				}
				if eventSeq(ev) <= sent || !events.Filter(allow, ev) {
					continue
				}
				if err := events.WriteSSE(w, ev); err != nil {
					return
				}
				logSSEEvent(reqID, "live", ev)
				flusher.Flush()
			case <-ticker.C:
				now := time.Now().UnixMilli()
				ping := events.Event{Event: events.TypePing, ServerTS: now, Data: events.Ping{TS: now}}
				if err := events.WriteSSE(w, ping); err != nil {
					return
				}
				logSSEEvent(reqID, "ping", ping)
				flusher.Flush()
			}
		}
	}
}

func eventSeq(ev events.Event) int64 {
	n, _ := strconv.ParseInt(ev.EventID, 10, 64)
	return n
}

func logSSEEvent(reqID, source string, ev events.Event) {
	evt := log.Info()
	if ev.Event == events.TypePing {
		evt = log.Debug()
	}
	evt.
		Str("request_id", reqID).
		Str("event", string(ev.Event)).
		Str("event_id", ev.EventID).
		Str("source", source).
		Int64("server_ts", ev.ServerTS).
		Msg("sse event sent")
}
