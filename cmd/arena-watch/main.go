package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"agent-arena/internal/config"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type frame struct {
	Type     string          `json:"type"`
	EventID  string          `json:"event_id"`
	Event    string          `json:"event"`
	ServerTS int64           `json:"server_ts"`
	Data     json.RawMessage `json:"data"`
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	cfg, err := config.LoadWatch()
	if err != nil {
		log.Fatal().Err(err).Msg("load watch config failed")
	}
	target, err := watchURL(cfg.WSURL, cfg.Events, os.Getenv("LAST_EVENT_ID"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid WS_URL")
	}

	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", target).Msg("dial failed")
	}
	defer conn.Close()
	log.Info().Str("url", target).Msg("watching")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info().Msg("stream closed by server")
				return
			}
			log.Error().Err(err).Msg("read failed")
			return
		}
		if err := printFrame(os.Stdout, data, cfg.Pretty); err != nil {
			log.Warn().Err(err).Msg("skipping malformed frame")
		}
	}
}

func watchURL(base string, types []string, lastEventID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("scheme %q is not ws or wss", u.Scheme)
	}
	q := u.Query()
	if len(types) > 0 {
		q.Set("types", strings.Join(types, ","))
	}
	if lastEventID != "" {
		q.Set("last_event_id", lastEventID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// printFrame writes one line per lifecycle event. Control frames (hello,
// subscribe_result, pong) are printed with their type only.
func printFrame(w io.Writer, data []byte, pretty bool) error {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Event == "" {
		_, err := fmt.Fprintf(w, "# %s\n", f.Type)
		return err
	}
	payload := []byte(f.Data)
	if pretty {
		var out bytes.Buffer
		if err := json.Indent(&out, f.Data, "", "  "); err == nil {
			payload = out.Bytes()
		}
	}
	_, err := fmt.Fprintf(w, "%s %-22s %s\n", f.EventID, f.Event, payload)
	return err
}
