package ws

const ProtocolVersion = "1.0"

// SubscribeMessage replaces the connection's event type allowlist. An empty
// list accepts every event.
type SubscribeMessage struct {
	Type  string   `json:"type"`
	Types []string `json:"types"`
}

type Hello struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Types           []string `json:"types,omitempty"`
	LastEventID     string   `json:"last_event_id,omitempty"`
}

type SubscribeResult struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Ok              bool     `json:"ok"`
	Error           string   `json:"error,omitempty"`
	Types           []string `json:"types,omitempty"`
}

type Pong struct {
	Type string `json:"type"`
	TS   int64  `json:"ts"`
}
