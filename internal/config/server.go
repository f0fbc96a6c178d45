package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ModeSimulate = "simulate"
	ModeQuote    = "quote"
	ModeLive     = "live"
)

// ServerConfig is parsed once at startup and passed down by value.
type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	ExecutionMode   string `env:"EXECUTION_MODE" envDefault:"simulate"`
	SimulateLatency bool   `env:"SIMULATE_LATENCY" envDefault:"false"`
	ChainID         int64  `env:"CHAIN_ID" envDefault:"8453"`

	QuoteAPIURL           string `env:"QUOTE_API_URL"`
	QuoteAPIKey           string `env:"QUOTE_API_KEY"`
	TxBuilderURL          string `env:"TX_BUILDER_URL"`
	BroadcasterURL        string `env:"BROADCASTER_URL"`
	EscrowURL             string `env:"ESCROW_URL"`
	CollaboratorTimeoutMS int    `env:"COLLABORATOR_TIMEOUT_MS" envDefault:"10000"`
	ConfirmTimeoutMS      int    `env:"CONFIRM_TIMEOUT_MS" envDefault:"120000"`

	StreamWebhookSecret string `env:"STREAM_WEBHOOK_SECRET"`
	StreamID            string `env:"STREAM_ID"`

	EventReplayMax  int `env:"EVENT_REPLAY_MAX" envDefault:"200"`
	MaxReceipts     int `env:"MAX_RECEIPTS" envDefault:"5000"`
	MaxBattles      int `env:"MAX_BATTLES" envDefault:"200"`
	MaxStreamEvents int `env:"MAX_STREAM_EVENTS" envDefault:"500"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.ExecutionMode = strings.ToLower(strings.TrimSpace(cfg.ExecutionMode))
	return cfg, cfg.Validate()
}

func (c ServerConfig) Validate() error {
	switch c.ExecutionMode {
	case ModeSimulate:
	case ModeQuote:
		if c.QuoteAPIURL == "" || c.TxBuilderURL == "" {
			return errors.New("EXECUTION_MODE=quote requires QUOTE_API_URL and TX_BUILDER_URL")
		}
	case ModeLive:
		if c.QuoteAPIURL == "" || c.TxBuilderURL == "" || c.BroadcasterURL == "" {
			return errors.New("EXECUTION_MODE=live requires QUOTE_API_URL, TX_BUILDER_URL and BROADCASTER_URL")
		}
	default:
		return fmt.Errorf("unknown EXECUTION_MODE %q", c.ExecutionMode)
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("invalid CHAIN_ID %d", c.ChainID)
	}
	return nil
}

func (c ServerConfig) CollaboratorTimeout() time.Duration {
	return time.Duration(c.CollaboratorTimeoutMS) * time.Millisecond
}

func (c ServerConfig) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutMS) * time.Millisecond
}
