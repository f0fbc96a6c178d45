package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agent-arena/internal/chain"
	"agent-arena/internal/config"
	"agent-arena/internal/store"
)

type Mode string

const (
	ModeSimulate Mode = config.ModeSimulate
	ModeQuote    Mode = config.ModeQuote
	ModeLive     Mode = config.ModeLive
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSimulate, ModeQuote, ModeLive:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown execution mode %q", s)
}

type Stage string

const (
	StageQuote     Stage = "quote"
	StageTxBuild   Stage = "tx-build"
	StageBroadcast Stage = "broadcast"
	StageConfirm   Stage = "confirm"
)

// StageError is the terminal failure of one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

var (
	errPanic          = errors.New("pipeline panic")
	errNotConfigured  = errors.New("collaborator not configured")
	ErrInvalidJob     = errors.New("invalid_job")
	ErrUnknownAgentID = errors.New("unknown_agent")
)

type QuoteProvider interface {
	Quote(ctx context.Context, req chain.QuoteRequest) (store.Quote, error)
}

type TxBuilder interface {
	Build(ctx context.Context, rawQuote json.RawMessage) (store.UnsignedTx, error)
}

type Broadcaster interface {
	Send(ctx context.Context, tx store.UnsignedTx) (string, error)
	AwaitConfirmation(ctx context.Context, txHash string) (chain.Confirmation, error)
}

type Job struct {
	ID          string
	AgentID     string
	BattleID    string
	Constraints store.Constraints
	Swap        *store.SwapParams
	SubmittedAt time.Time
}

// DefaultConstraints are applied when a caller leaves a field at zero.
var DefaultConstraints = store.Constraints{
	Objective:      "balanced",
	MaxSlippageBps: 50,
	MaxGasUSD:      1.5,
	DeadlineMS:     4000,
}

func withDefaults(c store.Constraints) store.Constraints {
	if c.Objective == "" {
		c.Objective = DefaultConstraints.Objective
	}
	if c.MaxSlippageBps <= 0 {
		c.MaxSlippageBps = DefaultConstraints.MaxSlippageBps
	}
	if c.MaxGasUSD <= 0 {
		c.MaxGasUSD = DefaultConstraints.MaxGasUSD
	}
	if c.DeadlineMS <= 0 {
		c.DeadlineMS = DefaultConstraints.DeadlineMS
	}
	return c
}
