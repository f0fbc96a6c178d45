package events

import (
	"agent-arena/internal/store"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeQueued              Type = "queued"
	TypeRunning             Type = "running"
	TypeFulfilled           Type = "fulfilled"
	TypeFailed              Type = "failed"
	TypeTxSubmitted         Type = "tx-submitted"
	TypeTxConfirmed         Type = "tx-confirmed"
	TypeStreamEvent         Type = "stream-event"
	TypeBattleOpen          Type = "battle-open"
	TypeBattleComplete      Type = "battle-complete"
	TypeParticipationUpdate Type = "participation-update"
	TypePredictionUpdate    Type = "prediction-update"
	TypePredictionResolved  Type = "prediction-resolved"
	TypePaperBetPlaced      Type = "paperbet-placed"
	TypePaperBetResolved    Type = "paperbet-resolved"
	TypePing                Type = "ping"
)

// Payload is implemented only by the event structs in this package, so the
// set of events is closed.
type Payload interface {
	EventType() Type
	sealed()
}

type JobQueued struct {
	JobID    string `json:"job_id"`
	AgentID  string `json:"agent_id"`
	BattleID string `json:"battle_id,omitempty"`
	Mode     string `json:"mode"`
	HasSwap  bool   `json:"has_swap"`
}

type JobRunning struct {
	JobID    string `json:"job_id"`
	AgentID  string `json:"agent_id"`
	BattleID string `json:"battle_id,omitempty"`
}

// JobMeta is the swap and on-chain context gathered before a job finished.
type JobMeta struct {
	Swap    *store.SwapParams      `json:"swap,omitempty"`
	Quote   *store.Quote           `json:"quote,omitempty"`
	Tx      *store.UnsignedTx      `json:"tx,omitempty"`
	OnChain *store.OnChainEvidence `json:"onchain,omitempty"`
}

type JobFulfilled struct {
	JobID    string        `json:"job_id"`
	AgentID  string        `json:"agent_id"`
	BattleID string        `json:"battle_id,omitempty"`
	Outcome  store.Outcome `json:"outcome"`
	JobMeta
}

// JobFailed covers both a simulated failure verdict (Outcome set, Stage
// empty) and an aborted pipeline (Stage set when a stage failed, Error set).
type JobFailed struct {
	JobID    string         `json:"job_id"`
	AgentID  string         `json:"agent_id"`
	BattleID string         `json:"battle_id,omitempty"`
	Stage    string         `json:"stage,omitempty"`
	Error    string         `json:"error,omitempty"`
	Outcome  *store.Outcome `json:"outcome,omitempty"`
	JobMeta
}

type TxSubmitted struct {
	JobID   string `json:"job_id"`
	AgentID string `json:"agent_id"`
	TxHash  string `json:"tx_hash"`
	ChainID int64  `json:"chain_id"`
}

type TxConfirmed struct {
	JobID       string `json:"job_id"`
	AgentID     string `json:"agent_id"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
	Status      string `json:"status"`
}

type StreamEventIngested struct {
	Event store.StreamEvent `json:"event"`
}

type BattleOpen struct {
	Battle store.BattleRecord `json:"battle"`
}

type BattleComplete struct {
	BattleID   string            `json:"battle_id"`
	Type       store.BattleType  `json:"type"`
	Winner     string            `json:"winner,omitempty"`
	Scorecards []store.Scorecard `json:"scorecards"`
}

type ParticipationUpdate struct {
	BattleID  string          `json:"battle_id"`
	Scorecard store.Scorecard `json:"scorecard"`
}

type PredictionUpdate struct {
	BattleID    string                     `json:"battle_id"`
	TotalPool   decimal.Decimal            `json:"total_pool"`
	PoolByAgent map[string]decimal.Decimal `json:"pool_by_agent"`
	Bettors     int                        `json:"bettors"`
}

type PredictionResolved struct {
	BattleID   string          `json:"battle_id"`
	Winner     string          `json:"winner"`
	TotalPool  decimal.Decimal `json:"total_pool"`
	WinnerPool decimal.Decimal `json:"winner_pool"`
	LoserPool  decimal.Decimal `json:"loser_pool"`
	Results    int             `json:"results"`
}

type PaperBetPlaced struct {
	Bet store.PaperBet `json:"bet"`
}

type PaperBetResolved struct {
	Result store.PaperBetResult `json:"result"`
}

type Ping struct {
	TS int64 `json:"ts"`
}

func (JobQueued) EventType() Type           { return TypeQueued }
func (JobRunning) EventType() Type          { return TypeRunning }
func (JobFulfilled) EventType() Type        { return TypeFulfilled }
func (JobFailed) EventType() Type           { return TypeFailed }
func (TxSubmitted) EventType() Type         { return TypeTxSubmitted }
func (TxConfirmed) EventType() Type         { return TypeTxConfirmed }
func (StreamEventIngested) EventType() Type { return TypeStreamEvent }
func (BattleOpen) EventType() Type          { return TypeBattleOpen }
func (BattleComplete) EventType() Type      { return TypeBattleComplete }
func (ParticipationUpdate) EventType() Type { return TypeParticipationUpdate }
func (PredictionUpdate) EventType() Type    { return TypePredictionUpdate }
func (PredictionResolved) EventType() Type  { return TypePredictionResolved }
func (PaperBetPlaced) EventType() Type      { return TypePaperBetPlaced }
func (PaperBetResolved) EventType() Type    { return TypePaperBetResolved }
func (Ping) EventType() Type                { return TypePing }

func (JobQueued) sealed()           {}
func (JobRunning) sealed()          {}
func (JobFulfilled) sealed()        {}
func (JobFailed) sealed()           {}
func (TxSubmitted) sealed()         {}
func (TxConfirmed) sealed()         {}
func (StreamEventIngested) sealed() {}
func (BattleOpen) sealed()          {}
func (BattleComplete) sealed()      {}
func (ParticipationUpdate) sealed() {}
func (PredictionUpdate) sealed()    {}
func (PredictionResolved) sealed()  {}
func (PaperBetPlaced) sealed()      {}
func (PaperBetResolved) sealed()    {}
func (Ping) sealed()                {}
