package store

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	JobFulfilled JobStatus = "fulfilled"
	JobFailed    JobStatus = "failed"
)

type BattleType string

const (
	BattleSpeed       BattleType = "speed"
	BattleGas         BattleType = "gas"
	BattleReliability BattleType = "reliability"
	BattleSlippage    BattleType = "slippage"
)

func (t BattleType) Valid() bool {
	switch t {
	case BattleSpeed, BattleGas, BattleReliability, BattleSlippage:
		return true
	}
	return false
}

type BattleStatus string

const (
	BattleLobby    BattleStatus = "lobby"
	BattleRunning  BattleStatus = "running"
	BattleComplete BattleStatus = "complete"
)

func (s BattleStatus) rank() int {
	switch s {
	case BattleLobby:
		return 0
	case BattleRunning:
		return 1
	case BattleComplete:
		return 2
	}
	return -1
}

type ScorecardStatus string

const (
	CardPending   ScorecardStatus = "pending"
	CardRunning   ScorecardStatus = "running"
	CardFulfilled ScorecardStatus = "fulfilled"
	CardFailed    ScorecardStatus = "failed"
)

func (s ScorecardStatus) Terminal() bool {
	return s == CardFulfilled || s == CardFailed
}

const (
	SourceLive      = "live"
	SourceSynthetic = "synthetic"
)

type Constraints struct {
	Objective      string  `json:"objective"`
	MaxSlippageBps float64 `json:"max_slippage_bps"`
	MaxGasUSD      float64 `json:"max_gas_usd"`
	DeadlineMS     int64   `json:"deadline_ms"`
}

type Outcome struct {
	Status      JobStatus `json:"status"`
	LatencyMS   int64     `json:"latency_ms"`
	GasUsedUSD  float64   `json:"gas_used_usd"`
	SlippageBps float64   `json:"slippage_bps"`
	SafetyFlags []string  `json:"safety_flags"`
}

type SwapParams struct {
	SellToken   string `json:"sell_token"`
	BuyToken    string `json:"buy_token"`
	SellAmount  string `json:"sell_amount"`
	SlippageBps int    `json:"slippage_bps,omitempty"`
}

type Quote struct {
	BuyAmount string          `json:"buy_amount"`
	Route     string          `json:"route"`
	Hops      int             `json:"hops"`
	Raw       json.RawMessage `json:"-"`
}

type UnsignedTx struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	ChainID  int64  `json:"chain_id"`
	GasLimit uint64 `json:"gas_limit"`
}

// OnChainEvidence is the only receipt sub-record reconciliation may rewrite.
type OnChainEvidence struct {
	TxHash             string     `json:"tx_hash"`
	BlockNumber        uint64     `json:"block_number"`
	GasUsed            uint64     `json:"gas_used"`
	EVMStatus          string     `json:"evm_status"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	VerificationSource string     `json:"verification_source,omitempty"`
}

type RoutingPolicy struct {
	Name                 string `json:"name"`
	PreferredVenue       string `json:"preferred_venue"`
	MaxHops              int    `json:"max_hops"`
	SlippageToleranceBps int    `json:"slippage_tolerance_bps"`
}

type Economics struct {
	GasUSD          float64 `json:"gas_usd"`
	SlippageBps     float64 `json:"slippage_bps"`
	QuotedBuyAmount string  `json:"quoted_buy_amount,omitempty"`
	RouteHops       int     `json:"route_hops,omitempty"`
	WithinBudget    bool    `json:"within_budget"`
}

type Receipt struct {
	JobID       string           `json:"job_id"`
	AgentID     string           `json:"agent_id"`
	SubmittedAt time.Time        `json:"submitted_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Constraints Constraints      `json:"constraints"`
	Outcome     Outcome          `json:"outcome"`
	Swap        *SwapParams      `json:"swap,omitempty"`
	Quote       *Quote           `json:"quote,omitempty"`
	Tx          *UnsignedTx      `json:"tx,omitempty"`
	OnChain     *OnChainEvidence `json:"onchain,omitempty"`
	Feedback    *int             `json:"feedback,omitempty"`
	BattleID    string           `json:"battle_id,omitempty"`
	Policy      *RoutingPolicy   `json:"policy,omitempty"`
	Economics   *Economics       `json:"economics,omitempty"`
}

type Scorecard struct {
	AgentID     string          `json:"agent_id"`
	JobID       string          `json:"job_id,omitempty"`
	Status      ScorecardStatus `json:"status"`
	LatencyMS   *int64          `json:"latency_ms,omitempty"`
	GasUsedUSD  *float64        `json:"gas_used_usd,omitempty"`
	SlippageBps *float64        `json:"slippage_bps,omitempty"`
	QuotedOut   string          `json:"quoted_out,omitempty"`
	Verified    bool            `json:"verified"`
}

type BattleRecord struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	Type         BattleType   `json:"type"`
	Agents       []string     `json:"agents"`
	Swap         *SwapParams  `json:"swap,omitempty"`
	Scorecards   []Scorecard  `json:"scorecards"`
	Status       BattleStatus `json:"status"`
	Winner       string       `json:"winner,omitempty"`
	SettlementTx string       `json:"settlement_tx,omitempty"`
}

// Card returns the scorecard for agentID, or nil.
func (b *BattleRecord) Card(agentID string) *Scorecard {
	for i := range b.Scorecards {
		if b.Scorecards[i].AgentID == agentID {
			return &b.Scorecards[i]
		}
	}
	return nil
}

type StreamEvent struct {
	ID           string    `json:"id"`
	TxHash       string    `json:"tx_hash"`
	LogIndex     uint64    `json:"log_index"`
	BlockNumber  uint64    `json:"block_number"`
	GasUsed      uint64    `json:"gas_used"`
	Status       string    `json:"status"`
	Contract     string    `json:"contract,omitempty"`
	From         string    `json:"from,omitempty"`
	To           string    `json:"to,omitempty"`
	Topic        string    `json:"topic,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	MatchedJobID string    `json:"matched_job_id,omitempty"`
	Source       string    `json:"source"`
}

type PaperBet struct {
	ID       string          `json:"id"`
	BattleID string          `json:"battle_id"`
	Nickname string          `json:"nickname"`
	AgentID  string          `json:"agent_id"`
	Stake    decimal.Decimal `json:"stake"`
	PlacedAt time.Time       `json:"placed_at"`
}

type PaperBetResult struct {
	BetID    string          `json:"bet_id"`
	BattleID string          `json:"battle_id"`
	Nickname string          `json:"nickname"`
	AgentID  string          `json:"agent_id"`
	Stake    decimal.Decimal `json:"stake"`
	PnL      decimal.Decimal `json:"pnl"`
	ROIPct   decimal.Decimal `json:"roi_pct"`
	Won      bool            `json:"won"`
}

type NicknameStats struct {
	Nickname    string          `json:"nickname"`
	TotalPnL    decimal.Decimal `json:"total_pnl"`
	Bets        int             `json:"bets"`
	Wins        int             `json:"wins"`
	TotalStaked decimal.Decimal `json:"total_staked"`
	BestWin     decimal.Decimal `json:"best_win"`
	WorstLoss   decimal.Decimal `json:"worst_loss"`
	Streak      int             `json:"streak"`
}
