package public

import (
	"agent-arena/internal/agents"
	"agent-arena/internal/chain"
	"agent-arena/internal/prediction"
	"agent-arena/internal/score"
	"agent-arena/internal/store"
)

type AgentItem struct {
	agents.Profile
	Score score.Breakdown `json:"score"`
}

type AgentsResponse struct {
	Items []AgentItem `json:"items"`
}

type ReceiptsResponse struct {
	AgentID string          `json:"agent_id"`
	Items   []store.Receipt `json:"items"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type BattlesResponse struct {
	Items []store.BattleRecord `json:"items"`
	Limit int                  `json:"limit"`
}

type BattleResponse struct {
	Battle  store.BattleRecord     `json:"battle"`
	Pool    prediction.Pool        `json:"pool"`
	Results []store.PaperBetResult `json:"results,omitempty"`
}

type StreamEventsResponse struct {
	Items []store.StreamEvent `json:"items"`
	Limit int                 `json:"limit"`
}

type LeaderboardResponse struct {
	Items  []store.NicknameStats `json:"items"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type EscrowResponse struct {
	BattleID   string                `json:"battle_id"`
	OnchainID  string                `json:"onchain_id"`
	Meta       chain.BattleMeta      `json:"meta"`
	Pots       chain.PotTotals       `json:"pots"`
	Prediction *chain.UserPrediction `json:"prediction,omitempty"`
}
