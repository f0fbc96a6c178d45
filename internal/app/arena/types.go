package arena

import (
	"time"

	"agent-arena/internal/store"
)

type SubmitJobInput struct {
	AgentID     string            `json:"agent_id"`
	Constraints store.Constraints `json:"constraints"`
	Swap        *store.SwapParams `json:"swap,omitempty"`
}

type SubmitJobResponse struct {
	JobID       string            `json:"job_id"`
	AgentID     string            `json:"agent_id"`
	Status      string            `json:"status"`
	Mode        string            `json:"mode"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Constraints store.Constraints `json:"constraints"`
}

type BattleInput struct {
	Type   string            `json:"type"`
	Agents []string          `json:"agents"`
	Swap   *store.SwapParams `json:"swap,omitempty"`
	// Start skips the lobby and runs the battle immediately.
	Start bool `json:"start"`
}

type BetInput struct {
	BattleID string `json:"battle_id"`
	Nickname string `json:"nickname"`
	AgentID  string `json:"agent_id"`
	Stake    string `json:"stake"`
}

type FeedbackResponse struct {
	JobID  string `json:"job_id"`
	Rating int    `json:"rating"`
}
