package chain

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidAddress = errors.New("invalid_address")

type PotTotals struct {
	ByIndex []decimal.Decimal `json:"by_index"`
	Total   decimal.Decimal   `json:"total"`
}

type UserPrediction struct {
	AgentIndex int             `json:"agent_index"`
	Amount     decimal.Decimal `json:"amount"`
	Claimed    bool            `json:"claimed"`
}

type BattleMeta struct {
	Resolved    bool  `json:"resolved"`
	WinnerIndex int   `json:"winner_index"`
	ClosesAt    int64 `json:"closes_at"`
	Agents      int   `json:"agents"`
}

// EscrowClient fronts the on-chain prediction pool through its gateway.
// Battle ids are hashed with OnchainBattleID before they leave the process.
type EscrowClient struct {
	http *httpClient
}

func NewEscrowClient(baseURL string, timeout time.Duration) *EscrowClient {
	return &EscrowClient{http: newHTTPClient(baseURL, timeout, nil)}
}

func battlePath(battleID string) string {
	return "/battles/" + OnchainBattleID(battleID).String()
}

func (c *EscrowClient) RecordWinner(ctx context.Context, battleID string, winnerIndex int) (string, error) {
	if winnerIndex < 0 || winnerIndex > 2 {
		return "", fmt.Errorf("winner index %d out of range", winnerIndex)
	}
	var resp struct {
		TxHash string `json:"tx_hash"`
	}
	err := c.http.postJSON(ctx, battlePath(battleID)+"/winner", map[string]int{"winner_index": winnerIndex}, &resp)
	if err != nil {
		return "", err
	}
	return NormalizeTxHash(resp.TxHash), nil
}

func (c *EscrowClient) PotTotals(ctx context.Context, battleID string) (PotTotals, error) {
	var out PotTotals
	err := c.http.getJSON(ctx, battlePath(battleID)+"/pots", &out)
	return out, err
}

func (c *EscrowClient) UserPrediction(ctx context.Context, battleID, address string) (UserPrediction, error) {
	addr := NormalizeAddress(address)
	if addr == "" {
		return UserPrediction{}, ErrInvalidAddress
	}
	var out UserPrediction
	err := c.http.getJSON(ctx, battlePath(battleID)+"/predictions/"+url.PathEscape(addr), &out)
	return out, err
}

func (c *EscrowClient) BattleMeta(ctx context.Context, battleID string) (BattleMeta, error) {
	var out BattleMeta
	err := c.http.getJSON(ctx, battlePath(battleID), &out)
	return out, err
}
