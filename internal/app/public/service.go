// Package public serves the read side: agent scores, receipts, battles,
// pools, bettor standings and escrow state.
package public

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agent-arena/internal/agents"
	"agent-arena/internal/chain"
	"agent-arena/internal/prediction"
	"agent-arena/internal/score"
	"agent-arena/internal/store"
)

// EscrowReader is the read half of the on-chain prediction pool.
type EscrowReader interface {
	PotTotals(ctx context.Context, battleID string) (chain.PotTotals, error)
	BattleMeta(ctx context.Context, battleID string) (chain.BattleMeta, error)
	UserPrediction(ctx context.Context, battleID, address string) (chain.UserPrediction, error)
}

type Service struct {
	store  *store.Store
	agents *agents.Registry
	bets   *prediction.Service
	escrow EscrowReader
}

const (
	leaderboardMaxRows = 100
	receiptsMaxPage    = 500
)

func NewService(st *store.Store, reg *agents.Registry, bets *prediction.Service, escrow EscrowReader) *Service {
	return &Service{store: st, agents: reg, bets: bets, escrow: escrow}
}

func (s *Service) Agents() *AgentsResponse {
	out := make([]AgentItem, 0, len(s.agents.All()))
	for _, p := range s.agents.All() {
		out = append(out, AgentItem{Profile: p, Score: score.Compute(s.store.ReceiptsByAgent(p.ID))})
	}
	return &AgentsResponse{Items: out}
}

func (s *Service) Agent(agentID string) (*AgentItem, error) {
	p, err := s.agents.Lookup(agentID)
	if err != nil {
		return nil, ErrAgentNotFound
	}
	return &AgentItem{Profile: p, Score: score.Compute(s.store.ReceiptsByAgent(p.ID))}, nil
}

// AgentReceipts pages through an agent's receipts, newest first.
func (s *Service) AgentReceipts(agentID string, limit, offset int) (*ReceiptsResponse, error) {
	if !s.agents.Has(agentID) {
		return nil, ErrAgentNotFound
	}
	limit, offset = clampReceiptPage(limit, offset)
	all := s.store.ReceiptsByAgent(agentID)
	total := len(all)
	items := make([]store.Receipt, 0, min(limit, total))
	for i := total - 1 - offset; i >= 0 && len(items) < limit; i-- {
		items = append(items, all[i])
	}
	return &ReceiptsResponse{AgentID: agentID, Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) Receipt(jobID string) (*store.Receipt, error) {
	rec, err := s.store.GetReceipt(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *Service) Battles(limit int) *BattlesResponse {
	return &BattlesResponse{Items: s.store.ListBattles(limit), Limit: limit}
}

func (s *Service) Battle(battleID string) (*BattleResponse, error) {
	b, err := s.store.GetBattle(battleID)
	if err != nil {
		return nil, ErrBattleNotFound
	}
	resp := &BattleResponse{Battle: b, Pool: s.bets.Pool(battleID)}
	if res, ok := s.bets.Results(battleID); ok {
		resp.Results = res
	}
	return resp, nil
}

func (s *Service) StreamEvents(limit int) *StreamEventsResponse {
	return &StreamEventsResponse{Items: s.store.ListStreamEvents(limit), Limit: limit}
}

func (s *Service) Leaderboard(limit, offset int) (*LeaderboardResponse, error) {
	limit, ok := clampLeaderboardPage(limit, offset)
	if !ok {
		return nil, ErrInvalidRequest
	}
	return &LeaderboardResponse{Items: s.bets.Leaderboard(limit, offset), Limit: limit, Offset: offset}, nil
}

func (s *Service) Bettor(nickname string) (*store.NicknameStats, error) {
	if strings.TrimSpace(nickname) == "" {
		return nil, ErrInvalidRequest
	}
	st, ok := s.bets.Stats(nickname)
	if !ok {
		return nil, ErrBettorNotFound
	}
	return &st, nil
}

// Escrow reads the on-chain pool for a battle. address is optional.
func (s *Service) Escrow(ctx context.Context, battleID, address string) (*EscrowResponse, error) {
	if s.escrow == nil {
		return nil, ErrEscrowUnavailable
	}
	if _, err := s.store.GetBattle(battleID); err != nil {
		return nil, ErrBattleNotFound
	}
	meta, err := s.escrow.BattleMeta(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("escrow battle meta: %w", err)
	}
	pots, err := s.escrow.PotTotals(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("escrow pot totals: %w", err)
	}
	resp := &EscrowResponse{
		BattleID:  battleID,
		OnchainID: chain.OnchainBattleID(battleID).String(),
		Meta:      meta,
		Pots:      pots,
	}
	if strings.TrimSpace(address) != "" {
		up, err := s.escrow.UserPrediction(ctx, battleID, address)
		if err != nil {
			if errors.Is(err, chain.ErrInvalidAddress) {
				return nil, ErrInvalidRequest
			}
			return nil, fmt.Errorf("escrow user prediction: %w", err)
		}
		resp.Prediction = &up
	}
	return resp, nil
}

func clampReceiptPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > receiptsMaxPage {
		limit = receiptsMaxPage
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func clampLeaderboardPage(limit, offset int) (int, bool) {
	if offset >= leaderboardMaxRows {
		return 0, false
	}
	if limit <= 0 {
		limit = 50
	}
	remaining := leaderboardMaxRows - offset
	if limit > remaining {
		limit = remaining
	}
	return limit, true
}
