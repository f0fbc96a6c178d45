// Package prediction handles zero-risk paper bets on battle outcomes.
package prediction

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"agent-arena/internal/events"
	"agent-arena/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const MaxNicknameLen = 32

var (
	ErrBattleNotFound  = errors.New("battle_not_found")
	ErrBattleClosed    = errors.New("battle_closed")
	ErrNotParticipant  = errors.New("agent_not_in_battle")
	ErrInvalidStake    = errors.New("invalid_stake")
	ErrInvalidNickname = errors.New("invalid_nickname")
	ErrNicknameTaken   = errors.New("nickname_taken")
	ErrNoWinner        = errors.New("no_winner")
)

type Service struct {
	store  *store.Store
	events *events.Buffer
	now    func() time.Time
}

func NewService(st *store.Store, buf *events.Buffer) *Service {
	return &Service{store: st, events: buf, now: time.Now}
}

type Pool struct {
	BattleID string                     `json:"battle_id"`
	Total    decimal.Decimal            `json:"total_pool"`
	ByAgent  map[string]decimal.Decimal `json:"pool_by_agent"`
	Bettors  int                        `json:"bettors"`
	Resolved bool                       `json:"resolved"`
}

// PlaceBet records a paper bet on an open battle. The nickname uniqueness
// check and the insert are separate store calls, so two concurrent bets with
// the same nickname can both land.
func (s *Service) PlaceBet(battleID, nickname, agentID string, stake decimal.Decimal) (store.PaperBet, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || utf8.RuneCountInString(nickname) > MaxNicknameLen {
		return store.PaperBet{}, ErrInvalidNickname
	}
	if !stake.IsPositive() {
		return store.PaperBet{}, ErrInvalidStake
	}
	b, err := s.store.GetBattle(battleID)
	if err != nil {
		return store.PaperBet{}, ErrBattleNotFound
	}
	if b.Status == store.BattleComplete {
		return store.PaperBet{}, ErrBattleClosed
	}
	if b.Card(agentID) == nil {
		return store.PaperBet{}, ErrNotParticipant
	}
	if _, taken := s.store.FindBet(battleID, nickname); taken {
		return store.PaperBet{}, ErrNicknameTaken
	}

	bet := store.PaperBet{
		ID:       store.NewID(store.PrefixBet),
		BattleID: battleID,
		Nickname: nickname,
		AgentID:  agentID,
		Stake:    stake,
		PlacedAt: s.now(),
	}
	if err := s.store.InsertBet(bet); err != nil {
		return store.PaperBet{}, err
	}
	s.events.Append(events.PaperBetPlaced{Bet: bet})
	pool := s.Pool(battleID)
	s.events.Append(events.PredictionUpdate{
		BattleID:    battleID,
		TotalPool:   pool.Total,
		PoolByAgent: pool.ByAgent,
		Bettors:     pool.Bettors,
	})
	return bet, nil
}

func (s *Service) Pool(battleID string) Pool {
	bets := s.store.BetsByBattle(battleID)
	total, byAgent := Pools(bets)
	_, resolved := s.store.Results(battleID)
	return Pool{BattleID: battleID, Total: total, ByAgent: byAgent, Bettors: len(bets), Resolved: resolved}
}

// Resolve settles every bet on the battle against winner. Only the first
// call computes results and updates nickname stats; later calls return the
// stored results untouched.
func (s *Service) Resolve(battleID, winner string) ([]store.PaperBetResult, error) {
	if winner == "" {
		return nil, ErrNoWinner
	}
	results, fresh := s.store.ResolveBets(battleID, func(bets []store.PaperBet) []store.PaperBetResult {
		return Settle(bets, winner)
	})
	if !fresh {
		return results, nil
	}

	total, winnerPool := decimal.Zero, decimal.Zero
	for _, r := range results {
		total = total.Add(r.Stake)
		if r.Won {
			winnerPool = winnerPool.Add(r.Stake)
		}
		s.store.UpdateNicknameStats(r.Nickname, func(st *store.NicknameStats) {
			applyResult(st, r)
		})
		s.events.Append(events.PaperBetResolved{Result: r})
	}
	s.events.Append(events.PredictionResolved{
		BattleID:   battleID,
		Winner:     winner,
		TotalPool:  total,
		WinnerPool: winnerPool,
		LoserPool:  total.Sub(winnerPool),
		Results:    len(results),
	})
	log.Info().
		Str("battle_id", battleID).
		Str("winner", winner).
		Int("bets", len(results)).
		Str("total_pool", total.String()).
		Msg("paper bets resolved")
	return results, nil
}

func applyResult(st *store.NicknameStats, r store.PaperBetResult) {
	st.Bets++
	st.TotalPnL = st.TotalPnL.Add(r.PnL)
	st.TotalStaked = st.TotalStaked.Add(r.Stake)
	if r.Won {
		st.Wins++
		if r.PnL.GreaterThan(st.BestWin) {
			st.BestWin = r.PnL
		}
		if st.Streak > 0 {
			st.Streak++
		} else {
			st.Streak = 1
		}
		return
	}
	if r.PnL.LessThan(st.WorstLoss) {
		st.WorstLoss = r.PnL
	}
	if st.Streak < 0 {
		st.Streak--
	} else {
		st.Streak = -1
	}
}

func (s *Service) Results(battleID string) ([]store.PaperBetResult, bool) {
	return s.store.Results(battleID)
}

func (s *Service) Stats(nickname string) (store.NicknameStats, bool) {
	return s.store.GetNicknameStats(strings.TrimSpace(nickname))
}

// Leaderboard pages through bettors ordered by cumulative PnL.
func (s *Service) Leaderboard(limit, offset int) []store.NicknameStats {
	all := s.store.ListNicknameStats()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []store.NicknameStats{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
