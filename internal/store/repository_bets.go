package store

import (
	"sort"
	"strings"
)

func (s *Store) InsertBet(b PaperBet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bets {
		if s.bets[i].ID == b.ID {
			return ErrDuplicate
		}
	}
	s.bets = append(s.bets, b)
	return nil
}

// FindBet looks up a bet by battle and nickname, ignoring case.
func (s *Store) FindBet(battleID, nickname string) (PaperBet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bets {
		if b.BattleID == battleID && strings.EqualFold(b.Nickname, nickname) {
			return b, true
		}
	}
	return PaperBet{}, false
}

func (s *Store) BetsByBattle(battleID string) []PaperBet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.betsByBattleLocked(battleID)
}

// ResolveBets stores the output of settle for battleID exactly once. Later
// calls return the stored results with fresh=false and never call settle.
// settle runs under the store lock and must not call back into the Store.
func (s *Store) ResolveBets(battleID string, settle func([]PaperBet) []PaperBetResult) (results []PaperBetResult, fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.results[battleID]; ok {
		return append([]PaperBetResult(nil), existing...), false
	}
	out := settle(s.betsByBattleLocked(battleID))
	s.results[battleID] = append([]PaperBetResult(nil), out...)
	return out, true
}

func (s *Store) Results(battleID string) ([]PaperBetResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[battleID]
	if !ok {
		return nil, false
	}
	return append([]PaperBetResult(nil), res...), true
}

func (s *Store) UpdateNicknameStats(nickname string, fn func(*NicknameStats)) NicknameStats {
	key := strings.ToLower(nickname)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[key]
	if !ok {
		st = NicknameStats{Nickname: nickname}
	}
	fn(&st)
	s.stats[key] = st
	return st
}

func (s *Store) GetNicknameStats(nickname string) (NicknameStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stats[strings.ToLower(nickname)]
	return st, ok
}

// ListNicknameStats returns all aggregates ordered by cumulative PnL, best first.
func (s *Store) ListNicknameStats() []NicknameStats {
	s.mu.RLock()
	out := make([]NicknameStats, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, st)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalPnL.Cmp(out[j].TotalPnL); c != 0 {
			return c > 0
		}
		return out[i].Nickname < out[j].Nickname
	})
	return out
}

func (s *Store) betsByBattleLocked(battleID string) []PaperBet {
	out := make([]PaperBet, 0)
	for _, b := range s.bets {
		if b.BattleID == battleID {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) dropBetsLocked(battleID string) {
	kept := s.bets[:0]
	for _, b := range s.bets {
		if b.BattleID != battleID {
			kept = append(kept, b)
		}
	}
	s.bets = kept
	delete(s.results, battleID)
}
