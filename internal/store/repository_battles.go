package store

func (s *Store) InsertBattle(b BattleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.battles {
		if s.battles[i].ID == b.ID {
			return ErrDuplicate
		}
	}
	s.battles = append(s.battles, b.clone())
	if over := len(s.battles) - s.limits.MaxBattles; over > 0 {
		for _, evicted := range s.battles[:over] {
			s.dropBetsLocked(evicted.ID)
		}
		s.battles = append([]BattleRecord(nil), s.battles[over:]...)
	}
	return nil
}

func (s *Store) GetBattle(id string) (BattleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.battles {
		if s.battles[i].ID == id {
			return s.battles[i].clone(), nil
		}
	}
	return BattleRecord{}, ErrNotFound
}

// ListBattles returns up to limit battles, newest first.
func (s *Store) ListBattles(limit int) []BattleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.battles) {
		limit = len(s.battles)
	}
	out := make([]BattleRecord, 0, limit)
	for i := len(s.battles) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.battles[i].clone())
	}
	return out
}

// UpdateBattle applies fn to a copy of the battle and commits it only if the
// status did not move backwards and a winner is set only on completion.
func (s *Store) UpdateBattle(id string, fn func(*BattleRecord) error) (BattleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.battles {
		if s.battles[i].ID != id {
			continue
		}
		next := s.battles[i].clone()
		if err := fn(&next); err != nil {
			return BattleRecord{}, err
		}
		if next.Status.rank() < s.battles[i].Status.rank() {
			return BattleRecord{}, ErrStatusRegression
		}
		if next.Winner != "" && next.Status != BattleComplete {
			return BattleRecord{}, ErrWinnerNotFinal
		}
		next.ID = id
		s.battles[i] = next
		return next.clone(), nil
	}
	return BattleRecord{}, ErrNotFound
}
