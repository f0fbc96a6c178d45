package store

import "strings"

func (s *Store) InsertReceipt(r Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.receipts {
		if s.receipts[i].JobID == r.JobID {
			return ErrDuplicate
		}
	}
	s.receipts = append(s.receipts, r.clone())
	if over := len(s.receipts) - s.limits.MaxReceipts; over > 0 {
		s.receipts = append([]Receipt(nil), s.receipts[over:]...)
	}
	return nil
}

func (s *Store) GetReceipt(jobID string) (Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.receipts {
		if s.receipts[i].JobID == jobID {
			return s.receipts[i].clone(), nil
		}
	}
	return Receipt{}, ErrNotFound
}

// ReceiptsByAgent returns the agent's receipts oldest first.
func (s *Store) ReceiptsByAgent(agentID string) []Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Receipt, 0)
	for i := range s.receipts {
		if s.receipts[i].AgentID == agentID {
			out = append(out, s.receipts[i].clone())
		}
	}
	return out
}

// RecentReceiptsByAgent returns at most n of the agent's newest receipts,
// oldest first.
func (s *Store) RecentReceiptsByAgent(agentID string, n int) []Receipt {
	all := s.ReceiptsByAgent(agentID)
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

func (s *Store) UpdateReceipt(jobID string, fn func(*Receipt)) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.receipts {
		if s.receipts[i].JobID == jobID {
			fn(&s.receipts[i])
			return s.receipts[i].clone(), nil
		}
	}
	return Receipt{}, ErrNotFound
}

// FindReceiptByTxHash matches case-insensitively and returns the first hit.
func (s *Store) FindReceiptByTxHash(txHash string) (Receipt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexByTxHashLocked(txHash); i >= 0 {
		return s.receipts[i].clone(), true
	}
	return Receipt{}, false
}

func (s *Store) UpdateReceiptByTxHash(txHash string, fn func(*Receipt)) (Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByTxHashLocked(txHash)
	if i < 0 {
		return Receipt{}, false
	}
	fn(&s.receipts[i])
	return s.receipts[i].clone(), true
}

func (s *Store) indexByTxHashLocked(txHash string) int {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return -1
	}
	for i := range s.receipts {
		oc := s.receipts[i].OnChain
		if oc != nil && strings.EqualFold(oc.TxHash, txHash) {
			return i
		}
	}
	return -1
}
