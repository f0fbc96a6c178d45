package store

import (
	"errors"
	"sync"
)

var (
	ErrNotFound         = errors.New("not_found")
	ErrDuplicate        = errors.New("duplicate")
	ErrStatusRegression = errors.New("battle_status_regression")
	ErrWinnerNotFinal   = errors.New("winner_before_complete")
)

const (
	defaultMaxReceipts     = 5000
	defaultMaxBattles      = 200
	defaultMaxStreamEvents = 500
)

type Limits struct {
	MaxReceipts     int
	MaxBattles      int
	MaxStreamEvents int
}

// Store holds all process-lifetime state. Every method is atomic on its own;
// callers composing several calls get no isolation between them.
type Store struct {
	mu     sync.RWMutex
	limits Limits

	receipts     []Receipt
	battles      []BattleRecord
	streamEvents []StreamEvent
	streamIDs    map[string]struct{}

	bets    []PaperBet
	results map[string][]PaperBetResult
	stats   map[string]NicknameStats
}

func New(limits Limits) *Store {
	if limits.MaxReceipts <= 0 {
		limits.MaxReceipts = defaultMaxReceipts
	}
	if limits.MaxBattles <= 0 {
		limits.MaxBattles = defaultMaxBattles
	}
	if limits.MaxStreamEvents <= 0 {
		limits.MaxStreamEvents = defaultMaxStreamEvents
	}
	return &Store{
		limits:    limits,
		streamIDs: map[string]struct{}{},
		results:   map[string][]PaperBetResult{},
		stats:     map[string]NicknameStats{},
	}
}

func (s *Store) Limits() Limits {
	return s.limits
}
