// Package reconcile ingests signed confirmation events from the chain stream
// and patches the matching receipts and battle scorecards.
package reconcile

import (
	"errors"
	"time"

	"agent-arena/internal/events"
	"agent-arena/internal/store"

	"github.com/rs/zerolog/log"
)

type Service struct {
	store  *store.Store
	events *events.Buffer
	now    func() time.Time
}

func NewService(st *store.Store, buf *events.Buffer) *Service {
	return &Service{store: st, events: buf, now: time.Now}
}

type IngestResult struct {
	Received   int `json:"received"`
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	Matched    int `json:"matched"`
}

// Ingest normalizes, deduplicates, stores and broadcasts each record, then
// reconciles the ones that match a receipt. Duplicates are reconciled too.
func (s *Service) Ingest(recs []Record) IngestResult {
	res := IngestResult{Received: len(recs)}
	for _, r := range recs {
		ev, err := Normalize(r, s.now())
		if err != nil {
			res.Invalid++
			continue
		}
		if rec, ok := s.store.FindReceiptByTxHash(ev.TxHash); ok {
			ev.MatchedJobID = rec.JobID
		}
		if err := s.store.InsertStreamEvent(ev); err != nil {
			if !errors.Is(err, store.ErrDuplicate) {
				log.Warn().Err(err).Str("event_id", ev.ID).Msg("stream event not stored")
				continue
			}
			// A redelivery is not stored or broadcast again, but it still
			// reconciles a receipt that did not exist on first delivery.
			res.Duplicates++
		} else {
			res.Stored++
			s.events.Append(events.StreamEventIngested{Event: ev})
		}
		if ev.MatchedJobID == "" {
			continue
		}
		if _, ok := s.Apply(ev); ok {
			res.Matched++
		}
	}
	log.Debug().
		Int("received", res.Received).
		Int("stored", res.Stored).
		Int("duplicates", res.Duplicates).
		Int("matched", res.Matched).
		Msg("stream batch ingested")
	return res
}

// Apply overwrites the on-chain evidence of the first receipt whose tx hash
// matches ev and maps the EVM status onto the job status. It reports false
// when no receipt matches. Applying the same event twice writes the same
// values again.
func (s *Service) Apply(ev store.StreamEvent) (store.Receipt, bool) {
	verifiedAt := s.now().UTC()
	rec, ok := s.store.UpdateReceiptByTxHash(ev.TxHash, func(r *store.Receipt) {
		if r.OnChain == nil {
			r.OnChain = &store.OnChainEvidence{TxHash: ev.TxHash}
		}
		r.OnChain.GasUsed = ev.GasUsed
		r.OnChain.EVMStatus = ev.Status
		r.OnChain.VerifiedAt = &verifiedAt
		r.OnChain.VerificationSource = "stream-" + ev.Source
		if ev.Status == "success" {
			r.Outcome.Status = store.JobFulfilled
		} else {
			r.Outcome.Status = store.JobFailed
		}
	})
	if !ok {
		return store.Receipt{}, false
	}
	log.Info().
		Str("job_id", rec.JobID).
		Str("tx_hash", ev.TxHash).
		Str("evm_status", ev.Status).
		Str("status", string(rec.Outcome.Status)).
		Msg("receipt reconciled")

	if rec.BattleID != "" {
		s.markVerified(rec.BattleID, rec.AgentID)
	}
	return rec, true
}

func (s *Service) markVerified(battleID, agentID string) {
	var card store.Scorecard
	_, err := s.store.UpdateBattle(battleID, func(b *store.BattleRecord) error {
		c := b.Card(agentID)
		if c == nil {
			return store.ErrNotFound
		}
		c.Verified = true
		card = *c
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("battle_id", battleID).Str("agent_id", agentID).Msg("scorecard not verified")
		return
	}
	s.events.Append(events.ParticipationUpdate{BattleID: battleID, Scorecard: card})
}
