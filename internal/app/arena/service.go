// Package arena is the command side used by the HTTP, MCP and websocket
// surfaces: jobs, battles, paper bets, feedback and stream ingestion.
package arena

import (
	"context"
	"errors"
	"strings"

	"agent-arena/internal/battle"
	"agent-arena/internal/config"
	"agent-arena/internal/pipeline"
	"agent-arena/internal/prediction"
	"agent-arena/internal/reconcile"
	"agent-arena/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Service struct {
	store   *store.Store
	exec    *pipeline.Executor
	battles *battle.Orchestrator
	bets    *prediction.Service
	stream  *reconcile.Service
	cfg     config.ServerConfig
}

func NewService(st *store.Store, exec *pipeline.Executor, battles *battle.Orchestrator, bets *prediction.Service, stream *reconcile.Service, cfg config.ServerConfig) *Service {
	return &Service{store: st, exec: exec, battles: battles, bets: bets, stream: stream, cfg: cfg}
}

// SubmitJob queues a single job and returns before it runs.
func (s *Service) SubmitJob(ctx context.Context, in SubmitJobInput) (*SubmitJobResponse, error) {
	if strings.TrimSpace(in.AgentID) == "" {
		return nil, ErrInvalidRequest
	}
	job, err := s.exec.Submit(ctx, pipeline.Job{
		AgentID:     strings.TrimSpace(in.AgentID),
		Constraints: in.Constraints,
		Swap:        in.Swap,
	})
	if err != nil {
		return nil, err
	}
	return &SubmitJobResponse{
		JobID:       job.ID,
		AgentID:     job.AgentID,
		Status:      "queued",
		Mode:        string(s.exec.Mode()),
		SubmittedAt: job.SubmittedAt,
		Constraints: job.Constraints,
	}, nil
}

func (s *Service) OpenBattle(ctx context.Context, in BattleInput) (*store.BattleRecord, error) {
	req := battle.Request{
		Type:   store.BattleType(strings.ToLower(strings.TrimSpace(in.Type))),
		Agents: in.Agents,
		Swap:   in.Swap,
	}
	var (
		b   store.BattleRecord
		err error
	)
	if in.Start {
		b, err = s.battles.Launch(ctx, req)
	} else {
		b, err = s.battles.Open(req)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) StartBattle(ctx context.Context, battleID string) (*store.BattleRecord, error) {
	b, err := s.battles.Start(ctx, battleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBattleNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *Service) PlaceBet(in BetInput) (*store.PaperBet, error) {
	stake, err := decimal.NewFromString(strings.TrimSpace(in.Stake))
	if err != nil {
		return nil, prediction.ErrInvalidStake
	}
	bet, err := s.bets.PlaceBet(in.BattleID, in.Nickname, in.AgentID, stake)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// SubmitFeedback attaches a 1-5 rating to a receipt. A later rating replaces
// an earlier one.
func (s *Service) SubmitFeedback(jobID string, rating int) (*FeedbackResponse, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	_, err := s.store.UpdateReceipt(jobID, func(r *store.Receipt) {
		v := rating
		r.Feedback = &v
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return &FeedbackResponse{JobID: jobID, Rating: rating}, nil
}

// IngestStream authenticates a webhook delivery and reconciles its records.
// A stream id that differs from the configured one is logged and accepted.
func (s *Service) IngestStream(body []byte, signature, streamID string) (*reconcile.IngestResult, error) {
	if s.cfg.StreamWebhookSecret == "" {
		return nil, ErrWebhookDisabled
	}
	if !reconcile.VerifySignature([]byte(s.cfg.StreamWebhookSecret), body, signature) {
		return nil, ErrInvalidSignature
	}
	if streamID != "" && s.cfg.StreamID != "" && streamID != s.cfg.StreamID {
		log.Warn().Str("got", streamID).Str("want", s.cfg.StreamID).Msg("stream id mismatch")
	}
	recs, err := reconcile.DecodeRecords(body)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	res := s.stream.Ingest(recs)
	return &res, nil
}
