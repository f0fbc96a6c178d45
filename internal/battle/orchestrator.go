// Package battle runs head-to-head battles: one pipeline job per agent in
// parallel, a winner rule per battle type, and detached settlement.
package battle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agent-arena/internal/agents"
	"agent-arena/internal/events"
	"agent-arena/internal/pipeline"
	"agent-arena/internal/store"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Runner is the slice of the pipeline executor a battle needs.
type Runner interface {
	Queue(job pipeline.Job) (pipeline.Job, error)
	Run(ctx context.Context, job pipeline.Job) (store.Receipt, error)
}

// Resolver settles paper bets once a winner is known.
type Resolver interface {
	Resolve(battleID, winner string) ([]store.PaperBetResult, error)
}

// Settler forwards the winner to the on-chain escrow pool.
type Settler interface {
	RecordWinner(ctx context.Context, battleID string, winnerIndex int) (string, error)
}

type Request struct {
	Type   store.BattleType
	Agents []string
	Swap   *store.SwapParams
}

type Config struct {
	Store    *store.Store
	Events   *events.Buffer
	Agents   *agents.Registry
	Runner   Runner
	Resolver Resolver
	Settler  Settler

	SettleTimeout time.Duration
	Now           func() time.Time
}

type Orchestrator struct {
	store    *store.Store
	events   *events.Buffer
	agents   *agents.Registry
	runner   Runner
	resolver Resolver
	settler  Settler

	settleTimeout time.Duration
	now           func() time.Time

	wg sync.WaitGroup
}

func New(cfg Config) *Orchestrator {
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = 2 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{
		store:         cfg.Store,
		events:        cfg.Events,
		agents:        cfg.Agents,
		runner:        cfg.Runner,
		resolver:      cfg.Resolver,
		settler:       cfg.Settler,
		settleTimeout: cfg.SettleTimeout,
		now:           cfg.Now,
	}
}

func (o *Orchestrator) validate(req Request) error {
	if !req.Type.Valid() {
		return ErrInvalidType
	}
	if len(req.Agents) < 2 || len(req.Agents) > 3 {
		return ErrAgentCount
	}
	seen := map[string]bool{}
	for _, id := range req.Agents {
		if !o.agents.Has(id) {
			return fmt.Errorf("%w: %s", ErrUnknownAgent, id)
		}
		if seen[id] {
			return ErrDuplicateAgent
		}
		seen[id] = true
	}
	return nil
}

func (o *Orchestrator) create(req Request, status store.BattleStatus) (store.BattleRecord, error) {
	if err := o.validate(req); err != nil {
		return store.BattleRecord{}, err
	}
	b := store.BattleRecord{
		ID:         store.NewID(store.PrefixBattle),
		CreatedAt:  o.now(),
		Type:       req.Type,
		Agents:     append([]string(nil), req.Agents...),
		Swap:       req.Swap,
		Scorecards: make([]store.Scorecard, len(req.Agents)),
		Status:     status,
	}
	for i, id := range req.Agents {
		b.Scorecards[i] = store.Scorecard{AgentID: id, Status: store.CardPending}
	}
	if err := o.store.InsertBattle(b); err != nil {
		return store.BattleRecord{}, err
	}
	o.events.Append(events.BattleOpen{Battle: b})
	log.Info().Str("battle_id", b.ID).Str("type", string(b.Type)).Strs("agents", b.Agents).Str("status", string(status)).Msg("battle opened")
	return b, nil
}

// Open creates a battle in the lobby so spectators can bet before it starts.
func (o *Orchestrator) Open(req Request) (store.BattleRecord, error) {
	return o.create(req, store.BattleLobby)
}

// Start moves a lobby battle to running and runs it in the background.
func (o *Orchestrator) Start(ctx context.Context, battleID string) (store.BattleRecord, error) {
	b, err := o.store.UpdateBattle(battleID, func(b *store.BattleRecord) error {
		if b.Status != store.BattleLobby {
			return ErrNotLobby
		}
		b.Status = store.BattleRunning
		return nil
	})
	if err != nil {
		return store.BattleRecord{}, err
	}
	o.spawn(ctx, b)
	return b, nil
}

// Launch creates a battle directly in running and runs it in the background.
func (o *Orchestrator) Launch(ctx context.Context, req Request) (store.BattleRecord, error) {
	b, err := o.create(req, store.BattleRunning)
	if err != nil {
		return store.BattleRecord{}, err
	}
	o.spawn(ctx, b)
	return b, nil
}

func (o *Orchestrator) spawn(ctx context.Context, b store.BattleRecord) {
	ctx = context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if _, err := o.Run(ctx, b); err != nil {
			log.Error().Err(err).Str("battle_id", b.ID).Msg("battle run failed")
		}
	}()
}

// Run executes every participant, waits for all of them and completes the
// battle. A failing participant never cancels its siblings.
func (o *Orchestrator) Run(ctx context.Context, b store.BattleRecord) (store.BattleRecord, error) {
	var g errgroup.Group
	for _, agentID := range b.Agents {
		g.Go(func() error {
			o.runAgent(ctx, b, agentID)
			return nil
		})
	}
	_ = g.Wait()
	return o.complete(b.ID)
}

func (o *Orchestrator) runAgent(ctx context.Context, b store.BattleRecord, agentID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("battle_id", b.ID).Str("agent_id", agentID).Interface("panic", r).Msg("battle participant panicked")
			o.updateCard(b.ID, agentID, func(c *store.Scorecard) { c.Status = store.CardFailed })
		}
	}()

	job, err := o.runner.Queue(pipeline.Job{
		AgentID:  agentID,
		BattleID: b.ID,
		Swap:     b.Swap,
	})
	if err != nil {
		log.Warn().Err(err).Str("battle_id", b.ID).Str("agent_id", agentID).Msg("battle job rejected")
		o.updateCard(b.ID, agentID, func(c *store.Scorecard) { c.Status = store.CardFailed })
		return
	}
	o.updateCard(b.ID, agentID, func(c *store.Scorecard) {
		c.JobID = job.ID
		c.Status = store.CardRunning
	})

	rec, err := o.runner.Run(ctx, job)
	if err != nil {
		log.Warn().Err(err).Str("battle_id", b.ID).Str("agent_id", agentID).Str("job_id", job.ID).Msg("battle job failed")
		o.updateCard(b.ID, agentID, func(c *store.Scorecard) { c.Status = store.CardFailed })
		return
	}
	o.updateCard(b.ID, agentID, func(c *store.Scorecard) {
		c.Status = store.CardFailed
		if rec.Outcome.Status == store.JobFulfilled {
			c.Status = store.CardFulfilled
		}
		latency, gas, slip := rec.Outcome.LatencyMS, rec.Outcome.GasUsedUSD, rec.Outcome.SlippageBps
		c.LatencyMS = &latency
		c.GasUsedUSD = &gas
		c.SlippageBps = &slip
		if rec.Quote != nil {
			c.QuotedOut = rec.Quote.BuyAmount
		}
	})
}

func (o *Orchestrator) updateCard(battleID, agentID string, fn func(*store.Scorecard)) {
	var card store.Scorecard
	_, err := o.store.UpdateBattle(battleID, func(b *store.BattleRecord) error {
		c := b.Card(agentID)
		if c == nil {
			return store.ErrNotFound
		}
		fn(c)
		card = *c
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("battle_id", battleID).Str("agent_id", agentID).Msg("scorecard update dropped")
		return
	}
	o.events.Append(events.ParticipationUpdate{BattleID: battleID, Scorecard: card})
}

func (o *Orchestrator) complete(battleID string) (store.BattleRecord, error) {
	current, err := o.store.GetBattle(battleID)
	if err != nil {
		return store.BattleRecord{}, fmt.Errorf("load battle: %w", err)
	}
	winner := DetermineWinner(current.Type, current.Scorecards, TrailingReliability(o.store))
	done, err := o.store.UpdateBattle(battleID, func(b *store.BattleRecord) error {
		b.Status = store.BattleComplete
		b.Winner = winner
		return nil
	})
	if err != nil {
		return store.BattleRecord{}, fmt.Errorf("complete battle: %w", err)
	}
	o.events.Append(events.BattleComplete{
		BattleID:   done.ID,
		Type:       done.Type,
		Winner:     done.Winner,
		Scorecards: done.Scorecards,
	})
	log.Info().Str("battle_id", done.ID).Str("winner", done.Winner).Msg("battle complete")

	if done.Winner != "" {
		o.wg.Add(1)
		go o.settle(done.ID, done.Winner)
	}
	return done, nil
}

// settle resolves paper bets and records the winner in escrow. Failures are
// logged and never touch the completed battle beyond the settlement tx.
func (o *Orchestrator) settle(battleID, winner string) {
	defer o.wg.Done()
	if o.resolver != nil {
		if _, err := o.resolver.Resolve(battleID, winner); err != nil {
			log.Warn().Err(err).Str("battle_id", battleID).Msg("paper bet resolution failed")
		}
	}
	if o.settler == nil {
		return
	}
	idx, err := o.agents.Index(winner)
	if err != nil {
		log.Warn().Err(err).Str("battle_id", battleID).Str("winner", winner).Msg("winner has no escrow index")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.settleTimeout)
	defer cancel()
	txHash, err := o.settler.RecordWinner(ctx, battleID, idx)
	if err != nil {
		log.Warn().Err(err).Str("battle_id", battleID).Msg("escrow record-winner failed")
		return
	}
	if _, err := o.store.UpdateBattle(battleID, func(b *store.BattleRecord) error {
		b.SettlementTx = txHash
		return nil
	}); err != nil {
		log.Warn().Err(err).Str("battle_id", battleID).Msg("settlement tx not recorded")
		return
	}
	log.Info().Str("battle_id", battleID).Str("tx_hash", txHash).Msg("battle settled in escrow")
}

// Drain blocks until every running battle and settlement has finished.
func (o *Orchestrator) Drain() {
	o.wg.Wait()
}
