// Package pipeline runs a single job for a single agent through its stages
// and produces the job's receipt.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"agent-arena/internal/agents"
	"agent-arena/internal/chain"
	"agent-arena/internal/events"
	"agent-arena/internal/store"

	"github.com/rs/zerolog/log"
)

type Deps struct {
	Store  *store.Store
	Events *events.Buffer
	Agents *agents.Registry

	// Collaborators may be nil in simulate mode.
	Quotes      QuoteProvider
	Builder     TxBuilder
	Broadcaster Broadcaster

	Mode            Mode
	ChainID         int64
	SimulateLatency bool
	Rand            *rand.Rand
	Now             func() time.Time
}

type Executor struct {
	store       *store.Store
	events      *events.Buffer
	agents      *agents.Registry
	quotes      QuoteProvider
	builder     TxBuilder
	broadcaster Broadcaster

	mode            Mode
	chainID         int64
	simulateLatency bool
	rnd             *lockedRand
	now             func() time.Time
}

func NewExecutor(d Deps) *Executor {
	if d.Mode == "" {
		d.Mode = ModeSimulate
	}
	if d.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		d.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Executor{
		store:           d.Store,
		events:          d.Events,
		agents:          d.Agents,
		quotes:          d.Quotes,
		builder:         d.Builder,
		broadcaster:     d.Broadcaster,
		mode:            d.Mode,
		chainID:         d.ChainID,
		simulateLatency: d.SimulateLatency,
		rnd:             &lockedRand{rnd: d.Rand},
		now:             d.Now,
	}
}

func (e *Executor) Mode() Mode {
	return e.mode
}

// Queue validates a job, stamps its id and submission time and announces it.
func (e *Executor) Queue(job Job) (Job, error) {
	if !e.agents.Has(job.AgentID) {
		return Job{}, ErrUnknownAgentID
	}
	if s := job.Swap; s != nil && (s.SellToken == "" || s.BuyToken == "" || s.SellAmount == "") {
		return Job{}, fmt.Errorf("%w: swap needs sell_token, buy_token and sell_amount", ErrInvalidJob)
	}
	if job.ID == "" {
		job.ID = store.NewID(store.PrefixJob)
	}
	job.SubmittedAt = e.now()
	job.Constraints = withDefaults(job.Constraints)
	e.events.Append(events.JobQueued{
		JobID:    job.ID,
		AgentID:  job.AgentID,
		BattleID: job.BattleID,
		Mode:     string(e.mode),
		HasSwap:  job.Swap != nil,
	})
	return job, nil
}

// Submit queues the job and runs it on its own goroutine. It returns as soon
// as the job is queued; the outcome is only observable through events and
// the stored receipt.
func (e *Executor) Submit(ctx context.Context, job Job) (Job, error) {
	queued, err := e.Queue(job)
	if err != nil {
		return Job{}, err
	}
	go func() {
		if _, err := e.Run(context.WithoutCancel(ctx), queued); err != nil {
			log.Warn().Err(err).Str("job_id", queued.ID).Str("agent_id", queued.AgentID).Msg("job pipeline aborted")
		}
	}()
	return queued, nil
}

// Run executes a queued job. A simulated failure verdict is not an error: the
// receipt is returned with outcome.status=failed. An error means the pipeline
// aborted and no receipt was stored.
func (e *Executor) Run(ctx context.Context, job Job) (rec store.Receipt, err error) {
	profile, err := e.agents.Lookup(job.AgentID)
	if err != nil {
		return store.Receipt{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
			rec = store.Receipt{}
			log.Error().Str("job_id", job.ID).Interface("panic", r).Msg("job pipeline panicked")
			e.events.Append(events.JobFailed{JobID: job.ID, AgentID: job.AgentID, BattleID: job.BattleID, Error: "internal_error"})
		}
	}()

	e.events.Append(events.JobRunning{JobID: job.ID, AgentID: job.AgentID, BattleID: job.BattleID})

	meta := events.JobMeta{Swap: job.Swap}
	if job.Swap != nil && e.mode != ModeSimulate {
		if err := e.execute(ctx, job, profile, &meta); err != nil {
			return store.Receipt{}, e.fail(job, err, meta)
		}
	}

	outcome := e.rnd.simulate(profile)
	if e.simulateLatency {
		if err := sleepCtx(ctx, time.Duration(outcome.LatencyMS)*time.Millisecond); err != nil {
			e.events.Append(events.JobFailed{JobID: job.ID, AgentID: job.AgentID, BattleID: job.BattleID, Error: err.Error(), JobMeta: meta})
			return store.Receipt{}, err
		}
	}

	rec = e.buildReceipt(job, profile, outcome, meta)
	if err := e.store.InsertReceipt(rec); err != nil {
		e.events.Append(events.JobFailed{JobID: job.ID, AgentID: job.AgentID, BattleID: job.BattleID, Error: err.Error(), JobMeta: meta})
		return store.Receipt{}, fmt.Errorf("store receipt: %w", err)
	}

	if outcome.Status == store.JobFulfilled {
		e.events.Append(events.JobFulfilled{JobID: job.ID, AgentID: job.AgentID, BattleID: job.BattleID, Outcome: outcome, JobMeta: meta})
	} else {
		o := outcome
		e.events.Append(events.JobFailed{JobID: job.ID, AgentID: job.AgentID, BattleID: job.BattleID, Outcome: &o, JobMeta: meta})
	}
	log.Debug().
		Str("job_id", job.ID).
		Str("agent_id", job.AgentID).
		Str("status", string(outcome.Status)).
		Int64("latency_ms", outcome.LatencyMS).
		Msg("job finished")
	return rec, nil
}

// execute runs the quote, build and (in live mode) broadcast/confirm stages.
func (e *Executor) execute(ctx context.Context, job Job, profile agents.Profile, meta *events.JobMeta) error {
	if e.quotes == nil {
		return &StageError{Stage: StageQuote, Err: errNotConfigured}
	}
	slippage := job.Swap.SlippageBps
	if slippage <= 0 {
		slippage = profile.Policy.SlippageToleranceBps
	}
	q, err := e.quotes.Quote(ctx, chain.QuoteRequest{
		SellToken:   job.Swap.SellToken,
		BuyToken:    job.Swap.BuyToken,
		SellAmount:  job.Swap.SellAmount,
		ChainID:     e.chainID,
		SlippageBps: slippage,
	})
	if err != nil {
		return &StageError{Stage: StageQuote, Err: err}
	}
	meta.Quote = &q

	if e.builder == nil {
		return &StageError{Stage: StageTxBuild, Err: errNotConfigured}
	}
	tx, err := e.builder.Build(ctx, q.Raw)
	if err != nil {
		return &StageError{Stage: StageTxBuild, Err: err}
	}
	meta.Tx = &tx

	if e.mode != ModeLive {
		return nil
	}
	if e.broadcaster == nil {
		return &StageError{Stage: StageBroadcast, Err: errNotConfigured}
	}
	hash, err := e.broadcaster.Send(ctx, tx)
	if err != nil {
		return &StageError{Stage: StageBroadcast, Err: err}
	}
	meta.OnChain = &store.OnChainEvidence{TxHash: hash}
	e.events.Append(events.TxSubmitted{JobID: job.ID, AgentID: job.AgentID, TxHash: hash, ChainID: tx.ChainID})

	conf, err := e.broadcaster.AwaitConfirmation(ctx, hash)
	if err != nil {
		return &StageError{Stage: StageConfirm, Err: err}
	}
	meta.OnChain.BlockNumber = conf.BlockNumber
	meta.OnChain.GasUsed = conf.GasUsed
	meta.OnChain.EVMStatus = conf.Status
	e.events.Append(events.TxConfirmed{
		JobID:       job.ID,
		AgentID:     job.AgentID,
		TxHash:      hash,
		BlockNumber: conf.BlockNumber,
		GasUsed:     conf.GasUsed,
		Status:      conf.Status,
	})
	return nil
}

func (e *Executor) fail(job Job, err error, meta events.JobMeta) error {
	ev := events.JobFailed{JobID: job.ID, AgentID: job.AgentID, BattleID: job.BattleID, Error: err.Error(), JobMeta: meta}
	var se *StageError
	if errors.As(err, &se) {
		ev.Stage = string(se.Stage)
		ev.Error = se.Err.Error()
	}
	e.events.Append(ev)
	log.Warn().
		Err(err).
		Str("job_id", job.ID).
		Str("agent_id", job.AgentID).
		Str("stage", ev.Stage).
		Msg("job stage failed")
	return err
}

func (e *Executor) buildReceipt(job Job, profile agents.Profile, outcome store.Outcome, meta events.JobMeta) store.Receipt {
	completed := e.now()
	if completed.Before(job.SubmittedAt) {
		completed = job.SubmittedAt
	}
	policy := profile.Policy
	econ := &store.Economics{
		GasUSD:       outcome.GasUsedUSD,
		SlippageBps:  outcome.SlippageBps,
		WithinBudget: outcome.GasUsedUSD <= job.Constraints.MaxGasUSD && outcome.SlippageBps <= job.Constraints.MaxSlippageBps,
	}
	if meta.Quote != nil {
		econ.QuotedBuyAmount = meta.Quote.BuyAmount
		econ.RouteHops = meta.Quote.Hops
	}
	return store.Receipt{
		JobID:       job.ID,
		AgentID:     job.AgentID,
		SubmittedAt: job.SubmittedAt,
		CompletedAt: completed,
		Constraints: job.Constraints,
		Outcome:     outcome,
		Swap:        meta.Swap,
		Quote:       meta.Quote,
		Tx:          meta.Tx,
		OnChain:     meta.OnChain,
		BattleID:    job.BattleID,
		Policy:      &policy,
		Economics:   econ,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
