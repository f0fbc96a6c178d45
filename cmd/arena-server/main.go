package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-arena/internal/agents"
	"agent-arena/internal/app/arena"
	"agent-arena/internal/app/public"
	"agent-arena/internal/battle"
	"agent-arena/internal/chain"
	"agent-arena/internal/config"
	"agent-arena/internal/events"
	"agent-arena/internal/logging"
	"agent-arena/internal/mcpserver"
	"agent-arena/internal/pipeline"
	"agent-arena/internal/prediction"
	"agent-arena/internal/reconcile"
	"agent-arena/internal/store"
	httptransport "agent-arena/internal/transport/http"
	"agent-arena/internal/ws"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	st := store.New(store.Limits{
		MaxReceipts:     cfg.MaxReceipts,
		MaxBattles:      cfg.MaxBattles,
		MaxStreamEvents: cfg.MaxStreamEvents,
	})
	buf := events.NewBuffer(cfg.EventReplayMax)
	reg := agents.Default()

	deps := pipeline.Deps{
		Store:           st,
		Events:          buf,
		Agents:          reg,
		Mode:            pipeline.Mode(cfg.ExecutionMode),
		ChainID:         cfg.ChainID,
		SimulateLatency: cfg.SimulateLatency,
		Rand:            rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}
	if cfg.QuoteAPIURL != "" {
		deps.Quotes = chain.NewQuoteClient(cfg.QuoteAPIURL, cfg.QuoteAPIKey, cfg.CollaboratorTimeout())
	}
	if cfg.TxBuilderURL != "" {
		deps.Builder = chain.NewTxBuilderClient(cfg.TxBuilderURL, cfg.CollaboratorTimeout())
	}
	if cfg.BroadcasterURL != "" {
		deps.Broadcaster = chain.NewBroadcasterClient(cfg.BroadcasterURL, cfg.CollaboratorTimeout(), cfg.ConfirmTimeout())
	}
	exec := pipeline.NewExecutor(deps)

	bets := prediction.NewService(st, buf)
	battleCfg := battle.Config{Store: st, Events: buf, Agents: reg, Runner: exec, Resolver: bets}
	var escrowReader public.EscrowReader
	if cfg.EscrowURL != "" {
		escrow := chain.NewEscrowClient(cfg.EscrowURL, cfg.CollaboratorTimeout())
		battleCfg.Settler = escrow
		escrowReader = escrow
	}
	orch := battle.New(battleCfg)

	arenaSvc := arena.NewService(st, exec, orch, bets, reconcile.NewService(st, buf), cfg)
	publicSvc := public.NewService(st, reg, bets, escrowReader)
	spectators := ws.NewServer(buf)

	r := httptransport.NewRouter(httptransport.Services{
		Arena:  arenaSvc,
		Public: publicSvc,
		Events: buf,
		MCP:    mcpserver.New(arenaSvc, publicSvc).Handler(),
		WS:     spectators,
	}, cfg)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("mode", cfg.ExecutionMode).
			Bool("escrow", cfg.EscrowURL != "").
			Bool("webhook", cfg.StreamWebhookSecret != "").
			Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	shutdown(shutdownCtx, orch, buf, server, spectators)
	log.Info().Msg("shutdown complete")
}

type drainer interface {
	Drain()
}

// shutdown lets running battles publish their completion and resolution
// events before the buffer closes. Closing the buffer then ends SSE and ws
// streams so the HTTP server can finish.
func shutdown(ctx context.Context, battles drainer, buf *events.Buffer, server *http.Server, spectators *ws.Server) {
	battles.Drain()
	buf.Close()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	spectators.Close()
}
