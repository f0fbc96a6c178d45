package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.ExecutionMode != ModeSimulate {
		t.Fatalf("ExecutionMode = %q, want simulate", cfg.ExecutionMode)
	}
	if cfg.MaxBattles != 200 {
		t.Fatalf("MaxBattles = %d, want 200", cfg.MaxBattles)
	}
	if cfg.MaxStreamEvents != 500 {
		t.Fatalf("MaxStreamEvents = %d, want 500", cfg.MaxStreamEvents)
	}
}

func TestLoadServerLiveRequiresCollaborators(t *testing.T) {
	t.Setenv("EXECUTION_MODE", "live")
	t.Setenv("QUOTE_API_URL", "http://quotes.local")
	t.Setenv("TX_BUILDER_URL", "http://builder.local")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerRejectsUnknownMode(t *testing.T) {
	t.Setenv("EXECUTION_MODE", "turbo")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("EXECUTION_MODE", " Quote ")
	t.Setenv("QUOTE_API_URL", "http://quotes.local")
	t.Setenv("TX_BUILDER_URL", "http://builder.local")
	t.Setenv("CHAIN_ID", "1")
	t.Setenv("SIMULATE_LATENCY", "true")
	t.Setenv("COLLABORATOR_TIMEOUT_MS", "2500")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.ExecutionMode != ModeQuote {
		t.Fatalf("ExecutionMode = %q, want quote", cfg.ExecutionMode)
	}
	if cfg.ChainID != 1 || !cfg.SimulateLatency {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
	if cfg.CollaboratorTimeout().Milliseconds() != 2500 {
		t.Fatalf("CollaboratorTimeout = %v, want 2.5s", cfg.CollaboratorTimeout())
	}
}
