package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"agent-arena/internal/config"
)

func HealthHandler(cfg config.ServerConfig, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":             true,
			"mode":           cfg.ExecutionMode,
			"chain_id":       cfg.ChainID,
			"webhook":        cfg.StreamWebhookSecret != "",
			"escrow":         cfg.EscrowURL != "",
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		})
	}
}
