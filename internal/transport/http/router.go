package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"agent-arena/internal/app/arena"
	"agent-arena/internal/app/public"
	"agent-arena/internal/config"
	"agent-arena/internal/events"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Arena  *arena.Service
	Public *public.Service
	Events *events.Buffer
	// MCP and WS are optional outer surfaces.
	MCP http.Handler
	WS  http.Handler
}

func NewRouter(svcs Services, cfg config.ServerConfig) *chi.Mux {
	arenaHandlers := NewArenaHandlers(svcs.Arena)
	publicHandlers := NewPublicHandlers(svcs.Public)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", HealthHandler(cfg, time.Now()))
	if svcs.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", svcs.MCP)
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", svcs.MCP)
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", svcs.MCP)
	}
	if svcs.WS != nil {
		r.Method(http.MethodGet, "/ws", svcs.WS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/events", EventsSSEHandler(svcs.Events))

		r.Get("/agents", publicHandlers.Agents())
		r.Get("/agents/scores", publicHandlers.Scores())
		r.Get("/agents/{agent_id}", publicHandlers.Agent())
		r.Get("/agents/{agent_id}/receipts", publicHandlers.AgentReceipts())

		r.Post("/jobs", arenaHandlers.SubmitJob())
		r.Get("/receipts/{job_id}", publicHandlers.Receipt())
		r.Post("/receipts/{job_id}/feedback", arenaHandlers.Feedback())

		r.Get("/battles", publicHandlers.Battles())
		r.Post("/battles", arenaHandlers.OpenBattle())
		r.Get("/battles/{battle_id}", publicHandlers.Battle())
		r.Post("/battles/{battle_id}/start", arenaHandlers.StartBattle())
		r.Post("/battles/{battle_id}/bets", arenaHandlers.PlaceBet())
		r.Get("/battles/{battle_id}/escrow", publicHandlers.Escrow())

		r.Post("/predictions", arenaHandlers.PlaceBet())
		r.Get("/predictions/leaderboard", publicHandlers.Leaderboard())
		r.Get("/predictions/bettors/{nickname}", publicHandlers.Bettor())

		r.Post("/stream/webhook", arenaHandlers.StreamWebhook())
		r.Get("/stream/events", publicHandlers.StreamEvents())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
