package httptransport

import (
	"encoding/json"
	"net/http"
	"sort"

	"agent-arena/internal/app/public"
	"agent-arena/internal/score"

	"github.com/go-chi/chi/v5"
)

type PublicHandlers struct {
	svc *public.Service
}

func NewPublicHandlers(svc *public.Service) *PublicHandlers {
	return &PublicHandlers{svc: svc}
}

func (h *PublicHandlers) Agents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(h.svc.Agents())
	}
}

// Scores is the AQI leaderboard, best composite first.
func (h *PublicHandlers) Scores() http.HandlerFunc {
	type item struct {
		AgentID string          `json:"agent_id"`
		Name    string          `json:"name"`
		Score   score.Breakdown `json:"score"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		agents := h.svc.Agents().Items
		out := make([]item, 0, len(agents))
		for _, a := range agents {
			out = append(out, item{AgentID: a.ID, Name: a.Name, Score: a.Score})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score.Composite > out[j].Score.Composite })
		_ = json.NewEncoder(w).Encode(map[string]any{"items": out})
	}
}

func (h *PublicHandlers) Agent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Agent(chi.URLParam(r, "agent_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) AgentReceipts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.svc.AgentReceipts(chi.URLParam(r, "agent_id"), limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Receipt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Receipt(chi.URLParam(r, "job_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Battles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := ParsePagination(r)
		_ = json.NewEncoder(w).Encode(h.svc.Battles(limit))
	}
}

func (h *PublicHandlers) Battle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Battle(chi.URLParam(r, "battle_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Escrow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Escrow(r.Context(), chi.URLParam(r, "battle_id"), r.URL.Query().Get("address"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		if r.URL.Query().Get("limit") == "" {
			limit = 0
		}
		resp, err := h.svc.Leaderboard(limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Bettor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Bettor(chi.URLParam(r, "nickname"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) StreamEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := ParsePagination(r)
		_ = json.NewEncoder(w).Encode(h.svc.StreamEvents(limit))
	}
}
