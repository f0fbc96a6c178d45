package httptransport

import (
	"encoding/json"
	"io"
	"net/http"

	"agent-arena/internal/app/arena"

	"github.com/go-chi/chi/v5"
)

const maxWebhookBody = 1 << 20

type ArenaHandlers struct {
	svc *arena.Service
}

func NewArenaHandlers(svc *arena.Service) *ArenaHandlers {
	return &ArenaHandlers{svc: svc}
}

func (h *ArenaHandlers) SubmitJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricJobSubmitTotal.Add(1)
		var body arena.SubmitJobInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricJobSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.SubmitJob(r.Context(), body)
		if err != nil {
			metricJobSubmitErrors.Add(1)
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *ArenaHandlers) Feedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Rating int `json:"rating"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.SubmitFeedback(chi.URLParam(r, "job_id"), body.Rating)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *ArenaHandlers) OpenBattle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricBattleOpenTotal.Add(1)
		var body arena.BattleInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricBattleOpenErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.OpenBattle(r.Context(), body)
		if err != nil {
			metricBattleOpenErrors.Add(1)
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *ArenaHandlers) StartBattle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.StartBattle(r.Context(), chi.URLParam(r, "battle_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *ArenaHandlers) PlaceBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricBetPlaceTotal.Add(1)
		var body arena.BetInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricBetPlaceErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if id := chi.URLParam(r, "battle_id"); id != "" {
			body.BattleID = id
		}
		resp, err := h.svc.PlaceBet(body)
		if err != nil {
			metricBetPlaceErrors.Add(1)
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *ArenaHandlers) StreamWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricStreamWebhookTotal.Add(1)
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			metricStreamWebhookRejected.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_body")
			return
		}
		resp, err := h.svc.IngestStream(body, r.Header.Get("X-Signature"), r.Header.Get("X-Stream-Id"))
		if err != nil {
			metricStreamWebhookRejected.Add(1)
			writeServiceError(w, r, err)
			return
		}
		metricStreamEventsMatched.Add(int64(resp.Matched))
		_ = json.NewEncoder(w).Encode(resp)
	}
}
