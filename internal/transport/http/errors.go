package httptransport

import (
	"errors"
	"net/http"

	"agent-arena/internal/app/arena"
	"agent-arena/internal/app/public"
	"agent-arena/internal/battle"
	"agent-arena/internal/pipeline"
	"agent-arena/internal/prediction"

	"github.com/rs/zerolog/log"
)

type errorMapping struct {
	err    error
	status int
}

// Sentinel values double as the wire error code.
var errorTable = []errorMapping{
	{arena.ErrInvalidRequest, http.StatusBadRequest},
	{arena.ErrInvalidRating, http.StatusBadRequest},
	{arena.ErrReceiptNotFound, http.StatusNotFound},
	{arena.ErrBattleNotFound, http.StatusNotFound},
	{arena.ErrWebhookDisabled, http.StatusServiceUnavailable},
	{arena.ErrInvalidSignature, http.StatusUnauthorized},

	{public.ErrInvalidRequest, http.StatusBadRequest},
	{public.ErrAgentNotFound, http.StatusNotFound},
	{public.ErrReceiptNotFound, http.StatusNotFound},
	{public.ErrBattleNotFound, http.StatusNotFound},
	{public.ErrBettorNotFound, http.StatusNotFound},
	{public.ErrEscrowUnavailable, http.StatusServiceUnavailable},

	{pipeline.ErrInvalidJob, http.StatusBadRequest},
	{pipeline.ErrUnknownAgentID, http.StatusNotFound},

	{battle.ErrInvalidType, http.StatusBadRequest},
	{battle.ErrAgentCount, http.StatusBadRequest},
	{battle.ErrDuplicateAgent, http.StatusBadRequest},
	{battle.ErrUnknownAgent, http.StatusNotFound},
	{battle.ErrNotLobby, http.StatusConflict},

	{prediction.ErrBattleNotFound, http.StatusNotFound},
	{prediction.ErrBattleClosed, http.StatusConflict},
	{prediction.ErrNotParticipant, http.StatusBadRequest},
	{prediction.ErrInvalidStake, http.StatusBadRequest},
	{prediction.ErrInvalidNickname, http.StatusBadRequest},
	{prediction.ErrNicknameTaken, http.StatusConflict},
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			WriteHTTPError(w, m.status, m.err.Error())
			return
		}
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled service error")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}
