package mcpserver

import (
	"errors"
	"fmt"

	"agent-arena/internal/app/arena"
	"agent-arena/internal/app/public"
	"agent-arena/internal/battle"
	"agent-arena/internal/pipeline"
	"agent-arena/internal/prediction"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

// domainErrors are reported with their own text as the tool error code.
var domainErrors = []error{
	arena.ErrInvalidRequest,
	arena.ErrInvalidRating,
	arena.ErrReceiptNotFound,
	arena.ErrBattleNotFound,
	public.ErrInvalidRequest,
	public.ErrAgentNotFound,
	public.ErrReceiptNotFound,
	public.ErrBattleNotFound,
	public.ErrBettorNotFound,
	pipeline.ErrInvalidJob,
	pipeline.ErrUnknownAgentID,
	battle.ErrInvalidType,
	battle.ErrAgentCount,
	battle.ErrDuplicateAgent,
	battle.ErrUnknownAgent,
	battle.ErrNotLobby,
	prediction.ErrBattleNotFound,
	prediction.ErrBattleClosed,
	prediction.ErrNotParticipant,
	prediction.ErrInvalidStake,
	prediction.ErrInvalidNickname,
	prediction.ErrNicknameTaken,
}

func mapDomainError(err error) *mcp.CallToolResult {
	if err == nil {
		return toolError("internal_error", "unknown error")
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return toolError(known.Error(), err.Error())
		}
	}
	return toolError("internal_error", err.Error())
}
