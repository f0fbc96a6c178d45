package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublicTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_agents",
			mcp.WithDescription("List the arena agents with their current AQI scores"),
		),
		s.handleListAgents,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_agent_score",
			mcp.WithDescription("Get one agent's profile and AQI breakdown"),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent id")),
		),
		s.handleGetAgentScore,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_agent_receipts",
			mcp.WithDescription("List an agent's job receipts, newest first"),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent id")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 200")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListAgentReceipts,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_battles",
			mcp.WithDescription("List recent battles, newest first"),
			mcp.WithNumber("limit", mcp.Description("Max battles, default 20")),
		),
		s.handleListBattles,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_battle",
			mcp.WithDescription("Get a battle with its prediction pool and results"),
			mcp.WithString("battle_id", mcp.Required(), mcp.Description("Battle id")),
		),
		s.handleGetBattle,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_bettor_stats",
			mcp.WithDescription("Get cumulative paper prediction stats for a nickname"),
			mcp.WithString("nickname", mcp.Required(), mcp.Description("Bettor nickname")),
		),
		s.handleGetBettorStats,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_prediction_leaderboard",
			mcp.WithDescription("Rank bettors by cumulative paper PnL"),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 100")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleGetPredictionLeaderboard,
	)
}

func (s *Server) handleListAgents(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.publicSvc.Agents()), nil
}

func (s *Server) handleGetAgentScore(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := request.RequireString("agent_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.publicSvc.Agent(agentID)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListAgentReceipts(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := request.RequireString("agent_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	limit, offset := clampPagination(request.GetInt("limit", defaultPageLimit), request.GetInt("offset", 0), maxPageLimit)
	resp, svcErr := s.publicSvc.AgentReceipts(agentID, limit, offset)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListBattles(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, _ := clampPagination(request.GetInt("limit", defaultBattleLimit), 0, maxPageLimit)
	return toolResult(s.publicSvc.Battles(limit)), nil
}

func (s *Server) handleGetBattle(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	battleID, err := request.RequireString("battle_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.publicSvc.Battle(battleID)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetBettorStats(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nickname, err := request.RequireString("nickname")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.publicSvc.Bettor(nickname)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetPredictionLeaderboard(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := clampPagination(request.GetInt("limit", defaultPageLimit), request.GetInt("offset", 0), maxLeaderboardLimit)
	resp, err := s.publicSvc.Leaderboard(limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
