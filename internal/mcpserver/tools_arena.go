package mcpserver

import (
	"context"
	"strings"

	"agent-arena/internal/app/arena"
	"agent-arena/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerArenaTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_job",
			mcp.WithDescription("Queue a job for one agent; returns the job id immediately"),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent id")),
			mcp.WithString("objective", mcp.Description("Routing objective, default balanced")),
			mcp.WithNumber("max_slippage_bps", mcp.Description("Slippage budget in bps")),
			mcp.WithNumber("max_gas_usd", mcp.Description("Gas budget in USD")),
			mcp.WithNumber("deadline_ms", mcp.Description("Latency budget in milliseconds")),
		),
		s.handleSubmitJob,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_battle",
			mcp.WithDescription("Create a battle between 2-3 agents; runs immediately unless lobby is true"),
			mcp.WithString("type", mcp.Required(), mcp.Description("speed|gas|reliability|slippage")),
			mcp.WithArray("agents", mcp.Required(), mcp.Description("Distinct agent ids"), mcp.WithStringItems()),
			mcp.WithBoolean("lobby", mcp.Description("Open in lobby so predictions can be placed before start")),
		),
		s.handleStartBattle,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"place_paper_bet",
			mcp.WithDescription("Place a zero-risk paper prediction on a battle participant"),
			mcp.WithString("battle_id", mcp.Required(), mcp.Description("Battle id")),
			mcp.WithString("nickname", mcp.Required(), mcp.Description("Bettor nickname, max 32 chars")),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Backed agent id")),
			mcp.WithString("stake", mcp.Required(), mcp.Description("Decimal stake, e.g. \"0.01\"")),
		),
		s.handlePlacePaperBet,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"rate_receipt",
			mcp.WithDescription("Attach a 1-5 feedback rating to a job receipt"),
			mcp.WithString("job_id", mcp.Required(), mcp.Description("Job id")),
			mcp.WithNumber("rating", mcp.Required(), mcp.Description("Rating 1-5")),
		),
		s.handleRateReceipt,
	)
}

func (s *Server) handleSubmitJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := request.RequireString("agent_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.arenaSvc.SubmitJob(ctx, arena.SubmitJobInput{
		AgentID: agentID,
		Constraints: store.Constraints{
			Objective:      request.GetString("objective", ""),
			MaxSlippageBps: request.GetFloat("max_slippage_bps", 0),
			MaxGasUSD:      request.GetFloat("max_gas_usd", 0),
			DeadlineMS:     int64(request.GetInt("deadline_ms", 0)),
		},
	})
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleStartBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	battleType, err := request.RequireString("type")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	battleType = strings.ToLower(strings.TrimSpace(battleType))
	if !isAllowedBattleType(battleType) {
		return toolError("invalid_battle_type", "type must be speed|gas|reliability|slippage"), nil
	}
	agentIDs, err := request.RequireStringSlice("agents")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.arenaSvc.OpenBattle(ctx, arena.BattleInput{
		Type:   battleType,
		Agents: agentIDs,
		Start:  !request.GetBool("lobby", false),
	})
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handlePlacePaperBet(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in arena.BetInput
	var err error
	if in.BattleID, err = request.RequireString("battle_id"); err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	if in.Nickname, err = request.RequireString("nickname"); err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	if in.AgentID, err = request.RequireString("agent_id"); err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	if in.Stake, err = request.RequireString("stake"); err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.arenaSvc.PlaceBet(in)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleRateReceipt(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireString("job_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	rating, err := request.RequireInt("rating")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.arenaSvc.SubmitFeedback(jobID, rating)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}
