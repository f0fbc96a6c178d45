package mcpserver

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http/httptest"
	"sort"
	"testing"

	"agent-arena/internal/agents"
	"agent-arena/internal/app/arena"
	"agent-arena/internal/app/public"
	"agent-arena/internal/battle"
	"agent-arena/internal/config"
	"agent-arena/internal/events"
	"agent-arena/internal/pipeline"
	"agent-arena/internal/prediction"
	"agent-arena/internal/reconcile"
	"agent-arena/internal/store"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

func newTestMCP(t *testing.T) (*client.Client, *store.Store) {
	t.Helper()
	st := store.New(store.Limits{})
	buf := events.NewBuffer(100)
	reg := agents.Default()
	exec := pipeline.NewExecutor(pipeline.Deps{Store: st, Events: buf, Agents: reg, Rand: rand.New(rand.NewPCG(3, 5))})
	bets := prediction.NewService(st, buf)
	orch := battle.New(battle.Config{Store: st, Events: buf, Agents: reg, Runner: exec, Resolver: bets})
	t.Cleanup(orch.Drain)

	cfg := config.ServerConfig{ExecutionMode: config.ModeSimulate}
	srv := New(
		arena.NewService(st, exec, orch, bets, reconcile.NewService(st, buf), cfg),
		public.NewService(st, reg, bets, nil),
	)
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(httpSrv.Close)

	c, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	t.Cleanup(closeClient)
	return c, st
}

func TestMCPServerToolsAndFlows(t *testing.T) {
	c, _ := newTestMCP(t)

	assertToolNames(t, mustListTools(t, c),
		"list_agents",
		"get_agent_score",
		"list_agent_receipts",
		"list_battles",
		"get_battle",
		"get_bettor_stats",
		"get_prediction_leaderboard",
		"submit_job",
		"start_battle",
		"place_paper_bet",
		"rate_receipt",
	)

	for _, toolName := range []string{"list_agents", "list_battles", "get_prediction_leaderboard"} {
		res := mustCallTool(t, c, toolName, map[string]any{})
		if res.IsError {
			t.Fatalf("%s expected success, got: %v", toolName, res.StructuredContent)
		}
	}

	scoreRes := mustCallTool(t, c, "get_agent_score", map[string]any{"agent_id": "miser"})
	if scoreRes.IsError {
		t.Fatalf("get_agent_score: %v", scoreRes.StructuredContent)
	}
	if got := asString(mapFromStructured(t, scoreRes)["id"]); got != "miser" {
		t.Fatalf("agent id = %q", got)
	}

	open := mustCallTool(t, c, "start_battle", map[string]any{
		"type":   "gas",
		"agents": []string{"sprinter", "miser"},
		"lobby":  true,
	})
	if open.IsError {
		t.Fatalf("start_battle: %v", open.StructuredContent)
	}
	battlePayload := mapFromStructured(t, open)
	battleID := asString(battlePayload["id"])
	if battleID == "" || asString(battlePayload["status"]) != string(store.BattleLobby) {
		t.Fatalf("unexpected battle: %v", battlePayload)
	}

	bet := mustCallTool(t, c, "place_paper_bet", map[string]any{
		"battle_id": battleID,
		"nickname":  "alice",
		"agent_id":  "miser",
		"stake":     "0.01",
	})
	if bet.IsError {
		t.Fatalf("place_paper_bet: %v", bet.StructuredContent)
	}
	dup := mustCallTool(t, c, "place_paper_bet", map[string]any{
		"battle_id": battleID,
		"nickname":  "alice",
		"agent_id":  "sprinter",
		"stake":     "0.02",
	})
	assertToolErrorCode(t, dup, "nickname_taken")

	got := mustCallTool(t, c, "get_battle", map[string]any{"battle_id": battleID})
	if got.IsError {
		t.Fatalf("get_battle: %v", got.StructuredContent)
	}
	var view struct {
		Pool prediction.Pool `json:"pool"`
	}
	decodeStructured(t, got, &view)
	if view.Pool.Bettors != 1 || view.Pool.Total.String() != "0.01" {
		t.Fatalf("pool = %+v", view.Pool)
	}

	job := mustCallTool(t, c, "submit_job", map[string]any{"agent_id": "sentinel", "deadline_ms": 5000})
	if job.IsError {
		t.Fatalf("submit_job: %v", job.StructuredContent)
	}
	jobPayload := mapFromStructured(t, job)
	if asString(jobPayload["status"]) != "queued" || asString(jobPayload["job_id"]) == "" {
		t.Fatalf("unexpected job response: %v", jobPayload)
	}
}

func TestMCPServerToolErrors(t *testing.T) {
	c, st := newTestMCP(t)
	if err := st.InsertReceipt(store.Receipt{JobID: "job-1", AgentID: "miser"}); err != nil {
		t.Fatalf("insert receipt: %v", err)
	}

	cases := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"get_agent_score", map[string]any{"agent_id": "ghost"}, "agent_not_found"},
		{"get_agent_score", map[string]any{}, "invalid_request"},
		{"start_battle", map[string]any{"type": "luck", "agents": []string{"sprinter", "miser"}}, "invalid_battle_type"},
		{"start_battle", map[string]any{"type": "speed", "agents": []string{"sprinter"}}, "invalid_agent_count"},
		{"start_battle", map[string]any{"type": "speed", "agents": []string{"miser", "miser"}}, "duplicate_agent"},
		{"get_battle", map[string]any{"battle_id": "nope"}, "battle_not_found"},
		{"place_paper_bet", map[string]any{"battle_id": "nope", "nickname": "bob", "agent_id": "miser", "stake": "1"}, "battle_not_found"},
		{"get_bettor_stats", map[string]any{"nickname": "nobody"}, "bettor_not_found"},
		{"rate_receipt", map[string]any{"job_id": "job-1", "rating": 9}, "invalid_rating"},
		{"rate_receipt", map[string]any{"job_id": "missing", "rating": 4}, "receipt_not_found"},
		{"submit_job", map[string]any{"agent_id": "ghost"}, "unknown_agent"},
	}
	for _, tc := range cases {
		t.Run(tc.tool+"/"+tc.want, func(t *testing.T) {
			assertToolErrorCode(t, mustCallTool(t, c, tc.tool, tc.args), tc.want)
		})
	}

	ok := mustCallTool(t, c, "rate_receipt", map[string]any{"job_id": "job-1", "rating": 4})
	if ok.IsError {
		t.Fatalf("rate_receipt: %v", ok.StructuredContent)
	}
	rec, err := st.GetReceipt("job-1")
	if err != nil || rec.Feedback == nil || *rec.Feedback != 4 {
		t.Fatalf("feedback not stored: %+v err=%v", rec, err)
	}
}

func newMCPClient(t *testing.T, endpoint string) (*client.Client, func()) {
	t.Helper()
	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(endpoint)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := trans.Start(ctx); err != nil {
		t.Fatalf("transport start: %v", err)
	}
	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, func() { _ = trans.Close() }
}

func mustListTools(t *testing.T, c *client.Client) []mcp.Tool {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	return res.Tools
}

func assertToolNames(t *testing.T, tools []mcp.Tool, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(tools))
	for _, tool := range tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) != len(expected) {
		t.Fatalf("tool count mismatch got=%v expected=%v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("tool list mismatch got=%v expected=%v", got, expected)
		}
	}
}

func mustCallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func assertToolErrorCode(t *testing.T, res *mcp.CallToolResult, want string) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected tool error %q, got success: %v", want, res.StructuredContent)
	}
	payload := mapFromStructured(t, res)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("error payload missing 'error': %v", payload)
	}
	got := asString(errObj["code"])
	if got != want {
		t.Fatalf("error code=%q want=%q payload=%v", got, want, payload)
	}
}

func decodeStructured(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
}

func mapFromStructured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var out map[string]any
	decodeStructured(t, res, &out)
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
