package public

import (
	"context"
	"errors"
	"testing"

	"agent-arena/internal/agents"
	"agent-arena/internal/chain"
	"agent-arena/internal/events"
	"agent-arena/internal/prediction"
	"agent-arena/internal/store"

	"github.com/shopspring/decimal"
)

func TestClampLeaderboardPage(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		wantLimit int
		wantOK    bool
	}{
		{name: "default limit", limit: 0, offset: 0, wantLimit: 50, wantOK: true},
		{name: "explicit small limit", limit: 20, offset: 0, wantLimit: 20, wantOK: true},
		{name: "limit clipped at top100 boundary", limit: 10, offset: 95, wantLimit: 5, wantOK: true},
		{name: "offset 100 rejected", limit: 10, offset: 100, wantLimit: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLimit, gotOK := clampLeaderboardPage(tt.limit, tt.offset)
			if gotOK != tt.wantOK {
				t.Fatalf("ok = %v, want %v", gotOK, tt.wantOK)
			}
			if gotLimit != tt.wantLimit {
				t.Fatalf("limit = %d, want %d", gotLimit, tt.wantLimit)
			}
		})
	}
}

type fakeEscrow struct {
	metaErr error
}

func (f *fakeEscrow) PotTotals(context.Context, string) (chain.PotTotals, error) {
	return chain.PotTotals{Total: decimal.NewFromInt(3)}, nil
}

func (f *fakeEscrow) BattleMeta(context.Context, string) (chain.BattleMeta, error) {
	return chain.BattleMeta{Agents: 2}, f.metaErr
}

func (f *fakeEscrow) UserPrediction(_ context.Context, _ string, address string) (chain.UserPrediction, error) {
	if chain.NormalizeAddress(address) == "" {
		return chain.UserPrediction{}, chain.ErrInvalidAddress
	}
	return chain.UserPrediction{AgentIndex: 1, Amount: decimal.NewFromInt(1)}, nil
}

func newTestService(t *testing.T, escrow EscrowReader) (*Service, *store.Store) {
	t.Helper()
	st := store.New(store.Limits{})
	bets := prediction.NewService(st, events.NewBuffer(50))
	return NewService(st, agents.Default(), bets, escrow), st
}

func TestAgentsScoresEmptyHistory(t *testing.T) {
	svc, _ := newTestService(t, nil)
	resp := svc.Agents()
	if len(resp.Items) != 3 {
		t.Fatalf("agents = %d", len(resp.Items))
	}
	for _, it := range resp.Items {
		if it.Score.Composite != 7.0 || it.Score.Jobs != 0 {
			t.Fatalf("%s empty score = %+v", it.ID, it.Score)
		}
	}
	if _, err := svc.Agent("ghost"); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("ghost err = %v", err)
	}
}

func TestAgentReceiptsNewestFirst(t *testing.T) {
	svc, st := newTestService(t, nil)
	for _, id := range []string{"j1", "j2", "j3"} {
		if err := st.InsertReceipt(store.Receipt{JobID: id, AgentID: "miser"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	resp, err := svc.AgentReceipts("miser", 2, 0)
	if err != nil {
		t.Fatalf("receipts: %v", err)
	}
	if resp.Total != 3 || len(resp.Items) != 2 || resp.Items[0].JobID != "j3" {
		t.Fatalf("resp = %+v", resp)
	}
	page, _ := svc.AgentReceipts("miser", 2, 2)
	if len(page.Items) != 1 || page.Items[0].JobID != "j1" {
		t.Fatalf("page 2 = %+v", page.Items)
	}
	if _, err := svc.Receipt("nope"); !errors.Is(err, ErrReceiptNotFound) {
		t.Fatalf("missing receipt err = %v", err)
	}
}

func TestAgentReceiptsClampsPage(t *testing.T) {
	svc, st := newTestService(t, nil)
	for _, id := range []string{"j1", "j2"} {
		if err := st.InsertReceipt(store.Receipt{JobID: id, AgentID: "miser"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	cases := []struct {
		name          string
		limit, offset int
		wantLimit     int
		wantOffset    int
		wantItems     int
	}{
		{"negative limit", -5, 0, 50, 0, 2},
		{"negative offset", 10, -3, 10, 0, 2},
		{"offset past end", 10, 7, 10, 7, 0},
		{"oversized limit", 10000, 0, 500, 0, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.AgentReceipts("miser", tc.limit, tc.offset)
			if err != nil {
				t.Fatalf("receipts: %v", err)
			}
			if resp.Limit != tc.wantLimit || resp.Offset != tc.wantOffset || len(resp.Items) != tc.wantItems {
				t.Fatalf("resp limit=%d offset=%d items=%d", resp.Limit, resp.Offset, len(resp.Items))
			}
		})
	}
}

func TestEscrowView(t *testing.T) {
	svc, st := newTestService(t, nil)
	if _, err := svc.Escrow(context.Background(), "btl_1", ""); !errors.Is(err, ErrEscrowUnavailable) {
		t.Fatalf("no escrow err = %v", err)
	}

	svc, st = newTestService(t, &fakeEscrow{})
	if _, err := svc.Escrow(context.Background(), "btl_1", ""); !errors.Is(err, ErrBattleNotFound) {
		t.Fatalf("missing battle err = %v", err)
	}
	if err := st.InsertBattle(store.BattleRecord{ID: "btl_1", Status: store.BattleLobby}); err != nil {
		t.Fatalf("insert battle: %v", err)
	}
	resp, err := svc.Escrow(context.Background(), "btl_1", "0x00000000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("escrow: %v", err)
	}
	if resp.OnchainID != chain.OnchainBattleID("btl_1").String() || resp.Prediction == nil || resp.Prediction.AgentIndex != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if _, err := svc.Escrow(context.Background(), "btl_1", "bogus"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("bad address err = %v", err)
	}
}
