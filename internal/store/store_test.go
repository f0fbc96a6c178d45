package store

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewIDPrefixAndOrder(t *testing.T) {
	a := NewID(PrefixJob)
	b := NewID(PrefixJob)
	if a[:4] != "job_" {
		t.Fatalf("id %q missing job_ prefix", a)
	}
	if a >= b {
		t.Fatalf("ids not monotonic: %s >= %s", a, b)
	}
}

func TestFindReceiptByTxHashIgnoresCase(t *testing.T) {
	st := New(Limits{})
	mustInsertReceipt(t, st, Receipt{JobID: "j1", AgentID: "a", OnChain: &OnChainEvidence{TxHash: "0xABCdef"}})
	mustInsertReceipt(t, st, Receipt{JobID: "j2", AgentID: "a", OnChain: &OnChainEvidence{TxHash: "0xabcdef"}})

	got, ok := st.FindReceiptByTxHash("0xabcDEF")
	if !ok {
		t.Fatal("expected match")
	}
	if got.JobID != "j1" {
		t.Fatalf("first match = %s, want j1", got.JobID)
	}
	if _, ok := st.FindReceiptByTxHash(""); ok {
		t.Fatal("empty hash should not match")
	}
}

func TestReceiptsAreCopies(t *testing.T) {
	st := New(Limits{})
	mustInsertReceipt(t, st, Receipt{JobID: "j1", AgentID: "a", Outcome: Outcome{SafetyFlags: []string{"x"}}})

	got := st.ReceiptsByAgent("a")
	got[0].Outcome.SafetyFlags[0] = "mutated"

	again, err := st.GetReceipt("j1")
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if again.Outcome.SafetyFlags[0] != "x" {
		t.Fatalf("store leaked internal slice: %v", again.Outcome.SafetyFlags)
	}
}

func TestRecentReceiptsByAgent(t *testing.T) {
	st := New(Limits{})
	for i := 0; i < 12; i++ {
		mustInsertReceipt(t, st, Receipt{JobID: "j" + strconv.Itoa(i), AgentID: "a"})
	}
	mustInsertReceipt(t, st, Receipt{JobID: "other", AgentID: "b"})

	got := st.RecentReceiptsByAgent("a", 10)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[0].JobID != "j2" || got[9].JobID != "j11" {
		t.Fatalf("unexpected window: %s..%s", got[0].JobID, got[9].JobID)
	}
}

func TestBattleEviction(t *testing.T) {
	st := New(Limits{MaxBattles: 2})
	for _, id := range []string{"b1", "b2", "b3"} {
		if err := st.InsertBattle(BattleRecord{ID: id, Status: BattleLobby}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if _, err := st.GetBattle("b1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("b1 should be evicted, err=%v", err)
	}
	list := st.ListBattles(0)
	if len(list) != 2 || list[0].ID != "b3" || list[1].ID != "b2" {
		t.Fatalf("unexpected battle list: %+v", list)
	}
}

func TestReceiptEviction(t *testing.T) {
	st := New(Limits{MaxReceipts: 2})
	for _, id := range []string{"j1", "j2", "j3"} {
		mustInsertReceipt(t, st, Receipt{JobID: id, AgentID: "a"})
	}
	if _, err := st.GetReceipt("j1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("j1 should be evicted, err=%v", err)
	}
	got := st.ReceiptsByAgent("a")
	if len(got) != 2 || got[0].JobID != "j2" || got[1].JobID != "j3" {
		t.Fatalf("unexpected receipts: %+v", got)
	}
}

func TestBattleEvictionDropsBets(t *testing.T) {
	st := New(Limits{MaxBattles: 1})
	_ = st.InsertBattle(BattleRecord{ID: "b1", Status: BattleLobby})
	_ = st.InsertBet(PaperBet{ID: "p1", BattleID: "b1", Nickname: "n", Stake: decimal.NewFromInt(1)})
	_ = st.InsertBattle(BattleRecord{ID: "b2", Status: BattleLobby})

	if bets := st.BetsByBattle("b1"); len(bets) != 0 {
		t.Fatalf("bets for evicted battle still present: %+v", bets)
	}
}

func TestUpdateBattleRejectsRegression(t *testing.T) {
	st := New(Limits{})
	_ = st.InsertBattle(BattleRecord{ID: "b1", Status: BattleRunning})

	_, err := st.UpdateBattle("b1", func(b *BattleRecord) error {
		b.Status = BattleLobby
		return nil
	})
	if !errors.Is(err, ErrStatusRegression) {
		t.Fatalf("err = %v, want ErrStatusRegression", err)
	}

	_, err = st.UpdateBattle("b1", func(b *BattleRecord) error {
		b.Winner = "a"
		return nil
	})
	if !errors.Is(err, ErrWinnerNotFinal) {
		t.Fatalf("err = %v, want ErrWinnerNotFinal", err)
	}

	got, err := st.UpdateBattle("b1", func(b *BattleRecord) error {
		b.Status = BattleComplete
		b.Winner = "a"
		return nil
	})
	if err != nil {
		t.Fatalf("complete battle: %v", err)
	}
	if got.Status != BattleComplete || got.Winner != "a" {
		t.Fatalf("unexpected battle: %+v", got)
	}
}

func TestStreamEventsRingAndDuplicates(t *testing.T) {
	st := New(Limits{MaxStreamEvents: 2})
	ts := time.Now()
	for i := 0; i < 3; i++ {
		ev := StreamEvent{ID: "0xaa:" + strconv.Itoa(i), TxHash: "0xaa", LogIndex: uint64(i), Timestamp: ts}
		if err := st.InsertStreamEvent(ev); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if err := st.InsertStreamEvent(StreamEvent{ID: "0xaa:2"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	// evicted ids may be ingested again
	if err := st.InsertStreamEvent(StreamEvent{ID: "0xaa:0"}); err != nil {
		t.Fatalf("reinsert evicted id: %v", err)
	}
	list := st.ListStreamEvents(0)
	if len(list) != 2 || list[0].ID != "0xaa:0" || list[1].ID != "0xaa:2" {
		t.Fatalf("unexpected ring contents: %+v", list)
	}
}

func TestResolveBetsRunsOnce(t *testing.T) {
	st := New(Limits{})
	_ = st.InsertBet(PaperBet{ID: "p1", BattleID: "b1", Nickname: "n", AgentID: "a", Stake: decimal.NewFromInt(1)})

	calls := 0
	settle := func(bets []PaperBet) []PaperBetResult {
		calls++
		return []PaperBetResult{{BetID: bets[0].ID, PnL: decimal.Zero}}
	}
	first, fresh := st.ResolveBets("b1", settle)
	if !fresh || len(first) != 1 {
		t.Fatalf("first resolve fresh=%v len=%d", fresh, len(first))
	}
	second, fresh := st.ResolveBets("b1", settle)
	if fresh || len(second) != 1 || calls != 1 {
		t.Fatalf("second resolve fresh=%v len=%d calls=%d", fresh, len(second), calls)
	}
}

func TestNicknameStatsCaseInsensitive(t *testing.T) {
	st := New(Limits{})
	st.UpdateNicknameStats("Alice", func(s *NicknameStats) { s.Bets++ })
	st.UpdateNicknameStats("alice", func(s *NicknameStats) { s.Bets++ })

	got, ok := st.GetNicknameStats("ALICE")
	if !ok || got.Bets != 2 || got.Nickname != "Alice" {
		t.Fatalf("unexpected stats: %+v ok=%v", got, ok)
	}
}

func mustInsertReceipt(t *testing.T, st *Store, r Receipt) {
	t.Helper()
	if err := st.InsertReceipt(r); err != nil {
		t.Fatalf("insert receipt %s: %v", r.JobID, err)
	}
}
