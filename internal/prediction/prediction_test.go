package prediction

import (
	"errors"
	"strings"
	"testing"
	"time"

	"agent-arena/internal/events"
	"agent-arena/internal/store"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func bet(id, nick, agent, stake string) store.PaperBet {
	return store.PaperBet{ID: id, BattleID: "btl_1", Nickname: nick, AgentID: agent, Stake: d(stake)}
}

func sumPnL(results []store.PaperBetResult) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(r.PnL)
	}
	return sum
}

func TestSettleWorkedExample(t *testing.T) {
	bets := []store.PaperBet{
		bet("b1", "alice", "A", "0.01"),
		bet("b2", "bob", "B", "0.02"),
		bet("b3", "carol", "C", "0.03"),
	}
	res := Settle(bets, "B")

	if !res[1].Won || !res[1].PnL.Equal(d("0.04")) || !res[1].ROIPct.Equal(d("200")) {
		t.Fatalf("winner result = %+v", res[1])
	}
	if res[0].Won || !res[0].PnL.Equal(d("-0.01")) || !res[0].ROIPct.Equal(d("-100")) {
		t.Fatalf("loser A = %+v", res[0])
	}
	if !res[2].PnL.Equal(d("-0.03")) {
		t.Fatalf("loser C = %+v", res[2])
	}
	if !sumPnL(res).IsZero() {
		t.Fatalf("sum pnl = %s", sumPnL(res))
	}
}

func TestSettleSplitsProportionallyAndSumsToZero(t *testing.T) {
	bets := []store.PaperBet{
		bet("b1", "a", "X", "1"),
		bet("b2", "b", "X", "1"),
		bet("b3", "c", "X", "1"),
		bet("b4", "d", "Y", "1"),
	}
	res := Settle(bets, "X")
	if !sumPnL(res).IsZero() {
		t.Fatalf("sum pnl = %s", sumPnL(res))
	}
	if !res[0].PnL.Equal(d("0.33333333")) {
		t.Fatalf("first share = %s", res[0].PnL)
	}
	if !res[2].PnL.Equal(d("0.33333334")) {
		t.Fatalf("remainder share = %s", res[2].PnL)
	}
}

func TestSettleNobodyBackedWinner(t *testing.T) {
	bets := []store.PaperBet{bet("b1", "a", "X", "1"), bet("b2", "b", "Y", "2")}
	res := Settle(bets, "Z")
	for _, r := range res {
		if r.Won || r.PnL.IsPositive() {
			t.Fatalf("result = %+v", r)
		}
	}
	if !sumPnL(res).Equal(d("-3")) {
		t.Fatalf("sum pnl = %s", sumPnL(res))
	}
}

func newService(t *testing.T) (*Service, *store.Store, *events.Buffer, string) {
	t.Helper()
	st := store.New(store.Limits{})
	buf := events.NewBuffer(200)
	b := store.BattleRecord{
		ID:        "btl_1",
		CreatedAt: time.Now(),
		Type:      store.BattleSpeed,
		Agents:    []string{"sprinter", "miser"},
		Scorecards: []store.Scorecard{
			{AgentID: "sprinter", Status: store.CardPending},
			{AgentID: "miser", Status: store.CardPending},
		},
		Status: store.BattleLobby,
	}
	if err := st.InsertBattle(b); err != nil {
		t.Fatalf("insert battle: %v", err)
	}
	return NewService(st, buf), st, buf, b.ID
}

func TestPlaceBetValidation(t *testing.T) {
	svc, st, _, id := newService(t)
	if _, err := svc.PlaceBet(id, "Neo", "sprinter", d("0.5")); err != nil {
		t.Fatalf("first bet: %v", err)
	}
	cases := []struct {
		name     string
		battle   string
		nickname string
		agent    string
		stake    string
		want     error
	}{
		{"blank nickname", id, "  ", "sprinter", "1", ErrInvalidNickname},
		{"long nickname", id, strings.Repeat("x", 33), "sprinter", "1", ErrInvalidNickname},
		{"zero stake", id, "trin", "sprinter", "0", ErrInvalidStake},
		{"negative stake", id, "trin", "sprinter", "-1", ErrInvalidStake},
		{"missing battle", "btl_nope", "trin", "sprinter", "1", ErrBattleNotFound},
		{"not participant", id, "trin", "sentinel", "1", ErrNotParticipant},
		{"nickname reused", id, "NEO", "miser", "1", ErrNicknameTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.PlaceBet(tc.battle, tc.nickname, tc.agent, d(tc.stake)); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := st.UpdateBattle(id, func(b *store.BattleRecord) error {
		b.Status = store.BattleComplete
		return nil
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.PlaceBet(id, "late", "miser", d("1")); !errors.Is(err, ErrBattleClosed) {
		t.Fatalf("closed err = %v", err)
	}
}

func TestPlaceBetEmitsPoolUpdate(t *testing.T) {
	svc, _, buf, id := newService(t)
	svc.PlaceBet(id, "a", "sprinter", d("1.5"))
	svc.PlaceBet(id, "b", "miser", d("0.5"))

	evs := buf.ReplayAfter("")
	last, ok := evs[len(evs)-1].Data.(events.PredictionUpdate)
	if !ok {
		t.Fatalf("last event = %+v", evs[len(evs)-1])
	}
	if !last.TotalPool.Equal(d("2")) || !last.PoolByAgent["sprinter"].Equal(d("1.5")) || last.Bettors != 2 {
		t.Fatalf("pool update = %+v", last)
	}
	if evs[len(evs)-2].Event != events.TypePaperBetPlaced {
		t.Fatalf("expected paperbet-placed before prediction-update, got %s", evs[len(evs)-2].Event)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	svc, _, buf, id := newService(t)
	svc.PlaceBet(id, "winner", "miser", d("1"))
	svc.PlaceBet(id, "loser", "sprinter", d("3"))

	first, err := svc.Resolve(id, "miser")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	countResolved := func() int {
		n := 0
		for _, ev := range buf.ReplayAfter("") {
			if ev.Event == events.TypePredictionResolved {
				n++
			}
		}
		return n
	}
	if countResolved() != 1 {
		t.Fatalf("prediction-resolved events = %d", countResolved())
	}

	second, err := svc.Resolve(id, "sprinter")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if len(second) != len(first) || !second[0].PnL.Equal(first[0].PnL) || second[0].Won != first[0].Won {
		t.Fatalf("second resolve recomputed: %+v vs %+v", second, first)
	}
	if countResolved() != 1 {
		t.Fatal("second resolve emitted events")
	}

	st, ok := svc.Stats("Winner")
	if !ok || st.Bets != 1 || st.Wins != 1 || !st.TotalPnL.Equal(d("3")) || st.Streak != 1 {
		t.Fatalf("winner stats = %+v", st)
	}
	lost, _ := svc.Stats("loser")
	if lost.Bets != 1 || !lost.WorstLoss.Equal(d("-3")) || lost.Streak != -1 {
		t.Fatalf("loser stats = %+v", lost)
	}
	if _, err := svc.Resolve(id, ""); !errors.Is(err, ErrNoWinner) {
		t.Fatalf("empty winner err = %v", err)
	}
}

func TestStreakAndLeaderboard(t *testing.T) {
	var st store.NicknameStats
	win := store.PaperBetResult{Won: true, PnL: d("2"), Stake: d("1")}
	loss := store.PaperBetResult{PnL: d("-1"), Stake: d("1")}
	applyResult(&st, win)
	applyResult(&st, win)
	if st.Streak != 2 {
		t.Fatalf("streak after two wins = %d", st.Streak)
	}
	applyResult(&st, loss)
	if st.Streak != -1 || !st.TotalPnL.Equal(d("3")) || !st.BestWin.Equal(d("2")) {
		t.Fatalf("stats = %+v", st)
	}

	svc, _, _, id := newService(t)
	svc.PlaceBet(id, "low", "sprinter", d("1"))
	svc.PlaceBet(id, "high", "miser", d("1"))
	if _, err := svc.Resolve(id, "miser"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	board := svc.Leaderboard(1, 0)
	if len(board) != 1 || board[0].Nickname != "high" {
		t.Fatalf("leaderboard = %+v", board)
	}
	if rest := svc.Leaderboard(10, 1); len(rest) != 1 || rest[0].Nickname != "low" {
		t.Fatalf("second page = %+v", rest)
	}
	if empty := svc.Leaderboard(10, 5); len(empty) != 0 {
		t.Fatalf("past the end = %+v", empty)
	}
}
