package battle

import (
	"testing"

	"agent-arena/internal/store"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func card(agent string, status store.ScorecardStatus, latency int64, gas, slip *float64) store.Scorecard {
	return store.Scorecard{AgentID: agent, Status: status, LatencyMS: i64(latency), GasUsedUSD: gas, SlippageBps: slip}
}

func TestReliabilityWinnerUsesTrailingReceipts(t *testing.T) {
	st := store.New(store.Limits{})
	seed := func(agent string, fulfilled int) {
		for i := 0; i < 10; i++ {
			status := store.JobFailed
			if i < fulfilled {
				status = store.JobFulfilled
			}
			if err := st.InsertReceipt(store.Receipt{JobID: store.NewID(store.PrefixJob), AgentID: agent, Outcome: store.Outcome{Status: status}}); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
	}
	seed("miser", 7)
	seed("sentinel", 9)
	cards := []store.Scorecard{{AgentID: "miser"}, {AgentID: "sentinel"}}

	if got := DetermineWinner(store.BattleReliability, cards, TrailingReliability(st)); got != "sentinel" {
		t.Fatalf("winner = %q, want sentinel", got)
	}

	seed("sprinter", 9)
	tied := []store.Scorecard{{AgentID: "sprinter"}, {AgentID: "sentinel"}}
	if got := DetermineWinner(store.BattleReliability, tied, TrailingReliability(st)); got != "sprinter" {
		t.Fatalf("tie winner = %q, want first listed sprinter", got)
	}
}

func TestReliabilityWithoutHistoryPicksFirst(t *testing.T) {
	st := store.New(store.Limits{})
	cards := []store.Scorecard{{AgentID: "miser"}, {AgentID: "sprinter"}}
	if got := DetermineWinner(store.BattleReliability, cards, TrailingReliability(st)); got != "miser" {
		t.Fatalf("winner = %q", got)
	}
}

func TestMetricWinners(t *testing.T) {
	cases := []struct {
		name  string
		typ   store.BattleType
		cards []store.Scorecard
		want  string
	}{
		{
			name: "speed prefers fulfilled",
			typ:  store.BattleSpeed,
			cards: []store.Scorecard{
				card("a", store.CardFailed, 100, nil, nil),
				card("b", store.CardFulfilled, 900, nil, nil),
				card("c", store.CardFulfilled, 500, nil, nil),
			},
			want: "c",
		},
		{
			name: "speed falls back to all failed",
			typ:  store.BattleSpeed,
			cards: []store.Scorecard{
				card("a", store.CardFailed, 800, nil, nil),
				card("b", store.CardFailed, 300, nil, nil),
				card("c", store.CardFailed, 600, nil, nil),
			},
			want: "b",
		},
		{
			name: "gas minimum",
			typ:  store.BattleGas,
			cards: []store.Scorecard{
				card("a", store.CardFulfilled, 1, f64(1.2), nil),
				card("b", store.CardFulfilled, 1, f64(0.4), nil),
			},
			want: "b",
		},
		{
			name: "missing metric sorts last",
			typ:  store.BattleGas,
			cards: []store.Scorecard{
				card("a", store.CardFulfilled, 1, nil, nil),
				card("b", store.CardFulfilled, 1, f64(2.5), nil),
			},
			want: "b",
		},
		{
			name: "slippage prefers reported values",
			typ:  store.BattleSlippage,
			cards: []store.Scorecard{
				card("a", store.CardFulfilled, 1, nil, nil),
				card("b", store.CardFulfilled, 1, nil, f64(40)),
				card("c", store.CardFulfilled, 1, nil, f64(12)),
			},
			want: "c",
		},
		{
			name: "equal values keep listing order",
			typ:  store.BattleSlippage,
			cards: []store.Scorecard{
				card("a", store.CardFulfilled, 1, nil, f64(10)),
				card("b", store.CardFulfilled, 1, nil, f64(10)),
			},
			want: "a",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetermineWinner(tc.typ, tc.cards, nil); got != tc.want {
				t.Fatalf("winner = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNoCardsNoWinner(t *testing.T) {
	if got := DetermineWinner(store.BattleSpeed, nil, nil); got != "" {
		t.Fatalf("winner = %q", got)
	}
}
