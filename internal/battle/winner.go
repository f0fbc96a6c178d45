package battle

import "agent-arena/internal/store"

const reliabilityWindow = 10

// DetermineWinner applies the rule for battle type t to terminal scorecards.
// reliability returns an agent's trailing fulfilled fraction and is only
// consulted for reliability battles. An empty result means no winner.
func DetermineWinner(t store.BattleType, cards []store.Scorecard, reliability func(agentID string) float64) string {
	if len(cards) == 0 {
		return ""
	}
	if t == store.BattleReliability {
		winner, best := "", -1.0
		for _, c := range cards {
			if r := reliability(c.AgentID); r > best {
				winner, best = c.AgentID, r
			}
		}
		return winner
	}

	pool := make([]store.Scorecard, 0, len(cards))
	for _, c := range cards {
		if c.Status == store.CardFulfilled {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = cards
	}

	var metric func(store.Scorecard) (float64, bool)
	switch t {
	case store.BattleSpeed:
		metric = func(c store.Scorecard) (float64, bool) {
			if c.LatencyMS == nil {
				return 0, false
			}
			return float64(*c.LatencyMS), true
		}
	case store.BattleGas:
		metric = func(c store.Scorecard) (float64, bool) {
			if c.GasUsedUSD == nil {
				return 0, false
			}
			return *c.GasUsedUSD, true
		}
	case store.BattleSlippage:
		metric = func(c store.Scorecard) (float64, bool) {
			if c.SlippageBps == nil {
				return 0, false
			}
			return *c.SlippageBps, true
		}
		reporting := pool[:0:0]
		for _, c := range pool {
			if c.SlippageBps != nil {
				reporting = append(reporting, c)
			}
		}
		if len(reporting) > 0 {
			pool = reporting
		}
	default:
		return ""
	}

	// Cards without the metric sort last; equal values keep listing order.
	winner := pool[0]
	bestVal, bestOK := metric(winner)
	for _, c := range pool[1:] {
		v, ok := metric(c)
		if !ok {
			continue
		}
		if !bestOK || v < bestVal {
			winner, bestVal, bestOK = c, v, true
		}
	}
	return winner.AgentID
}

// TrailingReliability is the fulfilled fraction of the agent's most recent
// receipts, 0 when it has none.
func TrailingReliability(st *store.Store) func(agentID string) float64 {
	return func(agentID string) float64 {
		recent := st.RecentReceiptsByAgent(agentID, reliabilityWindow)
		if len(recent) == 0 {
			return 0
		}
		ok := 0
		for _, r := range recent {
			if r.Outcome.Status == store.JobFulfilled {
				ok++
			}
		}
		return float64(ok) / float64(len(recent))
	}
}
