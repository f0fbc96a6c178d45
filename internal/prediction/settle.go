package prediction

import (
	"agent-arena/internal/store"

	"github.com/shopspring/decimal"
)

const (
	pnlPlaces = 8
	roiPlaces = 2
)

var hundred = decimal.NewFromInt(100)

// Pools sums stakes over bets, overall and per picked agent.
func Pools(bets []store.PaperBet) (total decimal.Decimal, byAgent map[string]decimal.Decimal) {
	byAgent = map[string]decimal.Decimal{}
	for _, b := range bets {
		total = total.Add(b.Stake)
		byAgent[b.AgentID] = byAgent[b.AgentID].Add(b.Stake)
	}
	return total, byAgent
}

// Settle computes pari-mutuel results for bets given the winning agent.
// Losers forfeit their stake and winners split the losers' pool in
// proportion to their stake. The last winning bet absorbs the rounding
// remainder so the results sum to exactly zero whenever anyone backed the
// winner.
func Settle(bets []store.PaperBet, winner string) []store.PaperBetResult {
	total, byAgent := Pools(bets)
	winnerPool := byAgent[winner]
	loserPool := total.Sub(winnerPool)

	lastWinner := -1
	for i, b := range bets {
		if b.AgentID == winner {
			lastWinner = i
		}
	}

	out := make([]store.PaperBetResult, len(bets))
	distributed := decimal.Zero
	for i, b := range bets {
		r := store.PaperBetResult{
			BetID:    b.ID,
			BattleID: b.BattleID,
			Nickname: b.Nickname,
			AgentID:  b.AgentID,
			Stake:    b.Stake,
		}
		switch {
		case b.AgentID != winner:
			r.PnL = b.Stake.Neg()
		case winnerPool.IsZero():
			r.PnL = decimal.Zero
			r.Won = true
		case i == lastWinner:
			r.PnL = loserPool.Sub(distributed)
			r.Won = true
		default:
			r.PnL = b.Stake.Mul(loserPool).DivRound(winnerPool, pnlPlaces)
			distributed = distributed.Add(r.PnL)
			r.Won = true
		}
		if b.Stake.IsPositive() {
			r.ROIPct = r.PnL.Div(b.Stake).Mul(hundred).Round(roiPlaces)
		}
		out[i] = r
	}
	return out
}
