package store

import "time"

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (r Receipt) clone() Receipt {
	out := r
	out.Outcome.SafetyFlags = append([]string(nil), r.Outcome.SafetyFlags...)
	out.Swap = clonePtr(r.Swap)
	if r.Quote != nil {
		q := *r.Quote
		q.Raw = append([]byte(nil), r.Quote.Raw...)
		out.Quote = &q
	}
	out.Tx = clonePtr(r.Tx)
	if r.OnChain != nil {
		oc := *r.OnChain
		oc.VerifiedAt = clonePtr[time.Time](r.OnChain.VerifiedAt)
		out.OnChain = &oc
	}
	out.Feedback = clonePtr(r.Feedback)
	out.Policy = clonePtr(r.Policy)
	out.Economics = clonePtr(r.Economics)
	return out
}

func (c Scorecard) clone() Scorecard {
	out := c
	out.LatencyMS = clonePtr(c.LatencyMS)
	out.GasUsedUSD = clonePtr(c.GasUsedUSD)
	out.SlippageBps = clonePtr(c.SlippageBps)
	return out
}

func (b BattleRecord) clone() BattleRecord {
	out := b
	out.Agents = append([]string(nil), b.Agents...)
	out.Swap = clonePtr(b.Swap)
	out.Scorecards = make([]Scorecard, len(b.Scorecards))
	for i, c := range b.Scorecards {
		out.Scorecards[i] = c.clone()
	}
	return out
}
