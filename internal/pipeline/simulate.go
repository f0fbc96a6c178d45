package pipeline

import (
	"math"
	"math/rand/v2"
	"sync"

	"agent-arena/internal/agents"
	"agent-arena/internal/store"
)

// lockedRand serialises access to a *rand.Rand shared by concurrent jobs.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *lockedRand) simulate(p agents.Profile) store.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := store.Outcome{
		Status:      store.JobFailed,
		LatencyMS:   int64(math.Round(r.uniform(p.LatencyMS))),
		GasUsedUSD:  roundTo(r.uniform(p.GasUSD), 4),
		SlippageBps: roundTo(r.uniform(p.SlippageBps), 1),
		SafetyFlags: []string{},
	}
	if r.rnd.Float64() < p.SuccessRate {
		out.Status = store.JobFulfilled
	}
	if len(p.Flags) > 0 && r.rnd.Float64() < p.FlagRate {
		out.SafetyFlags = append(out.SafetyFlags, p.Flags[r.rnd.IntN(len(p.Flags))])
	}
	return out
}

func (r *lockedRand) uniform(rg agents.Range) float64 {
	if rg.Max <= rg.Min {
		return rg.Min
	}
	return rg.Min + r.rnd.Float64()*(rg.Max-rg.Min)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
