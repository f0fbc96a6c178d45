// Package score computes the agent quality index (AQI) from job receipts.
package score

import (
	"math"

	"agent-arena/internal/store"
)

const (
	WeightReliability = 0.30
	WeightSafety      = 0.25
	WeightSpeed       = 0.20
	WeightEconomics   = 0.15
	WeightFeedback    = 0.10

	neutralFeedback = 70.0
)

type Breakdown struct {
	Composite   float64 `json:"composite"`
	Reliability float64 `json:"reliability"`
	Safety      float64 `json:"safety"`
	Speed       float64 `json:"speed"`
	Economics   float64 `json:"economics"`
	Feedback    float64 `json:"feedback"`
	Jobs        int     `json:"jobs"`
}

// Compute scores one agent's receipts. Sub-scores are rounded to one decimal
// before they are weighted, so the composite is reproducible from them.
func Compute(receipts []store.Receipt) Breakdown {
	b := Breakdown{
		Reliability: round1(reliability(receipts)),
		Safety:      round1(average(receipts, safety)),
		Speed:       round1(average(receipts, speed)),
		Economics:   round1(average(receipts, economics)),
		Feedback:    round1(feedback(receipts)),
		Jobs:        len(receipts),
	}
	b.Composite = round1(b.Reliability*WeightReliability +
		b.Safety*WeightSafety +
		b.Speed*WeightSpeed +
		b.Economics*WeightEconomics +
		b.Feedback*WeightFeedback)
	return b
}

func reliability(receipts []store.Receipt) float64 {
	if len(receipts) == 0 {
		return 0
	}
	ok := 0
	for _, r := range receipts {
		if r.Outcome.Status == store.JobFulfilled {
			ok++
		}
	}
	return float64(ok) / float64(len(receipts)) * 100
}

func safety(r store.Receipt) float64 {
	s := 100.0
	s -= math.Min(float64(len(r.Outcome.SafetyFlags))*10, 50)
	over := math.Max(0, r.Outcome.SlippageBps-r.Constraints.MaxSlippageBps)
	s -= math.Min(over/100*15, 30)
	return math.Max(0, s)
}

// speed is 100 within the deadline, 0 at three times the deadline or more.
func speed(r store.Receipt) float64 {
	if r.Constraints.DeadlineMS <= 0 {
		return 0
	}
	return ramp(float64(r.Outcome.LatencyMS)/float64(r.Constraints.DeadlineMS), 3)
}

// economics is 100 within the gas budget, 0 at double the budget or more.
func economics(r store.Receipt) float64 {
	if r.Constraints.MaxGasUSD <= 0 {
		return 0
	}
	return ramp(r.Outcome.GasUsedUSD/r.Constraints.MaxGasUSD, 2)
}

func feedback(receipts []store.Receipt) float64 {
	sum, n := 0.0, 0
	for _, r := range receipts {
		if r.Feedback == nil {
			continue
		}
		sum += float64(*r.Feedback) * 20
		n++
	}
	if n == 0 {
		return neutralFeedback
	}
	return sum / float64(n)
}

// ramp maps ratio 1 → 100 and ratio zeroAt → 0, linear between.
func ramp(ratio, zeroAt float64) float64 {
	switch {
	case ratio <= 1:
		return 100
	case ratio >= zeroAt:
		return 0
	}
	return math.Max(0, 100*(1-(ratio-1)/(zeroAt-1)))
}

func average(receipts []store.Receipt, fn func(store.Receipt) float64) float64 {
	if len(receipts) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range receipts {
		sum += fn(r)
	}
	return sum / float64(len(receipts))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
