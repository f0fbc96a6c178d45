// Package agents holds the three built-in trading agents and the statistical
// profiles used to simulate their job outcomes.
package agents

import (
	"errors"

	"agent-arena/internal/store"
)

var ErrUnknownAgent = errors.New("unknown_agent")

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Profile struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Index       int                 `json:"index"`
	LatencyMS   Range               `json:"latency_ms"`
	GasUSD      Range               `json:"gas_usd"`
	SlippageBps Range               `json:"slippage_bps"`
	SuccessRate float64             `json:"success_rate"`
	FlagRate    float64             `json:"flag_rate"`
	Flags       []string            `json:"flags"`
	Policy      store.RoutingPolicy `json:"policy"`
}

type Registry struct {
	ordered []Profile
	byID    map[string]Profile
}

func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{byID: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		r.ordered = append(r.ordered, p)
		r.byID[p.ID] = p
	}
	return r
}

// Default returns the built-in roster. Index is the fixed slot used by the
// on-chain prediction pool.
func Default() *Registry {
	return NewRegistry(
		Profile{
			ID:          "sprinter",
			Name:        "Sprinter",
			Description: "Takes the first acceptable route; fast, pays for it in gas.",
			Index:       0,
			LatencyMS:   Range{Min: 600, Max: 2200},
			GasUSD:      Range{Min: 0.9, Max: 2.6},
			SlippageBps: Range{Min: 10, Max: 70},
			SuccessRate: 0.88,
			FlagRate:    0.12,
			Flags:       []string{"mev-exposure", "high-slippage"},
			Policy:      store.RoutingPolicy{Name: "fastest", PreferredVenue: "aggregator", MaxHops: 2, SlippageToleranceBps: 100},
		},
		Profile{
			ID:          "miser",
			Name:        "Miser",
			Description: "Waits for cheap blocks and batches hops to minimise gas.",
			Index:       1,
			LatencyMS:   Range{Min: 2000, Max: 6500},
			GasUSD:      Range{Min: 0.15, Max: 0.9},
			SlippageBps: Range{Min: 20, Max: 90},
			SuccessRate: 0.9,
			FlagRate:    0.06,
			Flags:       []string{"stale-quote"},
			Policy:      store.RoutingPolicy{Name: "cheapest", PreferredVenue: "batch-auction", MaxHops: 4, SlippageToleranceBps: 150},
		},
		Profile{
			ID:          "sentinel",
			Name:        "Sentinel",
			Description: "Private order flow and tight tolerances; rarely fails.",
			Index:       2,
			LatencyMS:   Range{Min: 1400, Max: 4200},
			GasUSD:      Range{Min: 0.5, Max: 1.6},
			SlippageBps: Range{Min: 3, Max: 30},
			SuccessRate: 0.97,
			FlagRate:    0.03,
			Flags:       []string{"partial-fill"},
			Policy:      store.RoutingPolicy{Name: "safest", PreferredVenue: "private-rpc", MaxHops: 1, SlippageToleranceBps: 50},
		},
	)
}

func (r *Registry) Lookup(id string) (Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return Profile{}, ErrUnknownAgent
	}
	return p, nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry) All() []Profile {
	return append([]Profile(nil), r.ordered...)
}

func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		out = append(out, p.ID)
	}
	return out
}

// Index returns the agent's fixed 0/1/2 slot.
func (r *Registry) Index(id string) (int, error) {
	p, err := r.Lookup(id)
	if err != nil {
		return -1, err
	}
	return p.Index, nil
}
