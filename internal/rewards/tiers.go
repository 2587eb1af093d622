// Package rewards derives unlocked reward tiers from account-level
// aggregated progress. Derivation is pure and idempotent; persistence of
// the earned set belongs to the account repository.
package rewards

import "shelley-server/internal/models"

// RewardType distinguishes badge tiers from discount-code tiers.
type RewardType string

const (
	RewardBadge    RewardType = "badge"
	RewardDiscount RewardType = "discount"
)

// Reward is the payload granted by a tier.
type Reward struct {
	Type    RewardType `json:"type"`
	Value   string     `json:"value,omitempty"`
	Code    string     `json:"code,omitempty"`
	Percent int        `json:"percent,omitempty"`
}

// Tier is a named predicate over aggregated progress plus its payload.
type Tier struct {
	ID          string                                `json:"id"`
	Name        string                                `json:"name"`
	Description string                                `json:"description"`
	Condition   func(models.AggregatedProgress) bool  `json:"-"`
	Reward      Reward                                `json:"reward"`
}

// Tiers is the fixed tier list, evaluated in order.
var Tiers = []Tier{
	{
		ID:          "explorer",
		Name:        "Explorer",
		Description: "Played your first game",
		Condition:   func(p models.AggregatedProgress) bool { return p.GamesCompleted >= 1 },
		Reward:      Reward{Type: RewardBadge, Value: "explorer"},
	},
	{
		ID:          "dedicated",
		Name:        "Dedicated Player",
		Description: "Completed 3 games without skipping",
		Condition:   func(p models.AggregatedProgress) bool { return p.GamesCompleted >= 3 },
		Reward:      Reward{Type: RewardDiscount, Code: "PO10", Percent: 10},
	},
	{
		ID:          "forbidden_six",
		Name:        "The Forbidden Six",
		Description: "Collected all 6 artifact pieces",
		Condition:   func(p models.AggregatedProgress) bool { return p.PiecesCollected >= 6 },
		Reward:      Reward{Type: RewardDiscount, Code: "SIX25", Percent: 25},
	},
	{
		ID:          "bonded",
		Name:        "Po's Friend",
		Description: "Built a bond with Po",
		Condition:   func(p models.AggregatedProgress) bool { return p.PoRelationship >= 50 },
		Reward:      Reward{Type: RewardDiscount, Code: "BONDED15", Percent: 15},
	},
	{
		ID:          "collector",
		Name:        "Pick Collector",
		Description: "Collected 500 picks total",
		Condition:   func(p models.AggregatedProgress) bool { return p.TotalPicks >= 500 },
		Reward:      Reward{Type: RewardDiscount, Code: "PICKS20", Percent: 20},
	},
}

// Evaluate returns the ids of tiers whose condition holds now and which
// are absent from the previously-earned set. Re-running with unchanged
// inputs returns an empty slice.
func Evaluate(aggregate models.AggregatedProgress, earned []string) []string {
	earnedSet := make(map[string]struct{}, len(earned))
	for _, id := range earned {
		earnedSet[id] = struct{}{}
	}

	var newly []string
	for _, tier := range Tiers {
		if _, ok := earnedSet[tier.ID]; ok {
			continue
		}
		if tier.Condition(aggregate) {
			newly = append(newly, tier.ID)
		}
	}
	return newly
}
