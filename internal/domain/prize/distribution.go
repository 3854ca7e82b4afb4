// Package prize computes how a tournament's entry fees are split between the
// company, the winner and per-kill rewards. Everything here is pure.
package prize

import "strings"

// MatchType is the team format of a tournament.
type MatchType string

const (
	MatchSolo  MatchType = "solo"
	MatchDuo   MatchType = "duo"
	MatchSquad MatchType = "squad"
)

// budgetEpsilon absorbs floating-point rounding in the budget check.
const budgetEpsilon = 0.01

// ParseMatchType normalises s; empty or unknown values are treated as squad.
func ParseMatchType(s string) MatchType {
	switch MatchType(strings.ToLower(strings.TrimSpace(s))) {
	case MatchSolo:
		return MatchSolo
	case MatchDuo:
		return MatchDuo
	default:
		return MatchSquad
	}
}

// TeamSize is the number of players in one unit of the match type.
func (m MatchType) TeamSize() int {
	switch m {
	case MatchSolo:
		return 1
	case MatchDuo:
		return 2
	default:
		return 4
	}
}

// KillCount approximates the kill-reward-eligible eliminations: every player except the winning unit.
func (m MatchType) KillCount(totalPlayers float64) float64 {
	return max(totalPlayers-float64(m.TeamSize()), 0)
}

// Distribution is the result of ComputeDistribution.
type Distribution struct {
	MatchType              MatchType `json:"match_type"`
	KillCount              float64   `json:"kill_count"`
	TotalRevenue           float64   `json:"total_revenue"`
	CompanyCommission      float64   `json:"company_commission"`
	PrizePool              float64   `json:"prize_pool"`
	TotalKillReward        float64   `json:"total_kill_reward"`
	TotalPrizeDistribution float64   `json:"total_prize_distribution"`
	WithinBudget           bool      `json:"is_distribution_within_budget"`
}

// ComputeDistribution derives the prize pool and checks that the first prize plus
// kill rewards fit into it. Inputs are taken at face value: negative numbers are
// not rejected, callers validate before submitting.
func ComputeDistribution(entryFee, totalPlayers, commissionPercentage, firstPrize, perKillReward float64, matchType string) Distribution {
	mt := ParseMatchType(matchType)
	kills := mt.KillCount(totalPlayers)

	revenue := entryFee * totalPlayers
	commission := revenue * (commissionPercentage / 100)
	pool := revenue - commission
	killReward := perKillReward * kills
	total := firstPrize + killReward

	return Distribution{
		MatchType:              mt,
		KillCount:              kills,
		TotalRevenue:           revenue,
		CompanyCommission:      commission,
		PrizePool:              pool,
		TotalKillReward:        killReward,
		TotalPrizeDistribution: total,
		WithinBudget:           total <= pool+budgetEpsilon,
	}
}
