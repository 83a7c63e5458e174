// Package badges holds the tier definitions and derives which badges a
// user's stats have earned.
package badges

import "github.com/jime0083/BatsuGaku/models"

// Badge types.
const (
	TypeStreak = "streak"
	TypeTotal  = "total"
	TypeSkip   = "skip"
)

// Definition is one awardable badge tier.
type Definition struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Tier        int    `json:"tier"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Definitions lists every tier, lowest first within each type.
var Definitions = []Definition{
	{ID: "streak-3", Type: TypeStreak, Tier: 3, Label: "🔥 3日連続", Description: "3日連続で学習すると獲得"},
	{ID: "streak-7", Type: TypeStreak, Tier: 7, Label: "🔥🔥 7日連続", Description: "7日連続で学習すると獲得"},
	{ID: "streak-14", Type: TypeStreak, Tier: 14, Label: "🔥🔥🔥 14日連続", Description: "14日連続で学習すると獲得"},
	{ID: "streak-30", Type: TypeStreak, Tier: 30, Label: "🏆 30日連続", Description: "30日連続で学習すると獲得"},
	{ID: "streak-50", Type: TypeStreak, Tier: 50, Label: "💎 50日連続", Description: "50日連続で学習すると獲得"},
	{ID: "streak-100", Type: TypeStreak, Tier: 100, Label: "👑 100日連続", Description: "100日連続で学習すると獲得"},
	{ID: "total-10", Type: TypeTotal, Tier: 10, Label: "🌱 10日達成", Description: "累計10日学習すると獲得"},
	{ID: "total-30", Type: TypeTotal, Tier: 30, Label: "🌿 30日達成", Description: "累計30日学習すると獲得"},
	{ID: "total-50", Type: TypeTotal, Tier: 50, Label: "🌳 50日達成", Description: "累計50日学習すると獲得"},
	{ID: "total-100", Type: TypeTotal, Tier: 100, Label: "🏔 100日達成", Description: "累計100日学習すると獲得"},
	{ID: "total-200", Type: TypeTotal, Tier: 200, Label: "🌍 200日達成", Description: "累計200日学習すると獲得"},
	{ID: "total-365", Type: TypeTotal, Tier: 365, Label: "⭐ 365日達成", Description: "累計365日学習すると獲得"},
	{ID: "skip-10", Type: TypeSkip, Tier: 10, Label: "💀 累計サボり10回", Description: "累計サボり10回で獲得"},
	{ID: "skip-30", Type: TypeSkip, Tier: 30, Label: "👻 累計サボり30回", Description: "累計サボり30回で獲得"},
	{ID: "skip-50", Type: TypeSkip, Tier: 50, Label: "😈 累計サボり50回", Description: "累計サボり50回で獲得"},
}

// Earned returns every definition the given stats qualify for.
func Earned(stats models.Stats) []Definition {
	var out []Definition
	for _, def := range Definitions {
		switch def.Type {
		case TypeStreak:
			if stats.LongestStreak >= def.Tier {
				out = append(out, def)
			}
		case TypeTotal:
			if stats.TotalStudyDays >= def.Tier {
				out = append(out, def)
			}
		case TypeSkip:
			if stats.TotalSkipDays >= def.Tier {
				out = append(out, def)
			}
		}
	}
	return out
}
