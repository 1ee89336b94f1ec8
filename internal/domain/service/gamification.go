package service

import (
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/utils"
)

// Badge is a tier on the XP ladder.
type Badge string

const (
	BadgeBronze   Badge = "Bronze"
	BadgeSilver   Badge = "Silver"
	BadgeGold     Badge = "Gold"
	BadgePlatinum Badge = "Platinum"
)

// Label is the dashboard rendering of the badge.
func (b Badge) Label() string {
	switch b {
	case BadgePlatinum:
		return "🏆 Platinum"
	case BadgeGold:
		return "🥈 Gold"
	case BadgeSilver:
		return "🥉 Silver"
	default:
		return "⬜ Bronze"
	}
}

// Level maps xp to a level in [1,20].
func Level(xp int) int {
	// Go division truncates toward zero; negative xp is clamped up to MinLevel anyway.
	return utils.ClampInt(xp/constants.XPPerLevel+1, constants.MinLevel, constants.MaxLevel)
}

// BadgeFor returns the highest tier xp qualifies for.
func BadgeFor(xp int) Badge {
	switch {
	case xp >= 800:
		return BadgePlatinum
	case xp >= 500:
		return BadgeGold
	case xp >= 250:
		return BadgeSilver
	default:
		return BadgeBronze
	}
}
