package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/aewis/internal/domain/service"
)

func TestLevel(t *testing.T) {
	cases := map[int]int{
		-100:  1,
		0:     1,
		49:    1,
		50:    2,
		780:   16,
		949:   19,
		950:   20,
		10000: 20,
	}
	for xp, want := range cases {
		assert.Equal(t, want, service.Level(xp), "xp=%d", xp)
	}
}

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		xp    int
		badge service.Badge
		label string
	}{
		{-5, service.BadgeBronze, "⬜ Bronze"},
		{249, service.BadgeBronze, "⬜ Bronze"},
		{250, service.BadgeSilver, "🥉 Silver"},
		{499, service.BadgeSilver, "🥉 Silver"},
		{500, service.BadgeGold, "🥈 Gold"},
		{799, service.BadgeGold, "🥈 Gold"},
		{800, service.BadgePlatinum, "🏆 Platinum"},
	}
	for _, tt := range tests {
		b := service.BadgeFor(tt.xp)
		assert.Equal(t, tt.badge, b, "xp=%d", tt.xp)
		assert.Equal(t, tt.label, b.Label())
	}
}

func TestLevel_NonDecreasing(t *testing.T) {
	prev := service.Level(-1000)
	for xp := -999; xp <= 2000; xp++ {
		l := service.Level(xp)
		assert.GreaterOrEqual(t, l, prev)
		prev = l
	}
}
