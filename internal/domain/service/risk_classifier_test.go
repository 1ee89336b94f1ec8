package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/constants"
)

func obs(id, subject string, q1, q2, q3, att float64) models.Observation {
	return models.Observation{StudentID: id, Subject: subject, Quiz1: q1, Quiz2: q2, Quiz3: q3, Attendance: att}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		in     models.Observation
		level  constants.RiskLevel
		reason string
		xp     int
		health int
	}{
		{"steady student", obs("S001", "Math", 80, 78, 76, 90), constants.RiskLevelLow, "OK", 780, 78},
		{"absent and declining", obs("S002", "Math", 80, 60, 50, 60), constants.RiskLevelHigh, "Attendance+Decline", 633, 63},
		{"low average only", obs("S003", "Physics", 30, 30, 30, 90), constants.RiskLevelMedium, "Average", 300, 30},
		{"all zero", obs("S004", "Physics", 0, 0, 0, 0), constants.RiskLevelHigh, "Attendance+Average", 0, 0},
		{"every factor", obs("S005", "Chemistry", 50, 20, 10, 50), constants.RiskLevelHigh, "Attendance+Decline+Average", 266, 26},
		{"attendance boundary", obs("S006", "Biology", 60, 60, 60, 75), constants.RiskLevelLow, "OK", 600, 60},
		{"average boundary", obs("S007", "English", 40, 40, 40, 80), constants.RiskLevelLow, "OK", 400, 40},
		{"improving student", obs("S008", "Math", 50, 70, 90, 95), constants.RiskLevelLow, "OK", 700, 70},
		{"health clamped", obs("S009", "Math", 150, 150, 150, 100), constants.RiskLevelLow, "OK", 1500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := service.Classify(tt.in)
			assert.Equal(t, tt.level, v.RiskLevel)
			assert.Equal(t, tt.reason, v.Reason)
			assert.Equal(t, tt.xp, v.XPScore)
			assert.Equal(t, tt.health, v.HealthScore)
		})
	}
}

func TestClassify_ReferenceRows(t *testing.T) {
	steady := obs("S", "Math", 75, 78, 76, 88)
	v := service.Classify(steady)
	assert.Equal(t, constants.RiskLevelLow, v.RiskLevel)
	assert.Equal(t, "OK", v.Reason)

	dropping := obs("S", "Math", 80, 70, 50, 70)
	assert.Equal(t, []string{"Attendance", "Decline"}, service.RiskFactors(dropping))
	assert.Equal(t, constants.RiskLevelHigh, service.Classify(dropping).RiskLevel)

	// Quiz3 above quiz1 gives a negative decline, which never triggers.
	rising := obs("S", "Math", 30, 35, 32, 90)
	assert.InDelta(t, 32.33, service.AverageScore(rising), 0.01)
	assert.InDelta(t, -6.67, service.DeclinePercent(rising), 0.01)
	v = service.Classify(rising)
	assert.Equal(t, constants.RiskLevelMedium, v.RiskLevel)
	assert.Equal(t, "Average", v.Reason)
	assert.Equal(t, 323, v.XPScore)
	assert.Equal(t, 32, v.HealthScore)
}

func TestClassify_NaNTreatedAsZero(t *testing.T) {
	v := service.Classify(obs("S010", "Math", math.NaN(), math.NaN(), math.NaN(), 90))
	assert.Equal(t, constants.RiskLevelMedium, v.RiskLevel)
	assert.Equal(t, "Average", v.Reason)
	assert.Equal(t, 0, v.XPScore)
}

func TestDeclinePercent(t *testing.T) {
	assert.InDelta(t, 37.5, service.DeclinePercent(obs("S", "M", 80, 0, 50, 0)), 1e-9)
	assert.Equal(t, 0.0, service.DeclinePercent(obs("S", "M", 0, 0, 50, 0)))
	assert.InDelta(t, -100.0, service.DeclinePercent(obs("S", "M", 50, 0, 100, 0)), 1e-9)
}

func TestClassify_ReasonMatchesLevel(t *testing.T) {
	for q := 0.0; q <= 100; q += 12.5 {
		for att := 0.0; att <= 100; att += 10 {
			v := service.Classify(obs("S", "M", q, q/2, q/3, att))
			factors := service.RiskFactors(obs("S", "M", q, q/2, q/3, att))
			assert.Equal(t, service.LevelForFactorCount(len(factors)), v.RiskLevel)
			if len(factors) == 0 {
				assert.Equal(t, constants.ReasonOK, v.Reason)
			}
		}
	}
}

func TestClassify_AttendanceMonotonic(t *testing.T) {
	low := service.Classify(obs("S", "M", 70, 60, 55, 60))
	high := service.Classify(obs("S", "M", 70, 60, 55, 95))
	assert.GreaterOrEqual(t, low.RiskLevel.Severity(), high.RiskLevel.Severity())
}
