// Package service holds the risk-scoring engine and the ports the application layer depends on.
package service

import (
	"strings"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/utils"
)

// AverageScore is the mean of the three quizzes; 0 when all three are 0.
func AverageScore(o models.Observation) float64 {
	q1, q2, q3 := utils.Finite(o.Quiz1), utils.Finite(o.Quiz2), utils.Finite(o.Quiz3)
	if q1 == 0 && q2 == 0 && q3 == 0 {
		return 0
	}
	return (q1 + q2 + q3) / 3
}

// DeclinePercent is the drop from quiz1 to quiz3 relative to quiz1. Positive means scores fell.
func DeclinePercent(o models.Observation) float64 {
	q1, q3 := utils.Finite(o.Quiz1), utils.Finite(o.Quiz3)
	if q1 <= 0 {
		return 0
	}
	return (q1 - q3) / q1 * 100
}

// RiskFactors returns the triggered factor tokens in evaluation order.
func RiskFactors(o models.Observation) []string {
	factors := make([]string, 0, 3)
	if utils.Finite(o.Attendance) < constants.AttendanceThreshold {
		factors = append(factors, constants.FactorAttendance)
	}
	if DeclinePercent(o) > constants.DeclineThreshold {
		factors = append(factors, constants.FactorDecline)
	}
	if AverageScore(o) < constants.AverageThreshold {
		factors = append(factors, constants.FactorAverage)
	}
	return factors
}

// LevelForFactorCount maps the number of triggered factors to a risk level.
func LevelForFactorCount(n int) constants.RiskLevel {
	switch {
	case n >= 2:
		return constants.RiskLevelHigh
	case n == 1:
		return constants.RiskLevelMedium
	default:
		return constants.RiskLevelLow
	}
}

// Classify turns one observation into a verdict. It never fails: non-finite
// inputs are treated as 0.
func Classify(o models.Observation) models.RiskVerdict {
	factors := RiskFactors(o)

	reason := constants.ReasonOK
	if len(factors) > 0 {
		reason = strings.Join(factors, constants.ReasonSeparator)
	}

	avg := AverageScore(o)
	return models.RiskVerdict{
		RiskLevel:   LevelForFactorCount(len(factors)),
		Reason:      reason,
		XPScore:     int(avg * 10),
		HealthScore: utils.ClampInt(int(avg), 0, 100),
	}
}
