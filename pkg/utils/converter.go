// Package utils provides utility functions for the AEWIS risk service.
// This file contains numeric conversion and rounding helpers shared by the scoring engine and DTOs.
package utils

import (
	"math"
	"strconv"
	"strings"
)

// ================================================================================
// Rounding
// ================================================================================

// Round1 rounds to one decimal place the way the dashboard has always reported
// percentages: the exact binary value is rounded, so 0.15 (stored just below
// 0.15) becomes 0.1 while 0.45 becomes 0.5.
func Round1(v float64) float64 {
	return RoundTo(v, 1)
}

// RoundTo rounds v to the given number of decimal places using the shortest
// correctly rounded decimal form of v. Non-finite values become 0.
func RoundTo(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil || r == 0 {
		return 0
	}
	return r
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat bounds v to [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Finite replaces NaN and infinities with zero.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ================================================================================
// String Conversion
// ================================================================================

// ParseScore parses a numeric cell. Empty cells are 0; ok is false for non-numeric text.
func ParseScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return Finite(v), true
}

// UniqueStrings returns the non-empty trimmed values of in, first occurrence wins.
func UniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
