package models

import (
	"encoding/json"
	"fmt"

	"github.com/turtacn/aewis/pkg/constants"
)

// RiskCounts tallies verdicts per level.
type RiskCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total is the number of tallied verdicts.
func (c RiskCounts) Total() int {
	return c.High + c.Medium + c.Low
}

// Add tallies one verdict level.
func (c *RiskCounts) Add(level constants.RiskLevel) {
	switch level {
	case constants.RiskLevelHigh:
		c.High++
	case constants.RiskLevelMedium:
		c.Medium++
	default:
		c.Low++
	}
}

// SubjectCount is the per-subject input to crisis detection.
type SubjectCount struct {
	Total int
	High  int
}

// SubjectTally keeps per-subject counts together with first-seen subject order.
type SubjectTally struct {
	order  []string
	counts map[string]*SubjectCount
}

// NewSubjectTally creates an empty tally.
func NewSubjectTally() *SubjectTally {
	return &SubjectTally{counts: make(map[string]*SubjectCount)}
}

// Add records one row for subject.
func (t *SubjectTally) Add(subject string, level constants.RiskLevel) {
	c, ok := t.counts[subject]
	if !ok {
		c = &SubjectCount{}
		t.counts[subject] = c
		t.order = append(t.order, subject)
	}
	c.Total++
	if level == constants.RiskLevelHigh {
		c.High++
	}
}

// Set overwrites the counts of subject.
func (t *SubjectTally) Set(subject string, total, high int) {
	if _, ok := t.counts[subject]; !ok {
		t.order = append(t.order, subject)
	}
	t.counts[subject] = &SubjectCount{Total: total, High: high}
}

// Subjects returns subjects in first-seen order.
func (t *SubjectTally) Subjects() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Get returns the counts for subject.
func (t *SubjectTally) Get(subject string) SubjectCount {
	if c, ok := t.counts[subject]; ok {
		return *c
	}
	return SubjectCount{}
}

// RiskBucket is one bar of the risk distribution chart.
type RiskBucket struct {
	Level constants.RiskLevel `json:"level"`
	Count int                 `json:"count"`
}

// DeclineSample is the first observed decline for a student-subject pair.
type DeclineSample struct {
	StudentID  string  `json:"student_id"`
	Subject    string  `json:"subject"`
	DeclinePct float64 `json:"decline_pct"`
}

// HeatmapRow is serialized as a positional array:
// [student_id, subject, risk_level, xp_score, score].
// Score is the average quiz score in reports and the health score in upload echoes.
type HeatmapRow struct {
	StudentID string
	Subject   string
	RiskLevel constants.RiskLevel
	XPScore   int
	Score     float64
}

// MarshalJSON implements json.Marshaler.
func (h HeatmapRow) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{h.StudentID, h.Subject, h.RiskLevel, h.XPScore, h.Score})
}

// UnmarshalJSON implements json.Unmarshaler so cached reports round-trip.
func (h *HeatmapRow) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 5 {
		return fmt.Errorf("heatmap row: expected 5 elements, got %d", len(raw))
	}
	var level string
	for i, dst := range []interface{}{&h.StudentID, &h.Subject, &level, &h.XPScore, &h.Score} {
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return fmt.Errorf("heatmap row element %d: %w", i, err)
		}
	}
	h.RiskLevel = constants.RiskLevel(level)
	return nil
}

// KPISet is the headline dashboard figures.
type KPISet struct {
	HealthScore float64 `json:"health_score"`
	RiskTrend   float64 `json:"risk_trend"`
	SuccessRate float64 `json:"success_rate"`
}

// ChartSet is the chart data behind the dashboard.
type ChartSet struct {
	RiskDistribution []RiskBucket       `json:"risk_distribution"`
	SubjectRisks     map[string]float64 `json:"subject_risks"`
	DeclineTrends    []DeclineSample    `json:"decline_trends"`
}

// AggregateReport is computed on demand from a tenant collection and never persisted.
type AggregateReport struct {
	Counts         RiskCounts   `json:"counts"`
	KPIs           KPISet       `json:"kpis"`
	Charts         ChartSet     `json:"charts"`
	Heatmap        []HeatmapRow `json:"heatmap_matrix"`
	CrisisSubjects []string     `json:"crisis_subjects"`
	// SubjectOrder lists subjects in first-seen order.
	SubjectOrder []string `json:"subject_order"`
}
