package models

import (
	"time"

	"github.com/turtacn/aewis/pkg/constants"
)

// Observation is one student's quiz and attendance record for one subject.
// Scores are expected in [0,100] but are not enforced.
type Observation struct {
	StudentID  string  `json:"student_id"`
	Subject    string  `json:"subject"`
	Quiz1      float64 `json:"quiz1"`
	Quiz2      float64 `json:"quiz2"`
	Quiz3      float64 `json:"quiz3"`
	Attendance float64 `json:"attendance"`
	TeacherID  string  `json:"teacher_id,omitempty"`
}

// GroupKey identifies the student-subject pair an observation belongs to.
func (o Observation) GroupKey() StudentSubject {
	return StudentSubject{StudentID: o.StudentID, Subject: o.Subject}
}

// StudentSubject is the grouping key for decline trends.
type StudentSubject struct {
	StudentID string
	Subject   string
}

// RiskVerdict is the classifier output for one observation.
type RiskVerdict struct {
	RiskLevel   constants.RiskLevel `json:"risk_level"`
	Reason      string              `json:"reason"`
	XPScore     int                 `json:"xp_score"`
	HealthScore int                 `json:"health_score"`
}

// RiskRecord is a persisted observation together with its verdict.
// ID increases with insertion order within a tenant collection.
type RiskRecord struct {
	ID        uint64
	CollegeID string
	Observation
	Verdict   RiskVerdict
	CreatedAt time.Time
}

// Split returns the observation and verdict slices for a record list, index-aligned.
func Split(records []*RiskRecord) ([]Observation, []RiskVerdict) {
	obs := make([]Observation, len(records))
	verdicts := make([]RiskVerdict, len(records))
	for i, r := range records {
		obs[i] = r.Observation
		verdicts[i] = r.Verdict
	}
	return obs, verdicts
}
