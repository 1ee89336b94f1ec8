package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/aewis/pkg/constants"
)

// Intervention is one append-only ledger entry: a teacher acted on a student.
type Intervention struct {
	ID        string    `json:"id"`
	CollegeID string    `json:"college_id"`
	StudentID string    `json:"student_id"`
	Subject   string    `json:"subject"`
	TeacherID string    `json:"teacher_id"`
	Action    string    `json:"action"`
	Success   bool      `json:"success"`
	XPEarned  int       `json:"xp_earned"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIntervention creates a ledger entry with a fresh id.
func NewIntervention(collegeID, studentID, subject, teacherID, action string, xp int, at time.Time) *Intervention {
	if action == "" {
		action = constants.DefaultInterventionAction
	}
	return &Intervention{
		ID:        uuid.NewString(),
		CollegeID: collegeID,
		StudentID: studentID,
		Subject:   subject,
		TeacherID: teacherID,
		Action:    action,
		Success:   true,
		XPEarned:  xp,
		CreatedAt: at.UTC(),
	}
}

// InterventionPlan is the set of ledger entries to write for one request.
type InterventionPlan struct {
	Entries      []*Intervention
	TotalXP      int
	MatchedIDs   []string
	UnmatchedIDs []string
}

// InterventionOutcome is the before/after delta reported back to the caller.
type InterventionOutcome struct {
	RiskReduction    float64
	SuccessRateAfter float64
	NewSuccessRate   float64
}
