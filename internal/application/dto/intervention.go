package dto

import (
	"time"
)

// InterventionRequest 记录干预请求
type InterventionRequest struct {
	CollegeID  string   `json:"college_id" validate:"required,max=64,identifier"`
	TeacherID  string   `json:"teacher_id" validate:"required,max=64,identifier"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=500,dive,required,max=64"`
	Action     string   `json:"action" validate:"omitempty,max=64"`
}

// InterventionResponse 记录干预响应
type InterventionResponse struct {
	Success             bool     `json:"success"`
	RiskReduction       float64  `json:"risk_reduction"`
	XPEarned            int      `json:"xp_earned"`
	NewSuccessRate      float64  `json:"new_success_rate"`
	UnmatchedStudentIDs []string `json:"unmatched_student_ids,omitempty"`
}

// InterventionEntry 干预台账条目
type InterventionEntry struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Subject   string    `json:"subject"`
	TeacherID string    `json:"teacher_id"`
	Action    string    `json:"action"`
	Success   bool      `json:"success"`
	XPEarned  int       `json:"xp_earned"`
	Level     int       `json:"level"`
	Badge     string    `json:"badge"`
	CreatedAt time.Time `json:"created_at"`
}

// InterventionListResponse 干预台账列表响应
type InterventionListResponse struct {
	CollegeID     string              `json:"college_id"`
	Interventions []InterventionEntry `json:"interventions"`
}
