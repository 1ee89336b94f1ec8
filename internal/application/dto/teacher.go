package dto

import (
	"github.com/turtacn/aewis/pkg/constants"
)

// TeacherStudentsQuery 教师学生列表查询参数
type TeacherStudentsQuery struct {
	CollegeID    string `form:"college_id"`
	AssignedOnly bool   `form:"assigned_only"`
}

// TeacherStudentRisk 教师视图中的学生风险条目
type TeacherStudentRisk struct {
	StudentID string              `json:"student_id"`
	Subject   string              `json:"subject"`
	RiskLevel constants.RiskLevel `json:"risk_level"`
	Reason    string              `json:"reason"`
	XPScore   int                 `json:"xp_score"`
	Level     int                 `json:"level"`
	Badge     string              `json:"badge"`
}

// TeacherStudentsResponse 教师学生列表响应
type TeacherStudentsResponse struct {
	TeacherID string               `json:"teacher_id"`
	CollegeID string               `json:"college_id"`
	Students  []TeacherStudentRisk `json:"students"`
}
