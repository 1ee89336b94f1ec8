package dto

import (
	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/constants"
)

// UploadRequest CSV 上传请求（multipart 表单字段）
type UploadRequest struct {
	CollegeID string `form:"college_id"`
	Filename  string `form:"-"`
}

// UploadSummary 上传汇总
type UploadSummary struct {
	TotalStudents  int      `json:"total_students"`
	HighRisk       int      `json:"high_risk"`
	MediumRisk     int      `json:"medium_risk"`
	LowRisk        int      `json:"low_risk"`
	CrisisSubjects []string `json:"crisis_subjects"`
}

// TopRisk 高风险学生条目
type TopRisk struct {
	StudentID string              `json:"student_id"`
	Subject   string              `json:"subject"`
	Risk      constants.RiskLevel `json:"risk"`
	Reason    string              `json:"reason"`
}

// UploadResponse CSV 上传响应
type UploadResponse struct {
	Success       bool                `json:"success"`
	CollegeID     string              `json:"college_id"`
	Summary       UploadSummary       `json:"summary"`
	HeatmapMatrix []models.HeatmapRow `json:"heatmap_matrix"`
	TopRisks      []TopRisk           `json:"top_risks"`
}
