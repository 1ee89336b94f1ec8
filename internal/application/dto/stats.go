package dto

import (
	"github.com/turtacn/aewis/internal/domain/models"
)

// RiskStatsResponse 学院风险统计响应
type RiskStatsResponse struct {
	CollegeID     string              `json:"college_id"`
	KPIs          models.KPISet       `json:"kpis"`
	Charts        models.ChartSet     `json:"charts"`
	HeatmapMatrix []models.HeatmapRow `json:"heatmap_matrix"`
}

// NewRiskStatsResponse 从聚合报告构建响应
func NewRiskStatsResponse(collegeID string, report *models.AggregateReport) *RiskStatsResponse {
	return &RiskStatsResponse{
		CollegeID:     collegeID,
		KPIs:          report.KPIs,
		Charts:        report.Charts,
		HeatmapMatrix: report.Heatmap,
	}
}
