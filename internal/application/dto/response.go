package dto

import (
	"time"
)

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ReadinessResponse 就绪检查响应，包含各依赖组件的检查结果
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp int64             `json:"timestamp"`
}

// NewReadinessResponse 根据检查结果创建就绪响应
func NewReadinessResponse(checks map[string]string) *ReadinessResponse {
	status := "ready"
	for _, v := range checks {
		if v != "ok" {
			status = "not_ready"
			break
		}
	}
	return &ReadinessResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().Unix(),
	}
}
