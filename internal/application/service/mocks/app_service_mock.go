// Package mocks holds testify doubles for the application services.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/aewis/internal/application/dto"
	"github.com/turtacn/aewis/internal/application/service"
	"github.com/turtacn/aewis/internal/domain/models"
)

var (
	_ service.RiskAppService         = (*MockRiskAppService)(nil)
	_ service.InterventionAppService = (*MockInterventionAppService)(nil)
)

type MockRiskAppService struct {
	mock.Mock
}

func (m *MockRiskAppService) UploadObservations(ctx context.Context, collegeID string, observations []models.Observation) (*dto.UploadResponse, error) {
	args := m.Called(ctx, collegeID, observations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UploadResponse), args.Error(1)
}

func (m *MockRiskAppService) ClassifyObservations(ctx context.Context, collegeID string, observations []models.Observation) (*dto.UploadResponse, error) {
	args := m.Called(ctx, collegeID, observations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UploadResponse), args.Error(1)
}

func (m *MockRiskAppService) GetRiskStats(ctx context.Context, collegeID string) (*dto.RiskStatsResponse, error) {
	args := m.Called(ctx, collegeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RiskStatsResponse), args.Error(1)
}

func (m *MockRiskAppService) GetTeacherStudents(ctx context.Context, teacherID string, query *dto.TeacherStudentsQuery) (*dto.TeacherStudentsResponse, error) {
	args := m.Called(ctx, teacherID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TeacherStudentsResponse), args.Error(1)
}

type MockInterventionAppService struct {
	mock.Mock
}

func (m *MockInterventionAppService) RecordIntervention(ctx context.Context, req *dto.InterventionRequest) (*dto.InterventionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InterventionResponse), args.Error(1)
}

func (m *MockInterventionAppService) ListInterventions(ctx context.Context, collegeID string, limit int) (*dto.InterventionListResponse, error) {
	args := m.Called(ctx, collegeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InterventionListResponse), args.Error(1)
}
