package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/repository"
)

// MockRiskRepository is a mock implementation of repository.RiskRepository
type MockRiskRepository struct {
	mock.Mock
}

func (m *MockRiskRepository) Replace(ctx context.Context, collegeID string, records []*models.RiskRecord) error {
	args := m.Called(ctx, collegeID, records)
	return args.Error(0)
}

func (m *MockRiskRepository) List(ctx context.Context, collegeID string) ([]*models.RiskRecord, error) {
	args := m.Called(ctx, collegeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RiskRecord), args.Error(1)
}

func (m *MockRiskRepository) Count(ctx context.Context, collegeID string, filter repository.RiskFilter) (int, error) {
	args := m.Called(ctx, collegeID, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockRiskRepository) FindByStudentIDs(ctx context.Context, collegeID string, ids []string) ([]*models.RiskRecord, error) {
	args := m.Called(ctx, collegeID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RiskRecord), args.Error(1)
}

func (m *MockRiskRepository) ListForTeacher(ctx context.Context, collegeID string, q repository.TeacherQuery) ([]*models.RiskRecord, error) {
	args := m.Called(ctx, collegeID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RiskRecord), args.Error(1)
}

func (m *MockRiskRepository) SetTeacher(ctx context.Context, collegeID string, ids []string, teacherID string) error {
	args := m.Called(ctx, collegeID, ids, teacherID)
	return args.Error(0)
}

func (m *MockRiskRepository) Generation(ctx context.Context, collegeID string) (int64, error) {
	args := m.Called(ctx, collegeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockInterventionRepository is a mock implementation of repository.InterventionRepository
type MockInterventionRepository struct {
	mock.Mock
}

func (m *MockInterventionRepository) RecordInterventions(ctx context.Context, collegeID, teacherID string, ids []string, entries []*models.Intervention) error {
	args := m.Called(ctx, collegeID, teacherID, ids, entries)
	return args.Error(0)
}

func (m *MockInterventionRepository) ListByCollege(ctx context.Context, collegeID string, limit int) ([]*models.Intervention, error) {
	args := m.Called(ctx, collegeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Intervention), args.Error(1)
}
