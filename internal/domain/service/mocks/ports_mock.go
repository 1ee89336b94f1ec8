package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/aewis/internal/domain/models"
)

type MockReportCache struct {
	mock.Mock
}

func (m *MockReportCache) Get(ctx context.Context, collegeID string, generation int64) (*models.AggregateReport, error) {
	args := m.Called(ctx, collegeID, generation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AggregateReport), args.Error(1)
}

func (m *MockReportCache) Set(ctx context.Context, collegeID string, generation int64, report *models.AggregateReport) error {
	args := m.Called(ctx, collegeID, generation, report)
	return args.Error(0)
}

func (m *MockReportCache) Invalidate(ctx context.Context, collegeID string) error {
	args := m.Called(ctx, collegeID)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event models.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordUpload(collegeID string, success bool, rows int, duration time.Duration) {
	m.Called(collegeID, success, rows, duration)
}

func (m *MockMetrics) RecordVerdicts(high, medium, low int) {
	m.Called(high, medium, low)
}

func (m *MockMetrics) RecordIntervention(collegeID string, result string, entries int) {
	m.Called(collegeID, result, entries)
}

func (m *MockMetrics) RecordReport(source string) {
	m.Called(source)
}

func (m *MockMetrics) RecordRateLimitHit(collegeID, scope string) {
	m.Called(collegeID, scope)
}

func (m *MockMetrics) RecordCacheAccess(tier string, hit bool) {
	m.Called(tier, hit)
}

func (m *MockMetrics) RecordDBQuery(operation string, duration time.Duration) {
	m.Called(operation, duration)
}

func (m *MockMetrics) UpdateDBConnections(active, idle int) {
	m.Called(active, idle)
}
