package mocks

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockPinger stands in for any dependency a readiness check pings.
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockLocalInvalidator records in-process cache evictions.
type MockLocalInvalidator struct {
	mock.Mock
}

func (m *MockLocalInvalidator) InvalidateLocal(collegeID string) {
	m.Called(collegeID)
}

type MockRedisConnectionManager struct {
	MockPinger
}

func (m *MockRedisConnectionManager) GetClient() redis.UniversalClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(redis.UniversalClient)
}

func (m *MockRedisConnectionManager) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockRedisConnectionManager) Close() error {
	args := m.Called()
	return args.Error(0)
}
