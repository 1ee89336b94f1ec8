package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/aewis/internal/application/dto"
	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/repository"
	domainservice "github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/internal/domain/service/mocks"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

type InterventionAppServiceSuite struct {
	suite.Suite
	riskRepo *mocks.MockRiskRepository
	ledger   *mocks.MockInterventionRepository
	cache    *mocks.MockReportCache
	pub      *mocks.MockEventPublisher
	svc      *interventionAppServiceImpl
	now      time.Time
}

func (s *InterventionAppServiceSuite) SetupTest() {
	s.riskRepo = new(mocks.MockRiskRepository)
	s.ledger = new(mocks.MockInterventionRepository)
	s.cache = new(mocks.MockReportCache)
	s.pub = new(mocks.MockEventPublisher)
	s.now = time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC)

	svc := NewInterventionAppService(s.riskRepo, s.ledger, domainservice.NewInterventionLedger(constants.DefaultSuccessBonus),
		s.cache, s.pub, nil, nil, logger.NewNoopLogger())
	s.svc = svc.(*interventionAppServiceImpl)
	s.svc.now = func() time.Time { return s.now }
}

func (s *InterventionAppServiceSuite) TestRecordIntervention() {
	ctx := context.Background()
	matched := testRecords("c1")[:2] // S001 xp 780, S002 xp 633

	s.riskRepo.On("FindByStudentIDs", mock.Anything, "c1", []string{"S001", "S002", "S404"}).Return(matched, nil)
	s.riskRepo.On("Count", mock.Anything, "c1", repository.RiskFilter{}).Return(4, nil)
	s.riskRepo.On("Count", mock.Anything, "c1", repository.RiskFilter{Level: constants.RiskLevelHigh}).Return(2, nil).Once()
	s.riskRepo.On("Count", mock.Anything, "c1", repository.RiskFilter{Level: constants.RiskLevelHigh}).Return(1, nil).Once()
	s.ledger.On("RecordInterventions", mock.Anything, "c1", "T001", []string{"S001", "S002"},
		mock.MatchedBy(func(entries []*models.Intervention) bool {
			return len(entries) == 2 && entries[0].XPEarned == 128 && entries[1].XPEarned == 113 &&
				entries[0].Action == "call_parent" && entries[0].CreatedAt.Equal(s.now)
		})).Return(nil)
	s.cache.On("Invalidate", mock.Anything, "c1").Return(nil)
	s.pub.On("Publish", mock.Anything, mock.MatchedBy(func(e models.DomainEvent) bool {
		return e.Type == constants.EventInterventionRecorded && e.Payload["xp_earned"] == "241"
	})).Return(nil)

	resp, err := s.svc.RecordIntervention(ctx, &dto.InterventionRequest{
		CollegeID:  "c1",
		TeacherID:  "T001",
		StudentIDs: []string{"S001", "S002", "S404", "S001"},
		Action:     "call_parent",
	})
	s.Require().NoError(err)

	s.Equal(&dto.InterventionResponse{
		Success:             true,
		RiskReduction:       50,
		XPEarned:            241,
		NewSuccessRate:      78.5,
		UnmatchedStudentIDs: []string{"S404"},
	}, resp)

	s.riskRepo.AssertExpectations(s.T())
	s.ledger.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
	s.pub.AssertExpectations(s.T())
}

func (s *InterventionAppServiceSuite) TestRecordIntervention_NoMatch() {
	s.riskRepo.On("FindByStudentIDs", mock.Anything, "c1", []string{"S404"}).Return([]*models.RiskRecord{}, nil)

	resp, err := s.svc.RecordIntervention(context.Background(), &dto.InterventionRequest{
		CollegeID:  "c1",
		TeacherID:  "T001",
		StudentIDs: []string{"S404"},
	})
	s.Nil(resp)
	s.True(errors.IsNoMatch(err))
	s.Equal("No matching students found", err.Error())
	s.ledger.AssertNotCalled(s.T(), "RecordInterventions", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *InterventionAppServiceSuite) TestRecordIntervention_Validation() {
	resp, err := s.svc.RecordIntervention(context.Background(), &dto.InterventionRequest{
		CollegeID: "c1",
		TeacherID: "T001",
	})
	s.Nil(resp)
	appErr, ok := errors.AsAppError(err)
	s.Require().True(ok)
	s.Equal(errors.CodeValidationFailed, appErr.Code())
	s.riskRepo.AssertNotCalled(s.T(), "FindByStudentIDs", mock.Anything, mock.Anything, mock.Anything)
}

func (s *InterventionAppServiceSuite) TestRecordIntervention_LedgerWriteFails() {
	s.riskRepo.On("FindByStudentIDs", mock.Anything, "c1", []string{"S001"}).Return(testRecords("c1")[:1], nil)
	s.riskRepo.On("Count", mock.Anything, "c1", mock.Anything).Return(3, nil)
	s.ledger.On("RecordInterventions", mock.Anything, "c1", "T001", []string{"S001"}, mock.Anything).Return(errors.ErrDatabaseOperation)

	_, err := s.svc.RecordIntervention(context.Background(), &dto.InterventionRequest{
		CollegeID:  "c1",
		TeacherID:  "T001",
		StudentIDs: []string{"S001"},
	})
	s.Require().Error(err)
	s.Equal(500, errors.StatusOf(err))
	s.cache.AssertNotCalled(s.T(), "Invalidate", mock.Anything, mock.Anything)
}

func (s *InterventionAppServiceSuite) TestRecordIntervention_TracesLedgerWrite() {
	tracer := &recordingTracer{}
	svc := NewInterventionAppService(s.riskRepo, s.ledger, nil, nil, nil, nil, tracer, logger.NewNoopLogger())

	s.riskRepo.On("FindByStudentIDs", mock.Anything, "c1", []string{"S001"}).Return(testRecords("c1")[:1], nil)
	s.riskRepo.On("Count", mock.Anything, "c1", mock.Anything).Return(3, nil)
	s.ledger.On("RecordInterventions", mock.Anything, "c1", "T001", []string{"S001"}, mock.Anything).Return(nil)

	resp, err := svc.RecordIntervention(context.Background(), &dto.InterventionRequest{
		CollegeID:  "c1",
		TeacherID:  "T001",
		StudentIDs: []string{"S001"},
	})
	s.Require().NoError(err)
	s.True(resp.Success)
	s.Equal([]string{"intervention.record"}, tracer.ops)
}

func (s *InterventionAppServiceSuite) TestListInterventions() {
	entry := models.NewIntervention("c1", "S001", "Math", "T001", "", 128, s.now)
	s.ledger.On("ListByCollege", mock.Anything, "c1", constants.InterventionListMax).Return([]*models.Intervention{entry}, nil)

	resp, err := s.svc.ListInterventions(context.Background(), "c1", 10000)
	s.Require().NoError(err)
	s.Require().Len(resp.Interventions, 1)
	s.Equal(entry.ID, resp.Interventions[0].ID)
	s.Equal(3, resp.Interventions[0].Level)
	s.Equal("⬜ Bronze", resp.Interventions[0].Badge)
}

func (s *InterventionAppServiceSuite) TestListInterventions_DefaultLimit() {
	s.ledger.On("ListByCollege", mock.Anything, "c1", constants.InterventionListDefault).Return([]*models.Intervention{}, nil)

	resp, err := s.svc.ListInterventions(context.Background(), "c1", 0)
	s.Require().NoError(err)
	s.Empty(resp.Interventions)
}

func TestInterventionAppServiceSuite(t *testing.T) {
	suite.Run(t, new(InterventionAppServiceSuite))
}

func TestNewInterventionAppService_Defaults(t *testing.T) {
	svc := NewInterventionAppService(new(mocks.MockRiskRepository), new(mocks.MockInterventionRepository), nil, nil, nil, nil, nil, logger.NewNoopLogger())
	impl, ok := svc.(*interventionAppServiceImpl)
	require.True(t, ok)
	assert.NotNil(t, impl.ledger)
	assert.NotNil(t, impl.metrics)
}
