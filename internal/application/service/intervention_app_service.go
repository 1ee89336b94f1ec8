package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/aewis/internal/application/dto"
	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/repository"
	domainService "github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
	"github.com/turtacn/aewis/pkg/utils"
)

// InterventionAppService defines the interface for the intervention ledger application service
type InterventionAppService interface {
	// RecordIntervention assigns the teacher to the matched students and appends ledger entries
	RecordIntervention(ctx context.Context, req *dto.InterventionRequest) (*dto.InterventionResponse, error)

	// ListInterventions returns the newest ledger entries for a college
	ListInterventions(ctx context.Context, collegeID string, limit int) (*dto.InterventionListResponse, error)
}

type interventionAppServiceImpl struct {
	riskRepo         repository.RiskRepository
	interventionRepo repository.InterventionRepository
	ledger           *domainService.InterventionLedger
	cache            domainService.ReportCache
	publisher        domainService.EventPublisher
	metrics          domainService.Metrics
	tracer           domainService.OperationTracer
	now              func() time.Time
	logger           logger.Logger
}

// NewInterventionAppService creates a new InterventionAppService.
// tracer may be nil. A nil log falls back to the global logger.
func NewInterventionAppService(
	riskRepo repository.RiskRepository,
	interventionRepo repository.InterventionRepository,
	ledger *domainService.InterventionLedger,
	cache domainService.ReportCache,
	publisher domainService.EventPublisher,
	metrics domainService.Metrics,
	tracer domainService.OperationTracer,
	log logger.Logger,
) InterventionAppService {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if metrics == nil {
		metrics = domainService.NoopMetrics{}
	}
	if ledger == nil {
		ledger = domainService.NewInterventionLedger(constants.DefaultSuccessBonus)
	}
	return &interventionAppServiceImpl{
		riskRepo:         riskRepo,
		interventionRepo: interventionRepo,
		ledger:           ledger,
		cache:            cache,
		publisher:        publisher,
		metrics:          metrics,
		tracer:           tracer,
		now:              time.Now,
		logger:           log.WithComponent("InterventionAppService"),
	}
}

// RecordIntervention implements the intervention flow
func (s *interventionAppServiceImpl) RecordIntervention(ctx context.Context, req *dto.InterventionRequest) (*dto.InterventionResponse, error) {
	// 1. Validate request payload
	if req == nil {
		return nil, errors.ErrInvalidRequest("request body is required")
	}
	if err := utils.ValidateStruct(req); err != nil {
		s.metrics.RecordIntervention(req.CollegeID, "invalid", 0)
		return nil, err
	}
	cid := strings.TrimSpace(req.CollegeID)
	ids := utils.UniqueStrings(req.StudentIDs)

	// 2. Resolve the students
	matched, err := s.riskRepo.FindByStudentIDs(ctx, cid, ids)
	if err != nil {
		s.logger.Error(ctx, "Failed to look up students", err, logger.String("college_id", cid))
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to look up students")
	}

	plan, err := s.ledger.Plan(cid, req.TeacherID, req.Action, ids, matched, s.now())
	if err != nil {
		s.metrics.RecordIntervention(cid, "no_match", 0)
		s.logger.Info(ctx, "Intervention matched no students", logger.String("college_id", cid), logger.Strings("student_ids", ids))
		return nil, err
	}

	// 3. Snapshot HIGH count, write, snapshot again
	total, err := s.riskRepo.Count(ctx, cid, repository.RiskFilter{})
	if err != nil {
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to count observations")
	}
	highBefore, err := s.riskRepo.Count(ctx, cid, repository.RiskFilter{Level: constants.RiskLevelHigh})
	if err != nil {
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to count observations")
	}

	err = domainService.TraceOrRun(ctx, s.tracer, "intervention.record", func(ctx context.Context) error {
		return s.interventionRepo.RecordInterventions(ctx, cid, req.TeacherID, plan.MatchedIDs, plan.Entries)
	})
	if err != nil {
		s.metrics.RecordIntervention(cid, "error", 0)
		s.logger.Error(ctx, "Failed to record interventions", err, logger.String("college_id", cid))
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to record interventions")
	}

	highAfter, err := s.riskRepo.Count(ctx, cid, repository.RiskFilter{Level: constants.RiskLevelHigh})
	if err != nil {
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to count observations")
	}
	outcome := s.ledger.Settle(total, highBefore, highAfter)

	// 4. Invalidate and announce
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cid); err != nil {
			s.logger.Warn(ctx, "Report cache invalidation failed", logger.String("college_id", cid), logger.Err(err))
		}
	}
	if s.publisher != nil {
		event := models.NewDomainEvent(constants.EventInterventionRecorded, cid, map[string]string{
			"teacher_id": req.TeacherID,
			"entries":    strconv.Itoa(len(plan.Entries)),
			"xp_earned":  strconv.Itoa(plan.TotalXP),
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn(ctx, "Domain event publish failed", logger.String("college_id", cid), logger.Err(err))
		}
	}

	s.metrics.RecordIntervention(cid, "success", len(plan.Entries))
	s.logger.Info(ctx, "Interventions recorded",
		logger.String("college_id", cid),
		logger.String("teacher_id", req.TeacherID),
		logger.Int("entries", len(plan.Entries)),
		logger.Int("xp_earned", plan.TotalXP),
	)

	return &dto.InterventionResponse{
		Success:             true,
		RiskReduction:       outcome.RiskReduction,
		XPEarned:            plan.TotalXP,
		NewSuccessRate:      outcome.NewSuccessRate,
		UnmatchedStudentIDs: plan.UnmatchedIDs,
	}, nil
}

// ListInterventions returns ledger entries, newest first
func (s *interventionAppServiceImpl) ListInterventions(ctx context.Context, collegeID string, limit int) (*dto.InterventionListResponse, error) {
	cid := strings.TrimSpace(collegeID)
	if cid == "" {
		return nil, errors.ErrMissingRequiredParameter("college_id")
	}
	if limit <= 0 {
		limit = constants.InterventionListDefault
	}
	if limit > constants.InterventionListMax {
		limit = constants.InterventionListMax
	}

	entries, err := s.interventionRepo.ListByCollege(ctx, cid, limit)
	if err != nil {
		s.logger.Error(ctx, "Failed to list interventions", err, logger.String("college_id", cid))
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to list interventions")
	}

	out := make([]dto.InterventionEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.InterventionEntry{
			ID:        e.ID,
			StudentID: e.StudentID,
			Subject:   e.Subject,
			TeacherID: e.TeacherID,
			Action:    e.Action,
			Success:   e.Success,
			XPEarned:  e.XPEarned,
			Level:     domainService.Level(e.XPEarned),
			Badge:     domainService.BadgeFor(e.XPEarned).Label(),
			CreatedAt: e.CreatedAt,
		})
	}
	return &dto.InterventionListResponse{CollegeID: cid, Interventions: out}, nil
}
