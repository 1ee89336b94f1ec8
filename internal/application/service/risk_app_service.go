// Package service provides application-level services that orchestrate domain services and repositories
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
)

// RiskAppService defines the interface for the risk analytics application service
type RiskAppService interface {
	// UploadObservations classifies a batch and replaces the college's collection with it
	UploadObservations(ctx context.Context, collegeID string, observations []models.Observation) (*dto.UploadResponse, error)

	// ClassifyObservations classifies a batch and builds the upload response without storing anything
	ClassifyObservations(ctx context.Context, collegeID string, observations []models.Observation) (*dto.UploadResponse, error)

	// GetRiskStats returns the aggregate dashboard report for a college
	GetRiskStats(ctx context.Context, collegeID string) (*dto.RiskStatsResponse, error)

	// GetTeacherStudents returns the roster a teacher sees, most severe first
	GetTeacherStudents(ctx context.Context, teacherID string, query *dto.TeacherStudentsQuery) (*dto.TeacherStudentsResponse, error)
}

// RiskAppServiceConfig tunes classification and reporting.
type RiskAppServiceConfig struct {
	ClassifyWorkers int
	RiskTrend       float64
	// UploadLimit is reported in rate limit errors.
	UploadLimit int
	// SlowOperation is the classify/aggregate duration that logs a warning.
	SlowOperation time.Duration
	// Tracer wraps storage writes in spans. Optional.
	Tracer domainService.OperationTracer
}

// riskAppServiceImpl is the concrete implementation of RiskAppService
type riskAppServiceImpl struct {
	riskRepo    repository.RiskRepository
	cache       domainService.ReportCache
	publisher   domainService.EventPublisher
	rateLimiter domainService.RateLimitService
	metrics     domainService.Metrics
	aggregator  *domainService.Aggregator
	tracer      domainService.OperationTracer
	perf        *logger.PerformanceLogger
	workers     int
	uploadLimit int
	logger      logger.Logger
}

// NewRiskAppService creates a new instance of RiskAppService.
// cache, publisher and rateLimiter may be nil. A nil log falls back to the global logger.
func NewRiskAppService(
	riskRepo repository.RiskRepository,
	cache domainService.ReportCache,
	publisher domainService.EventPublisher,
	rateLimiter domainService.RateLimitService,
	metrics domainService.Metrics,
	cfg RiskAppServiceConfig,
	log logger.Logger,
) RiskAppService {
	if metrics == nil {
		metrics = domainService.NoopMetrics{}
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	opts := domainService.DefaultAggregatorOptions()
	opts.RiskTrend = cfg.RiskTrend
	return &riskAppServiceImpl{
		riskRepo:    riskRepo,
		cache:       cache,
		publisher:   publisher,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		aggregator:  domainService.NewAggregator(opts),
		tracer:      cfg.Tracer,
		perf:        logger.NewPerformanceLogger(log, cfg.SlowOperation),
		workers:     cfg.ClassifyWorkers,
		uploadLimit: cfg.UploadLimit,
		logger:      log.WithComponent("RiskAppService"),
	}
}

// NormalizeCollegeID maps the demo alias to its seeded tenant and trims everything else.
// An empty id is treated as the demo alias.
func NormalizeCollegeID(collegeID string) string {
	id := strings.TrimSpace(collegeID)
	if id == "" || id == constants.DemoCollegeAlias {
		return constants.DemoCollegeAlias + constants.DemoCollegeSuffix
	}
	return id
}

// UploadObservations implements the CSV upload flow once rows are parsed
func (s *riskAppServiceImpl) UploadObservations(ctx context.Context, collegeID string, observations []models.Observation) (*dto.UploadResponse, error) {
	start := time.Now()
	cid := NormalizeCollegeID(collegeID)

	// 1. Check rate limit
	if s.rateLimiter != nil {
		allowed, _, _, err := s.rateLimiter.Allow(ctx, domainService.RateLimitDimensionCollege, cid)
		if err != nil {
			// fail open
			s.logger.Warn(ctx, "Rate limit check failed", logger.String("college_id", cid), logger.Err(err))
		} else if !allowed {
			s.metrics.RecordRateLimitHit(cid, string(domainService.RateLimitDimensionCollege))
			s.metrics.RecordUpload(cid, false, len(observations), time.Since(start))
			return nil, errors.ErrRateLimitExceeded("upload:"+cid, s.uploadLimit)
		}
	}

	// 2. Classify
	verdicts, err := s.classify(ctx, cid, observations)
	if err != nil {
		s.metrics.RecordUpload(cid, false, len(observations), time.Since(start))
		return nil, errors.WrapError(err, errors.CodeInternal, "classification aborted")
	}

	// 3. Replace the tenant collection
	records := domainService.BuildRecords(cid, observations, verdicts)
	err = domainService.TraceOrRun(ctx, s.tracer, "risk.replace", func(ctx context.Context) error {
		return s.riskRepo.Replace(ctx, cid, records)
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to replace tenant collection", err, logger.String("college_id", cid))
		s.metrics.RecordUpload(cid, false, len(observations), time.Since(start))
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to store observations")
	}

	// 4. Invalidate and announce
	s.invalidate(ctx, cid)
	s.publish(ctx, models.NewDomainEvent(constants.EventObservationsReplaced, cid, map[string]string{
		"rows": strconv.Itoa(len(observations)),
	}))

	resp := buildUploadResponse(cid, observations, verdicts)
	s.metrics.RecordUpload(cid, true, len(observations), time.Since(start))
	s.metrics.RecordVerdicts(resp.Summary.HighRisk, resp.Summary.MediumRisk, resp.Summary.LowRisk)
	s.logger.Info(ctx, "Observations replaced",
		logger.String("college_id", cid),
		logger.Int("rows", len(observations)),
		logger.Int("high", resp.Summary.HighRisk),
		logger.Strings("crisis_subjects", resp.Summary.CrisisSubjects),
	)
	return resp, nil
}

// ClassifyObservations runs classification only
func (s *riskAppServiceImpl) ClassifyObservations(ctx context.Context, collegeID string, observations []models.Observation) (*dto.UploadResponse, error) {
	cid := NormalizeCollegeID(collegeID)
	verdicts, err := s.classify(ctx, cid, observations)
	if err != nil {
		return nil, errors.WrapError(err, errors.CodeInternal, "classification aborted")
	}
	return buildUploadResponse(cid, observations, verdicts), nil
}

// GetRiskStats serves the aggregate report, from cache when possible
func (s *riskAppServiceImpl) GetRiskStats(ctx context.Context, collegeID string) (*dto.RiskStatsResponse, error) {
	cid := strings.TrimSpace(collegeID)
	if cid == "" {
		return nil, errors.ErrMissingRequiredParameter("college_id")
	}

	// Read the generation before the rows: a write that lands in between bumps
	// it, so a report built from the older rows is never served for the newer one.
	generation, err := s.riskRepo.Generation(ctx, cid)
	if err != nil {
		s.logger.Error(ctx, "Failed to read collection generation", err, logger.String("college_id", cid))
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to load observations")
	}

	if s.cache != nil {
		report, err := s.cache.Get(ctx, cid, generation)
		if err == nil && report != nil {
			s.metrics.RecordReport(domainService.ReportSourceCache)
			return dto.NewRiskStatsResponse(cid, report), nil
		}
		if err != nil && !errors.IsNotFound(err) {
			s.logger.Warn(ctx, "Report cache read failed", logger.String("college_id", cid), logger.Err(err))
		}
	}

	records, err := s.riskRepo.List(ctx, cid)
	if err != nil {
		s.logger.Error(ctx, "Failed to list tenant collection", err, logger.String("college_id", cid))
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to load observations")
	}
	if len(records) == 0 {
		return nil, errors.ErrNoData(cid)
	}

	observations, verdicts := models.Split(records)
	done := s.perf.StartOperation(ctx, "aggregate")
	report, err := s.aggregator.Aggregate(observations, verdicts)
	done(logger.String("college_id", cid), logger.Int("rows", len(records)))
	if err != nil {
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to aggregate observations")
	}
	s.metrics.RecordReport(domainService.ReportSourceComputed)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cid, generation, report); err != nil {
			s.logger.Warn(ctx, "Report cache write failed", logger.String("college_id", cid), logger.Err(err))
		}
	}
	return dto.NewRiskStatsResponse(cid, report), nil
}

// GetTeacherStudents returns the teacher roster
func (s *riskAppServiceImpl) GetTeacherStudents(ctx context.Context, teacherID string, query *dto.TeacherStudentsQuery) (*dto.TeacherStudentsResponse, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return nil, errors.ErrMissingRequiredParameter("teacher_id")
	}
	if query == nil {
		query = &dto.TeacherStudentsQuery{}
	}
	cid := strings.TrimSpace(query.CollegeID)
	if cid == "" {
		cid = constants.DefaultCollegeID
	}

	records, err := s.riskRepo.ListForTeacher(ctx, cid, repository.TeacherQuery{
		TeacherID:    teacherID,
		AssignedOnly: query.AssignedOnly,
		Limit:        constants.TeacherRosterLimit,
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to list teacher roster", err, logger.String("college_id", cid), logger.String("teacher_id", teacherID))
		return nil, errors.WrapError(err, errors.CodeInternal, "failed to load roster")
	}

	students := make([]dto.TeacherStudentRisk, 0, len(records))
	for _, r := range records {
		students = append(students, dto.TeacherStudentRisk{
			StudentID: r.StudentID,
			Subject:   r.Subject,
			RiskLevel: r.Verdict.RiskLevel,
			Reason:    r.Verdict.Reason,
			XPScore:   r.Verdict.XPScore,
			Level:     domainService.Level(r.Verdict.XPScore),
			Badge:     domainService.BadgeFor(r.Verdict.XPScore).Label(),
		})
	}
	return &dto.TeacherStudentsResponse{TeacherID: teacherID, CollegeID: cid, Students: students}, nil
}

func (s *riskAppServiceImpl) classify(ctx context.Context, collegeID string, observations []models.Observation) ([]models.RiskVerdict, error) {
	done := s.perf.StartOperation(ctx, "classify_batch")
	verdicts, err := domainService.ClassifyBatch(ctx, observations, s.workers)
	done(logger.String("college_id", collegeID), logger.Int("rows", len(observations)))
	return verdicts, err
}

func (s *riskAppServiceImpl) invalidate(ctx context.Context, collegeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, collegeID); err != nil {
		s.logger.Warn(ctx, "Report cache invalidation failed", logger.String("college_id", collegeID), logger.Err(err))
	}
}

func (s *riskAppServiceImpl) publish(ctx context.Context, event models.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "Domain event publish failed",
			logger.String("event_type", string(event.Type)),
			logger.String("college_id", event.CollegeID),
			logger.Err(err),
		)
	}
}

func buildUploadResponse(collegeID string, observations []models.Observation, verdicts []models.RiskVerdict) *dto.UploadResponse {
	var counts models.RiskCounts
	topRisks := make([]dto.TopRisk, 0, constants.TopRiskCap)
	for i, v := range verdicts {
		counts.Add(v.RiskLevel)
		if v.RiskLevel == constants.RiskLevelHigh && len(topRisks) < constants.TopRiskCap {
			topRisks = append(topRisks, dto.TopRisk{
				StudentID: observations[i].StudentID,
				Subject:   observations[i].Subject,
				Risk:      v.RiskLevel,
				Reason:    v.Reason,
			})
		}
	}

	return &dto.UploadResponse{
		Success:   true,
		CollegeID: collegeID,
		Summary: dto.UploadSummary{
			TotalStudents:  len(observations),
			HighRisk:       counts.High,
			MediumRisk:     counts.Medium,
			LowRisk:        counts.Low,
			CrisisSubjects: domainService.DetectCrisisSubjects(domainService.TallySubjects(observations, verdicts)),
		},
		HeatmapMatrix: domainService.UploadHeatmap(observations, verdicts),
		TopRisks:      topRisks,
	}
}
