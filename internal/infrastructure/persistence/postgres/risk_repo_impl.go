package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/repository"
	domainService "github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

// riskRecordDBM is the database model for one classified observation.
// ID is auto-incremented, so it doubles as the insertion order within a college.
type riskRecordDBM struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	CollegeID   string    `gorm:"type:varchar(64);not null;index:idx_risk_college_level,priority:1;index:idx_risk_college_student,priority:1"`
	StudentID   string    `gorm:"type:varchar(64);not null;index:idx_risk_college_student,priority:2"`
	Subject     string    `gorm:"type:varchar(128);not null"`
	Quiz1       float64   `gorm:"not null"`
	Quiz2       float64   `gorm:"not null"`
	Quiz3       float64   `gorm:"not null"`
	Attendance  float64   `gorm:"not null"`
	TeacherID   string    `gorm:"type:varchar(64);not null;default:''"`
	RiskLevel   string    `gorm:"type:varchar(8);not null;index:idx_risk_college_level,priority:2"`
	Reason      string    `gorm:"type:varchar(128);not null"`
	XPScore     int       `gorm:"not null"`
	HealthScore int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the table name for the riskRecordDBM model.
func (riskRecordDBM) TableName() string {
	return "risk_records"
}

func (m *riskRecordDBM) toDomain() *models.RiskRecord {
	return &models.RiskRecord{
		ID:        m.ID,
		CollegeID: m.CollegeID,
		Observation: models.Observation{
			StudentID:  m.StudentID,
			Subject:    m.Subject,
			Quiz1:      m.Quiz1,
			Quiz2:      m.Quiz2,
			Quiz3:      m.Quiz3,
			Attendance: m.Attendance,
			TeacherID:  m.TeacherID,
		},
		Verdict: models.RiskVerdict{
			RiskLevel:   constants.RiskLevel(m.RiskLevel),
			Reason:      m.Reason,
			XPScore:     m.XPScore,
			HealthScore: m.HealthScore,
		},
		CreatedAt: m.CreatedAt,
	}
}

func riskRecordFromDomain(r *models.RiskRecord, collegeID string, now time.Time) *riskRecordDBM {
	return &riskRecordDBM{
		CollegeID:   collegeID,
		StudentID:   r.StudentID,
		Subject:     r.Subject,
		Quiz1:       r.Quiz1,
		Quiz2:       r.Quiz2,
		Quiz3:       r.Quiz3,
		Attendance:  r.Attendance,
		TeacherID:   r.TeacherID,
		RiskLevel:   string(r.Verdict.RiskLevel),
		Reason:      r.Verdict.Reason,
		XPScore:     r.Verdict.XPScore,
		HealthScore: r.Verdict.HealthScore,
		CreatedAt:   now,
	}
}

// severityOrder sorts HIGH before MEDIUM before LOW.
const severityOrder = "CASE risk_level WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END"

type riskRepositoryImpl struct {
	db        *gorm.DB
	batchSize int
	metrics   domainService.Metrics
	logger    logger.Logger
}

// NewRiskRepository creates a new gorm-backed RiskRepository.
func NewRiskRepository(db *gorm.DB, batchSize int, metrics domainService.Metrics, log logger.Logger) repository.RiskRepository {
	if batchSize <= 0 {
		batchSize = 500
	}
	if metrics == nil {
		metrics = domainService.NoopMetrics{}
	}
	return &riskRepositoryImpl{
		db:        db,
		batchSize: batchSize,
		metrics:   metrics,
		logger:    log.WithComponent("RiskRepository"),
	}
}

// Replace swaps the college's collection inside one transaction.
func (r *riskRepositoryImpl) Replace(ctx context.Context, collegeID string, records []*models.RiskRecord) error {
	start := time.Now()
	defer func() { r.metrics.RecordDBQuery("risk_replace", time.Since(start)) }()

	now := time.Now().UTC()
	rows := make([]*riskRecordDBM, len(records))
	for i, rec := range records {
		rows[i] = riskRecordFromDomain(rec, collegeID, now)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("college_id = ?", collegeID).Delete(&riskRecordDBM{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, r.batchSize).Error; err != nil {
				return err
			}
		}
		return bumpGeneration(tx, collegeID)
	})
	if err != nil {
		r.logger.Error(ctx, "failed to replace tenant collection", err, logger.String("college_id", collegeID))
		return fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}

	for i, row := range rows {
		records[i].ID = row.ID
		records[i].CollegeID = collegeID
		records[i].CreatedAt = row.CreatedAt
	}

	r.logger.Debug(ctx, "tenant collection replaced",
		logger.String("college_id", collegeID),
		logger.Int("rows", len(rows)),
		logger.Int64("latency_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// List returns the collection in insertion order.
func (r *riskRepositoryImpl) List(ctx context.Context, collegeID string) ([]*models.RiskRecord, error) {
	start := time.Now()
	defer func() { r.metrics.RecordDBQuery("risk_list", time.Since(start)) }()

	var rows []riskRecordDBM
	if err := r.db.WithContext(ctx).Where("college_id = ?", collegeID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	return toDomainRecords(rows), nil
}

// Count returns the number of rows matching the filter.
func (r *riskRepositoryImpl) Count(ctx context.Context, collegeID string, filter repository.RiskFilter) (int, error) {
	start := time.Now()
	defer func() { r.metrics.RecordDBQuery("risk_count", time.Since(start)) }()

	q := r.db.WithContext(ctx).Model(&riskRecordDBM{}).Where("college_id = ?", collegeID)
	if filter.Level != "" {
		q = q.Where("risk_level = ?", string(filter.Level))
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	return int(n), nil
}

// FindByStudentIDs returns every row for the given students, in insertion order.
func (r *riskRepositoryImpl) FindByStudentIDs(ctx context.Context, collegeID string, ids []string) ([]*models.RiskRecord, error) {
	if len(ids) == 0 {
		return []*models.RiskRecord{}, nil
	}
	start := time.Now()
	defer func() { r.metrics.RecordDBQuery("risk_find_students", time.Since(start)) }()

	var rows []riskRecordDBM
	err := r.db.WithContext(ctx).
		Where("college_id = ? AND student_id IN ?", collegeID, ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	return toDomainRecords(rows), nil
}

// ListForTeacher returns the roster, most severe first.
func (r *riskRepositoryImpl) ListForTeacher(ctx context.Context, collegeID string, q repository.TeacherQuery) ([]*models.RiskRecord, error) {
	start := time.Now()
	defer func() { r.metrics.RecordDBQuery("risk_teacher_roster", time.Since(start)) }()

	query := r.db.WithContext(ctx).Where("college_id = ?", collegeID)
	if q.AssignedOnly {
		query = query.Where("teacher_id = ?", q.TeacherID)
	}
	query = query.Order(severityOrder).Order("id ASC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var rows []riskRecordDBM
	if err := query.Find(&rows).Error; err != nil {
		r.logger.Error(ctx, "failed to list teacher roster", err,
			logger.String("college_id", collegeID),
			logger.String("teacher_id", q.TeacherID),
		)
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	return toDomainRecords(rows), nil
}

// SetTeacher assigns a teacher to every row of the given students.
func (r *riskRepositoryImpl) SetTeacher(ctx context.Context, collegeID string, ids []string, teacherID string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setTeacher(tx, collegeID, ids, teacherID); err != nil {
			return err
		}
		return bumpGeneration(tx, collegeID)
	})
}

func setTeacher(tx *gorm.DB, collegeID string, ids []string, teacherID string) error {
	if len(ids) == 0 {
		return nil
	}
	err := tx.Model(&riskRecordDBM{}).
		Where("college_id = ? AND student_id IN ?", collegeID, ids).
		Update("teacher_id", teacherID).Error
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	return nil
}

func toDomainRecords(rows []riskRecordDBM) []*models.RiskRecord {
	out := make([]*models.RiskRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}
