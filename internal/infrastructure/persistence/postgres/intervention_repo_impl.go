package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/repository"
	domainService "github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

// interventionDBM is the database model for an intervention ledger entry.
type interventionDBM struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	CollegeID string    `gorm:"type:varchar(64);not null;index:idx_intervention_college_created,priority:1"`
	StudentID string    `gorm:"type:varchar(64);not null"`
	Subject   string    `gorm:"type:varchar(128);not null"`
	TeacherID string    `gorm:"type:varchar(64);not null"`
	Action    string    `gorm:"type:varchar(64);not null"`
	Success   bool      `gorm:"not null"`
	XPEarned  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_intervention_college_created,priority:2"`
}

// TableName specifies the table name for the interventionDBM model.
func (interventionDBM) TableName() string {
	return "interventions"
}

func (m *interventionDBM) toDomain() *models.Intervention {
	return &models.Intervention{
		ID:        m.ID,
		CollegeID: m.CollegeID,
		StudentID: m.StudentID,
		Subject:   m.Subject,
		TeacherID: m.TeacherID,
		Action:    m.Action,
		Success:   m.Success,
		XPEarned:  m.XPEarned,
		CreatedAt: m.CreatedAt,
	}
}

func interventionFromDomain(i *models.Intervention) *interventionDBM {
	return &interventionDBM{
		ID:        i.ID,
		CollegeID: i.CollegeID,
		StudentID: i.StudentID,
		Subject:   i.Subject,
		TeacherID: i.TeacherID,
		Action:    i.Action,
		Success:   i.Success,
		XPEarned:  i.XPEarned,
		CreatedAt: i.CreatedAt,
	}
}

type interventionRepositoryImpl struct {
	db      *gorm.DB
	metrics domainService.Metrics
	logger  logger.Logger
}

// NewInterventionRepository creates a new gorm-backed InterventionRepository.
func NewInterventionRepository(db *gorm.DB, metrics domainService.Metrics, log logger.Logger) repository.InterventionRepository {
	if metrics == nil {
		metrics = domainService.NoopMetrics{}
	}
	return &interventionRepositoryImpl{db: db, metrics: metrics, logger: log.WithComponent("InterventionRepository")}
}

// RecordInterventions assigns the teacher and appends the ledger entries in one transaction.
func (r *interventionRepositoryImpl) RecordInterventions(ctx context.Context, collegeID, teacherID string, ids []string, entries []*models.Intervention) error {
	start := time.Now()
	defer func() { r.metrics.RecordDBQuery("intervention_record", time.Since(start)) }()

	rows := make([]*interventionDBM, len(entries))
	for i, e := range entries {
		rows[i] = interventionFromDomain(e)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setTeacher(tx, collegeID, ids, teacherID); err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(rows).Error; err != nil {
				return err
			}
		}
		return bumpGeneration(tx, collegeID)
	})
	if err != nil {
		r.logger.Error(ctx, "failed to record interventions", err,
			logger.String("college_id", collegeID),
			logger.String("teacher_id", teacherID),
		)
		return fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}

	r.logger.Debug(ctx, "interventions recorded",
		logger.String("college_id", collegeID),
		logger.Int("entries", len(rows)),
		logger.Int64("latency_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// ListByCollege returns the newest ledger entries first.
func (r *interventionRepositoryImpl) ListByCollege(ctx context.Context, collegeID string, limit int) ([]*models.Intervention, error) {
	start := time.Now()
	defer func() { r.metrics.RecordDBQuery("intervention_list", time.Since(start)) }()

	q := r.db.WithContext(ctx).Where("college_id = ?", collegeID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []interventionDBM
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	out := make([]*models.Intervention, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}
