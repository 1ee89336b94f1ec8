package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turtacn/aewis/pkg/errors"
)

// collegeGenerationDBM counts writes to one tenant collection. Cached reports
// carry the generation they were built from.
type collegeGenerationDBM struct {
	CollegeID  string    `gorm:"type:varchar(64);primaryKey"`
	Generation int64     `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for the collegeGenerationDBM model.
func (collegeGenerationDBM) TableName() string {
	return "college_generations"
}

// bumpGeneration increments the college's generation. Call it inside the
// transaction that writes the collection.
func bumpGeneration(tx *gorm.DB, collegeID string) error {
	now := time.Now().UTC()
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "college_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"generation": gorm.Expr("college_generations.generation + 1"),
			"updated_at": now,
		}),
	}).Create(&collegeGenerationDBM{CollegeID: collegeID, Generation: 1, UpdatedAt: now}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	return nil
}

// Generation returns the write counter of the college's collection, 0 if it was never written.
func (r *riskRepositoryImpl) Generation(ctx context.Context, collegeID string) (int64, error) {
	start := time.Now()
	defer func() { r.metrics.RecordDBQuery("risk_generation", time.Since(start)) }()

	var rows []collegeGenerationDBM
	if err := r.db.WithContext(ctx).Where("college_id = ?", collegeID).Limit(1).Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Generation, nil
}
