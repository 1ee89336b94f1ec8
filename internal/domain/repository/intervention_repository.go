package repository

import (
	"context"

	"github.com/turtacn/aewis/internal/domain/models"
)

//go:generate mockery --name InterventionRepository --output ../service/mocks --filename intervention_repository.go
// InterventionRepository is the append-only intervention ledger.
type InterventionRepository interface {
	// RecordInterventions assigns teacherID to the students' rows and appends
	// entries, atomically.
	RecordInterventions(ctx context.Context, collegeID, teacherID string, ids []string, entries []*models.Intervention) error

	// ListByCollege returns the newest entries first, at most limit of them.
	ListByCollege(ctx context.Context, collegeID string, limit int) ([]*models.Intervention, error)
}
