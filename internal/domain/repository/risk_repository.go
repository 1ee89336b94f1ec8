package repository

import (
	"context"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/constants"
)

// RiskFilter narrows a Count query. The zero value counts every row.
type RiskFilter struct {
	Level constants.RiskLevel
}

// TeacherQuery selects the roster shown to one teacher.
type TeacherQuery struct {
	TeacherID string
	// AssignedOnly restricts the roster to rows whose teacher_id equals TeacherID.
	AssignedOnly bool
	Limit        int
}

//go:generate mockery --name RiskRepository --output ../service/mocks --filename risk_repository.go
// RiskRepository owns the tenant collections. Each college id has at most one
// active collection; rows come back in insertion order unless stated otherwise.
type RiskRepository interface {
	// Replace deletes the college's collection and inserts records in one transaction.
	// records are assigned ids in slice order.
	Replace(ctx context.Context, collegeID string, records []*models.RiskRecord) error

	// List returns the whole collection in insertion order.
	List(ctx context.Context, collegeID string) ([]*models.RiskRecord, error)

	// Count returns the number of rows matching filter.
	Count(ctx context.Context, collegeID string, filter RiskFilter) (int, error)

	// FindByStudentIDs returns every row (any subject) whose student id is in ids.
	FindByStudentIDs(ctx context.Context, collegeID string, ids []string) ([]*models.RiskRecord, error)

	// ListForTeacher returns rows ordered HIGH, MEDIUM, LOW, then by insertion order.
	ListForTeacher(ctx context.Context, collegeID string, q TeacherQuery) ([]*models.RiskRecord, error)

	// SetTeacher assigns teacherID to every row of the given students.
	SetTeacher(ctx context.Context, collegeID string, ids []string, teacherID string) error

	// Generation returns the collection's write counter, 0 if it was never written.
	// Every write to the collection increments it in the same transaction.
	Generation(ctx context.Context, collegeID string) (int64, error)
}
//Personal.AI order the ending
