package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/repository"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	conn, err := NewDBConnectionFromGorm(db, logger.NewNoopLogger())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = conn.Close() })
	return db
}

func rec(id, subject string, level constants.RiskLevel, xp int) *models.RiskRecord {
	return &models.RiskRecord{
		Observation: models.Observation{StudentID: id, Subject: subject, Quiz1: 50, Quiz2: 50, Quiz3: 50, Attendance: 90},
		Verdict:     models.RiskVerdict{RiskLevel: level, Reason: "OK", XPScore: xp, HealthScore: xp / 10},
	}
}

func studentIDs(records []*models.RiskRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.StudentID
	}
	return out
}

func TestRiskRepository_ReplaceAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewRiskRepository(newTestDB(t), 2, nil, logger.NewNoopLogger())

	first := []*models.RiskRecord{
		rec("S1", "Math", constants.RiskLevelHigh, 100),
		rec("S2", "Math", constants.RiskLevelLow, 700),
		rec("S3", "Physics", constants.RiskLevelMedium, 400),
	}
	require.NoError(t, repo.Replace(ctx, "c1", first))
	assert.NotZero(t, first[0].ID)
	assert.Less(t, first[0].ID, first[2].ID)
	assert.Equal(t, "c1", first[1].CollegeID)

	got, err := repo.List(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2", "S3"}, studentIDs(got))
	assert.Equal(t, constants.RiskLevelMedium, got[2].Verdict.RiskLevel)
	assert.Equal(t, "Physics", got[2].Subject)

	// Replacing drops the previous collection entirely.
	require.NoError(t, repo.Replace(ctx, "c1", []*models.RiskRecord{rec("S9", "Art", constants.RiskLevelLow, 800)}))
	got, err = repo.List(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S9"}, studentIDs(got))
}

func TestRiskRepository_TenantsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewRiskRepository(newTestDB(t), 0, nil, logger.NewNoopLogger())

	require.NoError(t, repo.Replace(ctx, "a", []*models.RiskRecord{rec("S1", "Math", constants.RiskLevelHigh, 0)}))
	require.NoError(t, repo.Replace(ctx, "b", []*models.RiskRecord{rec("S2", "Math", constants.RiskLevelLow, 0)}))
	require.NoError(t, repo.Replace(ctx, "a", nil))

	a, err := repo.List(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a)

	b, err := repo.List(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, studentIDs(b))
}

func TestRiskRepository_Count(t *testing.T) {
	ctx := context.Background()
	repo := NewRiskRepository(newTestDB(t), 0, nil, logger.NewNoopLogger())
	require.NoError(t, repo.Replace(ctx, "c1", []*models.RiskRecord{
		rec("S1", "Math", constants.RiskLevelHigh, 0),
		rec("S2", "Math", constants.RiskLevelHigh, 0),
		rec("S3", "Math", constants.RiskLevelLow, 0),
	}))

	total, err := repo.Count(ctx, "c1", repository.RiskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	high, err := repo.Count(ctx, "c1", repository.RiskFilter{Level: constants.RiskLevelHigh})
	require.NoError(t, err)
	assert.Equal(t, 2, high)

	none, err := repo.Count(ctx, "missing", repository.RiskFilter{})
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestRiskRepository_FindByStudentIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewRiskRepository(newTestDB(t), 0, nil, logger.NewNoopLogger())
	require.NoError(t, repo.Replace(ctx, "c1", []*models.RiskRecord{
		rec("S1", "Math", constants.RiskLevelHigh, 0),
		rec("S2", "Math", constants.RiskLevelLow, 0),
		rec("S1", "Physics", constants.RiskLevelMedium, 0),
	}))

	got, err := repo.FindByStudentIDs(ctx, "c1", []string{"S1", "ghost"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Math", got[0].Subject)
	assert.Equal(t, "Physics", got[1].Subject)

	empty, err := repo.FindByStudentIDs(ctx, "c1", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRiskRepository_ListForTeacher(t *testing.T) {
	ctx := context.Background()
	repo := NewRiskRepository(newTestDB(t), 0, nil, logger.NewNoopLogger())
	require.NoError(t, repo.Replace(ctx, "c1", []*models.RiskRecord{
		rec("L1", "Math", constants.RiskLevelLow, 0),
		rec("H1", "Math", constants.RiskLevelHigh, 0),
		rec("M1", "Math", constants.RiskLevelMedium, 0),
		rec("H2", "Math", constants.RiskLevelHigh, 0),
	}))

	all, err := repo.ListForTeacher(ctx, "c1", repository.TeacherQuery{TeacherID: "T1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"H1", "H2", "M1", "L1"}, studentIDs(all))

	limited, err := repo.ListForTeacher(ctx, "c1", repository.TeacherQuery{TeacherID: "T1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"H1", "H2"}, studentIDs(limited))

	require.NoError(t, repo.SetTeacher(ctx, "c1", []string{"M1", "L1"}, "T1"))
	assigned, err := repo.ListForTeacher(ctx, "c1", repository.TeacherQuery{TeacherID: "T1", AssignedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "L1"}, studentIDs(assigned))
	assert.Equal(t, "T1", assigned[0].TeacherID)
}

func TestInterventionRepository_RecordAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	risks := NewRiskRepository(db, 0, nil, logger.NewNoopLogger())
	ledger := NewInterventionRepository(db, nil, logger.NewNoopLogger())

	require.NoError(t, risks.Replace(ctx, "c1", []*models.RiskRecord{
		rec("S1", "Math", constants.RiskLevelHigh, 120),
		rec("S2", "Math", constants.RiskLevelLow, 800),
	}))

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	older := models.NewIntervention("c1", "S1", "Math", "T7", "", 62, base)
	newer := models.NewIntervention("c1", "S1", "Math", "T7", "call", 62, base.Add(time.Hour))
	require.NoError(t, ledger.RecordInterventions(ctx, "c1", "T7", []string{"S1"}, []*models.Intervention{older, newer}))

	rows, err := risks.FindByStudentIDs(ctx, "c1", []string{"S1", "S2"})
	require.NoError(t, err)
	assert.Equal(t, "T7", rows[0].TeacherID)
	assert.Equal(t, "", rows[1].TeacherID)

	list, err := ledger.ListByCollege(ctx, "c1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, "call", list[0].Action)
	assert.Equal(t, constants.DefaultInterventionAction, list[1].Action)
	assert.True(t, list[1].Success)

	one, err := ledger.ListByCollege(ctx, "c1", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	other, err := ledger.ListByCollege(ctx, "c2", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInterventionRepository_RollsBackOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	risks := NewRiskRepository(db, 0, nil, logger.NewNoopLogger())
	ledger := NewInterventionRepository(db, nil, logger.NewNoopLogger())

	require.NoError(t, risks.Replace(ctx, "c1", []*models.RiskRecord{rec("S1", "Math", constants.RiskLevelHigh, 0)}))

	entry := models.NewIntervention("c1", "S1", "Math", "T1", "", 50, time.Now())
	require.NoError(t, ledger.RecordInterventions(ctx, "c1", "T1", []string{"S1"}, []*models.Intervention{entry}))

	// Reusing the primary key makes the insert fail after the teacher update ran.
	dup := *entry
	err := ledger.RecordInterventions(ctx, "c1", "T2", []string{"S1"}, []*models.Intervention{&dup})
	require.Error(t, err)

	rows, err := risks.List(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "T1", rows[0].TeacherID)

	gen, err := risks.Generation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}

func TestRiskRepository_GenerationAdvancesOnWrites(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	risks := NewRiskRepository(db, 0, nil, logger.NewNoopLogger())
	ledger := NewInterventionRepository(db, nil, logger.NewNoopLogger())

	gen, err := risks.Generation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, risks.Replace(ctx, "c1", []*models.RiskRecord{rec("S1", "Math", constants.RiskLevelHigh, 0)}))
	require.NoError(t, risks.Replace(ctx, "c1", []*models.RiskRecord{rec("S1", "Math", constants.RiskLevelLow, 700)}))
	require.NoError(t, risks.SetTeacher(ctx, "c1", []string{"S1"}, "T1"))
	require.NoError(t, risks.SetTeacher(ctx, "c1", nil, "T1"))

	entry := models.NewIntervention("c1", "S1", "Math", "T1", "", 50, time.Now())
	require.NoError(t, ledger.RecordInterventions(ctx, "c1", "T1", []string{"S1"}, []*models.Intervention{entry}))

	gen, err = risks.Generation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), gen)

	// Replacing with nothing still counts as a write.
	require.NoError(t, risks.Replace(ctx, "c1", nil))
	gen, err = risks.Generation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), gen)

	other, err := risks.Generation(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), other)
}
