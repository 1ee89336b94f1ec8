//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/repository"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/logger"
)

func TestRepositories_Postgres(t *testing.T) {
	if os.Getenv("SKIP_DOCKER_TESTS") == "true" {
		t.Skip("Skipping Docker-dependent tests")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("aewis"),
		tcpostgres.WithUsername("aewis"),
		tcpostgres.WithPassword("aewis"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{})
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../../migrations/0001_risk_records.sql")
	require.NoError(t, err)
	sqlBytes, err := os.ReadFile(migrationsPath)
	require.NoError(t, err)
	require.NoError(t, db.Exec(string(sqlBytes)).Error)

	log := logger.NewDefaultLogger()
	risks := NewRiskRepository(db, 100, nil, log)
	ledger := NewInterventionRepository(db, nil, log)

	require.NoError(t, risks.Replace(ctx, "pg", []*models.RiskRecord{
		rec("L1", "Math", constants.RiskLevelLow, 700),
		rec("H1", "Math", constants.RiskLevelHigh, 90),
		rec("M1", "Physics", constants.RiskLevelMedium, 350),
	}))

	roster, err := risks.ListForTeacher(ctx, "pg", repository.TeacherQuery{TeacherID: "T1", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"H1", "M1", "L1"}, studentIDs(roster))

	entry := models.NewIntervention("pg", "H1", "Math", "T1", "", 59, time.Now())
	require.NoError(t, ledger.RecordInterventions(ctx, "pg", "T1", []string{"H1"}, []*models.Intervention{entry}))

	assigned, err := risks.ListForTeacher(ctx, "pg", repository.TeacherQuery{TeacherID: "T1", AssignedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"H1"}, studentIDs(assigned))

	high, err := risks.Count(ctx, "pg", repository.RiskFilter{Level: constants.RiskLevelHigh})
	require.NoError(t, err)
	assert.Equal(t, 1, high)
}
