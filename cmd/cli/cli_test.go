package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/turtacn/aewis/internal/application/dto"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDemoCSV_Stdout(t *testing.T) {
	out, err := runCLI(t, "demo-csv", "--rows", "5", "--seed", "7", "--out", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "student_id,subject,quiz1,quiz2,quiz3,attendance"))
	assert.True(t, strings.HasPrefix(lines[1], "S001,"))

	again, err := runCLI(t, "demo-csv", "--rows", "5", "--seed", "7", "--out", "-")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestDemoCSV_RejectsNonPositiveRows(t *testing.T) {
	_, err := runCLI(t, "demo-csv", "--rows", "0", "--out", "-")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.csv")
	_, err := runCLI(t, "demo-csv", "--rows", "200", "--out", path)
	require.NoError(t, err)

	out, err := runCLI(t, "classify", "--file", path, "--full")
	require.NoError(t, err)

	var resp dto.UploadResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "demo_001", resp.CollegeID)
	assert.Equal(t, 200, resp.Summary.TotalStudents)
	assert.Equal(t, 200, resp.Summary.HighRisk+resp.Summary.MediumRisk+resp.Summary.LowRisk)
	assert.Len(t, resp.HeatmapMatrix, 200)
	assert.LessOrEqual(t, len(resp.TopRisks), 20)
}

func TestClassify_Errors(t *testing.T) {
	_, err := runCLI(t, "classify")
	assert.Error(t, err)

	_, err = runCLI(t, "classify", "--file", "grades.xlsx")
	assert.ErrorContains(t, err, "CSV file required")

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("student_id,subject\nS1,Math\n"), 0o600))
	_, err = runCLI(t, "classify", "--file", path)
	assert.ErrorContains(t, err, "Missing column: quiz1")
}

func TestSeed_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.db")
	t.Setenv("AEWIS_DATABASE_DRIVER", "sqlite")
	t.Setenv("AEWIS_DATABASE_SQLITE_PATH", dbPath)

	out, err := runCLI(t, "seed", "--college", "demo", "--rows", "40", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded demo_001: 40 rows")

	// Seeding again replaces rather than appends.
	_, err = runCLI(t, "seed", "--college", "demo", "--rows", "25", "--seed", "3")
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	var count int64
	require.NoError(t, db.Table("risk_records").Where("college_id = ?", "demo_001").Count(&count).Error)
	assert.Equal(t, int64(25), count)
}
