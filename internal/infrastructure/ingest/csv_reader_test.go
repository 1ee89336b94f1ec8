package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/errors"
)

func TestReadObservations(t *testing.T) {
	input := "\ufeffstudent_id, subject,quiz1,quiz2,quiz3,attendance,teacher_id,notes\n" +
		"S001,Math,80,78,76,90,T001_Sharma,ok\n" +
		"\n" +
		",,,,,,,\n" +
		"S002,Physics,55.5,,40,61,,late\n"

	got, err := ReadObservations(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []models.Observation{
		{StudentID: "S001", Subject: "Math", Quiz1: 80, Quiz2: 78, Quiz3: 76, Attendance: 90, TeacherID: "T001_Sharma"},
		{StudentID: "S002", Subject: "Physics", Quiz1: 55.5, Quiz2: 0, Quiz3: 40, Attendance: 61},
	}, got)
}

func TestReadObservations_MissingColumn(t *testing.T) {
	_, err := ReadObservations(strings.NewReader("student_id,subject,quiz1,quiz2,attendance\nS1,Math,1,2,3\n"))
	require.Error(t, err)
	assert.Equal(t, "Missing column: quiz3", err.Error())
	assert.Equal(t, 400, errors.StatusOf(err))
}

func TestReadObservations_BadNumber(t *testing.T) {
	_, err := ReadObservations(strings.NewReader("student_id,subject,quiz1,quiz2,quiz3,attendance\nS1,Math,1,2,3,90\nS2,Math,abc,2,3,90\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid CSV")
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "quiz1")
}

func TestReadObservations_Empty(t *testing.T) {
	_, err := ReadObservations(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid CSV")
}

func TestReadObservations_HeaderOnly(t *testing.T) {
	got, err := ReadObservations(strings.NewReader("student_id,subject,quiz1,quiz2,quiz3,attendance\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadObservations_MalformedQuotes(t *testing.T) {
	_, err := ReadObservations(strings.NewReader("student_id,subject,quiz1,quiz2,quiz3,attendance\n\"S1,Math,1,2,3,4\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid CSV")
}

func TestWriteObservations_RoundTrip(t *testing.T) {
	in := []models.Observation{
		{StudentID: "S001", Subject: "Math", Quiz1: 80.5, Quiz2: 78, Quiz3: 76, Attendance: 90, TeacherID: "T001_Sharma"},
		{StudentID: "S002", Subject: "Biology", Quiz1: 0, Quiz2: 12.3, Quiz3: 100, Attendance: 45.7},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteObservations(&buf, in))

	out, err := ReadObservations(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestIsCSVFilename(t *testing.T) {
	assert.True(t, IsCSVFilename("data.csv"))
	assert.True(t, IsCSVFilename("DATA.CSV"))
	assert.False(t, IsCSVFilename("data.xlsx"))
	assert.False(t, IsCSVFilename(""))
}
