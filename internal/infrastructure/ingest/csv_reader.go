// Package ingest decodes uploaded observation files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/turtacn/aewis/internal/domain/models"
	apperrors "github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/utils"
)

// Column names of the observation CSV.
const (
	ColStudentID  = "student_id"
	ColSubject    = "subject"
	ColQuiz1      = "quiz1"
	ColQuiz2      = "quiz2"
	ColQuiz3      = "quiz3"
	ColAttendance = "attendance"
	ColTeacherID  = "teacher_id"
)

// RequiredColumns are checked in this order; the first missing one is reported.
var RequiredColumns = []string{ColStudentID, ColSubject, ColQuiz1, ColQuiz2, ColQuiz3, ColAttendance}

const utf8BOM = "\ufeff"

// IsCSVFilename reports whether name carries a .csv extension, case-insensitively.
func IsCSVFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".csv")
}

// ReadObservations decodes a header-led CSV stream into observations in file order.
// Unknown columns are ignored, empty numeric cells read as 0 and blank lines are skipped.
func ReadObservations(r io.Reader) ([]models.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.ErrInvalidCSV("No columns to parse from file")
	}
	if err != nil {
		return nil, apperrors.ErrInvalidCSV(err.Error())
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, utf8BOM)))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, apperrors.ErrMissingColumn(col)
		}
	}
	teacherCol, hasTeacher := index[ColTeacherID]

	var out []models.Observation
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.ErrInvalidCSV(err.Error())
		}
		if blank(record) {
			continue
		}

		cell := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		num := func(col string) (float64, error) {
			raw := cell(col)
			v, ok := utils.ParseScore(raw)
			if !ok {
				return 0, apperrors.ErrInvalidCell(line, col, raw)
			}
			return v, nil
		}

		o := models.Observation{
			StudentID: cell(ColStudentID),
			Subject:   cell(ColSubject),
		}
		for _, f := range []struct {
			col string
			dst *float64
		}{
			{ColQuiz1, &o.Quiz1},
			{ColQuiz2, &o.Quiz2},
			{ColQuiz3, &o.Quiz3},
			{ColAttendance, &o.Attendance},
		} {
			v, err := num(f.col)
			if err != nil {
				return nil, err
			}
			*f.dst = v
		}
		if hasTeacher && teacherCol < len(record) {
			o.TeacherID = strings.TrimSpace(record[teacherCol])
		}
		out = append(out, o)
	}
	return out, nil
}

// WriteObservations encodes observations with the canonical header.
func WriteObservations(w io.Writer, observations []models.Observation) error {
	writer := csv.NewWriter(w)
	header := append(append([]string{}, RequiredColumns...), ColTeacherID)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range observations {
		row := []string{
			o.StudentID,
			o.Subject,
			formatScore(o.Quiz1),
			formatScore(o.Quiz2),
			formatScore(o.Quiz3),
			formatScore(o.Attendance),
			o.TeacherID,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %s/%s: %w", o.StudentID, o.Subject, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatScore(v float64) string {
	return fmt.Sprintf("%g", v)
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
