// Package demodata generates synthetic observation batches for demos and load tests.
// Physics and Chemistry rows are skewed toward declining scores and low attendance
// so that a default-sized batch shows crisis subjects on the dashboard.
package demodata

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/infrastructure/ingest"
	"github.com/turtacn/aewis/pkg/utils"
)

// DefaultRows is the batch size used by the seed and demo-csv commands.
const DefaultRows = 512

// DefaultSeed makes the default demo batch reproducible.
const DefaultSeed int64 = 42

var (
	Subjects = []string{"Physics", "Chemistry", "Math", "Biology", "English"}
	Teachers = []string{"T001_Sharma", "T002_Kumar", "T003_Patel", "T004_Singh", "T005_Mehta"}
)

// Generator produces deterministic observation batches for a fixed seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns n observations with student ids S001, S002, ...
func (g *Generator) Generate(n int) []models.Observation {
	if n <= 0 {
		return []models.Observation{}
	}
	out := make([]models.Observation, n)
	for i := range out {
		out[i] = g.next(i + 1)
	}
	return out
}

func (g *Generator) next(seq int) models.Observation {
	subject := Subjects[g.rng.Intn(len(Subjects))]
	teacher := Teachers[g.rng.Intn(len(Teachers))]

	base := float64(35 + g.rng.Intn(51)) // [35,85]
	trend := g.rng.NormFloat64() * 8

	q1 := base
	q2 := base + trend
	q3 := base + 1.5*trend

	var attendance float64
	if isSkewed(subject) {
		q3 = utils.ClampFloat(q3, 0, 100) - float64(5+g.rng.Intn(16)) // [5,20]
		attendance = 72 + g.rng.NormFloat64()*12
	} else {
		attendance = 82 + g.rng.NormFloat64()*10
	}

	return models.Observation{
		StudentID:  fmt.Sprintf("S%03d", seq),
		Subject:    subject,
		TeacherID:  teacher,
		Quiz1:      score(q1),
		Quiz2:      score(q2),
		Quiz3:      score(q3),
		Attendance: score(attendance),
	}
}

func isSkewed(subject string) bool {
	return subject == "Physics" || subject == "Chemistry"
}

func score(v float64) float64 {
	return utils.Round1(utils.ClampFloat(v, 0, 100))
}

// WriteCSV generates n rows and writes them as an upload-ready CSV.
func WriteCSV(w io.Writer, n int, seed int64) error {
	return ingest.WriteObservations(w, NewGenerator(seed).Generate(n))
}
