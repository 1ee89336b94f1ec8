package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/aewis/internal/domain/models"
)

// classifyChunk is the number of rows one goroutine classifies before yielding.
const classifyChunk = 256

// ClassifyBatch classifies observations concurrently with at most workers
// goroutines. verdicts[i] always belongs to observations[i].
func ClassifyBatch(ctx context.Context, observations []models.Observation, workers int) ([]models.RiskVerdict, error) {
	verdicts := make([]models.RiskVerdict, len(observations))
	if len(observations) == 0 {
		return verdicts, ctx.Err()
	}
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(observations); start += classifyChunk {
		lo, hi := start, min(start+classifyChunk, len(observations))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				verdicts[i] = Classify(observations[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

// BuildRecords pairs observations with their verdicts for persistence.
func BuildRecords(collegeID string, observations []models.Observation, verdicts []models.RiskVerdict) []*models.RiskRecord {
	records := make([]*models.RiskRecord, len(observations))
	for i := range observations {
		records[i] = &models.RiskRecord{
			CollegeID:   collegeID,
			Observation: observations[i],
			Verdict:     verdicts[i],
		}
	}
	return records
}

// UploadHeatmap echoes every row as [student_id, subject, risk_level, xp_score, health_score].
func UploadHeatmap(observations []models.Observation, verdicts []models.RiskVerdict) []models.HeatmapRow {
	rows := make([]models.HeatmapRow, len(observations))
	for i, o := range observations {
		v := verdicts[i]
		rows[i] = models.HeatmapRow{
			StudentID: o.StudentID,
			Subject:   o.Subject,
			RiskLevel: v.RiskLevel,
			XPScore:   v.XPScore,
			Score:     float64(v.HealthScore),
		}
	}
	return rows
}
