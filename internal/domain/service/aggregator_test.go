package service_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/pkg/constants"
)

func classifyAll(observations []models.Observation) []models.RiskVerdict {
	out := make([]models.RiskVerdict, len(observations))
	for i, o := range observations {
		out[i] = service.Classify(o)
	}
	return out
}

func sampleCollection() []models.Observation {
	return []models.Observation{
		obs("S001", "Math", 80, 78, 76, 90),    // LOW
		obs("S002", "Math", 80, 60, 50, 60),    // HIGH
		obs("S003", "Physics", 30, 30, 30, 90), // MEDIUM
		obs("S001", "Math", 50, 50, 50, 90),    // LOW, repeated pair
	}
}

func TestAggregate_Sample(t *testing.T) {
	in := sampleCollection()
	report, err := service.Aggregate(in, classifyAll(in))
	require.NoError(t, err)

	assert.Equal(t, models.RiskCounts{High: 1, Medium: 1, Low: 2}, report.Counts)
	assert.Equal(t, 55.3, report.KPIs.HealthScore)
	assert.Equal(t, 62.5, report.KPIs.SuccessRate)
	assert.Equal(t, constants.DefaultRiskTrend, report.KPIs.RiskTrend)

	assert.Equal(t, map[string]float64{"Math": 33.3, "Physics": 0}, report.Charts.SubjectRisks)
	assert.Equal(t, []string{"Math"}, report.CrisisSubjects)
	assert.Equal(t, []string{"Math", "Physics"}, report.SubjectOrder)

	wantDist := []models.RiskBucket{
		{Level: constants.RiskLevelHigh, Count: 1},
		{Level: constants.RiskLevelMedium, Count: 1},
		{Level: constants.RiskLevelLow, Count: 2},
	}
	if diff := cmp.Diff(wantDist, report.Charts.RiskDistribution); diff != "" {
		t.Errorf("risk distribution mismatch (-want +got):\n%s", diff)
	}

	wantDeclines := []models.DeclineSample{
		{StudentID: "S001", Subject: "Math", DeclinePct: 5},
		{StudentID: "S002", Subject: "Math", DeclinePct: 37.5},
		{StudentID: "S003", Subject: "Physics", DeclinePct: 0},
	}
	if diff := cmp.Diff(wantDeclines, report.Charts.DeclineTrends); diff != "" {
		t.Errorf("decline trends mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, report.Heatmap, 4)
	assert.Equal(t, "S002", report.Heatmap[1].StudentID)
	assert.Equal(t, constants.RiskLevelHigh, report.Heatmap[1].RiskLevel)
	assert.Equal(t, 633, report.Heatmap[1].XPScore)
	assert.InDelta(t, 63.333, report.Heatmap[1].Score, 0.001)
}

func TestAggregate_Deterministic(t *testing.T) {
	in := sampleCollection()
	for i := 0; i < 30; i++ {
		in = append(in, obs(fmt.Sprintf("X%03d", i), fmt.Sprintf("Subj%d", i%7), float64(40+i), float64(35+i), float64(20+i), float64(60+i)))
	}
	verdicts := classifyAll(in)

	first, err := service.Aggregate(in, verdicts)
	require.NoError(t, err)
	second, err := service.Aggregate(in, verdicts)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("re-aggregation differs (-first +second):\n%s", diff)
	}
}

func TestAggregate_Caps(t *testing.T) {
	in := make([]models.Observation, 0, 300)
	for i := 0; i < 300; i++ {
		in = append(in, obs(fmt.Sprintf("S%03d", i), "Math", 70, 70, 70, 90))
	}
	report, err := service.Aggregate(in, classifyAll(in))
	require.NoError(t, err)

	require.Len(t, report.Heatmap, constants.HeatmapRowCap)
	require.Len(t, report.Charts.DeclineTrends, constants.DeclineTrendCap)
	assert.Equal(t, "S000", report.Heatmap[0].StudentID)
	assert.Equal(t, "S199", report.Heatmap[199].StudentID)
	assert.Equal(t, "S049", report.Charts.DeclineTrends[49].StudentID)
	assert.Equal(t, 300, report.Counts.Total())
}

func TestAggregate_CustomOptions(t *testing.T) {
	in := sampleCollection()
	agg := service.NewAggregator(service.AggregatorOptions{RiskTrend: 4.2, HeatmapCap: 2, DeclineCap: 1})
	report, err := agg.Aggregate(in, classifyAll(in))
	require.NoError(t, err)

	assert.Equal(t, 4.2, report.KPIs.RiskTrend)
	assert.Len(t, report.Heatmap, 2)
	assert.Len(t, report.Charts.DeclineTrends, 1)
}

func TestAggregate_LengthMismatch(t *testing.T) {
	in := sampleCollection()
	_, err := service.Aggregate(in, classifyAll(in)[:2])
	assert.Error(t, err)
}

func TestAggregate_Empty(t *testing.T) {
	report, err := service.Aggregate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Counts.Total())
	assert.Equal(t, 0.0, report.KPIs.HealthScore)
	assert.Equal(t, 0.0, report.KPIs.SuccessRate)
	assert.Empty(t, report.CrisisSubjects)
}

func TestAggregate_AllLowIsFullSuccess(t *testing.T) {
	in := []models.Observation{
		obs("S1", "Math", 90, 90, 90, 100),
		obs("S2", "Biology", 85, 85, 85, 95),
	}
	report, err := service.Aggregate(in, classifyAll(in))
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.KPIs.SuccessRate)
}
