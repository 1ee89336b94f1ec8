package service

import (
	"fmt"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/utils"
)

// AggregatorOptions tunes the report projection.
type AggregatorOptions struct {
	// RiskTrend is reported verbatim as the risk-trend KPI.
	RiskTrend float64
	// DeclineCap bounds decline samples (first-seen pairs win).
	DeclineCap int
	// HeatmapCap bounds heatmap rows (input prefix).
	HeatmapCap int
}

// DefaultAggregatorOptions returns the dashboard defaults.
func DefaultAggregatorOptions() AggregatorOptions {
	return AggregatorOptions{
		RiskTrend:  constants.DefaultRiskTrend,
		DeclineCap: constants.DeclineTrendCap,
		HeatmapCap: constants.HeatmapRowCap,
	}
}

// Aggregator rolls a tenant collection into an AggregateReport.
type Aggregator struct {
	opts AggregatorOptions
}

// NewAggregator creates an Aggregator. Non-positive caps fall back to the defaults.
func NewAggregator(opts AggregatorOptions) *Aggregator {
	def := DefaultAggregatorOptions()
	if opts.DeclineCap <= 0 {
		opts.DeclineCap = def.DeclineCap
	}
	if opts.HeatmapCap <= 0 {
		opts.HeatmapCap = def.HeatmapCap
	}
	return &Aggregator{opts: opts}
}

// Aggregate builds the report. verdicts[i] must belong to observations[i].
// An empty input yields a zero report; callers reject empty tenants before calling.
func (a *Aggregator) Aggregate(observations []models.Observation, verdicts []models.RiskVerdict) (*models.AggregateReport, error) {
	if len(observations) != len(verdicts) {
		return nil, fmt.Errorf("aggregate: %d observations but %d verdicts", len(observations), len(verdicts))
	}

	var (
		counts   models.RiskCounts
		tally    = models.NewSubjectTally()
		sumAvg   float64
		seen     = make(map[models.StudentSubject]struct{})
		declines = make([]models.DeclineSample, 0, min(len(observations), a.opts.DeclineCap))
		heatmap  = make([]models.HeatmapRow, 0, min(len(observations), a.opts.HeatmapCap))
	)

	for i, o := range observations {
		v := verdicts[i]
		avg := AverageScore(o)

		counts.Add(v.RiskLevel)
		tally.Add(o.Subject, v.RiskLevel)
		sumAvg += avg

		key := o.GroupKey()
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			if len(declines) < a.opts.DeclineCap {
				declines = append(declines, models.DeclineSample{
					StudentID:  o.StudentID,
					Subject:    o.Subject,
					DeclinePct: utils.Round1(DeclinePercent(o)),
				})
			}
		}

		if len(heatmap) < a.opts.HeatmapCap {
			heatmap = append(heatmap, models.HeatmapRow{
				StudentID: o.StudentID,
				Subject:   o.Subject,
				RiskLevel: v.RiskLevel,
				XPScore:   v.XPScore,
				Score:     avg,
			})
		}
	}

	total := counts.Total()
	report := &models.AggregateReport{
		Counts: counts,
		KPIs: models.KPISet{
			HealthScore: healthScore(sumAvg, total),
			RiskTrend:   a.opts.RiskTrend,
			SuccessRate: SuccessRate(counts),
		},
		Charts: models.ChartSet{
			RiskDistribution: RiskDistribution(counts),
			SubjectRisks:     SubjectRiskRatios(tally),
			DeclineTrends:    declines,
		},
		Heatmap:        heatmap,
		CrisisSubjects: DetectCrisisSubjects(tally),
		SubjectOrder:   tally.Subjects(),
	}
	return report, nil
}

// Aggregate runs the default Aggregator.
func Aggregate(observations []models.Observation, verdicts []models.RiskVerdict) (*models.AggregateReport, error) {
	return NewAggregator(DefaultAggregatorOptions()).Aggregate(observations, verdicts)
}

func healthScore(sumAvg float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return utils.Round1(sumAvg / float64(total))
}

// SuccessRate weighs LOW rows as fully and MEDIUM rows as half successful.
func SuccessRate(c models.RiskCounts) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return utils.Round1((float64(c.Low) + 0.5*float64(c.Medium)) / float64(total) * 100)
}

// RiskDistribution lists counts in HIGH, MEDIUM, LOW order.
func RiskDistribution(c models.RiskCounts) []models.RiskBucket {
	return []models.RiskBucket{
		{Level: constants.RiskLevelHigh, Count: c.High},
		{Level: constants.RiskLevelMedium, Count: c.Medium},
		{Level: constants.RiskLevelLow, Count: c.Low},
	}
}

// SubjectRiskRatios is the HIGH share per subject, in percent.
func SubjectRiskRatios(t *models.SubjectTally) map[string]float64 {
	subjects := t.Subjects()
	out := make(map[string]float64, len(subjects))
	for _, s := range subjects {
		c := t.Get(s)
		if c.Total == 0 {
			continue
		}
		out[s] = utils.Round1(float64(c.High) / float64(c.Total) * 100)
	}
	return out
}

// TallySubjects builds a SubjectTally from index-aligned observations and verdicts.
func TallySubjects(observations []models.Observation, verdicts []models.RiskVerdict) *models.SubjectTally {
	t := models.NewSubjectTally()
	for i := range observations {
		if i >= len(verdicts) {
			break
		}
		t.Add(observations[i].Subject, verdicts[i].RiskLevel)
	}
	return t
}
