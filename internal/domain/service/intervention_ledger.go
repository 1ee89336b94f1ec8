package service

import (
	"strings"
	"time"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/utils"
)

// InterventionLedger turns a teacher action into ledger entries and the
// before/after summary returned to the caller. It never reclassifies rows:
// recording an intervention changes ownership, not risk.
type InterventionLedger struct {
	successBonus float64
}

// NewInterventionLedger creates a ledger that adds successBonus to the
// post-intervention success rate.
func NewInterventionLedger(successBonus float64) *InterventionLedger {
	return &InterventionLedger{successBonus: successBonus}
}

// InterventionXP is the XP credited for acting on a row with the given xp score.
func InterventionXP(xpScore int) int {
	return constants.InterventionBaseXP + floorDiv(xpScore, 10)
}

// Plan builds one ledger entry per matched record. Requested ids without a
// matching record are reported in UnmatchedIDs. An empty match set yields a
// no_match error.
func (l *InterventionLedger) Plan(collegeID, teacherID, action string, requested []string, matched []*models.RiskRecord, now time.Time) (*models.InterventionPlan, error) {
	if len(matched) == 0 {
		return nil, errors.ErrNoMatchingStudents(collegeID)
	}

	plan := &models.InterventionPlan{
		Entries: make([]*models.Intervention, 0, len(matched)),
	}
	found := make(map[string]struct{}, len(matched))
	for _, r := range matched {
		xp := InterventionXP(r.Verdict.XPScore)
		plan.Entries = append(plan.Entries, models.NewIntervention(collegeID, r.StudentID, r.Subject, teacherID, action, xp, now))
		plan.TotalXP += xp
		if _, ok := found[r.StudentID]; !ok {
			found[r.StudentID] = struct{}{}
			plan.MatchedIDs = append(plan.MatchedIDs, r.StudentID)
		}
	}

	for _, id := range utils.UniqueStrings(requested) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := found[id]; !ok {
			plan.UnmatchedIDs = append(plan.UnmatchedIDs, id)
		}
	}
	return plan, nil
}

// Settle computes the before/after summary from HIGH counts taken around the write.
func (l *InterventionLedger) Settle(total, highBefore, highAfter int) models.InterventionOutcome {
	reduction := float64(highBefore-highAfter) / float64(max(1, highBefore)) * 100
	reduction = utils.Round1(utils.ClampFloat(reduction, 0, 100))

	var after float64
	if total > 0 {
		after = float64(total-highAfter) / float64(total) * 100
	}

	return models.InterventionOutcome{
		RiskReduction:    reduction,
		SuccessRateAfter: after,
		NewSuccessRate:   utils.Round1(after + l.successBonus),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
