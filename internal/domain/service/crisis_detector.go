package service

import (
	"sort"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/pkg/constants"
)

// IsCrisis reports whether the HIGH share strictly exceeds the crisis threshold.
func IsCrisis(c models.SubjectCount) bool {
	if c.Total <= 0 {
		return false
	}
	return float64(c.High)/float64(c.Total) > constants.CrisisHighShare
}

// DetectCrisisSubjects returns the crisis subjects sorted lexicographically.
func DetectCrisisSubjects(t *models.SubjectTally) []string {
	out := make([]string, 0)
	if t == nil {
		return out
	}
	for _, s := range t.Subjects() {
		if IsCrisis(t.Get(s)) {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
