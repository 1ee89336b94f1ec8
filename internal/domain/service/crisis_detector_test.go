package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/aewis/internal/domain/models"
	"github.com/turtacn/aewis/internal/domain/service"
)

func TestDetectCrisisSubjects(t *testing.T) {
	tally := models.NewSubjectTally()
	tally.Set("Zoology", 3, 2)
	tally.Set("Art", 10, 3) // exactly 30%: not a crisis
	tally.Set("Biology", 10, 4)
	tally.Set("Empty", 0, 0)

	assert.Equal(t, []string{"Biology", "Zoology"}, service.DetectCrisisSubjects(tally))
}

func TestDetectCrisisSubjects_NilAndEmpty(t *testing.T) {
	assert.Empty(t, service.DetectCrisisSubjects(nil))
	assert.Empty(t, service.DetectCrisisSubjects(models.NewSubjectTally()))
}

func TestIsCrisis(t *testing.T) {
	assert.False(t, service.IsCrisis(models.SubjectCount{Total: 0, High: 0}))
	assert.False(t, service.IsCrisis(models.SubjectCount{Total: 100, High: 30}))
	assert.True(t, service.IsCrisis(models.SubjectCount{Total: 100, High: 31}))
	assert.True(t, service.IsCrisis(models.SubjectCount{Total: 1, High: 1}))
}
