package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bluemoxon/bluemoxon/internal/domain"
)

func Test_ParseConditionGrade_KnownGrades(t *testing.T) {
	for _, grade := range domain.AllConditionGrades() {
		t.Run(grade.String(), func(t *testing.T) {
			parsed, err := domain.ParseConditionGrade(grade.String())

			assert.NoError(t, err)
			assert.Equal(t, grade, parsed)
		})
	}
}

func Test_ParseConditionGrade_UnknownGrade(t *testing.T) {
	tests := []string{"", "pristine", "Fine", "very good"}

	for _, input := range tests {
		t.Run("input_"+input, func(t *testing.T) {
			_, err := domain.ParseConditionGrade(input)

			assert.ErrorIs(t, err, domain.ErrUnknownConditionGrade)
		})
	}
}

func Test_AllConditionGrades_OrderedWorstToBest(t *testing.T) {
	grades := domain.AllConditionGrades()

	assert.Len(t, grades, 7)
	assert.Equal(t, domain.ConditionPoor, grades[0])
	assert.Equal(t, domain.ConditionMint, grades[len(grades)-1])
}
