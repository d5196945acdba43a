package domain

import "errors"

// ErrUnknownConditionGrade is returned when a condition grade string does not match any known grade.
var ErrUnknownConditionGrade = errors.New("unknown condition grade")

// ConditionGrade describes the physical condition of a book using
// the grading scale common in the antiquarian book trade.
type ConditionGrade string

const (
	ConditionPoor     ConditionGrade = "poor"
	ConditionFair     ConditionGrade = "fair"
	ConditionGood     ConditionGrade = "good"
	ConditionVeryGood ConditionGrade = "very-good"
	ConditionNearFine ConditionGrade = "near-fine"
	ConditionFine     ConditionGrade = "fine"
	ConditionMint     ConditionGrade = "mint"
)

// AllConditionGrades lists every grade ordered from worst to best.
// Stats responses use this ordering so every grade appears even with a zero count.
func AllConditionGrades() []ConditionGrade {
	return []ConditionGrade{
		ConditionPoor,
		ConditionFair,
		ConditionGood,
		ConditionVeryGood,
		ConditionNearFine,
		ConditionFine,
		ConditionMint,
	}
}

// ParseConditionGrade validates a grade string and returns the typed grade.
func ParseConditionGrade(s string) (ConditionGrade, error) {
	grade := ConditionGrade(s)

	for _, known := range AllConditionGrades() {
		if grade == known {
			return grade, nil
		}
	}

	return "", ErrUnknownConditionGrade
}

// String returns the wire representation of the grade.
func (c ConditionGrade) String() string {
	return string(c)
}
