package training

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
)

const (
	MaxMovementNameLength     = 200
	MaxMovementCategoryLength = 100
	MaxRecommendationLength   = 7
	MaxRestTimeSeconds        = 32767
	MaxReps                   = 32767
)

func ValidateMovement(m Movement) error {
	var err error
	if strings.TrimSpace(m.Name) == "" {
		err = multierr.Append(err, newValidationError("name", "this field may not be blank"))
	}
	err = multierr.Append(err, maxLength("name", m.Name, MaxMovementNameLength))
	err = multierr.Append(err, maxLength("category", m.Category, MaxMovementCategoryLength))
	err = multierr.Append(err, maxLength("recommended_warmup_sets", m.RecommendedWarmupSets, MaxRecommendationLength))
	err = multierr.Append(err, maxLength("recommended_working_sets", m.RecommendedWorkingSets, MaxRecommendationLength))
	err = multierr.Append(err, maxLength("recommended_rep_range", m.RecommendedRepRange, MaxRecommendationLength))
	err = multierr.Append(err, maxLength("recommended_rpe", m.RecommendedRPE, MaxRecommendationLength))
	if rt := m.RecommendedRestTime; rt != nil && (*rt < 0 || *rt > MaxRestTimeSeconds) {
		err = multierr.Append(err, newValidationError(
			"recommended_rest_time",
			fmt.Sprintf("must be between 0 and %d", MaxRestTimeSeconds),
		))
	}
	return err
}

func ValidateWorkoutMovements(movementIDs []int64) error {
	for i, id := range movementIDs {
		if id <= 0 {
			return newValidationError("movements", fmt.Sprintf("item %d: %d is not a valid movement id", i, id))
		}
	}
	return nil
}

// ValidateMovementLog checks reps and loads. They must have the same length, zero included.
func ValidateMovementLog(l MovementLog) error {
	var err error
	for i, r := range l.Reps {
		if r < 0 || r > MaxReps {
			err = multierr.Append(err, newValidationError(
				"reps",
				fmt.Sprintf("item %d: must be between 0 and %d", i, MaxReps),
			))
			break
		}
	}
	if len(l.Reps) != len(l.Loads) {
		err = multierr.Append(err, newValidationError("", "reps and loads must have the same length"))
	}
	return err
}

func maxLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return newValidationError(field, fmt.Sprintf("ensure this field has no more than %d characters", limit))
	}
	return nil
}
