package training

import "time"

type Workout struct {
	ID             int64      `json:"id"`
	User           *int64     `json:"user"`
	Movements      []int64    `json:"movements"`
	StartTimestamp time.Time  `json:"start_timestamp"`
	EndTimestamp   *time.Time `json:"end_timestamp"`
}

// InProgress reports whether the workout has not been ended yet.
func (w Workout) InProgress() bool {
	return w.EndTimestamp == nil
}

type WorkoutInput struct {
	Movements *[]int64 `json:"movements"`
}

type CreateWorkoutParams struct {
	Input WorkoutInput
	// TemplateID, when set, seeds the new workout with the template's movements
	TemplateID *int64
}
