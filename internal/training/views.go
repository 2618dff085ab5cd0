package training

import "time"

// RecordedLog is the log a workout holds for one of its movements.
type RecordedLog struct {
	Reps      []int     `json:"reps"`
	Loads     []float64 `json:"loads"`
	Notes     string    `json:"notes"`
	Timestamp time.Time `json:"timestamp"`
}

// LatestLog is the most recent log of a movement across all workouts.
type LatestLog struct {
	ID                int64     `json:"id"`
	Reps              []int     `json:"reps"`
	Loads             []float64 `json:"loads"`
	Notes             string    `json:"notes"`
	Timestamp         time.Time `json:"timestamp"`
	ForCurrentWorkout bool      `json:"for_current_workout"`
}

type MovementWithRecordedLog struct {
	Movement
	RecordedLog *RecordedLog `json:"recorded_log"`
}

type MovementWithLatestLog struct {
	Movement
	LatestLog *LatestLog `json:"latest_log"`
}

type WorkoutWithRecordedLogs struct {
	Workout
	MovementsDetails []MovementWithRecordedLog `json:"movements_details"`
}

type WorkoutWithLatestLogs struct {
	Workout
	MovementsDetails []MovementWithLatestLog `json:"movements_details"`
}

type MovementLogDetail struct {
	MovementLog
	MovementDetail *Movement `json:"movement_detail"`
}

type WorkoutWithMovementLogs struct {
	Workout
	MovementLogs []MovementLogDetail `json:"movement_logs"`
}

// Page selects a 1-based page of a list.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

type PageResult[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}
