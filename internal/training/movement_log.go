package training

import "time"

type MovementLog struct {
	ID         int64     `json:"id"`
	MovementID int64     `json:"movement"`
	WorkoutID  int64     `json:"workout"`
	Reps       []int     `json:"reps"`
	Loads      []float64 `json:"loads"`
	Notes      string    `json:"notes"`
	Timestamp  time.Time `json:"timestamp"`
}

// newerThan orders logs by timestamp, then id, both descending.
func (l MovementLog) newerThan(other MovementLog) bool {
	if l.Timestamp.Equal(other.Timestamp) {
		return l.ID > other.ID
	}
	return l.Timestamp.After(other.Timestamp)
}

type MovementLogInput struct {
	Movement  *int64     `json:"movement"`
	Workout   *int64     `json:"workout"`
	Reps      *[]int     `json:"reps"`
	Loads     *[]float64 `json:"loads"`
	Notes     *string    `json:"notes"`
	Timestamp *time.Time `json:"timestamp"`
}

func (in MovementLogInput) applyTo(l *MovementLog) {
	setIfPresent(&l.MovementID, in.Movement)
	setIfPresent(&l.WorkoutID, in.Workout)
	setIfPresent(&l.Reps, in.Reps)
	setIfPresent(&l.Loads, in.Loads)
	setIfPresent(&l.Notes, in.Notes)
	setIfPresent(&l.Timestamp, in.Timestamp)
}

type MovementLogsFilter struct {
	MovementID *int64
	WorkoutID  *int64
}
