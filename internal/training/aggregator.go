package training

import (
	"context"
	"fmt"

	"github.com/2beens/lumberjacked/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// BuildRecordedDetails projects the workout's movement list, attaching to each
// movement the log recorded for it within that workout. logs may contain logs of
// other workouts, which are ignored. When a movement was logged several times in
// the workout, the latest log (by timestamp, then id) wins. Ids that do not
// resolve to a movement are skipped; duplicates keep their positions.
func BuildRecordedDetails(
	workoutID int64,
	movementIDs []int64,
	movements map[int64]Movement,
	logs []MovementLog,
) []MovementWithRecordedLog {
	recorded := make(map[int64]MovementLog)
	for _, l := range logs {
		if l.WorkoutID != workoutID {
			continue
		}
		if current, ok := recorded[l.MovementID]; !ok || l.newerThan(current) {
			recorded[l.MovementID] = l
		}
	}

	details := make([]MovementWithRecordedLog, 0, len(movementIDs))
	for _, id := range movementIDs {
		movement, ok := movements[id]
		if !ok {
			continue
		}
		detail := MovementWithRecordedLog{Movement: movement}
		if l, ok := recorded[id]; ok {
			detail.RecordedLog = &RecordedLog{
				Reps:      l.Reps,
				Loads:     l.Loads,
				Notes:     l.Notes,
				Timestamp: l.Timestamp,
			}
		}
		details = append(details, detail)
	}
	return details
}

// BuildLatestDetails projects the current workout's movement list, attaching to
// each movement its most recent log across all workouts, flagged when that log
// belongs to the current workout. Ordering and duplicates follow movementIDs.
func BuildLatestDetails(
	currentWorkoutID int64,
	movementIDs []int64,
	movements map[int64]Movement,
	logs []MovementLog,
) []MovementWithLatestLog {
	latest := make(map[int64]MovementLog)
	for _, l := range logs {
		if current, ok := latest[l.MovementID]; !ok || l.newerThan(current) {
			latest[l.MovementID] = l
		}
	}

	details := make([]MovementWithLatestLog, 0, len(movementIDs))
	for _, id := range movementIDs {
		movement, ok := movements[id]
		if !ok {
			continue
		}
		detail := MovementWithLatestLog{Movement: movement}
		if l, ok := latest[id]; ok {
			detail.LatestLog = &LatestLog{
				ID:                l.ID,
				Reps:              l.Reps,
				Loads:             l.Loads,
				Notes:             l.Notes,
				Timestamp:         l.Timestamp,
				ForCurrentWorkout: l.WorkoutID == currentWorkoutID,
			}
		}
		details = append(details, detail)
	}
	return details
}

// Aggregator loads what the views need in batches and shapes them.
type Aggregator struct {
	movements movementsRepo
	logs      movementLogsRepo
}

func NewAggregator(movements movementsRepo, logs movementLogsRepo) *Aggregator {
	return &Aggregator{
		movements: movements,
		logs:      logs,
	}
}

// RecordedViews annotates a page of workouts with one logs query and one movements query.
func (a *Aggregator) RecordedViews(ctx context.Context, workouts []Workout) (_ []WorkoutWithRecordedLogs, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "training.aggregator.recorded_views")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workouts", len(workouts)))

	views := make([]WorkoutWithRecordedLogs, 0, len(workouts))
	if len(workouts) == 0 {
		return views, nil
	}

	workoutIDs := make([]int64, 0, len(workouts))
	var movementIDs []int64
	for _, w := range workouts {
		workoutIDs = append(workoutIDs, w.ID)
		movementIDs = append(movementIDs, w.Movements...)
	}

	logs, err := a.logs.ListForWorkouts(ctx, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("list logs for workouts: %w", err)
	}
	movements, err := a.movements.GetMany(ctx, uniqueIDs(movementIDs))
	if err != nil {
		return nil, fmt.Errorf("get workout movements: %w", err)
	}

	logsByWorkout := make(map[int64][]MovementLog, len(workouts))
	for _, l := range logs {
		logsByWorkout[l.WorkoutID] = append(logsByWorkout[l.WorkoutID], l)
	}

	for _, w := range workouts {
		views = append(views, WorkoutWithRecordedLogs{
			Workout:          w,
			MovementsDetails: BuildRecordedDetails(w.ID, w.Movements, ownedMovements(w.User, movements), logsByWorkout[w.ID]),
		})
	}
	return views, nil
}

func (a *Aggregator) RecordedView(ctx context.Context, workout Workout) (WorkoutWithRecordedLogs, error) {
	views, err := a.RecordedViews(ctx, []Workout{workout})
	if err != nil {
		return WorkoutWithRecordedLogs{}, err
	}
	return views[0], nil
}

// LatestView annotates the current workout with the latest log of each of its movements.
func (a *Aggregator) LatestView(ctx context.Context, workout Workout) (_ WorkoutWithLatestLogs, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "training.aggregator.latest_view")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("workout.id", workout.ID))

	movements, err := a.movements.GetMany(ctx, uniqueIDs(workout.Movements))
	if err != nil {
		return WorkoutWithLatestLogs{}, fmt.Errorf("get workout movements: %w", err)
	}
	movements = ownedMovements(workout.User, movements)

	// only logs of the owner's movements are loaded
	ids := make([]int64, 0, len(movements))
	for _, id := range uniqueIDs(workout.Movements) {
		if _, ok := movements[id]; ok {
			ids = append(ids, id)
		}
	}
	logs, err := a.logs.LatestForMovements(ctx, ids)
	if err != nil {
		return WorkoutWithLatestLogs{}, fmt.Errorf("latest logs for movements: %w", err)
	}

	return WorkoutWithLatestLogs{
		Workout:          workout,
		MovementsDetails: BuildLatestDetails(workout.ID, workout.Movements, movements, logs),
	}, nil
}

// WithMovementLogs attaches every log recorded in the workout, newest first.
func (a *Aggregator) WithMovementLogs(ctx context.Context, workout Workout) (WorkoutWithMovementLogs, error) {
	logs, err := a.logs.ListForWorkouts(ctx, []int64{workout.ID})
	if err != nil {
		return WorkoutWithMovementLogs{}, fmt.Errorf("list workout logs: %w", err)
	}
	details, err := a.AttachMovementDetails(ctx, logs)
	if err != nil {
		return WorkoutWithMovementLogs{}, err
	}
	return WorkoutWithMovementLogs{
		Workout:      workout,
		MovementLogs: details,
	}, nil
}

// AttachMovementDetails nests each log's movement, loaded in one query.
func (a *Aggregator) AttachMovementDetails(ctx context.Context, logs []MovementLog) ([]MovementLogDetail, error) {
	details := make([]MovementLogDetail, 0, len(logs))
	if len(logs) == 0 {
		return details, nil
	}

	movementIDs := make([]int64, 0, len(logs))
	for _, l := range logs {
		movementIDs = append(movementIDs, l.MovementID)
	}
	movements, err := a.movements.GetMany(ctx, uniqueIDs(movementIDs))
	if err != nil {
		return nil, fmt.Errorf("get log movements: %w", err)
	}

	for _, l := range logs {
		detail := MovementLogDetail{MovementLog: l}
		if m, ok := movements[l.MovementID]; ok {
			detail.MovementDetail = &m
		}
		details = append(details, detail)
	}
	return details, nil
}

// ownedMovements keeps the movements the workout owner may see. Other users'
// movements in a workout's list are then skipped like unknown ids.
func ownedMovements(owner *int64, movements map[int64]Movement) map[int64]Movement {
	owned := make(map[int64]Movement, len(movements))
	if owner == nil {
		return owned
	}
	for id, m := range movements {
		if CanAccessMovement(*owner, m) {
			owned[id] = m
		}
	}
	return owned
}

// uniqueIDs drops repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
