package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/lumberjacked/internal/db"
	"github.com/2beens/lumberjacked/internal/ids"
	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const workoutColumns = `id, user_id, movements, start_timestamp, end_timestamp`

type WorkoutsRepo struct {
	db    db.Pool
	newID ids.Generator
}

func NewWorkoutsRepo(dbPool db.Pool, newID ids.Generator) *WorkoutsRepo {
	return &WorkoutsRepo{
		db:    dbPool,
		newID: newID,
	}
}

func scanWorkout(row pgx.Row) (Workout, error) {
	var w Workout
	err := row.Scan(
		&w.ID,
		&w.User,
		&w.Movements,
		&w.StartTimestamp,
		&w.EndTimestamp,
	)
	if w.Movements == nil {
		w.Movements = []int64{}
	}
	return w, err
}

func (r *WorkoutsRepo) Get(ctx context.Context, id int64) (_ Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("workout.id", id))

	w, err := scanWorkout(r.db.QueryRow(
		ctx,
		`SELECT `+workoutColumns+` FROM workout WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Workout{}, ErrWorkoutNotFound
		}
		return Workout{}, fmt.Errorf("workout [query row]: %w", err)
	}

	return w, nil
}

// GetCurrent returns the user's most recently started workout that has not ended.
func (r *WorkoutsRepo) GetCurrent(ctx context.Context, userID int64) (_ Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get_current")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	w, err := scanWorkout(r.db.QueryRow(
		ctx,
		`
			SELECT `+workoutColumns+`
			FROM workout
			WHERE user_id = $1 AND end_timestamp IS NULL
			ORDER BY start_timestamp DESC, id DESC
			LIMIT 1
		`,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Workout{}, ErrWorkoutNotFound
		}
		return Workout{}, fmt.Errorf("current workout [query row]: %w", err)
	}

	return w, nil
}

// List returns a page of the user's workouts, most recently started first, and their total count.
func (r *WorkoutsRepo) List(ctx context.Context, userID int64, page Page) (_ []Workout, _ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("page", page.Number),
		attribute.Int("size", page.Size),
	)

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout WHERE user_id = $1`,
		userID,
	).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count workouts: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT `+workoutColumns+`
			FROM workout
			WHERE user_id = $1
			ORDER BY start_timestamp DESC, id DESC
			LIMIT $2 OFFSET $3
		`,
		userID, page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list workouts [query]: %w", err)
	}
	defer rows.Close()

	workouts := make([]Workout, 0, page.Size)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list workouts [scan]: %w", err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list workouts [rows]: %w", err)
	}

	return workouts, count, nil
}

func (r *WorkoutsRepo) Add(ctx context.Context, w Workout) (_ Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if w.Movements == nil {
		w.Movements = []int64{}
	}

	w.ID, err = ids.Insert(r.newID, pkg.IsUniqueViolationError, func(id int64) error {
		_, err := r.db.Exec(
			ctx,
			`
				INSERT INTO workout (`+workoutColumns+`)
				VALUES ($1, $2, $3, $4, $5)
			`,
			id,
			w.User,
			w.Movements,
			w.StartTimestamp,
			w.EndTimestamp,
		)
		return err
	})
	if err != nil {
		return Workout{}, fmt.Errorf("insert workout: %w", err)
	}

	return w, nil
}

func (r *WorkoutsRepo) UpdateMovements(ctx context.Context, id int64, movementIDs []int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update_movements")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("workout.id", id))

	if movementIDs == nil {
		movementIDs = []int64{}
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout SET movements = $2 WHERE id = $1`,
		id, movementIDs,
	)
	if err != nil {
		return fmt.Errorf("update workout movements: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

// End stamps the workout's end timestamp. Ending an ended workout moves the timestamp.
func (r *WorkoutsRepo) End(ctx context.Context, id int64, endTimestamp time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.end")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("workout.id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout SET end_timestamp = $2 WHERE id = $1`,
		id, endTimestamp,
	)
	if err != nil {
		return fmt.Errorf("end workout: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

func (r *WorkoutsRepo) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("workout.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}
