package training

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/lumberjacked/internal/db"
	"github.com/2beens/lumberjacked/internal/ids"
	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const movementLogColumns = `id, movement_id, workout_id, reps, loads, notes, timestamp`

type MovementLogsRepo struct {
	db    db.Pool
	newID ids.Generator
}

func NewMovementLogsRepo(dbPool db.Pool, newID ids.Generator) *MovementLogsRepo {
	return &MovementLogsRepo{
		db:    dbPool,
		newID: newID,
	}
}

func scanMovementLog(row pgx.Row) (MovementLog, error) {
	var l MovementLog
	err := row.Scan(
		&l.ID,
		&l.MovementID,
		&l.WorkoutID,
		&l.Reps,
		&l.Loads,
		&l.Notes,
		&l.Timestamp,
	)
	if l.Reps == nil {
		l.Reps = []int{}
	}
	if l.Loads == nil {
		l.Loads = []float64{}
	}
	return l, err
}

func collectMovementLogs(rows pgx.Rows) ([]MovementLog, error) {
	defer rows.Close()

	logs := make([]MovementLog, 0)
	for rows.Next() {
		l, err := scanMovementLog(rows)
		if err != nil {
			return nil, fmt.Errorf("movement logs [scan]: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movement logs [rows]: %w", err)
	}

	return logs, nil
}

func (r *MovementLogsRepo) Get(ctx context.Context, id int64) (_ MovementLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movement_logs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("movement_log.id", id))

	l, err := scanMovementLog(r.db.QueryRow(
		ctx,
		`SELECT `+movementLogColumns+` FROM movement_log WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MovementLog{}, ErrMovementLogNotFound
		}
		return MovementLog{}, fmt.Errorf("movement log [query row]: %w", err)
	}

	return l, nil
}

// List returns a page of logs recorded in the user's workouts, newest first,
// narrowed by the optional filter, and their total count.
func (r *MovementLogsRepo) List(
	ctx context.Context,
	userID int64,
	filter MovementLogsFilter,
	page Page,
) (_ []MovementLog, _ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movement_logs.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("page", page.Number),
		attribute.Int("size", page.Size),
	)

	conditions := []string{"w.user_id = $1"}
	args := []any{userID}
	if filter.MovementID != nil {
		args = append(args, *filter.MovementID)
		conditions = append(conditions, "ml.movement_id = $"+strconv.Itoa(len(args)))
	}
	if filter.WorkoutID != nil {
		args = append(args, *filter.WorkoutID)
		conditions = append(conditions, "ml.workout_id = $"+strconv.Itoa(len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM movement_log ml JOIN workout w ON w.id = ml.workout_id WHERE `+where,
		args...,
	).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count movement logs: %w", err)
	}

	limitArg := len(args) + 1
	args = append(args, page.Size, page.Offset())
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`
			SELECT ml.id, ml.movement_id, ml.workout_id, ml.reps, ml.loads, ml.notes, ml.timestamp
			FROM movement_log ml
			JOIN workout w ON w.id = ml.workout_id
			WHERE %s
			ORDER BY ml.timestamp DESC, ml.id DESC
			LIMIT $%d OFFSET $%d
		`, where, limitArg, limitArg+1),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list movement logs [query]: %w", err)
	}

	logs, err := collectMovementLogs(rows)
	if err != nil {
		return nil, 0, err
	}

	return logs, count, nil
}

// ListForWorkouts returns every log recorded in the given workouts, newest first.
func (r *MovementLogsRepo) ListForWorkouts(ctx context.Context, workoutIDs []int64) (_ []MovementLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movement_logs.list_for_workouts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workouts", len(workoutIDs)))

	if len(workoutIDs) == 0 {
		return []MovementLog{}, nil
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT `+movementLogColumns+`
			FROM movement_log
			WHERE workout_id = ANY($1)
			ORDER BY timestamp DESC, id DESC
		`,
		workoutIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list logs for workouts [query]: %w", err)
	}

	return collectMovementLogs(rows)
}

// LatestForMovements returns, for each movement, its most recent log across all workouts.
func (r *MovementLogsRepo) LatestForMovements(ctx context.Context, movementIDs []int64) (_ []MovementLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movement_logs.latest_for_movements")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("movements", len(movementIDs)))

	if len(movementIDs) == 0 {
		return []MovementLog{}, nil
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT DISTINCT ON (movement_id) `+movementLogColumns+`
			FROM movement_log
			WHERE movement_id = ANY($1)
			ORDER BY movement_id, timestamp DESC, id DESC
		`,
		movementIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("latest logs for movements [query]: %w", err)
	}

	return collectMovementLogs(rows)
}

func (r *MovementLogsRepo) Add(ctx context.Context, l MovementLog) (_ MovementLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movement_logs.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if l.Reps == nil {
		l.Reps = []int{}
	}
	if l.Loads == nil {
		l.Loads = []float64{}
	}

	l.ID, err = ids.Insert(r.newID, pkg.IsUniqueViolationError, func(id int64) error {
		_, err := r.db.Exec(
			ctx,
			`
				INSERT INTO movement_log (`+movementLogColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`,
			id,
			l.MovementID,
			l.WorkoutID,
			l.Reps,
			l.Loads,
			l.Notes,
			l.Timestamp,
		)
		return err
	})
	if err != nil {
		return MovementLog{}, fmt.Errorf("insert movement log: %w", err)
	}

	return l, nil
}

func (r *MovementLogsRepo) Update(ctx context.Context, l MovementLog) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movement_logs.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("movement_log.id", l.ID))

	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE movement_log
			SET movement_id = $2, workout_id = $3, reps = $4, loads = $5, notes = $6, timestamp = $7
			WHERE id = $1
		`,
		l.ID,
		l.MovementID,
		l.WorkoutID,
		l.Reps,
		l.Loads,
		l.Notes,
		l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("update movement log: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrMovementLogNotFound
	}

	return nil
}

func (r *MovementLogsRepo) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movement_logs.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("movement_log.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM movement_log WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement log: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrMovementLogNotFound
	}

	return nil
}
