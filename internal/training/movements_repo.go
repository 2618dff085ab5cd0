package training

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/lumberjacked/internal/db"
	"github.com/2beens/lumberjacked/internal/ids"
	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const movementColumns = `id, author_id, name, category, notes, created_timestamp, updated_timestamp,
	recommended_warmup_sets, recommended_working_sets, recommended_rep_range,
	recommended_rpe, recommended_rest_time`

type MovementsRepo struct {
	db    db.Pool
	newID ids.Generator
}

func NewMovementsRepo(dbPool db.Pool, newID ids.Generator) *MovementsRepo {
	return &MovementsRepo{
		db:    dbPool,
		newID: newID,
	}
}

func scanMovement(row pgx.Row) (Movement, error) {
	var m Movement
	err := row.Scan(
		&m.ID,
		&m.Author,
		&m.Name,
		&m.Category,
		&m.Notes,
		&m.CreatedTimestamp,
		&m.UpdatedTimestamp,
		&m.RecommendedWarmupSets,
		&m.RecommendedWorkingSets,
		&m.RecommendedRepRange,
		&m.RecommendedRPE,
		&m.RecommendedRestTime,
	)
	return m, err
}

func (r *MovementsRepo) Get(ctx context.Context, id int64) (_ Movement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movements.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("movement.id", id))

	m, err := scanMovement(r.db.QueryRow(
		ctx,
		`SELECT `+movementColumns+` FROM movement WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movement{}, ErrMovementNotFound
		}
		return Movement{}, fmt.Errorf("movement [query row]: %w", err)
	}

	return m, nil
}

// GetMany returns the existing movements among ids, keyed by id.
func (r *MovementsRepo) GetMany(ctx context.Context, movementIDs []int64) (_ map[int64]Movement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movements.get_many")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("ids", len(movementIDs)))

	movements := make(map[int64]Movement, len(movementIDs))
	if len(movementIDs) == 0 {
		return movements, nil
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+movementColumns+` FROM movement WHERE id = ANY($1)`,
		movementIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("movements [query]: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("movements [scan]: %w", err)
		}
		movements[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movements [rows]: %w", err)
	}

	return movements, nil
}

// List returns a page of the author's movements ordered by name, and their total count.
func (r *MovementsRepo) List(ctx context.Context, authorID int64, page Page) (_ []Movement, _ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movements.list")
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
		`SELECT COUNT(*) FROM movement WHERE author_id = $1`,
		authorID,
	).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT `+movementColumns+`
			FROM movement
			WHERE author_id = $1
			ORDER BY name, id
			LIMIT $2 OFFSET $3
		`,
		authorID, page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements [query]: %w", err)
	}
	defer rows.Close()

	movements := make([]Movement, 0, page.Size)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list movements [scan]: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list movements [rows]: %w", err)
	}

	return movements, count, nil
}

// Add inserts the movement under a fresh id and returns it.
func (r *MovementsRepo) Add(ctx context.Context, m Movement) (_ Movement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movements.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.ID, err = ids.Insert(r.newID, pkg.IsUniqueViolationError, func(id int64) error {
		_, err := r.db.Exec(
			ctx,
			`
				INSERT INTO movement (`+movementColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`,
			id,
			m.Author,
			m.Name,
			m.Category,
			m.Notes,
			m.CreatedTimestamp,
			m.UpdatedTimestamp,
			m.RecommendedWarmupSets,
			m.RecommendedWorkingSets,
			m.RecommendedRepRange,
			m.RecommendedRPE,
			m.RecommendedRestTime,
		)
		return err
	})
	if err != nil {
		return Movement{}, fmt.Errorf("insert movement: %w", err)
	}

	return m, nil
}

func (r *MovementsRepo) Update(ctx context.Context, m Movement) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movements.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("movement.id", m.ID))

	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE movement
			SET name = $2, category = $3, notes = $4, updated_timestamp = $5,
			    recommended_warmup_sets = $6, recommended_working_sets = $7,
			    recommended_rep_range = $8, recommended_rpe = $9, recommended_rest_time = $10
			WHERE id = $1
		`,
		m.ID,
		m.Name,
		m.Category,
		m.Notes,
		m.UpdatedTimestamp,
		m.RecommendedWarmupSets,
		m.RecommendedWorkingSets,
		m.RecommendedRepRange,
		m.RecommendedRPE,
		m.RecommendedRestTime,
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrMovementNotFound
	}

	return nil
}

// Delete removes the movement. Its logs are removed by the cascading foreign key.
func (r *MovementsRepo) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.movements.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("movement.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM movement WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrMovementNotFound
	}

	return nil
}
