package training

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/lumberjacked/internal/ids"
	"github.com/2beens/lumberjacked/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	movementRowColumns = []string{
		"id", "author_id", "name", "category", "notes", "created_timestamp", "updated_timestamp",
		"recommended_warmup_sets", "recommended_working_sets", "recommended_rep_range",
		"recommended_rpe", "recommended_rest_time",
	}
	workoutRowColumns     = []string{"id", "user_id", "movements", "start_timestamp", "end_timestamp"}
	movementLogRowColumns = []string{"id", "movement_id", "workout_id", "reps", "loads", "notes", "timestamp"}
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func addMovementRow(rows *pgxmock.Rows, id int64, author int64, name string) *pgxmock.Rows {
	return rows.AddRow(id, &author, name, "Legs", "", testT0, testT0, "", "2x5", "5-8", "", nil)
}

func TestMovementsRepo_Get(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementsRepo(mock, ids.New)
	ctx := context.Background()

	mock.ExpectQuery(`FROM movement WHERE id = \$1`).
		WithArgs(int64(10)).
		WillReturnRows(addMovementRow(pgxmock.NewRows(movementRowColumns), 10, alice, "Squat"))
	m, err := repo.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), m.ID)
	require.NotNil(t, m.Author)
	assert.Equal(t, alice, *m.Author)
	assert.Equal(t, "Squat", m.Name)
	assert.Equal(t, "2x5", m.RecommendedWorkingSets)
	assert.Nil(t, m.RecommendedRestTime)

	mock.ExpectQuery(`FROM movement WHERE id = \$1`).
		WithArgs(int64(11)).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.Get(ctx, 11)
	assert.ErrorIs(t, err, ErrMovementNotFound)
}

func TestMovementsRepo_GetMany(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementsRepo(mock, ids.New)
	ctx := context.Background()

	// no ids, no query
	movements, err := repo.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, movements)

	rows := pgxmock.NewRows(movementRowColumns)
	addMovementRow(rows, 1, alice, "Squat")
	addMovementRow(rows, 2, bob, "Row")
	mock.ExpectQuery(`FROM movement WHERE id = ANY\(\$1\)`).
		WithArgs([]int64{1, 2, 3}).
		WillReturnRows(rows)
	movements, err = repo.GetMany(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, "Squat", movements[1].Name)
	assert.Equal(t, bob, *movements[2].Author)
}

func TestMovementsRepo_List(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementsRepo(mock, ids.New)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM movement WHERE author_id = \$1`).
		WithArgs(alice).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
		WithArgs(alice, 2, 2).
		WillReturnRows(addMovementRow(pgxmock.NewRows(movementRowColumns), 5, alice, "Squat"))

	movements, count, err := repo.List(context.Background(), alice, Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(5), movements[0].ID)
}

func TestMovementsRepo_Add_RetriesIDCollision(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementsRepo(mock, ids.Sequence(7, 8))

	restTime := 90
	m := Movement{
		Author:              ptr(alice),
		Name:                "Squat",
		CreatedTimestamp:    testT0,
		UpdatedTimestamp:    testT0,
		RecommendedRestTime: &restTime,
	}
	args := func(id int64) []any {
		return []any{id, m.Author, "Squat", "", "", testT0, testT0, "", "", "", "", &restTime}
	}

	mock.ExpectExec(`INSERT INTO movement`).
		WithArgs(args(7)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectExec(`INSERT INTO movement`).
		WithArgs(args(8)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	added, err := repo.Add(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, int64(8), added.ID)
	assert.Equal(t, "Squat", added.Name)
}

func TestMovementsRepo_Add_OtherErrorsNotRetried(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementsRepo(mock, ids.Sequence(7, 8))

	mock.ExpectExec(`INSERT INTO movement`).
		WithArgs(int64(7), (*int64)(nil), "x", "", "", time.Time{}, time.Time{}, "", "", "", "", (*int)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Add(context.Background(), Movement{Name: "x"})
	require.Error(t, err)
	assert.True(t, pkg.IsForeignKeyViolationError(err))
}

func TestMovementsRepo_UpdateAndDelete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementsRepo(mock, ids.New)
	ctx := context.Background()
	m := Movement{ID: 4, Name: "Squat", Notes: "deep", UpdatedTimestamp: testT0}

	mock.ExpectExec(`UPDATE movement`).
		WithArgs(int64(4), "Squat", "", "deep", testT0, "", "", "", "", (*int)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Update(ctx, m))

	mock.ExpectExec(`UPDATE movement`).
		WithArgs(int64(4), "Squat", "", "deep", testT0, "", "", "", "", (*int)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Update(ctx, m), ErrMovementNotFound)

	mock.ExpectExec(`DELETE FROM movement WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(ctx, 4))

	mock.ExpectExec(`DELETE FROM movement WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(ctx, 4), ErrMovementNotFound)
}

func TestWorkoutsRepo_GetAndCurrent(t *testing.T) {
	mock := newMockPool(t)
	repo := NewWorkoutsRepo(mock, ids.New)
	ctx := context.Background()
	end := testT0.Add(time.Hour)

	mock.ExpectQuery(`FROM workout WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(workoutRowColumns).AddRow(int64(3), ptr(alice), []int64{1, 2, 1}, testT0, &end))
	w, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 1}, w.Movements)
	require.NotNil(t, w.EndTimestamp)
	assert.Equal(t, end, *w.EndTimestamp)
	assert.False(t, w.InProgress())

	mock.ExpectQuery(`WHERE user_id = \$1 AND end_timestamp IS NULL`).
		WithArgs(alice).
		WillReturnRows(pgxmock.NewRows(workoutRowColumns).AddRow(int64(5), ptr(alice), nil, testT0, nil))
	current, err := repo.GetCurrent(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(5), current.ID)
	assert.NotNil(t, current.Movements)
	assert.True(t, current.InProgress())

	mock.ExpectQuery(`WHERE user_id = \$1 AND end_timestamp IS NULL`).
		WithArgs(bob).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetCurrent(ctx, bob)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestWorkoutsRepo_List(t *testing.T) {
	mock := newMockPool(t)
	repo := NewWorkoutsRepo(mock, ids.New)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM workout WHERE user_id = \$1`).
		WithArgs(alice).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
		WithArgs(alice, 25, 0).
		WillReturnRows(pgxmock.NewRows(workoutRowColumns).
			AddRow(int64(2), ptr(alice), []int64{}, testT0.Add(time.Hour), nil).
			AddRow(int64(1), ptr(alice), []int64{4}, testT0, nil))

	workouts, count, err := repo.List(context.Background(), alice, firstPage())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, workouts, 2)
	assert.Equal(t, int64(2), workouts[0].ID)
	assert.Equal(t, []int64{4}, workouts[1].Movements)
}

func TestWorkoutsRepo_Writes(t *testing.T) {
	mock := newMockPool(t)
	repo := NewWorkoutsRepo(mock, ids.Sequence(21))
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO workout`).
		WithArgs(int64(21), ptr(alice), []int64{}, testT0, (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	w, err := repo.Add(ctx, Workout{User: ptr(alice), StartTimestamp: testT0})
	require.NoError(t, err)
	assert.Equal(t, int64(21), w.ID)
	assert.Equal(t, []int64{}, w.Movements)

	mock.ExpectExec(`UPDATE workout SET movements = \$2 WHERE id = \$1`).
		WithArgs(int64(21), []int64{}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateMovements(ctx, 21, nil))

	end := testT0.Add(time.Hour)
	mock.ExpectExec(`UPDATE workout SET end_timestamp = \$2 WHERE id = \$1`).
		WithArgs(int64(21), end).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.End(ctx, 21, end))

	mock.ExpectExec(`UPDATE workout SET end_timestamp = \$2 WHERE id = \$1`).
		WithArgs(int64(22), end).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.End(ctx, 22, end), ErrWorkoutNotFound)

	mock.ExpectExec(`DELETE FROM workout WHERE id = \$1`).
		WithArgs(int64(21)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(ctx, 21), ErrWorkoutNotFound)
}

func TestMovementLogsRepo_List(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementLogsRepo(mock, ids.New)
	movementID := int64(9)

	mock.ExpectQuery(`WHERE w.user_id = \$1 AND ml.movement_id = \$2`).
		WithArgs(alice, movementID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
		WithArgs(alice, movementID, 25, 0).
		WillReturnRows(pgxmock.NewRows(movementLogRowColumns).
			AddRow(int64(100), movementID, int64(3), []int{5}, []float64{80}, "", testT0))

	logs, count, err := repo.List(context.Background(), alice, MovementLogsFilter{MovementID: &movementID}, firstPage())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, logs, 1)
	assert.Equal(t, []float64{80}, logs[0].Loads)
}

func TestMovementLogsRepo_ListWithBothFilters(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementLogsRepo(mock, ids.New)
	movementID, workoutID := int64(9), int64(3)

	mock.ExpectQuery(`WHERE w.user_id = \$1 AND ml.movement_id = \$2 AND ml.workout_id = \$3`).
		WithArgs(alice, movementID, workoutID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`LIMIT \$4 OFFSET \$5`).
		WithArgs(alice, movementID, workoutID, 10, 10).
		WillReturnRows(pgxmock.NewRows(movementLogRowColumns))

	logs, count, err := repo.List(
		context.Background(),
		alice,
		MovementLogsFilter{MovementID: &movementID, WorkoutID: &workoutID},
		Page{Number: 2, Size: 10},
	)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestMovementLogsRepo_BatchQueries(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementLogsRepo(mock, ids.New)
	ctx := context.Background()

	logs, err := repo.ListForWorkouts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, logs)
	logs, err = repo.LatestForMovements(ctx, []int64{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	mock.ExpectQuery(`WHERE workout_id = ANY\(\$1\)`).
		WithArgs([]int64{3, 4}).
		WillReturnRows(pgxmock.NewRows(movementLogRowColumns).
			AddRow(int64(2), int64(9), int64(4), nil, nil, "", testT0.Add(time.Minute)).
			AddRow(int64(1), int64(9), int64(3), []int{1}, []float64{1}, "", testT0))
	logs, err = repo.ListForWorkouts(ctx, []int64{3, 4})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, []int{}, logs[0].Reps)
	assert.Equal(t, []float64{}, logs[0].Loads)

	mock.ExpectQuery(`SELECT DISTINCT ON \(movement_id\)`).
		WithArgs([]int64{9}).
		WillReturnRows(pgxmock.NewRows(movementLogRowColumns).
			AddRow(int64(2), int64(9), int64(4), []int{3}, []float64{7.5}, "", testT0))
	logs, err = repo.LatestForMovements(ctx, []int64{9})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(2), logs[0].ID)
}

func TestMovementLogsRepo_Writes(t *testing.T) {
	mock := newMockPool(t)
	repo := NewMovementLogsRepo(mock, ids.Sequence(50))
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO movement_log`).
		WithArgs(int64(50), int64(9), int64(3), []int{}, []float64{}, "", testT0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	added, err := repo.Add(ctx, MovementLog{MovementID: 9, WorkoutID: 3, Timestamp: testT0})
	require.NoError(t, err)
	assert.Equal(t, int64(50), added.ID)

	l := MovementLog{ID: 50, MovementID: 9, WorkoutID: 3, Reps: []int{2}, Loads: []float64{5}, Notes: "n", Timestamp: testT0}
	mock.ExpectExec(`UPDATE movement_log`).
		WithArgs(int64(50), int64(9), int64(3), []int{2}, []float64{5}, "n", testT0).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	err = repo.Update(ctx, l)
	assert.True(t, pkg.IsForeignKeyViolationError(err))

	mock.ExpectQuery(`FROM movement_log WHERE id = \$1`).
		WithArgs(int64(51)).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.Get(ctx, 51)
	assert.ErrorIs(t, err, ErrMovementLogNotFound)

	mock.ExpectExec(`DELETE FROM movement_log WHERE id = \$1`).
		WithArgs(int64(50)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(ctx, 50))
}
