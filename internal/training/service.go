package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/lumberjacked/internal/telemetry/metrics"
	"github.com/2beens/lumberjacked/pkg"

	"go.uber.org/multierr"
)

type movementsRepo interface {
	Get(ctx context.Context, id int64) (Movement, error)
	GetMany(ctx context.Context, movementIDs []int64) (map[int64]Movement, error)
	List(ctx context.Context, authorID int64, page Page) ([]Movement, int, error)
	Add(ctx context.Context, m Movement) (Movement, error)
	Update(ctx context.Context, m Movement) error
	Delete(ctx context.Context, id int64) error
}

type workoutsRepo interface {
	Get(ctx context.Context, id int64) (Workout, error)
	GetCurrent(ctx context.Context, userID int64) (Workout, error)
	List(ctx context.Context, userID int64, page Page) ([]Workout, int, error)
	Add(ctx context.Context, w Workout) (Workout, error)
	UpdateMovements(ctx context.Context, id int64, movementIDs []int64) error
	End(ctx context.Context, id int64, endTimestamp time.Time) error
	Delete(ctx context.Context, id int64) error
}

type movementLogsRepo interface {
	Get(ctx context.Context, id int64) (MovementLog, error)
	List(ctx context.Context, userID int64, filter MovementLogsFilter, page Page) ([]MovementLog, int, error)
	ListForWorkouts(ctx context.Context, workoutIDs []int64) ([]MovementLog, error)
	LatestForMovements(ctx context.Context, movementIDs []int64) ([]MovementLog, error)
	Add(ctx context.Context, l MovementLog) (MovementLog, error)
	Update(ctx context.Context, l MovementLog) error
	Delete(ctx context.Context, id int64) error
}

// Service holds the training rules: every operation acts on behalf of userID,
// validates the payload, then checks ownership before touching storage.
type Service struct {
	movements  movementsRepo
	workouts   workoutsRepo
	logs       movementLogsRepo
	aggregator *Aggregator
	metrics    *metrics.Manager

	// injectable clock, for tests
	Now func() time.Time
}

func NewService(
	movements movementsRepo,
	workouts workoutsRepo,
	logs movementLogsRepo,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		movements:  movements,
		workouts:   workouts,
		logs:       logs,
		aggregator: NewAggregator(movements, logs),
		metrics:    metricsManager,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

/* movements */

func (s *Service) ListMovements(ctx context.Context, userID int64, page Page) (PageResult[Movement], error) {
	movements, count, err := s.movements.List(ctx, userID, page)
	if err != nil {
		return PageResult[Movement]{}, err
	}
	return PageResult[Movement]{Count: count, Results: movements}, nil
}

func (s *Service) CreateMovement(ctx context.Context, userID int64, in MovementInput) (Movement, error) {
	if in.Name == nil {
		return Movement{}, newValidationError("name", "this field is required")
	}

	now := s.Now()
	author := userID
	m := Movement{
		Author:           &author,
		CreatedTimestamp: now,
		UpdatedTimestamp: now,
	}
	in.applyTo(&m)
	if err := ValidateMovement(m); err != nil {
		return Movement{}, err
	}

	return s.movements.Add(ctx, m)
}

func (s *Service) GetMovement(ctx context.Context, userID, id int64) (Movement, error) {
	m, err := s.movements.Get(ctx, id)
	if err != nil {
		return Movement{}, err
	}
	if !CanAccessMovement(userID, m) {
		return Movement{}, ErrForbidden
	}
	return m, nil
}

// UpdateMovement merges in over the stored movement. A full update (partial false) requires name.
func (s *Service) UpdateMovement(ctx context.Context, userID, id int64, in MovementInput, partial bool) (Movement, error) {
	m, err := s.GetMovement(ctx, userID, id)
	if err != nil {
		return Movement{}, err
	}
	if !partial && in.Name == nil {
		return Movement{}, newValidationError("name", "this field is required")
	}

	in.applyTo(&m)
	if err := ValidateMovement(m); err != nil {
		return Movement{}, err
	}
	m.UpdatedTimestamp = s.Now()

	if err := s.movements.Update(ctx, m); err != nil {
		return Movement{}, err
	}
	return m, nil
}

func (s *Service) DeleteMovement(ctx context.Context, userID, id int64) error {
	if _, err := s.GetMovement(ctx, userID, id); err != nil {
		return err
	}
	return s.movements.Delete(ctx, id)
}

/* workouts */

func (s *Service) ListWorkouts(ctx context.Context, userID int64, page Page) (PageResult[WorkoutWithRecordedLogs], error) {
	workouts, count, err := s.workouts.List(ctx, userID, page)
	if err != nil {
		return PageResult[WorkoutWithRecordedLogs]{}, err
	}
	views, err := s.aggregator.RecordedViews(ctx, workouts)
	if err != nil {
		return PageResult[WorkoutWithRecordedLogs]{}, err
	}
	return PageResult[WorkoutWithRecordedLogs]{Count: count, Results: views}, nil
}

// CreateWorkout starts a new workout. A template's movement list, when given, replaces
// the one in the payload. Templates the user does not own are reported as missing.
func (s *Service) CreateWorkout(ctx context.Context, userID int64, params CreateWorkoutParams) (WorkoutWithRecordedLogs, error) {
	var movementIDs []int64
	if params.Input.Movements != nil {
		movementIDs = *params.Input.Movements
	}

	if params.TemplateID != nil {
		template, err := s.workouts.Get(ctx, *params.TemplateID)
		switch {
		case errors.Is(err, ErrWorkoutNotFound):
			return WorkoutWithRecordedLogs{}, newValidationError("template", "template workout does not exist")
		case err != nil:
			return WorkoutWithRecordedLogs{}, fmt.Errorf("get template workout: %w", err)
		case !CanAccessWorkout(userID, template):
			return WorkoutWithRecordedLogs{}, newValidationError("template", "template workout does not exist")
		}
		movementIDs = append([]int64{}, template.Movements...)
	}

	if err := ValidateWorkoutMovements(movementIDs); err != nil {
		return WorkoutWithRecordedLogs{}, err
	}

	owner := userID
	w, err := s.workouts.Add(ctx, Workout{
		User:           &owner,
		Movements:      movementIDs,
		StartTimestamp: s.Now(),
	})
	if err != nil {
		return WorkoutWithRecordedLogs{}, err
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsStarted.Inc()
	}

	return s.aggregator.RecordedView(ctx, w)
}

func (s *Service) getOwnedWorkout(ctx context.Context, userID, id int64) (Workout, error) {
	w, err := s.workouts.Get(ctx, id)
	if err != nil {
		return Workout{}, err
	}
	if !CanAccessWorkout(userID, w) {
		return Workout{}, ErrForbidden
	}
	return w, nil
}

func (s *Service) GetWorkout(ctx context.Context, userID, id int64) (WorkoutWithRecordedLogs, error) {
	w, err := s.getOwnedWorkout(ctx, userID, id)
	if err != nil {
		return WorkoutWithRecordedLogs{}, err
	}
	return s.aggregator.RecordedView(ctx, w)
}

// UpdateWorkout replaces the movement list, the only writable workout field.
// A full update (partial false) requires movements.
func (s *Service) UpdateWorkout(ctx context.Context, userID, id int64, in WorkoutInput, partial bool) (WorkoutWithRecordedLogs, error) {
	w, err := s.getOwnedWorkout(ctx, userID, id)
	if err != nil {
		return WorkoutWithRecordedLogs{}, err
	}
	if in.Movements == nil {
		if !partial {
			return WorkoutWithRecordedLogs{}, newValidationError("movements", "this field is required")
		}
		return s.aggregator.RecordedView(ctx, w)
	}

	if err := ValidateWorkoutMovements(*in.Movements); err != nil {
		return WorkoutWithRecordedLogs{}, err
	}
	if err := s.workouts.UpdateMovements(ctx, id, *in.Movements); err != nil {
		return WorkoutWithRecordedLogs{}, err
	}
	w.Movements = *in.Movements

	return s.aggregator.RecordedView(ctx, w)
}

func (s *Service) DeleteWorkout(ctx context.Context, userID, id int64) error {
	if _, err := s.getOwnedWorkout(ctx, userID, id); err != nil {
		return err
	}
	return s.workouts.Delete(ctx, id)
}

// EndWorkout stamps the end timestamp with the current time. Repeated calls move it forward.
func (s *Service) EndWorkout(ctx context.Context, userID, id int64) (WorkoutWithMovementLogs, error) {
	w, err := s.getOwnedWorkout(ctx, userID, id)
	if err != nil {
		return WorkoutWithMovementLogs{}, err
	}

	end := s.Now()
	if err := s.workouts.End(ctx, id, end); err != nil {
		return WorkoutWithMovementLogs{}, err
	}
	w.EndTimestamp = &end
	if s.metrics != nil {
		s.metrics.CounterWorkoutsEnded.Inc()
	}

	return s.aggregator.WithMovementLogs(ctx, w)
}

func (s *Service) CurrentWorkout(ctx context.Context, userID int64) (WorkoutWithLatestLogs, error) {
	w, err := s.workouts.GetCurrent(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			return WorkoutWithLatestLogs{}, ErrNoCurrentWorkout
		}
		return WorkoutWithLatestLogs{}, err
	}
	return s.aggregator.LatestView(ctx, w)
}

/* movement logs */

func (s *Service) ListMovementLogs(
	ctx context.Context,
	userID int64,
	filter MovementLogsFilter,
	page Page,
) (PageResult[MovementLogDetail], error) {
	logs, count, err := s.logs.List(ctx, userID, filter, page)
	if err != nil {
		return PageResult[MovementLogDetail]{}, err
	}
	details, err := s.aggregator.AttachMovementDetails(ctx, logs)
	if err != nil {
		return PageResult[MovementLogDetail]{}, err
	}
	return PageResult[MovementLogDetail]{Count: count, Results: details}, nil
}

// CreateMovementLog validates the payload and its references first, then requires
// the user to own both the referenced movement and workout.
func (s *Service) CreateMovementLog(ctx context.Context, userID int64, in MovementLogInput) (MovementLogDetail, error) {
	var err error
	if in.Movement == nil {
		err = multierr.Append(err, newValidationError("movement", "this field is required"))
	}
	if in.Workout == nil {
		err = multierr.Append(err, newValidationError("workout", "this field is required"))
	}
	if err != nil {
		return MovementLogDetail{}, err
	}

	l := MovementLog{
		Reps:      []int{},
		Loads:     []float64{},
		Timestamp: s.Now(),
	}
	in.applyTo(&l)

	movement, err := s.checkLogWrite(ctx, userID, l)
	if err != nil {
		return MovementLogDetail{}, err
	}

	l, err = s.logs.Add(ctx, l)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return MovementLogDetail{}, newValidationError("", "movement or workout does not exist")
		}
		return MovementLogDetail{}, err
	}
	if s.metrics != nil {
		s.metrics.CounterMovementLogs.Inc()
	}

	return MovementLogDetail{MovementLog: l, MovementDetail: &movement}, nil
}

// checkLogWrite validates the log and resolves its references. Missing references are
// validation failures; references owned by someone else are forbidden.
func (s *Service) checkLogWrite(ctx context.Context, userID int64, l MovementLog) (Movement, error) {
	err := ValidateMovementLog(l)

	movement, mErr := s.movements.Get(ctx, l.MovementID)
	switch {
	case errors.Is(mErr, ErrMovementNotFound):
		err = multierr.Append(err, newValidationError("movement", fmt.Sprintf("invalid pk %d - object does not exist", l.MovementID)))
	case mErr != nil:
		return Movement{}, fmt.Errorf("get log movement: %w", mErr)
	}

	workout, wErr := s.workouts.Get(ctx, l.WorkoutID)
	switch {
	case errors.Is(wErr, ErrWorkoutNotFound):
		err = multierr.Append(err, newValidationError("workout", fmt.Sprintf("invalid pk %d - object does not exist", l.WorkoutID)))
	case wErr != nil:
		return Movement{}, fmt.Errorf("get log workout: %w", wErr)
	}

	if err != nil {
		return Movement{}, err
	}
	if !CanWriteMovementLog(userID, movement, workout) {
		return Movement{}, ErrForbidden
	}
	return movement, nil
}

func (s *Service) getOwnedMovementLog(ctx context.Context, userID, id int64) (MovementLog, error) {
	l, err := s.logs.Get(ctx, id)
	if err != nil {
		return MovementLog{}, err
	}
	w, err := s.workouts.Get(ctx, l.WorkoutID)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			return MovementLog{}, ErrMovementLogNotFound
		}
		return MovementLog{}, err
	}
	if !CanAccessMovementLog(userID, w) {
		return MovementLog{}, ErrForbidden
	}
	return l, nil
}

func (s *Service) GetMovementLog(ctx context.Context, userID, id int64) (MovementLogDetail, error) {
	l, err := s.getOwnedMovementLog(ctx, userID, id)
	if err != nil {
		return MovementLogDetail{}, err
	}
	details, err := s.aggregator.AttachMovementDetails(ctx, []MovementLog{l})
	if err != nil {
		return MovementLogDetail{}, err
	}
	return details[0], nil
}

// UpdateMovementLog merges in over the stored log, then checks the resulting log as a
// whole: reps and loads lengths, and ownership of both the resulting movement and
// workout, whether or not the payload changed them. A full update (partial false)
// requires movement and workout.
func (s *Service) UpdateMovementLog(
	ctx context.Context,
	userID, id int64,
	in MovementLogInput,
	partial bool,
) (MovementLogDetail, error) {
	l, err := s.getOwnedMovementLog(ctx, userID, id)
	if err != nil {
		return MovementLogDetail{}, err
	}

	if !partial {
		var reqErr error
		if in.Movement == nil {
			reqErr = multierr.Append(reqErr, newValidationError("movement", "this field is required"))
		}
		if in.Workout == nil {
			reqErr = multierr.Append(reqErr, newValidationError("workout", "this field is required"))
		}
		if reqErr != nil {
			return MovementLogDetail{}, reqErr
		}
	}

	in.applyTo(&l)
	movement, err := s.checkLogWrite(ctx, userID, l)
	if err != nil {
		return MovementLogDetail{}, err
	}

	if err := s.logs.Update(ctx, l); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return MovementLogDetail{}, newValidationError("", "movement or workout does not exist")
		}
		return MovementLogDetail{}, err
	}

	return MovementLogDetail{MovementLog: l, MovementDetail: &movement}, nil
}

func (s *Service) DeleteMovementLog(ctx context.Context, userID, id int64) error {
	if _, err := s.getOwnedMovementLog(ctx, userID, id); err != nil {
		return err
	}
	return s.logs.Delete(ctx, id)
}
