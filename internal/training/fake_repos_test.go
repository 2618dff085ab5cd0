package training

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory stand-in for the postgres schema, cascades included.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	movements map[int64]Movement
	workouts  map[int64]Workout
	logs      map[int64]MovementLog
}

func newMemStore() *memStore {
	return &memStore{
		nextID:    1000,
		movements: map[int64]Movement{},
		workouts:  map[int64]Workout{},
		logs:      map[int64]MovementLog{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func paginate[T any](items []T, page Page) []T {
	start := min(page.Offset(), len(items))
	end := min(start+page.Size, len(items))
	return items[start:end]
}

func newTestService(store *memStore, now time.Time) *Service {
	service := NewService(
		&memMovementsRepo{store},
		&memWorkoutsRepo{store},
		&memMovementLogsRepo{store},
		nil,
	)
	service.Now = func() time.Time { return now }
	return service
}

type memMovementsRepo struct{ s *memStore }

func (r *memMovementsRepo) Get(_ context.Context, id int64) (Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[id]
	if !ok {
		return Movement{}, ErrMovementNotFound
	}
	return m, nil
}

func (r *memMovementsRepo) GetMany(_ context.Context, ids []int64) (map[int64]Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := map[int64]Movement{}
	for _, id := range ids {
		if m, ok := r.s.movements[id]; ok {
			res[id] = m
		}
	}
	return res, nil
}

func (r *memMovementsRepo) List(_ context.Context, authorID int64, page Page) ([]Movement, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []Movement
	for _, m := range r.s.movements {
		if m.Author != nil && *m.Author == authorID {
			res = append(res, m)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Name == res[j].Name {
			return res[i].ID < res[j].ID
		}
		return res[i].Name < res[j].Name
	})
	return paginate(res, page), len(res), nil
}

func (r *memMovementsRepo) Add(_ context.Context, m Movement) (Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.id()
	r.s.movements[m.ID] = m
	return m, nil
}

func (r *memMovementsRepo) Update(_ context.Context, m Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; !ok {
		return ErrMovementNotFound
	}
	r.s.movements[m.ID] = m
	return nil
}

func (r *memMovementsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[id]; !ok {
		return ErrMovementNotFound
	}
	delete(r.s.movements, id)
	for logID, l := range r.s.logs {
		if l.MovementID == id {
			delete(r.s.logs, logID)
		}
	}
	return nil
}

type memWorkoutsRepo struct{ s *memStore }

func (r *memWorkoutsRepo) Get(_ context.Context, id int64) (Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return Workout{}, ErrWorkoutNotFound
	}
	w.Movements = slices.Clone(w.Movements)
	return w, nil
}

func (r *memWorkoutsRepo) userWorkouts(userID int64) []Workout {
	var res []Workout
	for _, w := range r.s.workouts {
		if w.User != nil && *w.User == userID {
			w.Movements = slices.Clone(w.Movements)
			res = append(res, w)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].StartTimestamp.Equal(res[j].StartTimestamp) {
			return res[i].ID > res[j].ID
		}
		return res[i].StartTimestamp.After(res[j].StartTimestamp)
	})
	return res
}

func (r *memWorkoutsRepo) GetCurrent(_ context.Context, userID int64) (Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.userWorkouts(userID) {
		if w.EndTimestamp == nil {
			return w, nil
		}
	}
	return Workout{}, ErrWorkoutNotFound
}

func (r *memWorkoutsRepo) List(_ context.Context, userID int64, page Page) ([]Workout, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := r.userWorkouts(userID)
	return paginate(res, page), len(res), nil
}

func (r *memWorkoutsRepo) Add(_ context.Context, w Workout) (Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w.ID = r.s.id()
	if w.Movements == nil {
		w.Movements = []int64{}
	}
	stored := w
	stored.Movements = slices.Clone(w.Movements)
	r.s.workouts[w.ID] = stored
	return w, nil
}

func (r *memWorkoutsRepo) UpdateMovements(_ context.Context, id int64, movementIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return ErrWorkoutNotFound
	}
	w.Movements = slices.Clone(movementIDs)
	r.s.workouts[id] = w
	return nil
}

func (r *memWorkoutsRepo) End(_ context.Context, id int64, endTimestamp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return ErrWorkoutNotFound
	}
	w.EndTimestamp = &endTimestamp
	r.s.workouts[id] = w
	return nil
}

func (r *memWorkoutsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.workouts[id]; !ok {
		return ErrWorkoutNotFound
	}
	delete(r.s.workouts, id)
	for logID, l := range r.s.logs {
		if l.WorkoutID == id {
			delete(r.s.logs, logID)
		}
	}
	return nil
}

type memMovementLogsRepo struct{ s *memStore }

func sortLogsNewestFirst(logs []MovementLog) {
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].newerThan(logs[j])
	})
}

func (r *memMovementLogsRepo) Get(_ context.Context, id int64) (MovementLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.logs[id]
	if !ok {
		return MovementLog{}, ErrMovementLogNotFound
	}
	return l, nil
}

func (r *memMovementLogsRepo) List(_ context.Context, userID int64, filter MovementLogsFilter, page Page) ([]MovementLog, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []MovementLog
	for _, l := range r.s.logs {
		w := r.s.workouts[l.WorkoutID]
		if w.User == nil || *w.User != userID {
			continue
		}
		if filter.MovementID != nil && l.MovementID != *filter.MovementID {
			continue
		}
		if filter.WorkoutID != nil && l.WorkoutID != *filter.WorkoutID {
			continue
		}
		res = append(res, l)
	}
	sortLogsNewestFirst(res)
	return paginate(res, page), len(res), nil
}

func (r *memMovementLogsRepo) ListForWorkouts(_ context.Context, workoutIDs []int64) ([]MovementLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := []MovementLog{}
	for _, l := range r.s.logs {
		if slices.Contains(workoutIDs, l.WorkoutID) {
			res = append(res, l)
		}
	}
	sortLogsNewestFirst(res)
	return res, nil
}

func (r *memMovementLogsRepo) LatestForMovements(_ context.Context, movementIDs []int64) ([]MovementLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	latest := map[int64]MovementLog{}
	for _, l := range r.s.logs {
		if !slices.Contains(movementIDs, l.MovementID) {
			continue
		}
		if current, ok := latest[l.MovementID]; !ok || l.newerThan(current) {
			latest[l.MovementID] = l
		}
	}
	res := []MovementLog{}
	for _, l := range latest {
		res = append(res, l)
	}
	return res, nil
}

func (r *memMovementLogsRepo) Add(_ context.Context, l MovementLog) (MovementLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.id()
	r.s.logs[l.ID] = l
	return l, nil
}

func (r *memMovementLogsRepo) Update(_ context.Context, l MovementLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.logs[l.ID]; !ok {
		return ErrMovementLogNotFound
	}
	r.s.logs[l.ID] = l
	return nil
}

func (r *memMovementLogsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.logs[id]; !ok {
		return ErrMovementLogNotFound
	}
	delete(r.s.logs, id)
	return nil
}
