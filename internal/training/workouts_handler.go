package training

import (
	"net/http"

	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/pkg"

	log "github.com/sirupsen/logrus"
)

func (handler *Handler) HandleListWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "list workouts", err)
		return
	}
	page, err := handler.parsePage(r)
	if err != nil {
		writeError(w, "list workouts", err)
		return
	}

	workouts, err := handler.service.ListWorkouts(ctx, userID, page)
	if err != nil {
		writeError(w, "list workouts", err)
		return
	}

	pkg.WriteJSON(w, workouts, http.StatusOK)
}

// HandleCreateWorkout starts a workout, optionally seeded from ?template={id}.
func (handler *Handler) HandleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "add workout", err)
		return
	}

	var params CreateWorkoutParams
	if params.TemplateID, err = queryID(r, "template"); err != nil {
		writeError(w, "add workout", err)
		return
	}
	if err := decodeJSON(r, &params.Input); err != nil {
		writeError(w, "add workout", err)
		return
	}

	workout, err := handler.service.CreateWorkout(ctx, userID, params)
	if err != nil {
		writeError(w, "add workout", err)
		return
	}

	log.Debugf("new workout started: %d", workout.ID)
	pkg.WriteJSON(w, workout, http.StatusCreated)
}

func (handler *Handler) HandleGetWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "get workout", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "get workout", err)
		return
	}

	workout, err := handler.service.GetWorkout(ctx, userID, id)
	if err != nil {
		writeError(w, "get workout", err)
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "update workout", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "update workout", err)
		return
	}

	var in WorkoutInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "update workout", err)
		return
	}

	workout, err := handler.service.UpdateWorkout(ctx, userID, id, in, r.Method == http.MethodPatch)
	if err != nil {
		writeError(w, "update workout", err)
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "delete workout", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "delete workout", err)
		return
	}

	if err := handler.service.DeleteWorkout(ctx, userID, id); err != nil {
		writeError(w, "delete workout", err)
		return
	}

	log.Debugf("workout %d removed", id)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleEndWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.end")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "end workout", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "end workout", err)
		return
	}

	workout, err := handler.service.EndWorkout(ctx, userID, id)
	if err != nil {
		writeError(w, "end workout", err)
		return
	}

	log.Debugf("workout %d ended at %s", id, workout.EndTimestamp)
	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleCurrentWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.current")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "current workout", err)
		return
	}

	workout, err := handler.service.CurrentWorkout(ctx, userID)
	if err != nil {
		writeError(w, "current workout", err)
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}
