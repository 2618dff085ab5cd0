package training

import (
	"net/http"

	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/pkg"

	log "github.com/sirupsen/logrus"
)

// HandleListMovementLogs lists the user's logs, filtered by ?movement= and ?workout= when given.
func (handler *Handler) HandleListMovementLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movement_logs.list")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "list movement logs", err)
		return
	}
	page, err := handler.parsePage(r)
	if err != nil {
		writeError(w, "list movement logs", err)
		return
	}

	var filter MovementLogsFilter
	if filter.MovementID, err = queryID(r, "movement"); err != nil {
		writeError(w, "list movement logs", err)
		return
	}
	if filter.WorkoutID, err = queryID(r, "workout"); err != nil {
		writeError(w, "list movement logs", err)
		return
	}

	logs, err := handler.service.ListMovementLogs(ctx, userID, filter, page)
	if err != nil {
		writeError(w, "list movement logs", err)
		return
	}

	pkg.WriteJSON(w, logs, http.StatusOK)
}

func (handler *Handler) HandleCreateMovementLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movement_logs.new")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "add movement log", err)
		return
	}

	var in MovementLogInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "add movement log", err)
		return
	}

	movementLog, err := handler.service.CreateMovementLog(ctx, userID, in)
	if err != nil {
		writeError(w, "add movement log", err)
		return
	}

	log.Debugf("new movement log added: %d", movementLog.ID)
	pkg.WriteJSON(w, movementLog, http.StatusCreated)
}

func (handler *Handler) HandleGetMovementLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movement_logs.get")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "get movement log", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "get movement log", err)
		return
	}

	movementLog, err := handler.service.GetMovementLog(ctx, userID, id)
	if err != nil {
		writeError(w, "get movement log", err)
		return
	}

	pkg.WriteJSON(w, movementLog, http.StatusOK)
}

func (handler *Handler) HandleUpdateMovementLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movement_logs.update")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "update movement log", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "update movement log", err)
		return
	}

	var in MovementLogInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "update movement log", err)
		return
	}

	movementLog, err := handler.service.UpdateMovementLog(ctx, userID, id, in, r.Method == http.MethodPatch)
	if err != nil {
		writeError(w, "update movement log", err)
		return
	}

	pkg.WriteJSON(w, movementLog, http.StatusOK)
}

func (handler *Handler) HandleDeleteMovementLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movement_logs.delete")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "delete movement log", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "delete movement log", err)
		return
	}

	if err := handler.service.DeleteMovementLog(ctx, userID, id); err != nil {
		writeError(w, "delete movement log", err)
		return
	}

	log.Debugf("movement log %d removed", id)
	w.WriteHeader(http.StatusNoContent)
}
