package training

import (
	"net/http"

	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/pkg"

	log "github.com/sirupsen/logrus"
)

func (handler *Handler) HandleListMovements(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movements.list")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "list movements", err)
		return
	}
	page, err := handler.parsePage(r)
	if err != nil {
		writeError(w, "list movements", err)
		return
	}

	movements, err := handler.service.ListMovements(ctx, userID, page)
	if err != nil {
		writeError(w, "list movements", err)
		return
	}

	pkg.WriteJSON(w, movements, http.StatusOK)
}

func (handler *Handler) HandleCreateMovement(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movements.new")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "add movement", err)
		return
	}

	var in MovementInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "add movement", err)
		return
	}

	movement, err := handler.service.CreateMovement(ctx, userID, in)
	if err != nil {
		writeError(w, "add movement", err)
		return
	}

	log.Debugf("new movement added: %d [%s]", movement.ID, movement.Name)
	pkg.WriteJSON(w, movement, http.StatusCreated)
}

func (handler *Handler) HandleGetMovement(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movements.get")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "get movement", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "get movement", err)
		return
	}

	movement, err := handler.service.GetMovement(ctx, userID, id)
	if err != nil {
		writeError(w, "get movement", err)
		return
	}

	pkg.WriteJSON(w, movement, http.StatusOK)
}

// HandleUpdateMovement serves both PUT (full) and PATCH (partial) updates.
func (handler *Handler) HandleUpdateMovement(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movements.update")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "update movement", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "update movement", err)
		return
	}

	var in MovementInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "update movement", err)
		return
	}

	movement, err := handler.service.UpdateMovement(ctx, userID, id, in, r.Method == http.MethodPatch)
	if err != nil {
		writeError(w, "update movement", err)
		return
	}

	pkg.WriteJSON(w, movement, http.StatusOK)
}

func (handler *Handler) HandleDeleteMovement(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.movements.delete")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, "delete movement", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "delete movement", err)
		return
	}

	if err := handler.service.DeleteMovement(ctx, userID, id); err != nil {
		writeError(w, "delete movement", err)
		return
	}

	log.Debugf("movement %d removed", id)
	w.WriteHeader(http.StatusNoContent)
}
