package training

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/lumberjacked/internal/auth"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service         *Service
	defaultPageSize int
	maxPageSize     int
}

func NewHandler(service *Service, defaultPageSize, maxPageSize int) *Handler {
	return &Handler{
		service:         service,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/movements", handler.HandleListMovements).Methods("GET", "OPTIONS").Name("list-movements")
	r.HandleFunc("/movements", handler.HandleCreateMovement).Methods("POST", "OPTIONS").Name("new-movement")
	r.HandleFunc("/movements/{id:[0-9]+}", handler.HandleGetMovement).Methods("GET", "OPTIONS").Name("get-movement")
	r.HandleFunc("/movements/{id:[0-9]+}", handler.HandleUpdateMovement).Methods("PUT", "PATCH", "OPTIONS").Name("update-movement")
	r.HandleFunc("/movements/{id:[0-9]+}", handler.HandleDeleteMovement).Methods("DELETE", "OPTIONS").Name("delete-movement")

	// registered before /workouts/{id} so "current" is never taken for an id
	r.HandleFunc("/workouts/current", handler.HandleCurrentWorkout).Methods("GET", "OPTIONS").Name("current-workout")
	r.HandleFunc("/workouts", handler.HandleListWorkouts).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts", handler.HandleCreateWorkout).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/{id:[0-9]+}", handler.HandleGetWorkout).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/workouts/{id:[0-9]+}", handler.HandleUpdateWorkout).Methods("PUT", "PATCH", "OPTIONS").Name("update-workout")
	r.HandleFunc("/workouts/{id:[0-9]+}", handler.HandleDeleteWorkout).Methods("DELETE", "OPTIONS").Name("delete-workout")
	r.HandleFunc("/workouts/{id:[0-9]+}/end", handler.HandleEndWorkout).Methods("GET", "POST", "OPTIONS").Name("end-workout")

	r.HandleFunc("/movement-logs", handler.HandleListMovementLogs).Methods("GET", "OPTIONS").Name("list-movement-logs")
	r.HandleFunc("/movement-logs", handler.HandleCreateMovementLog).Methods("POST", "OPTIONS").Name("new-movement-log")
	r.HandleFunc("/movement-logs/{id:[0-9]+}", handler.HandleGetMovementLog).Methods("GET", "OPTIONS").Name("get-movement-log")
	r.HandleFunc("/movement-logs/{id:[0-9]+}", handler.HandleUpdateMovementLog).Methods("PUT", "PATCH", "OPTIONS").Name("update-movement-log")
	r.HandleFunc("/movement-logs/{id:[0-9]+}", handler.HandleDeleteMovementLog).Methods("DELETE", "OPTIONS").Name("delete-movement-log")
}

func requestUserID(r *http.Request) (int64, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return 0, ErrAuthenticationRequired
	}
	return userID, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, newValidationError("id", "invalid id")
	}
	return id, nil
}

// queryID parses an optional id query param. A missing param yields nil.
func queryID(r *http.Request, name string) (*int64, error) {
	raw, ok := r.URL.Query()[name]
	if !ok {
		return nil, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw[0]), 10, 64)
	if err != nil {
		return nil, newValidationError(name, fmt.Sprintf("%q is not a valid id", raw[0]))
	}
	return &id, nil
}

func (handler *Handler) parsePage(r *http.Request) (Page, error) {
	page := Page{Number: 1, Size: handler.defaultPageSize}
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, newValidationError("page", "invalid page")
		}
		page.Number = n
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, newValidationError("page_size", "invalid page size")
		}
		page.Size = min(n, handler.maxPageSize)
	}
	return page, nil
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return newValidationError("", "invalid content type")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return newValidationError("", fmt.Sprintf("malformed json: %s", err))
	}
	return nil
}

// writeError maps service errors to statuses. Unexpected errors are logged and answered with 500.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case IsValidationError(err):
		http.Error(w, ValidationMessage(err), http.StatusBadRequest)
	case errors.Is(err, ErrAuthenticationRequired):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}
