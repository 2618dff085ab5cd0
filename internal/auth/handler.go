package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/lumberjacked/internal/telemetry/metrics"
	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/multierr"
)

type Handler struct {
	authService    *Service
	loginChecker   *LoginChecker
	metricsManager *metrics.Manager
}

func NewHandler(
	authService *Service,
	loginChecker *LoginChecker,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		authService:    authService,
		loginChecker:   loginChecker,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the auth routes. rateLimit guards login and registration.
func (handler *Handler) SetupRoutes(r *mux.Router, rateLimit mux.MiddlewareFunc) {
	r.Handle("/auth/registration", rateLimit(http.HandlerFunc(handler.HandleRegistration))).
		Methods("POST", "OPTIONS").Name("registration")
	r.Handle("/auth/login", rateLimit(http.HandlerFunc(handler.HandleLogin))).
		Methods("POST", "OPTIONS").Name("login")
	r.HandleFunc("/auth/logout", handler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
	r.HandleFunc("/auth/user", handler.HandleUser).Methods("GET", "OPTIONS").Name("user")
}

func decodeRequest(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, pkg.ContentType.JSON) {
		return invalidInput("unsupported content type")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalidInput("malformed json")
	}
	return nil
}

func inputErrorMessage(err error) string {
	var reasons []string
	for _, e := range multierr.Errors(err) {
		reasons = append(reasons, strings.TrimPrefix(e.Error(), ErrInvalidInput.Error()+": "))
	}
	return strings.Join(reasons, "\n")
}

func (handler *Handler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.registration")
	defer span.End()

	var req RegistrationRequest
	if err := decodeRequest(r, &req); err != nil {
		http.Error(w, inputErrorMessage(err), http.StatusBadRequest)
		return
	}

	user, err := handler.authService.Register(ctx, req)
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, inputErrorMessage(err), http.StatusBadRequest)
		return
	case errors.Is(err, ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("registration failed: %s", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterRegistrations.Inc()
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	log.Debugf("new user registered: %d", user.ID)
	pkg.WriteJSON(w, user, http.StatusCreated)
}

func (handler *Handler) countLogin(result string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterLogins.WithLabelValues(result).Inc()
	}
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	var req LoginRequest
	if err := decodeRequest(r, &req); err != nil {
		handler.countLogin("invalid")
		http.Error(w, inputErrorMessage(err), http.StatusBadRequest)
		return
	}

	token, err := handler.authService.Login(ctx, req)
	switch {
	case errors.Is(err, ErrInvalidInput):
		handler.countLogin("invalid")
		http.Error(w, inputErrorMessage(err), http.StatusBadRequest)
		return
	case errors.Is(err, ErrWrongCredentials):
		handler.countLogin("wrong_credentials")
		log.Tracef("failed login attempt for: %s", req.Email)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		handler.countLogin("error")
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("login failed: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	handler.countLogin("success")
	log.Trace("new login success")
	pkg.WriteJSON(w, map[string]string{"key": token}, http.StatusOK)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	token := TokenFromRequest(r)
	if token == "" {
		http.Error(w, "authentication credentials were not provided", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, token)
	handler.loginChecker.Forget(token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("logout failed: %s", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		http.Error(w, ErrSessionNotFound.Error(), http.StatusUnauthorized)
		return
	}

	pkg.WriteJSON(w, map[string]string{"detail": "successfully logged out"}, http.StatusOK)
}

func (handler *Handler) HandleUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.user")
	defer span.End()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "authentication credentials were not provided", http.StatusUnauthorized)
		return
	}

	user, err := handler.authService.GetUser(ctx, userID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("get user %d: %s", userID, err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, user, http.StatusOK)
}
