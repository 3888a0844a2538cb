// Package router wires the HTTP API: it maps routes to handlers,
// decodes and encodes JSON bodies, and translates service errors into
// the documented status codes and messages.
package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/authsvc/internal/auth"
	"github.com/patric-chuzhbe/authsvc/internal/db/storage"
	"github.com/patric-chuzhbe/authsvc/internal/logger"
	"github.com/patric-chuzhbe/authsvc/internal/models"
	"github.com/patric-chuzhbe/authsvc/internal/token"
	"github.com/patric-chuzhbe/authsvc/internal/user"
)

const (
	msgMissingSignupFields = "Please enter all fields"
	msgMissingSigninFields = "Please enter both email and password"
	msgIdentityExists      = "User already exists with this email or username"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidToken        = "Invalid token"
	msgServerError         = "Server error"
)

type authService interface {
	Register(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	SignIn(ctx context.Context, req models.SigninRequest) (*models.AuthResponse, error)
}

type tokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

type userKeeper interface {
	FindUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type dbDeps interface {
	userKeeper
	pinger
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

type handlers struct {
	svc    authService
	tokens tokenVerifier
	db     dbDeps
}

// New builds the HTTP handler for the whole service.
func New(svc authService, tokens tokenVerifier, db dbDeps) http.Handler {
	h := &handlers{
		svc:    svc,
		tokens: tokens,
		db:     db,
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Get(`/`, h.getRoot)
	router.Get(`/ping`, h.getPing)

	router.Route(`/api/auth`, func(router chi.Router) {
		router.Post(`/signup`, h.postSignup)
		router.Post(`/signin`, h.postSignin)
		router.With(h.authenticateUser).Get(`/me`, h.getMe)
	})

	return router
}

func (h *handlers) getRoot(response http.ResponseWriter, request *http.Request) {
	_, err := response.Write([]byte("Server is running"))
	if err != nil {
		logger.Log.Debugln("Error writing the root response: ", zap.Error(err))
	}
}

func (h *handlers) getPing(response http.ResponseWriter, request *http.Request) {
	if err := h.db.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `h.db.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}
	response.WriteHeader(http.StatusOK)
}

func (h *handlers) postSignup(response http.ResponseWriter, request *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeJSON(response, http.StatusBadRequest, models.ErrorResponse{Message: msgMissingSignupFields})
		return
	}

	result, err := h.svc.Register(request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			writeJSON(response, http.StatusBadRequest, models.ErrorResponse{Message: msgMissingSignupFields})
		case errors.Is(err, auth.ErrIdentityExists):
			writeJSON(response, http.StatusBadRequest, models.ErrorResponse{Message: msgIdentityExists})
		default:
			logger.Log.Debugln("Error calling the `h.svc.Register()`: ", zap.Error(err))
			http.Error(response, msgServerError, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(response, http.StatusCreated, result)
}

func (h *handlers) postSignin(response http.ResponseWriter, request *http.Request) {
	var req models.SigninRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeJSON(response, http.StatusBadRequest, models.ErrorResponse{Message: msgMissingSigninFields})
		return
	}

	result, err := h.svc.SignIn(request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			writeJSON(response, http.StatusBadRequest, models.ErrorResponse{Message: msgMissingSigninFields})
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSON(response, http.StatusBadRequest, models.ErrorResponse{Message: msgInvalidCredentials})
		default:
			logger.Log.Debugln("Error calling the `h.svc.SignIn()`: ", zap.Error(err))
			http.Error(response, msgServerError, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(response, http.StatusOK, result)
}

func (h *handlers) getMe(response http.ResponseWriter, request *http.Request) {
	userID, ok := request.Context().Value(UserIDKey).(string)
	if !ok || userID == "" {
		writeJSON(response, http.StatusUnauthorized, models.ErrorResponse{Message: msgInvalidToken})
		return
	}

	usr, err := h.db.FindUserByID(request.Context(), userID, nil)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			writeJSON(response, http.StatusUnauthorized, models.ErrorResponse{Message: msgInvalidToken})
			return
		}
		logger.Log.Debugln("Error calling the `h.db.FindUserByID()`: ", zap.Error(err))
		http.Error(response, msgServerError, http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, models.MeResponse{
		User: models.AuthUser{
			ID:       usr.ID,
			Username: usr.Username,
			Email:    usr.Email,
		},
	})
}

// authenticateUser is an HTTP middleware that verifies the session token
// from the Authorization header and stores the user ID in the request
// context. Every failure is answered with the same opaque 401.
func (h *handlers) authenticateUser(next http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		claims, err := h.tokens.Verify(tokenStringFromRequest(request))
		if err != nil {
			writeJSON(response, http.StatusUnauthorized, models.ErrorResponse{Message: msgInvalidToken})
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, claims.User.ID)
		next.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

func tokenStringFromRequest(request *http.Request) string {
	tokenString := request.Header.Get("Authorization")
	return strings.TrimPrefix(tokenString, "Bearer ")
}

func writeJSON(response http.ResponseWriter, status int, body interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Debugln("Error encoding the response body: ", zap.Error(err))
	}
}
