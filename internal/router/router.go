// Package router exposes user validation, registration, profile and
// password-check operations over HTTP.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/socialgood/internal/entitystore"
	"github.com/patric-chuzhbe/socialgood/internal/logger"
	"github.com/patric-chuzhbe/socialgood/internal/models"
	"github.com/patric-chuzhbe/socialgood/internal/user"
)

type userKeeper interface {
	Register(ctx context.Context, u user.User) error
	Get(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, u user.User) error
	Delete(ctx context.Context, id string) error
}

type loginChecker interface {
	Login(ctx context.Context, id, password string) (user.User, error)
}

type counter interface {
	Count(ctx context.Context) int
}

type store interface {
	userKeeper
	loginChecker
	counter
}

type trustedGate interface {
	TrustedOnly(h http.Handler) http.Handler
}

// Router holds the handler dependencies.
type Router struct {
	db       store
	validate *validator.Validate
}

func validateUserRole(fieldLevel validator.FieldLevel) bool {
	field := fieldLevel.Field()
	if field.Kind() != reflect.String {
		return false
	}
	role := user.Role(field.String())

	return role == "" || role.Valid()
}

func newValidator() *validator.Validate {
	validate := validator.New()
	if err := validate.RegisterValidation("userrole", validateUserRole); err != nil {
		panic(err)
	}

	return validate
}

// New builds the HTTP handler. The internal stats endpoint is wrapped by gate.
func New(db store, gate trustedGate) *chi.Mux {
	myRouter := &Router{
		db:       db,
		validate: newValidator(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		middleware.Recoverer,
		middleware.Compress(5, "application/json"),
	)

	router.Get(`/ping`, myRouter.GetPing)
	router.Post(`/api/validate`, myRouter.PostApivalidate)
	router.Post(`/api/validate/{field}`, myRouter.PostApivalidateField)
	router.Post(`/api/users`, myRouter.PostApiusers)
	router.Get(`/api/users/{id}`, myRouter.GetApiusersID)
	router.Put(`/api/users/{id}`, myRouter.PutApiusersID)
	router.Delete(`/api/users/{id}`, myRouter.DeleteApiusersID)
	router.Post(`/api/login`, myRouter.PostApilogin)
	router.With(gate.TrustedOnly).Get(`/api/internal/stats`, myRouter.GetApiinternalstats)

	return router
}

func writeJSON(response http.ResponseWriter, status int, value any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(value); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder().Encode()`: ", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, status int, message string) {
	writeJSON(response, status, models.ErrorResponse{Error: message})
}

// writeStoreError maps an error from the store or the user validators to a response.
func writeStoreError(response http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrIncorrectPassword) {
		writeError(response, http.StatusUnauthorized, user.ErrIncorrectPassword.Message)
		return
	}
	if inputErr, ok := user.AsInputError(err); ok {
		writeError(response, http.StatusUnprocessableEntity, inputErr.Message)
		return
	}
	if errors.Is(err, entitystore.ErrUserNotFound) {
		writeError(response, http.StatusNotFound, "User not found.")
		return
	}
	if errors.Is(err, entitystore.ErrUserExists) {
		writeError(response, http.StatusConflict, "User ID is already taken.")
		return
	}

	logger.Log.Debugln("Unexpected store error: ", zap.Error(err))
	writeError(response, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (router *Router) decodeUserRequest(request *http.Request) (models.UserRequest, error) {
	var userRequest models.UserRequest
	if err := json.NewDecoder(request.Body).Decode(&userRequest); err != nil {
		return models.UserRequest{}, err
	}
	if err := router.validate.Struct(userRequest); err != nil {
		return models.UserRequest{}, err
	}

	return userRequest, nil
}

func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	response.WriteHeader(http.StatusOK)
}

// PostApivalidateField checks one field value, for live form validation.
func (router *Router) PostApivalidateField(response http.ResponseWriter, request *http.Request) {
	fieldRequest := models.FieldValidationRequest{}
	if err := json.NewDecoder(request.Body).Decode(&fieldRequest); err != nil {
		logger.Log.Debugln("Error calling the `json.NewDecoder().Decode()`: ", zap.Error(err))
		writeError(response, http.StatusBadRequest, "Invalid request body.")
		return
	}
	fieldRequest.Field = chi.URLParam(request, "field")

	if err := router.validate.Struct(fieldRequest); err != nil {
		writeError(response, http.StatusNotFound, "Unknown field.")
		return
	}

	if err := user.ValidateField(fieldRequest.Field, fieldRequest.Value); err != nil {
		if inputErr, ok := user.AsInputError(err); ok {
			writeJSON(response, http.StatusUnprocessableEntity, models.FieldValidationResponse{
				Valid: false,
				Error: inputErr.Message,
			})
			return
		}
		writeError(response, http.StatusNotFound, "Unknown field.")
		return
	}

	writeJSON(response, http.StatusOK, models.FieldValidationResponse{Valid: true})
}

// PostApivalidate checks a whole form and reports every failing field.
func (router *Router) PostApivalidate(response http.ResponseWriter, request *http.Request) {
	userRequest, err := router.decodeUserRequest(request)
	if err != nil {
		logger.Log.Debugln("Error calling the `router.decodeUserRequest()`: ", zap.Error(err))
		writeError(response, http.StatusBadRequest, "Invalid request body.")
		return
	}

	u := userRequest.ToUser()
	fields := u.Fields()
	result := models.FormValidationResponse{Valid: true, Errors: map[string]string{}}
	for _, field := range user.ValidatedFields {
		if err := user.ValidateField(field, fields[field]); err != nil {
			result.Valid = false
			result.Errors[field] = err.Error()
		}
	}

	writeJSON(response, http.StatusOK, result)
}

func (router *Router) PostApiusers(response http.ResponseWriter, request *http.Request) {
	userRequest, err := router.decodeUserRequest(request)
	if err != nil {
		logger.Log.Debugln("Error calling the `router.decodeUserRequest()`: ", zap.Error(err))
		writeError(response, http.StatusBadRequest, "Invalid request body.")
		return
	}

	u := userRequest.ToUser()
	if err := router.db.Register(request.Context(), u); err != nil {
		writeStoreError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, models.NewUserResponse(u))
}

func (router *Router) GetApiusersID(response http.ResponseWriter, request *http.Request) {
	u, err := router.db.Get(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		writeStoreError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.NewUserResponse(u))
}

// PutApiusersID replaces a user record. The id in the URL wins over the body.
func (router *Router) PutApiusersID(response http.ResponseWriter, request *http.Request) {
	userRequest, err := router.decodeUserRequest(request)
	if err != nil {
		logger.Log.Debugln("Error calling the `router.decodeUserRequest()`: ", zap.Error(err))
		writeError(response, http.StatusBadRequest, "Invalid request body.")
		return
	}
	userRequest.ID = chi.URLParam(request, "id")

	u := userRequest.ToUser()
	if err := router.db.Update(request.Context(), u); err != nil {
		writeStoreError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.NewUserResponse(u))
}

func (router *Router) DeleteApiusersID(response http.ResponseWriter, request *http.Request) {
	if err := router.db.Delete(request.Context(), chi.URLParam(request, "id")); err != nil {
		writeStoreError(response, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// PostApilogin checks a password for the login flow. It issues no session.
func (router *Router) PostApilogin(response http.ResponseWriter, request *http.Request) {
	var loginRequest models.LoginRequest
	if err := json.NewDecoder(request.Body).Decode(&loginRequest); err != nil {
		logger.Log.Debugln("Error calling the `json.NewDecoder().Decode()`: ", zap.Error(err))
		writeError(response, http.StatusBadRequest, "Invalid request body.")
		return
	}

	u, err := router.db.Login(request.Context(), loginRequest.ID, loginRequest.Password)
	if err != nil {
		writeStoreError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.NewUserResponse(u))
}

func (router *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, models.InternalStatsResponse{
		Users: router.db.Count(request.Context()),
	})
}
