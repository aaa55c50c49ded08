package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/async-tournament/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusNotFound, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// statusForServiceError maps service sentinels onto HTTP status codes.
func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrPoolNotFound),
		errors.Is(err, services.ErrPermalinkNotFound),
		errors.Is(err, services.ErrRaceNotFound):
		return http.StatusNotFound

	case errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrRaceNotReviewable),
		errors.Is(err, services.ErrRaceReattempted),
		errors.Is(err, services.ErrSelfReview),
		errors.Is(err, services.ErrAPIKeyScope):
		return http.StatusForbidden

	case errors.Is(err, services.ErrInvalidReviewState),
		errors.Is(err, services.ErrInvalidFilter),
		errors.Is(err, services.ErrOAuthStateMismatch):
		return http.StatusBadRequest

	case errors.Is(err, services.ErrAuthenticationFailed),
		errors.Is(err, services.ErrInvalidAPIKey):
		return http.StatusUnauthorized

	case errors.Is(err, services.ErrLoginNotConfigured):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// mapServiceErrorToHTTP writes the JSON error response for a service error.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch status := statusForServiceError(err); status {
	case http.StatusInternalServerError:
		serverErrorResponse(w, r, err)
	case http.StatusNotFound:
		notFoundResponse(w, r, err.Error())
	case http.StatusForbidden:
		forbiddenResponse(w, r, err.Error())
	case http.StatusUnauthorized:
		unauthorizedResponse(w, r, err.Error())
	default:
		errorResponse(w, r, status, err.Error())
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}
