package main

import (
	"errors"
	"net/http"

	"facade/internal/catalog"
	"facade/internal/media"
	"facade/internal/storage"
	"facade/internal/users"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, err.Error())
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("conflict", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path)

	writeJSONError(w, http.StatusForbidden, "forbidden")
}

func (app *application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("upstream storage error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadGateway, "object storage is unavailable")
}

// handleServiceError maps domain errors onto the right HTTP response so the
// handlers stay thin.
func (app *application) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fieldErr *catalog.ValidationError
		mediaErr *media.ValidationError
		storErr  *storage.Error
	)
	switch {
	case errors.As(err, &fieldErr), errors.As(err, &mediaErr):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, users.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, catalog.ErrConflict),
		errors.Is(err, catalog.ErrBrandHasProducts),
		errors.Is(err, catalog.ErrCategoryHasProducts):
		app.conflictResponse(w, r, err)
	case errors.As(err, &storErr):
		app.badGatewayResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
