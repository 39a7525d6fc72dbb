package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"facade/internal/catalog"
)

type brandSizePayload struct {
	CategoryID int64  `json:"category_id" validate:"required"`
	Label      string `json:"label" validate:"required,max=50"`
}

func (app *application) sizeIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sizeID"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid size ID")
	}
	return id, nil
}

// listBrandSizesHandler godoc
//
//	@Summary	List sizes of a brand
//	@Tags		brands
//	@Produce	json
//	@Param		brandID	path		int	true	"Brand ID"
//	@Success	200		{array}		catalog.BrandSize
//	@Failure	404		{object}	error
//	@Router		/brands/{brandID}/sizes [get]
func (app *application) listBrandSizesHandler(w http.ResponseWriter, r *http.Request) {
	brandID, err := app.brandIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if _, err := app.store.GetBrandByID(r.Context(), brandID); err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	sizes, err := app.store.ListBrandSizes(r.Context(), brandID)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, sizes); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createBrandSizeHandler godoc
//
//	@Summary	Add a size to a brand
//	@Tags		brands
//	@Accept		json
//	@Produce	json
//	@Param		brandID	path		int					true	"Brand ID"
//	@Param		payload	body		brandSizePayload	true	"Size payload"
//	@Success	201		{object}	catalog.BrandSize
//	@Failure	400		{object}	error
//	@Failure	404		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/brands/{brandID}/sizes [post]
func (app *application) createBrandSizeHandler(w http.ResponseWriter, r *http.Request) {
	brandID, err := app.brandIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload brandSizePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	size, err := app.store.CreateBrandSize(r.Context(), &catalog.BrandSize{
		BrandID:    brandID,
		CategoryID: payload.CategoryID,
		Label:      strings.TrimSpace(payload.Label),
	})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, size); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateBrandSizeHandler godoc
//
//	@Summary	Update a brand size
//	@Tags		brands
//	@Accept		json
//	@Produce	json
//	@Param		brandID	path		int					true	"Brand ID"
//	@Param		sizeID	path		int					true	"Size ID"
//	@Param		payload	body		brandSizePayload	true	"Size payload"
//	@Success	200		{object}	catalog.BrandSize
//	@Failure	404		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/brands/{brandID}/sizes/{sizeID} [put]
func (app *application) updateBrandSizeHandler(w http.ResponseWriter, r *http.Request) {
	brandID, err := app.brandIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	sizeID, err := app.sizeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload brandSizePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	size, err := app.store.GetBrandSizeByID(r.Context(), sizeID)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	if size.BrandID != brandID {
		app.notFoundResponse(w, r, catalog.ErrSizeNotFound)
		return
	}

	size.CategoryID = payload.CategoryID
	size.Label = strings.TrimSpace(payload.Label)
	if err := app.store.UpdateBrandSize(r.Context(), size); err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, size); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteBrandSizeHandler godoc
//
//	@Summary	Delete a brand size
//	@Tags		brands
//	@Param		brandID	path	int	true	"Brand ID"
//	@Param		sizeID	path	int	true	"Size ID"
//	@Success	204
//	@Failure	404	{object}	error
//	@Security	ApiKeyAuth
//	@Router		/brands/{brandID}/sizes/{sizeID} [delete]
func (app *application) deleteBrandSizeHandler(w http.ResponseWriter, r *http.Request) {
	brandID, err := app.brandIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	sizeID, err := app.sizeIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	size, err := app.store.GetBrandSizeByID(r.Context(), sizeID)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	if size.BrandID != brandID {
		app.notFoundResponse(w, r, catalog.ErrSizeNotFound)
		return
	}

	if err := app.store.DeleteBrandSize(r.Context(), sizeID); err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
