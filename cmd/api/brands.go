package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"facade/internal/catalog"
)

type brandPayload struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (app *application) brandIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "brandID"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid brand ID")
	}
	return id, nil
}

// pageParams reads pageNumber/pageSize for the simple reference listings.
func pageParams(r *http.Request) (limit, offset int) {
	page := 1
	size := catalog.DefaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("pageNumber")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && v > 0 && v <= catalog.MaxPageSize {
		size = v
	}
	return size, (page - 1) * size
}

// listBrandsHandler godoc
//
//	@Summary	List brands
//	@Tags		brands
//	@Produce	json
//	@Param		pageNumber	query		int	false	"Page, 1-based"
//	@Param		pageSize	query		int	false	"Items per page, max 100"
//	@Success	200			{array}		catalog.Brand
//	@Router		/brands [get]
func (app *application) listBrandsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	brands, total, err := app.store.ListBrands(r.Context(), limit, offset)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{
		"items":       brands,
		"total_count": total,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getBrandHandler godoc
//
//	@Summary	Get a brand
//	@Tags		brands
//	@Produce	json
//	@Param		brandID	path		int	true	"Brand ID"
//	@Success	200		{object}	catalog.Brand
//	@Failure	404		{object}	error
//	@Router		/brands/{brandID} [get]
func (app *application) getBrandHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.brandIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	brand, err := app.store.GetBrandByID(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, brand); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createBrandHandler godoc
//
//	@Summary	Create a brand
//	@Tags		brands
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		brandPayload	true	"Brand payload"
//	@Success	201		{object}	catalog.Brand
//	@Failure	400		{object}	error
//	@Failure	409		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/brands [post]
func (app *application) createBrandHandler(w http.ResponseWriter, r *http.Request) {
	var payload brandPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	brand, err := app.store.CreateBrand(r.Context(), &catalog.Brand{Name: strings.TrimSpace(payload.Name)})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, brand); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateBrandHandler godoc
//
//	@Summary	Rename a brand
//	@Tags		brands
//	@Accept		json
//	@Produce	json
//	@Param		brandID	path		int				true	"Brand ID"
//	@Param		payload	body		brandPayload	true	"Brand payload"
//	@Success	200		{object}	catalog.Brand
//	@Failure	404		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/brands/{brandID} [put]
func (app *application) updateBrandHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.brandIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload brandPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	brand := &catalog.Brand{ID: id, Name: strings.TrimSpace(payload.Name)}
	if err := app.store.UpdateBrand(r.Context(), brand); err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, brand); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteBrandHandler godoc
//
//	@Summary	Delete a brand
//	@Tags		brands
//	@Param		brandID	path	int	true	"Brand ID"
//	@Success	204
//	@Failure	404	{object}	error
//	@Failure	409	{object}	error	"Brand still has products"
//	@Security	ApiKeyAuth
//	@Router		/brands/{brandID} [delete]
func (app *application) deleteBrandHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.brandIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.DeleteBrand(r.Context(), id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
