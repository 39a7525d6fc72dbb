package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"facade/internal/catalog"
)

type categoryPayload struct {
	Name     string `json:"name" validate:"required,max=100"`
	IsActive bool   `json:"is_active"`
}

func (app *application) categoryIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid category ID")
	}
	return id, nil
}

// listCategoriesHandler godoc
//
//	@Summary	List categories
//	@Tags		categories
//	@Produce	json
//	@Param		pageNumber	query		int	false	"Page, 1-based"
//	@Param		pageSize	query		int	false	"Items per page, max 100"
//	@Success	200			{array}		catalog.Category
//	@Router		/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	categories, total, err := app.store.ListCategories(r.Context(), limit, offset)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{
		"items":       categories,
		"total_count": total,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getCategoryHandler godoc
//
//	@Summary	Get a category
//	@Tags		categories
//	@Produce	json
//	@Param		categoryID	path		int	true	"Category ID"
//	@Success	200			{object}	catalog.Category
//	@Failure	404			{object}	error
//	@Router		/categories/{categoryID} [get]
func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.categoryIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category, err := app.store.GetCategoryByID(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createCategoryHandler godoc
//
//	@Summary	Create a category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		categoryPayload	true	"Category payload"
//	@Success	201		{object}	catalog.Category
//	@Failure	400		{object}	error
//	@Failure	409		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/categories [post]
func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category, err := app.store.CreateCategory(r.Context(), &catalog.Category{
		Name:     strings.TrimSpace(payload.Name),
		IsActive: payload.IsActive,
	})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateCategoryHandler godoc
//
//	@Summary	Update a category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		categoryID	path		int				true	"Category ID"
//	@Param		payload		body		categoryPayload	true	"Category payload"
//	@Success	200			{object}	catalog.Category
//	@Failure	404			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/categories/{categoryID} [put]
func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.categoryIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload categoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category := &catalog.Category{
		ID:       id,
		Name:     strings.TrimSpace(payload.Name),
		IsActive: payload.IsActive,
	}
	if err := app.store.UpdateCategory(r.Context(), category); err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCategoryHandler godoc
//
//	@Summary	Delete a category
//	@Tags		categories
//	@Param		categoryID	path	int	true	"Category ID"
//	@Success	204
//	@Failure	404	{object}	error
//	@Failure	409	{object}	error	"Category still has products"
//	@Security	ApiKeyAuth
//	@Router		/categories/{categoryID} [delete]
func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.categoryIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.DeleteCategory(r.Context(), id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
