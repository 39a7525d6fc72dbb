package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"facade/internal/catalog"
)

func (app *application) productIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid product ID")
	}
	return id, nil
}

// listProductsHandler godoc
//
//	@Summary		List products
//	@Description	Returns a filtered, sorted, paginated product listing
//	@Tags			products
//	@Produce		json
//	@Param			brandId			query		int		false	"Filter by brand"
//	@Param			categoryId		query		int		false	"Filter by category"
//	@Param			minPrice		query		int		false	"Minimum price in cents"
//	@Param			maxPrice		query		int		false	"Maximum price in cents"
//	@Param			brandSizeId		query		int		false	"Only products with an active variant in this size"
//	@Param			sortBy			query		string	false	"id, name, price or brand"
//	@Param			sortDescending	query		bool	false	"Reverse the sort order"
//	@Param			pageNumber		query		int		false	"Page, 1-based"
//	@Param			pageSize		query		int		false	"Items per page, max 100"
//	@Success		200				{object}	catalog.ProductPage
//	@Failure		400				{object}	error
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.ParseProductFilter(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	page, err := app.catalogSvc.ListProducts(r.Context(), filter)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, page); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getProductHandler godoc
//
//	@Summary		Get a product
//	@Tags			products
//	@Produce		json
//	@Param			productID	path		int	true	"Product ID"
//	@Success		200			{object}	catalog.ProductSummary
//	@Failure		404			{object}	error
//	@Router			/products/{productID} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.productIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.catalogSvc.GetProduct(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createProductHandler godoc
//
//	@Summary		Create a product
//	@Description	Creates a product with variants and media; inline media payloads are uploaded to object storage
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		catalog.CreateProductInput	true	"Product payload"
//	@Success		201		{object}	catalog.ProductSummary
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateProductInput
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.catalogSvc.CreateProduct(r.Context(), in)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProductHandler godoc
//
//	@Summary		Update a product
//	@Description	Replaces the product's fields, variant list and media list with the submitted state
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			productID	path		int							true	"Product ID"
//	@Param			payload		body		catalog.UpdateProductInput	true	"Desired product state"
//	@Success		200			{object}	catalog.ProductSummary
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products/{productID} [put]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.productIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var in catalog.UpdateProductInput
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.catalogSvc.UpdateProduct(r.Context(), id, in)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listProductMediaHandler godoc
//
//	@Summary	List a product's stored media
//	@Tags		products
//	@Produce	json
//	@Param		productID	path		int	true	"Product ID"
//	@Success	200			{array}		catalog.ProductMedia
//	@Failure	404			{object}	error
//	@Router		/products/{productID}/media [get]
func (app *application) listProductMediaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.productIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ok, err := app.store.ProductExists(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	if !ok {
		app.notFoundResponse(w, r, catalog.ErrProductNotFound)
		return
	}

	rows, err := app.store.ListProductMedia(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, rows); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProductMediaHandler godoc
//
//	@Summary		Reconcile product media
//	@Description	Converges the product's stored media toward the submitted list; URLs pass through, data URIs are uploaded, omitted rows are removed
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			productID	path		int					true	"Product ID"
//	@Param			payload		body		[]catalog.MediaInput	true	"Desired media list"
//	@Success		200			{array}		catalog.ProductMedia
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products/{productID}/media [put]
func (app *application) updateProductMediaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.productIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var entries []catalog.MediaInput
	if err := readJSON(w, r, &entries); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rows, err := app.catalogSvc.UpdateProductMedia(r.Context(), id, entries)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, rows); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteProductHandler godoc
//
//	@Summary		Delete a product
//	@Description	Removes the product with its variants and media; stored objects are cleaned up asynchronously
//	@Tags			products
//	@Param			productID	path	int	true	"Product ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/products/{productID} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.productIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.catalogSvc.DeleteProduct(r.Context(), id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
