package main

import (
	"net/http"
	"strings"
)

type updateProfilePayload struct {
	FullName  string  `json:"full_name" validate:"required,max=120"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// getCurrentUserHandler godoc
//
//	@Summary	Get the authenticated user's profile
//	@Tags		users
//	@Produce	json
//	@Success	200	{object}	users.User
//	@Security	ApiKeyAuth
//	@Router		/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateCurrentUserHandler godoc
//
//	@Summary	Update the authenticated user's profile
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		updateProfilePayload	true	"Profile fields"
//	@Success	200		{object}	users.User
//	@Failure	400		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/users/me [put]
func (app *application) updateCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload updateProfilePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updated, err := app.users.UpdateProfile(r.Context(), user.ID, strings.TrimSpace(payload.FullName), payload.AvatarURL)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}
