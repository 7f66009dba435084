package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/service"
)

// UserHandler serves the landing page, the user list, the add-user form, and
// the per-user movie pages.
type UserHandler struct {
	svc    *service.MovieListService
	render *Renderer
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.MovieListService, render *Renderer, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, render: render, logger: logger}
}

// HandleHome serves the landing page.
//
// HTTP: GET /
func (h *UserHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "home", map[string]any{
		"Title": "MovieWeb",
	})
}

// HandleListUsers lists all user names.
//
// HTTP: GET /users
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "users", map[string]any{
		"Title": "Users",
		"Users": names,
	})
}

// HandleUserMovies shows a user's movie list.
//
// HTTP: GET /user/{id}/movies
//
// A non-numeric id never identifies a user, so it gets the 404 page, same as
// an unknown numeric id.
func (h *UserHandler) HandleUserMovies(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}

	movies, err := h.svc.UserMovies(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFoundPage(w)
			return
		}
		writeError(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "user_movies", map[string]any{
		"Title":  "Movies",
		"UserID": id,
		"Movies": movies,
	})
}

// HandleUserPage shows a user's record together with their movie list.
//
// HTTP: GET /user_movies/{id}
//
// Unlike the route above, a malformed id here is a client error: 400 with a
// JSON payload, not a 404 page.
func (h *UserHandler) HandleUserPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "user id must be a positive integer",
		})
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFoundPage(w)
			return
		}
		writeError(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "user_movies", map[string]any{
		"Title":  user.Name + "'s Movies",
		"User":   user,
		"UserID": user.ID,
		"Movies": user.Movies,
	})
}

// HandleAddUserForm serves the add-user form.
//
// HTTP: GET /add_user
func (h *UserHandler) HandleAddUserForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "add_user", map[string]any{
		"Title": "Add User",
	})
}

// HandleAddUser creates a user from the submitted form.
//
// HTTP: POST /add_user
// Errors: 400 missing name, 409 duplicate name.
func (h *UserHandler) HandleAddUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid form data",
		})
		return
	}

	if _, err := h.svc.CreateUser(r.Context(), r.PostFormValue("name")); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, "/users", http.StatusFound)
}

// HandleNotFound renders the 404 page for unmatched routes.
func (h *UserHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render.NotFoundPage(w)
}
