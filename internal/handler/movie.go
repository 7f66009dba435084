package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/service"
)

// MovieHandler serves the add/update/delete movie forms and their
// submissions.
type MovieHandler struct {
	svc    *service.MovieListService
	render *Renderer
	logger *slog.Logger
}

// NewMovieHandler creates a MovieHandler.
func NewMovieHandler(svc *service.MovieListService, render *Renderer, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{svc: svc, render: render, logger: logger}
}

func (h *MovieHandler) userID(r *http.Request) (int, error) {
	return parseID(chi.URLParam(r, "id"))
}

func (h *MovieHandler) movieID(r *http.Request) (int, error) {
	return parseID(chi.URLParam(r, "movieID"))
}

// HandleAddMovieForm serves the add-movie form for a user.
//
// HTTP: GET /users/{id}/add_movie
func (h *MovieHandler) HandleAddMovieForm(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFoundPage(w)
			return
		}
		writeError(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "add_movie", map[string]any{
		"Title":    "Add Movie",
		"UserID":   user.ID,
		"UserName": user.Name,
	})
}

// HandleAddMovie creates a movie from the submitted form, enriching it via
// the metadata lookup.
//
// HTTP: POST /users/{id}/add_movie
// Errors: 404 unknown user, 400 missing movie name, 500 store failure.
// A failed metadata lookup is not an error — the movie is created bare.
func (h *MovieHandler) HandleAddMovie(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "user not found",
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "no movie data provided",
		})
		return
	}

	if _, err := h.svc.AddMovie(r.Context(), userID, r.PostFormValue("name")); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/user_movies/%d", userID), http.StatusFound)
}

// HandleUpdateMovieForm serves the update form pre-filled with the movie.
//
// HTTP: GET /users/{id}/update_movie/{movieID}
func (h *MovieHandler) HandleUpdateMovieForm(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}
	movieID, err := h.movieID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}

	movie, err := h.svc.GetUserMovie(r.Context(), userID, movieID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFoundPage(w)
			return
		}
		writeError(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "update_movie", map[string]any{
		"Title":  "Update Movie",
		"UserID": userID,
		"Movie":  movie,
	})
}

// HandleUpdateMovie applies the submitted fields to the movie. Empty form
// fields keep their current values.
//
// HTTP: PUT /users/{id}/update_movie/{movieID}
func (h *MovieHandler) HandleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	h.updateMovie(w, r)
}

// HandleUpdateMovieOverride handles browser form posts to the update route.
// HTML forms cannot send PUT, so the form carries a hidden _method field;
// a POST without it gets 405.
//
// HTTP: POST /users/{id}/update_movie/{movieID}
func (h *MovieHandler) HandleUpdateMovieOverride(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostFormValue("_method") != "PUT" {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error:   "method_not_allowed",
			Message: "use PUT (or POST with _method=PUT) to update a movie",
		})
		return
	}
	h.updateMovie(w, r)
}

func (h *MovieHandler) updateMovie(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}
	movieID, err := h.movieID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid form data",
		})
		return
	}

	upd := service.MovieUpdate{
		Name:     r.PostFormValue("name"),
		Director: r.PostFormValue("director"),
		Year:     r.PostFormValue("year"),
		Rating:   r.PostFormValue("rating"),
	}

	if err := h.svc.UpdateMovie(r.Context(), userID, movieID, upd); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/user_movies/%d", userID), http.StatusFound)
}

// HandleDeleteMovieConfirm serves the delete confirmation page.
//
// HTTP: GET /users/{id}/delete_movie/{movieID}
// 404 when the user or the movie is absent.
func (h *MovieHandler) HandleDeleteMovieConfirm(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}
	movieID, err := h.movieID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFoundPage(w)
			return
		}
		writeError(w, err)
		return
	}

	movie, err := h.svc.GetUserMovie(r.Context(), userID, movieID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFoundPage(w)
			return
		}
		writeError(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "delete_movie", map[string]any{
		"Title":  "Delete Movie",
		"User":   user,
		"UserID": userID,
		"Movie":  movie,
	})
}

// HandleDeleteMovie removes the movie from the user's list.
//
// HTTP: POST /users/{id}/delete_movie/{movieID}
func (h *MovieHandler) HandleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}
	movieID, err := h.movieID(r)
	if err != nil {
		h.render.NotFoundPage(w)
		return
	}

	if err := h.svc.DeleteMovie(r.Context(), userID, movieID); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/user_movies/%d", userID), http.StatusFound)
}
