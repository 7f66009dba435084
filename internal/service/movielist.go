// Package service contains the business logic layer: validation, the
// duplicate-user rule, and metadata enrichment. It knows nothing about HTTP —
// handlers translate its domain errors to status codes — and reaches storage
// only through the repository.Store interface.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/metadata"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// MaxNameLength bounds user and movie names. The store has no limits of its
// own, so this is the only thing stopping a megabyte-long form field.
const MaxNameLength = 200

// MovieUpdate carries the updatable movie fields. Empty fields mean "keep the
// current value". The poster is not updatable, so it has no field here.
type MovieUpdate struct {
	Name     string
	Director string
	Year     string
	Rating   string
}

// MovieListService handles users and their movie lists.
type MovieListService struct {
	store  repository.Store
	lookup metadata.Lookup
	logger *slog.Logger
}

// NewMovieListService wires the service to a store and a metadata lookup.
func NewMovieListService(store repository.Store, lookup metadata.Lookup, logger *slog.Logger) *MovieListService {
	return &MovieListService{
		store:  store,
		lookup: lookup,
		logger: logger,
	}
}

// ListUsers returns all user names in storage order.
func (s *MovieListService) ListUsers(ctx context.Context) ([]string, error) {
	names, err := s.store.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return names, nil
}

// GetUser returns the user with the given id.
func (s *MovieListService) GetUser(ctx context.Context, id int) (*model.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// UserMovies returns the movie list for the given user.
func (s *MovieListService) UserMovies(ctx context.Context, id int) ([]model.Movie, error) {
	return s.store.GetUserMovies(ctx, id)
}

// CreateUser validates the name, rejects duplicates, and creates the user.
//
// The duplicate check lives here rather than in the store: the store's
// AddUser is a pure append, and name uniqueness is a business rule. Returns
// apperror.ErrConflict when the name is already taken.
func (s *MovieListService) CreateUser(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "user name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("user name must be %d characters or less", MaxNameLength))
	}

	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking existing users: %w", err)
	}
	for _, n := range existing {
		if n == name {
			return nil, apperror.Conflict("user", name)
		}
	}

	user, err := s.store.AddUser(ctx, name)
	if err != nil {
		s.logger.Error("failed to create user",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.Int("id", user.ID),
		slog.String("name", user.Name),
	)
	return user, nil
}

// AddMovie adds a movie to the user's list, enriched with OMDB metadata.
//
// The lookup is best-effort: when OMDB cannot find the title, or the call
// fails outright, the movie is still created with just the supplied name.
// A lookup failure is never surfaced to the caller as an error.
func (s *MovieListService) AddMovie(ctx context.Context, userID int, name string) (*model.Movie, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "movie name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("movie name must be %d characters or less", MaxNameLength))
	}

	data := repository.MovieData{Name: name}

	res, err := s.lookup.LookupMovie(ctx, name)
	switch {
	case err != nil:
		s.logger.Warn("metadata lookup failed, adding movie without details",
			slog.String("title", name),
			slog.String("error", err.Error()),
		)
	case res.Found:
		data.Poster = res.Poster
		data.Director = res.Director
		data.Year = res.Year
		data.Rating = res.Rating
	default:
		s.logger.Info("no metadata found for title", slog.String("title", name))
	}

	movie, err := s.store.AddMovie(ctx, userID, data)
	if err != nil {
		if apperrIs(err) {
			return nil, err
		}
		s.logger.Error("failed to add movie",
			slog.Int("user_id", userID),
			slog.String("title", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding movie: %w", err)
	}

	s.logger.Info("movie added",
		slog.Int("user_id", userID),
		slog.Int("movie_id", movie.ID),
		slog.String("name", movie.Name),
	)
	return movie, nil
}

// GetUserMovie returns one movie from the user's list.
func (s *MovieListService) GetUserMovie(ctx context.Context, userID, movieID int) (*model.Movie, error) {
	return s.store.GetUserMovie(ctx, userID, movieID)
}

// UpdateMovie applies the supplied non-empty fields to the movie.
func (s *MovieListService) UpdateMovie(ctx context.Context, userID, movieID int, upd MovieUpdate) error {
	data := repository.MovieData{
		Name:     strings.TrimSpace(upd.Name),
		Director: strings.TrimSpace(upd.Director),
		Year:     strings.TrimSpace(upd.Year),
		Rating:   strings.TrimSpace(upd.Rating),
	}
	if len(data.Name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("movie name must be %d characters or less", MaxNameLength))
	}

	if err := s.store.UpdateMovie(ctx, userID, movieID, data); err != nil {
		return err
	}

	s.logger.Info("movie updated",
		slog.Int("user_id", userID),
		slog.Int("movie_id", movieID),
	)
	return nil
}

// DeleteMovie removes the movie from the user's list.
func (s *MovieListService) DeleteMovie(ctx context.Context, userID, movieID int) error {
	if err := s.store.DeleteMovie(ctx, userID, movieID); err != nil {
		return err
	}

	s.logger.Info("movie deleted",
		slog.Int("user_id", userID),
		slog.Int("movie_id", movieID),
	)
	return nil
}

// apperrIs reports whether err is one of our typed domain errors, which are
// already meaningful to callers and should not be double-wrapped or logged
// as store failures.
func apperrIs(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
