package repository

import (
	"context"

	"github.com/sakif/movielist/internal/model"
)

// MovieData carries the fields a caller supplies when adding or updating a
// movie. On update, empty fields mean "keep the current value"; Poster is
// only honoured on add (posters are not updatable).
type MovieData struct {
	Name     string
	Poster   string
	Director string
	Year     string
	Rating   string
}

// Store is the data-access contract over the user/movie document.
//
// Implementations: jsonfile (flat JSON document, the canonical backend) and
// sqlite (embedded database, selected via STORE_BACKEND=sqlite). Both follow
// the same id rules: user ids are count+1; movie ids are unique store-wide,
// and a movie whose name matches an existing movie anywhere in the store
// reuses that movie's id.
type Store interface {
	ListUsers(ctx context.Context) ([]string, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	GetUserMovies(ctx context.Context, id int) ([]model.Movie, error)
	AddUser(ctx context.Context, name string) (*model.User, error)
	MaxMovieID(ctx context.Context) (int, error)
	AddMovie(ctx context.Context, userID int, data MovieData) (*model.Movie, error)
	GetUserMovie(ctx context.Context, userID, movieID int) (*model.Movie, error)
	UpdateMovie(ctx context.Context, userID, movieID int, data MovieData) error
	DeleteMovie(ctx context.Context, userID, movieID int) error
}
