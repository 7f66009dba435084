package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// ListUsers returns all user names in creation order.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT name FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// GetUserByID returns the user with their full movie list.
func (s *Store) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	var user model.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	movies, err := s.userMovies(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Movies = movies
	return &user, nil
}

// GetUserMovies returns the user's movie list in insertion order.
func (s *Store) GetUserMovies(ctx context.Context, id int) ([]model.Movie, error) {
	if err := s.userExists(ctx, id); err != nil {
		return nil, err
	}
	return s.userMovies(ctx, id)
}

func (s *Store) userExists(ctx context.Context, id int) error {
	var one int
	err := s.conn.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("user", id)
	}
	if err != nil {
		return fmt.Errorf("sqlite: checking user %d: %w", id, err)
	}
	return nil
}

// userMovies loads one user's list. rowid order is insertion order.
func (s *Store) userMovies(ctx context.Context, userID int) ([]model.Movie, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT movie_id, name, poster, director, year, rating
		FROM movies WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing movies for user %d: %w", userID, err)
	}
	defer rows.Close()

	movies := []model.Movie{}
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Name, &m.Poster, &m.Director, &m.Year, &m.Rating); err != nil {
			return nil, fmt.Errorf("sqlite: scanning movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating movies: %w", err)
	}
	return movies, nil
}

// AddUser inserts a user with id = current user count + 1.
func (s *Store) AddUser(ctx context.Context, name string) (*model.User, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return nil, fmt.Errorf("sqlite: counting users: %w", err)
	}

	user := model.User{ID: count + 1, Name: name, Movies: []model.Movie{}}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, name) VALUES (?, ?)`, user.ID, user.Name,
	); err != nil {
		return nil, fmt.Errorf("sqlite: inserting user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing user insert: %w", err)
	}
	return &user, nil
}

// MaxMovieID returns the highest movie id in the store, or 0 when there are
// no movies.
func (s *Store) MaxMovieID(ctx context.Context) (int, error) {
	var max int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(movie_id), 0) FROM movies`,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("sqlite: finding max movie id: %w", err)
	}
	return max, nil
}

// AddMovie appends a movie to the user's list, reusing the id of any
// same-named movie anywhere in the store, else assigning max+1.
func (s *Store) AddMovie(ctx context.Context, userID int, data repository.MovieData) (*model.Movie, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking user %d: %w", userID, err)
	}

	var id int
	err = tx.QueryRowContext(ctx,
		`SELECT movie_id FROM movies WHERE name = ? ORDER BY rowid LIMIT 1`, data.Name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(movie_id), 0) + 1 FROM movies`,
		).Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: assigning movie id: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("sqlite: looking up movie by name: %w", err)
	}

	movie := model.Movie{
		ID:       id,
		Name:     data.Name,
		Poster:   data.Poster,
		Director: data.Director,
		Year:     data.Year,
		Rating:   data.Rating,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO movies (user_id, movie_id, name, poster, director, year, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, movie.ID, movie.Name, movie.Poster, movie.Director, movie.Year, movie.Rating,
	); err != nil {
		return nil, fmt.Errorf("sqlite: inserting movie: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing movie insert: %w", err)
	}
	return &movie, nil
}

// GetUserMovie returns the movie with movieID from userID's list.
func (s *Store) GetUserMovie(ctx context.Context, userID, movieID int) (*model.Movie, error) {
	var m model.Movie
	err := s.conn.QueryRowContext(ctx, `
		SELECT movie_id, name, poster, director, year, rating
		FROM movies WHERE user_id = ? AND movie_id = ?
		ORDER BY rowid LIMIT 1`, userID, movieID,
	).Scan(&m.ID, &m.Name, &m.Poster, &m.Director, &m.Year, &m.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("movie", movieID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting movie %d for user %d: %w", movieID, userID, err)
	}
	return &m, nil
}

// UpdateMovie replaces the supplied non-empty fields on the (userID, movieID)
// entry; empty fields keep their current value and the poster is never
// touched. Returns apperror.ErrNotFound when the pair does not exist.
func (s *Store) UpdateMovie(ctx context.Context, userID, movieID int, data repository.MovieData) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE movies SET
			name     = CASE WHEN ? <> '' THEN ? ELSE name END,
			director = CASE WHEN ? <> '' THEN ? ELSE director END,
			year     = CASE WHEN ? <> '' THEN ? ELSE year END,
			rating   = CASE WHEN ? <> '' THEN ? ELSE rating END
		WHERE user_id = ? AND movie_id = ?`,
		data.Name, data.Name,
		data.Director, data.Director,
		data.Year, data.Year,
		data.Rating, data.Rating,
		userID, movieID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating movie %d for user %d: %w", movieID, userID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update result: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("movie", movieID)
	}
	return nil
}

// DeleteMovie removes the first matching entry from the user's list only.
func (s *Store) DeleteMovie(ctx context.Context, userID, movieID int) error {
	res, err := s.conn.ExecContext(ctx, `
		DELETE FROM movies WHERE rowid = (
			SELECT rowid FROM movies
			WHERE user_id = ? AND movie_id = ?
			ORDER BY rowid LIMIT 1
		)`, userID, movieID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting movie %d for user %d: %w", movieID, userID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete result: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("movie", movieID)
	}
	return nil
}
