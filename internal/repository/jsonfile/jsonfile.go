// Package jsonfile implements the repository.Store interface on top of a
// single flat JSON document.
//
// The whole store is one file holding a JSON array of users. Every operation
// reads and decodes the full array; mutating operations change it in memory
// and write the full array back. There is no in-memory cache between calls —
// each call re-reads from disk, so a completed write is visible to the next
// call within the process.
//
// Two hardenings over the naive read-modify-write cycle:
//   - a single-writer mutex serialises all operations, so two concurrent
//     mutations cannot clobber each other's writes
//   - writes go to a temp file in the same directory and are renamed into
//     place, so a crash mid-write never leaves a truncated document
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// Store is the JSON-file backed repository. The zero value is not usable;
// create one with New.
type Store struct {
	path string
	mu   sync.Mutex
}

// New opens (or initialises) the store file at path.
//
// A missing file is created holding an empty array, mirroring how an embedded
// database creates its schema on first open. A file that exists but does not
// decode as a user array is a fatal error — better to refuse to start than to
// overwrite someone's data with "[]" on the first write.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.save([]model.User{}); err != nil {
			return nil, fmt.Errorf("jsonfile: initialising store: %w", err)
		}
		return s, nil
	}

	if _, err := s.load(); err != nil {
		return nil, fmt.Errorf("jsonfile: opening store: %w", err)
	}
	return s, nil
}

// load reads and decodes the full document. Callers must hold mu (or be New).
func (s *Store) load() ([]model.User, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return users, nil
}

// save writes the full document atomically: marshal, write to a temp file in
// the same directory, fsync, rename over the real file. Rename within one
// filesystem is atomic, so readers see either the old or the new document.
func (s *Store) save(users []model.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// ListUsers returns all user names in storage order.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names, nil
}

// GetUserByID returns the user with the given id, or apperror.ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

// GetUserMovies returns the user's movie list in insertion order.
func (s *Store) GetUserMovies(ctx context.Context, id int) ([]model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			movies := make([]model.Movie, len(users[i].Movies))
			copy(movies, users[i].Movies)
			return movies, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

// AddUser appends a new user with id = current user count + 1 and an empty
// movie list, persists, and returns the created record. Name uniqueness is
// the caller's responsibility (the service layer checks it).
func (s *Store) AddUser(ctx context.Context, name string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	user := model.User{
		ID:     len(users) + 1,
		Name:   name,
		Movies: []model.Movie{},
	}
	users = append(users, user)

	if err := s.save(users); err != nil {
		return nil, err
	}
	return &user, nil
}

// MaxMovieID returns the highest movie id anywhere in the store, or 0 when
// the store has no movies.
func (s *Store) MaxMovieID(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return 0, err
	}
	return maxMovieID(users), nil
}

func maxMovieID(users []model.User) int {
	max := 0
	for _, u := range users {
		for _, m := range u.Movies {
			if m.ID > max {
				max = m.ID
			}
		}
	}
	return max
}

// AddMovie appends a movie to the given user's list and persists.
//
// Movie identity is keyed by name across the whole store: if any user already
// has a movie with the same name, the new entry reuses that movie's id (the
// same id may then live under several users). Otherwise the new id is the
// store-wide maximum + 1 — which means 1 for an empty store.
func (s *Store) AddMovie(ctx context.Context, userID int, data repository.MovieData) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	target := -1
	for i := range users {
		if users[i].ID == userID {
			target = i
			break
		}
	}
	if target == -1 {
		return nil, apperror.NotFound("user", userID)
	}

	id := 0
	for _, u := range users {
		for _, m := range u.Movies {
			if m.Name == data.Name {
				id = m.ID
				break
			}
		}
		if id != 0 {
			break
		}
	}
	if id == 0 {
		id = maxMovieID(users) + 1
	}

	movie := model.Movie{
		ID:       id,
		Name:     data.Name,
		Poster:   data.Poster,
		Director: data.Director,
		Year:     data.Year,
		Rating:   data.Rating,
	}
	users[target].Movies = append(users[target].Movies, movie)

	if err := s.save(users); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetUserMovie returns the movie with movieID from userID's list.
func (s *Store) GetUserMovie(ctx context.Context, userID, movieID int) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID != userID {
			continue
		}
		for _, m := range users[i].Movies {
			if m.ID == movieID {
				movie := m
				return &movie, nil
			}
		}
	}
	return nil, apperror.NotFound("movie", movieID)
}

// UpdateMovie replaces name/director/year/rating on the (userID, movieID)
// entry for every field the caller supplied a non-empty value for; empty
// fields keep their current value. The poster is never touched. Returns
// apperror.ErrNotFound when the pair does not exist, rather than reporting
// success for a write that changed nothing.
func (s *Store) UpdateMovie(ctx context.Context, userID, movieID int, data repository.MovieData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].ID != userID {
			continue
		}
		for j := range users[i].Movies {
			m := &users[i].Movies[j]
			if m.ID != movieID {
				continue
			}
			if data.Name != "" {
				m.Name = data.Name
			}
			if data.Director != "" {
				m.Director = data.Director
			}
			if data.Year != "" {
				m.Year = data.Year
			}
			if data.Rating != "" {
				m.Rating = data.Rating
			}
			return s.save(users)
		}
	}
	return apperror.NotFound("movie", movieID)
}

// DeleteMovie removes the first movie with movieID from userID's list and
// persists. Other users keeping an entry with the same id are unaffected.
// Returns apperror.ErrNotFound when the pair does not exist.
func (s *Store) DeleteMovie(ctx context.Context, userID, movieID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].ID != userID {
			continue
		}
		for j, m := range users[i].Movies {
			if m.ID == movieID {
				users[i].Movies = append(users[i].Movies[:j], users[i].Movies[j+1:]...)
				return s.save(users)
			}
		}
	}
	return apperror.NotFound("movie", movieID)
}
