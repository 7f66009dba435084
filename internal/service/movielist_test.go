package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/metadata"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// mockStore is an in-memory repository.Store implementing the same id rules
// as the real backends, so service tests run without touching disk.
type mockStore struct {
	users []model.User
}

func (m *mockStore) ListUsers(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.users))
	for _, u := range m.users {
		names = append(names, u.Name)
	}
	return names, nil
}

func (m *mockStore) GetUserByID(_ context.Context, id int) (*model.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (m *mockStore) GetUserMovies(_ context.Context, id int) ([]model.Movie, error) {
	u, err := m.GetUserByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	return u.Movies, nil
}

func (m *mockStore) AddUser(_ context.Context, name string) (*model.User, error) {
	u := model.User{ID: len(m.users) + 1, Name: name, Movies: []model.Movie{}}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *mockStore) MaxMovieID(_ context.Context) (int, error) {
	max := 0
	for _, u := range m.users {
		for _, mv := range u.Movies {
			if mv.ID > max {
				max = mv.ID
			}
		}
	}
	return max, nil
}

func (m *mockStore) AddMovie(_ context.Context, userID int, data repository.MovieData) (*model.Movie, error) {
	target := -1
	for i := range m.users {
		if m.users[i].ID == userID {
			target = i
		}
	}
	if target == -1 {
		return nil, apperror.NotFound("user", userID)
	}

	id := 0
	for _, u := range m.users {
		for _, mv := range u.Movies {
			if mv.Name == data.Name {
				id = mv.ID
			}
		}
	}
	if id == 0 {
		max, _ := m.MaxMovieID(context.Background())
		id = max + 1
	}

	movie := model.Movie{
		ID: id, Name: data.Name, Poster: data.Poster,
		Director: data.Director, Year: data.Year, Rating: data.Rating,
	}
	m.users[target].Movies = append(m.users[target].Movies, movie)
	return &movie, nil
}

func (m *mockStore) GetUserMovie(_ context.Context, userID, movieID int) (*model.Movie, error) {
	for i := range m.users {
		if m.users[i].ID != userID {
			continue
		}
		for _, mv := range m.users[i].Movies {
			if mv.ID == movieID {
				movie := mv
				return &movie, nil
			}
		}
	}
	return nil, apperror.NotFound("movie", movieID)
}

func (m *mockStore) UpdateMovie(_ context.Context, userID, movieID int, data repository.MovieData) error {
	for i := range m.users {
		if m.users[i].ID != userID {
			continue
		}
		for j := range m.users[i].Movies {
			mv := &m.users[i].Movies[j]
			if mv.ID != movieID {
				continue
			}
			if data.Name != "" {
				mv.Name = data.Name
			}
			if data.Director != "" {
				mv.Director = data.Director
			}
			if data.Year != "" {
				mv.Year = data.Year
			}
			if data.Rating != "" {
				mv.Rating = data.Rating
			}
			return nil
		}
	}
	return apperror.NotFound("movie", movieID)
}

func (m *mockStore) DeleteMovie(_ context.Context, userID, movieID int) error {
	for i := range m.users {
		if m.users[i].ID != userID {
			continue
		}
		for j, mv := range m.users[i].Movies {
			if mv.ID == movieID {
				m.users[i].Movies = append(m.users[i].Movies[:j], m.users[i].Movies[j+1:]...)
				return nil
			}
		}
	}
	return apperror.NotFound("movie", movieID)
}

// fakeLookup scripts the metadata collaborator.
type fakeLookup struct {
	result *metadata.Result
	err    error
	calls  int
}

func (f *fakeLookup) LookupMovie(_ context.Context, title string) (*metadata.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestService(t *testing.T, lookup metadata.Lookup) (*MovieListService, *mockStore) {
	t.Helper()
	store := &mockStore{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if lookup == nil {
		lookup = &fakeLookup{result: &metadata.Result{Found: false}}
	}
	return NewMovieListService(store, lookup, logger), store
}

func TestCreateUser_Success(t *testing.T) {
	svc, _ := newTestService(t, nil)

	user, err := svc.CreateUser(context.Background(), "  Alice  ")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID != 1 {
		t.Errorf("ID = %d, want 1", user.ID)
	}
	if user.Name != "Alice" {
		t.Errorf("Name = %q, want trimmed %q", user.Name, "Alice")
	}
}

func TestCreateUser_EmptyName(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.CreateUser(context.Background(), "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CreateUser() error = %v, want ErrValidation", err)
	}
}

func TestCreateUser_DuplicateName(t *testing.T) {
	svc, store := newTestService(t, nil)

	if _, err := svc.CreateUser(context.Background(), "Alice"); err != nil {
		t.Fatalf("first CreateUser() error = %v", err)
	}

	_, err := svc.CreateUser(context.Background(), "Alice")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrConflict", err)
	}

	// The conflict must not have touched the store.
	if len(store.users) != 1 {
		t.Errorf("store has %d users after rejected duplicate, want 1", len(store.users))
	}
}

func TestAddMovie_EnrichedFromMetadata(t *testing.T) {
	lookup := &fakeLookup{result: &metadata.Result{
		Found:    true,
		Poster:   "http://example.com/br.jpg",
		Director: "Ridley Scott",
		Year:     "1982",
		Rating:   "8.1",
	}}
	svc, _ := newTestService(t, lookup)

	user, err := svc.CreateUser(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	movie, err := svc.AddMovie(context.Background(), user.ID, "Blade Runner")
	if err != nil {
		t.Fatalf("AddMovie() error = %v", err)
	}

	if lookup.calls != 1 {
		t.Errorf("lookup called %d times, want 1", lookup.calls)
	}
	if movie.Director != "Ridley Scott" || movie.Year != "1982" || movie.Rating != "8.1" {
		t.Errorf("movie not enriched: %+v", movie)
	}
}

func TestAddMovie_LookupFailureStillCreates(t *testing.T) {
	lookup := &fakeLookup{err: fmt.Errorf("omdb: connection refused")}
	svc, _ := newTestService(t, lookup)

	user, err := svc.CreateUser(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// A failed lookup degrades to a bare movie, never a request error.
	movie, err := svc.AddMovie(context.Background(), user.ID, "Obscure Film")
	if err != nil {
		t.Fatalf("AddMovie() with failing lookup error = %v", err)
	}
	if movie.Name != "Obscure Film" {
		t.Errorf("Name = %q, want %q", movie.Name, "Obscure Film")
	}
	if movie.Director != "" || movie.Poster != "" {
		t.Errorf("expected no enrichment, got %+v", movie)
	}
}

func TestAddMovie_EmptyName(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.AddMovie(context.Background(), 1, "  ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("AddMovie() error = %v, want ErrValidation", err)
	}
}

func TestAddMovie_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.AddMovie(context.Background(), 42, "Alien")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddMovie() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateMovie_PassesThroughNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil)

	err := svc.UpdateMovie(context.Background(), 1, 1, MovieUpdate{Rating: "9"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateMovie() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMovie_PassesThroughNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil)

	err := svc.DeleteMovie(context.Background(), 1, 1)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteMovie() error = %v, want ErrNotFound", err)
	}
}
