package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// newTestStore creates a store backed by a file in a per-test temp directory.
// t.TempDir() is removed automatically when the test finishes.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return s
}

func addTestUser(t *testing.T, s *Store, name string) *model.User {
	t.Helper()
	u, err := s.AddUser(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to add test user %q: %v", name, err)
	}
	return u
}

func addTestMovie(t *testing.T, s *Store, userID int, name string) *model.Movie {
	t.Helper()
	m, err := s.AddMovie(context.Background(), userID, repository.MovieData{
		Name:     name,
		Poster:   "http://example.com/" + name + ".jpg",
		Director: "Someone",
		Year:     "2001",
		Rating:   "7.5",
	})
	if err != nil {
		t.Fatalf("failed to add test movie %q: %v", name, err)
	}
	return m
}

func TestNew_CreatesEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	names, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListUsers() = %v, want empty", names)
	}
}

func TestNew_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path); err == nil {
		t.Fatal("New() on a corrupt file should fail")
	}
}

func TestAddUser_SequentialIDs(t *testing.T) {
	s := newTestStore(t)

	alice := addTestUser(t, s, "Alice")
	bob := addTestUser(t, s, "Bob")

	if alice.ID != 1 {
		t.Errorf("first user ID = %d, want 1", alice.ID)
	}
	if bob.ID != 2 {
		t.Errorf("second user ID = %d, want 2", bob.ID)
	}

	names, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	count := 0
	for _, n := range names {
		if n == "Bob" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Bob listed %d times, want exactly once", count)
	}
}

func TestGetUserByID(t *testing.T) {
	s := newTestStore(t)
	created := addTestUser(t, s, "Alice")

	found, err := s.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Name != "Alice" {
		t.Errorf("Name = %q, want %q", found.Name, "Alice")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByID(context.Background(), 42)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestAddMovie_EmptyStoreGetsIDOne(t *testing.T) {
	s := newTestStore(t)
	u := addTestUser(t, s, "Alice")

	m := addTestMovie(t, s, u.ID, "Alien")
	if m.ID != 1 {
		t.Errorf("first movie ID = %d, want 1", m.ID)
	}
}

func TestAddMovie_NewNameGetsMaxPlusOne(t *testing.T) {
	s := newTestStore(t)
	u := addTestUser(t, s, "Alice")

	addTestMovie(t, s, u.ID, "Alien")
	second := addTestMovie(t, s, u.ID, "Blade Runner")

	if second.ID != 2 {
		t.Errorf("second movie ID = %d, want 2", second.ID)
	}
}

func TestAddMovie_ReusesIDByNameAcrossUsers(t *testing.T) {
	s := newTestStore(t)
	alice := addTestUser(t, s, "Alice")
	bob := addTestUser(t, s, "Bob")

	original := addTestMovie(t, s, alice.ID, "Alien")
	addTestMovie(t, s, alice.ID, "Blade Runner")

	// Same name under a different user reuses the original id,
	// not max+1.
	copyForBob := addTestMovie(t, s, bob.ID, "Alien")
	if copyForBob.ID != original.ID {
		t.Errorf("reused movie ID = %d, want %d", copyForBob.ID, original.ID)
	}

	bobMovies, err := s.GetUserMovies(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("GetUserMovies() error = %v", err)
	}
	if len(bobMovies) != 1 || bobMovies[0].ID != original.ID {
		t.Errorf("Bob's movies = %+v, want one entry with id %d", bobMovies, original.ID)
	}
}

func TestAddMovie_UnknownUser(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddMovie(context.Background(), 99, repository.MovieData{Name: "Alien"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddMovie() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateMovie_PartialUpdate(t *testing.T) {
	s := newTestStore(t)
	u := addTestUser(t, s, "Alice")
	m, err := s.AddMovie(context.Background(), u.ID, repository.MovieData{
		Name:     "X",
		Director: "D",
		Year:     "1999",
		Rating:   "5",
	})
	if err != nil {
		t.Fatalf("AddMovie() error = %v", err)
	}

	// Only the rating is supplied; everything else must survive.
	err = s.UpdateMovie(context.Background(), u.ID, m.ID, repository.MovieData{Rating: "9"})
	if err != nil {
		t.Fatalf("UpdateMovie() error = %v", err)
	}

	updated, err := s.GetUserMovie(context.Background(), u.ID, m.ID)
	if err != nil {
		t.Fatalf("GetUserMovie() error = %v", err)
	}
	if updated.Name != "X" || updated.Director != "D" || updated.Year != "1999" {
		t.Errorf("unsupplied fields changed: %+v", updated)
	}
	if updated.Rating != "9" {
		t.Errorf("Rating = %q, want %q", updated.Rating, "9")
	}
}

func TestUpdateMovie_NotFound(t *testing.T) {
	s := newTestStore(t)
	u := addTestUser(t, s, "Alice")

	err := s.UpdateMovie(context.Background(), u.ID, 7, repository.MovieData{Rating: "9"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateMovie() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMovie_LeavesOtherUsersUntouched(t *testing.T) {
	s := newTestStore(t)
	alice := addTestUser(t, s, "Alice")
	bob := addTestUser(t, s, "Bob")

	m := addTestMovie(t, s, alice.ID, "Alien")
	addTestMovie(t, s, bob.ID, "Alien") // same id under Bob

	if err := s.DeleteMovie(context.Background(), alice.ID, m.ID); err != nil {
		t.Fatalf("DeleteMovie() error = %v", err)
	}

	aliceMovies, err := s.GetUserMovies(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetUserMovies() error = %v", err)
	}
	if len(aliceMovies) != 0 {
		t.Errorf("Alice's movies after delete = %+v, want empty", aliceMovies)
	}

	bobMovies, err := s.GetUserMovies(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("GetUserMovies() error = %v", err)
	}
	if len(bobMovies) != 1 || bobMovies[0].ID != m.ID {
		t.Errorf("Bob's movies after Alice's delete = %+v, want the shared entry intact", bobMovies)
	}
}

func TestDeleteMovie_NotFound(t *testing.T) {
	s := newTestStore(t)
	u := addTestUser(t, s, "Alice")

	err := s.DeleteMovie(context.Background(), u.ID, 3)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteMovie() error = %v, want ErrNotFound", err)
	}
}

func TestMaxMovieID(t *testing.T) {
	s := newTestStore(t)

	max, err := s.MaxMovieID(context.Background())
	if err != nil {
		t.Fatalf("MaxMovieID() error = %v", err)
	}
	if max != 0 {
		t.Errorf("MaxMovieID() on empty store = %d, want 0", max)
	}

	u := addTestUser(t, s, "Alice")
	addTestMovie(t, s, u.ID, "Alien")
	addTestMovie(t, s, u.ID, "Blade Runner")

	max, err = s.MaxMovieID(context.Background())
	if err != nil {
		t.Fatalf("MaxMovieID() error = %v", err)
	}
	if max != 2 {
		t.Errorf("MaxMovieID() = %d, want 2", max)
	}
}

// Round-trip: everything written survives a fresh open with values and order
// intact.
func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	userNames := []string{"Alice", "Bob", "Carol"}
	movieNames := []string{"Alien", "Blade Runner", "Contact"}
	for _, un := range userNames {
		u := addTestUser(t, s, un)
		for _, mn := range movieNames {
			addTestMovie(t, s, u.ID, mn)
		}
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing file error = %v", err)
	}

	names, err := reopened.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(names) != len(userNames) {
		t.Fatalf("ListUsers() returned %d names, want %d", len(names), len(userNames))
	}
	for i, n := range names {
		if n != userNames[i] {
			t.Errorf("names[%d] = %q, want %q (order must be preserved)", i, n, userNames[i])
		}
	}

	for i := range userNames {
		movies, err := reopened.GetUserMovies(context.Background(), i+1)
		if err != nil {
			t.Fatalf("GetUserMovies(%d) error = %v", i+1, err)
		}
		if len(movies) != len(movieNames) {
			t.Fatalf("user %d has %d movies, want %d", i+1, len(movies), len(movieNames))
		}
		for j, m := range movies {
			if m.Name != movieNames[j] {
				t.Errorf("user %d movies[%d].Name = %q, want %q", i+1, j, m.Name, movieNames[j])
			}
			if m.Director != "Someone" || m.Year != "2001" || m.Rating != "7.5" {
				t.Errorf("user %d movies[%d] lost fields: %+v", i+1, j, m)
			}
		}
	}
}

// The on-disk layout is part of the contract: a JSON array of user objects.
func TestOnDiskLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	u := addTestUser(t, s, "Alice")
	addTestMovie(t, s, u.ID, "Alien")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store file: %v", err)
	}

	var doc []map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("store file is not a JSON array of objects: %v", err)
	}
	if len(doc) != 1 {
		t.Fatalf("document has %d users, want 1", len(doc))
	}
	for _, key := range []string{"id", "name", "movies"} {
		if _, ok := doc[0][key]; !ok {
			t.Errorf("user object missing %q key", key)
		}
	}
}
