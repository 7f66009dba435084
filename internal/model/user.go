// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// User represents one account holding a personal movie list.
//
// IDs are small sequential integers assigned by the store (count of existing
// users + 1). Users are never deleted, so ids are never reused. Movies keeps
// insertion order — the pages display the list in the order movies were added.
type User struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Movies []Movie `json:"movies"`
}
