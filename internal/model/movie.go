package model

// Movie is one entry in a user's list.
//
// Movie ids are unique across the whole store, not per user: a movie added
// under a name that already exists anywhere in the store reuses that movie's
// id, so the same id can legitimately appear in several users' lists.
//
// Year and Rating are strings on purpose — they come straight from the OMDB
// API, which reports "N/A" (or ranges like "2001–2003" for series) rather
// than clean numbers.
type Movie struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Poster   string `json:"poster"`
	Director string `json:"director"`
	Year     string `json:"year"`
	Rating   string `json:"rating"`
}
