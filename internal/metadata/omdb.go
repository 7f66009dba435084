// Package metadata looks up movie details from the OMDB HTTP API.
//
// The service layer depends on the one-method Lookup interface, not on the
// concrete client, so tests substitute a fake without network access.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public OMDB endpoint.
const DefaultBaseURL = "http://www.omdbapi.com/"

// Result is what a title lookup yields. When Found is false the other fields
// are empty and the caller proceeds without enrichment.
type Result struct {
	Found    bool
	Poster   string
	Director string
	Year     string
	Rating   string
}

// Lookup fetches movie details by title.
type Lookup interface {
	LookupMovie(ctx context.Context, title string) (*Result, error)
}

// omdbResponse mirrors the OMDB wire format. OMDB signals misses in the body:
// HTTP 200 with Response="False" and an Error message.
type omdbResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
}

// OMDBClient talks to the OMDB API. Create one with NewOMDBClient.
type OMDBClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOMDBClient returns a client for the given API key. baseURL may be empty,
// in which case DefaultBaseURL is used. The HTTP client carries a 10 second
// timeout so a stalled OMDB call cannot hang a request forever.
func NewOMDBClient(apiKey, baseURL string) *OMDBClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OMDBClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// LookupMovie queries OMDB by title.
//
// A miss (Response="False") returns Result{Found: false} with a nil error —
// the caller decides what a miss means. Transport and decode failures return
// an error; callers treat those as a miss too, but may want to log them.
func (c *OMDBClient) LookupMovie(ctx context.Context, title string) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("omdb: API key not configured")
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("omdb: building request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb: requesting %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb: unexpected status %d for %q", resp.StatusCode, title)
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("omdb: decoding response: %w", err)
	}

	if body.Response != "True" {
		return &Result{Found: false}, nil
	}

	return &Result{
		Found:    true,
		Poster:   body.Poster,
		Director: body.Director,
		Year:     body.Year,
		Rating:   body.ImdbRating,
	}, nil
}
