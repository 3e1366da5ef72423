// Package movies manages the film catalog and showtimes, including atomic
// seat inventory on shows.
package movies

import (
	"errors"
	"time"
)

var (
	// ErrMovieNotFound indicates the lookup matched no movie.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrShowNotFound indicates the lookup matched no show.
	ErrShowNotFound = errors.New("show not found")
	// ErrNotEnoughSeats is returned when a reservation exceeds availability.
	ErrNotEnoughSeats = errors.New("not enough seats available")
	// ErrInvalidInput flags rejected create/update payloads.
	ErrInvalidInput = errors.New("invalid input")
)

// Movie is a film in the catalog.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	ReleaseDate time.Time `json:"release_date"`
	Director    string    `json:"director"`
	Cast        []string  `json:"cast"`
	PosterURL   string    `json:"poster_url"`
	TrailerURL  string    `json:"trailer_url"`
	Rating      float64   `json:"rating"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Show is a scheduled screening of a movie. Price is in whole shillings.
type Show struct {
	ID             string    `json:"id"`
	MovieID        string    `json:"movie_id"`
	Theater        string    `json:"theater"`
	Screen         string    `json:"screen"`
	StartsAt       time.Time `json:"starts_at"`
	Price          int64     `json:"price"`
	SeatsTotal     int       `json:"seats_total"`
	SeatsAvailable int       `json:"seats_available"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}
