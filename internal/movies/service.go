package movies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service manages the movie catalog and show inventory.
type Service struct {
	repo Repository
}

// NewService creates a catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// MovieInput carries the fields accepted when creating or updating a movie.
type MovieInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	ReleaseDate time.Time `json:"release_date"`
	Director    string    `json:"director"`
	Cast        []string  `json:"cast"`
	PosterURL   string    `json:"poster_url"`
	TrailerURL  string    `json:"trailer_url"`
	Rating      float64   `json:"rating"`
}

// ShowInput carries the fields accepted when scheduling a show.
type ShowInput struct {
	MovieID    string    `json:"movie_id"`
	Theater    string    `json:"theater"`
	Screen     string    `json:"screen"`
	StartsAt   time.Time `json:"starts_at"`
	Price      int64     `json:"price"`
	SeatsTotal int       `json:"seats_total"`
}

func (in MovieInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Rating < 0 || in.Rating > 10 {
		return fmt.Errorf("%w: rating must be between 0 and 10", ErrInvalidInput)
	}
	return nil
}

// CreateMovie adds a movie to the catalog.
func (s *Service) CreateMovie(ctx context.Context, in MovieInput) (Movie, error) {
	if err := in.validate(); err != nil {
		return Movie{}, err
	}
	movie := Movie{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Genre:       in.Genre,
		ReleaseDate: in.ReleaseDate,
		Director:    in.Director,
		Cast:        in.Cast,
		PosterURL:   in.PosterURL,
		TrailerURL:  in.TrailerURL,
		Rating:      in.Rating,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateMovie(ctx, movie); err != nil {
		return Movie{}, err
	}
	return movie, nil
}

// GetMovie fetches a movie by identifier.
func (s *Service) GetMovie(ctx context.Context, id string) (Movie, error) {
	return s.repo.FindMovie(ctx, id)
}

// ListMovies returns catalog movies, optionally only active ones.
func (s *Service) ListMovies(ctx context.Context, activeOnly bool) ([]Movie, error) {
	return s.repo.ListMovies(ctx, activeOnly)
}

// UpdateMovie replaces a movie's editable fields.
func (s *Service) UpdateMovie(ctx context.Context, id string, in MovieInput) (Movie, error) {
	if err := in.validate(); err != nil {
		return Movie{}, err
	}
	movie, err := s.repo.FindMovie(ctx, id)
	if err != nil {
		return Movie{}, err
	}
	movie.Title = strings.TrimSpace(in.Title)
	movie.Description = in.Description
	movie.Genre = in.Genre
	movie.ReleaseDate = in.ReleaseDate
	movie.Director = in.Director
	movie.Cast = in.Cast
	movie.PosterURL = in.PosterURL
	movie.TrailerURL = in.TrailerURL
	movie.Rating = in.Rating
	if err := s.repo.UpdateMovie(ctx, movie); err != nil {
		return Movie{}, err
	}
	return movie, nil
}

// DeactivateMovie soft-deletes a movie from listings.
func (s *Service) DeactivateMovie(ctx context.Context, id string) error {
	movie, err := s.repo.FindMovie(ctx, id)
	if err != nil {
		return err
	}
	movie.Active = false
	return s.repo.UpdateMovie(ctx, movie)
}

// CreateShow schedules a screening for a movie.
func (s *Service) CreateShow(ctx context.Context, in ShowInput) (Show, error) {
	if in.SeatsTotal <= 0 {
		return Show{}, fmt.Errorf("%w: seats_total must be positive", ErrInvalidInput)
	}
	if in.Price <= 0 {
		return Show{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if _, err := s.repo.FindMovie(ctx, in.MovieID); err != nil {
		return Show{}, err
	}
	show := Show{
		ID:             uuid.New().String(),
		MovieID:        in.MovieID,
		Theater:        in.Theater,
		Screen:         in.Screen,
		StartsAt:       in.StartsAt,
		Price:          in.Price,
		SeatsTotal:     in.SeatsTotal,
		SeatsAvailable: in.SeatsTotal,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateShow(ctx, show); err != nil {
		return Show{}, err
	}
	return show, nil
}

// GetShow fetches a show by identifier.
func (s *Service) GetShow(ctx context.Context, id string) (Show, error) {
	return s.repo.FindShow(ctx, id)
}

// ListShows returns active shows for a movie in start order.
func (s *Service) ListShows(ctx context.Context, movieID string) ([]Show, error) {
	return s.repo.ListShows(ctx, movieID)
}

// ReserveSeats takes seats from a show's availability.
func (s *Service) ReserveSeats(ctx context.Context, showID string, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: seat count must be positive", ErrInvalidInput)
	}
	return s.repo.ReserveSeats(ctx, showID, count)
}

// ReleaseSeats returns seats to a show's availability.
func (s *Service) ReleaseSeats(ctx context.Context, showID string, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: seat count must be positive", ErrInvalidInput)
	}
	return s.repo.ReleaseSeats(ctx, showID, count)
}
