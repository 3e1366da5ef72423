package movies

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu     sync.Mutex
	movies map[string]Movie
	shows  map[string]Show
}

// NewMemoryRepository builds an in-memory catalog store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		movies: make(map[string]Movie),
		shows:  make(map[string]Show),
	}
}

func (r *memoryRepository) CreateMovie(_ context.Context, movie Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movies[movie.ID] = movie
	return nil
}

func (r *memoryRepository) FindMovie(_ context.Context, id string) (Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	movie, ok := r.movies[id]
	if !ok {
		return Movie{}, ErrMovieNotFound
	}
	return movie, nil
}

func (r *memoryRepository) ListMovies(_ context.Context, activeOnly bool) ([]Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Movie
	for _, movie := range r.movies {
		if activeOnly && !movie.Active {
			continue
		}
		out = append(out, movie)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReleaseDate.After(out[j].ReleaseDate) })
	return out, nil
}

func (r *memoryRepository) UpdateMovie(_ context.Context, movie Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[movie.ID]; !ok {
		return ErrMovieNotFound
	}
	r.movies[movie.ID] = movie
	return nil
}

func (r *memoryRepository) CreateShow(_ context.Context, show Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[show.MovieID]; !ok {
		return ErrMovieNotFound
	}
	r.shows[show.ID] = show
	return nil
}

func (r *memoryRepository) FindShow(_ context.Context, id string) (Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	show, ok := r.shows[id]
	if !ok {
		return Show{}, ErrShowNotFound
	}
	return show, nil
}

func (r *memoryRepository) ListShows(_ context.Context, movieID string) ([]Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Show
	for _, show := range r.shows {
		if show.MovieID == movieID && show.Active {
			out = append(out, show)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *memoryRepository) ReserveSeats(_ context.Context, showID string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	show, ok := r.shows[showID]
	if !ok {
		return ErrShowNotFound
	}
	if show.SeatsAvailable < count {
		return ErrNotEnoughSeats
	}
	show.SeatsAvailable -= count
	r.shows[showID] = show
	return nil
}

func (r *memoryRepository) ReleaseSeats(_ context.Context, showID string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	show, ok := r.shows[showID]
	if !ok {
		return ErrShowNotFound
	}
	show.SeatsAvailable += count
	if show.SeatsAvailable > show.SeatsTotal {
		show.SeatsAvailable = show.SeatsTotal
	}
	r.shows[showID] = show
	return nil
}
