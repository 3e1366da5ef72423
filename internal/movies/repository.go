package movies

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists movies and shows. ReserveSeats and ReleaseSeats must
// adjust availability atomically so concurrent bookings cannot oversell.
type Repository interface {
	CreateMovie(ctx context.Context, movie Movie) error
	FindMovie(ctx context.Context, id string) (Movie, error)
	ListMovies(ctx context.Context, activeOnly bool) ([]Movie, error)
	UpdateMovie(ctx context.Context, movie Movie) error

	CreateShow(ctx context.Context, show Show) error
	FindShow(ctx context.Context, id string) (Show, error)
	ListShows(ctx context.Context, movieID string) ([]Show, error)
	ReserveSeats(ctx context.Context, showID string, count int) error
	ReleaseSeats(ctx context.Context, showID string, count int) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed catalog repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateMovie(ctx context.Context, movie Movie) error {
	id, err := uuid.Parse(movie.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO movies (id, title, description, genre, release_date, director, cast_members, poster_url, trailer_url, rating, active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, movie.Title, movie.Description, movie.Genre, movie.ReleaseDate.UTC(), movie.Director,
		movie.Cast, movie.PosterURL, movie.TrailerURL, movie.Rating, movie.Active, movie.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) FindMovie(ctx context.Context, id string) (Movie, error) {
	movieID, err := uuid.Parse(id)
	if err != nil {
		return Movie{}, ErrMovieNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, title, description, genre, release_date, director, cast_members, poster_url, trailer_url, rating, active, created_at
        FROM movies WHERE id = $1`, movieID)
	return scanMovie(row)
}

func (r *PostgresRepository) ListMovies(ctx context.Context, activeOnly bool) ([]Movie, error) {
	query := `SELECT id, title, description, genre, release_date, director, cast_members, poster_url, trailer_url, rating, active, created_at
        FROM movies ORDER BY release_date DESC`
	if activeOnly {
		query = `SELECT id, title, description, genre, release_date, director, cast_members, poster_url, trailer_url, rating, active, created_at
        FROM movies WHERE active ORDER BY release_date DESC`
	}
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, movie)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateMovie(ctx context.Context, movie Movie) error {
	id, err := uuid.Parse(movie.ID)
	if err != nil {
		return ErrMovieNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE movies SET title = $1, description = $2, genre = $3, release_date = $4, director = $5,
        cast_members = $6, poster_url = $7, trailer_url = $8, rating = $9, active = $10 WHERE id = $11`,
		movie.Title, movie.Description, movie.Genre, movie.ReleaseDate.UTC(), movie.Director,
		movie.Cast, movie.PosterURL, movie.TrailerURL, movie.Rating, movie.Active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateShow(ctx context.Context, show Show) error {
	id, err := uuid.Parse(show.ID)
	if err != nil {
		return err
	}
	movieID, err := uuid.Parse(show.MovieID)
	if err != nil {
		return ErrMovieNotFound
	}
	_, err = r.db.Exec(ctx, `INSERT INTO shows (id, movie_id, theater, screen, starts_at, price, seats_total, seats_available, active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, movieID, show.Theater, show.Screen, show.StartsAt.UTC(), show.Price,
		show.SeatsTotal, show.SeatsAvailable, show.Active, show.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) FindShow(ctx context.Context, id string) (Show, error) {
	showID, err := uuid.Parse(id)
	if err != nil {
		return Show{}, ErrShowNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, movie_id, theater, screen, starts_at, price, seats_total, seats_available, active, created_at
        FROM shows WHERE id = $1`, showID)
	return scanShow(row)
}

func (r *PostgresRepository) ListShows(ctx context.Context, movieID string) ([]Show, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, ErrMovieNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, movie_id, theater, screen, starts_at, price, seats_total, seats_available, active, created_at
        FROM shows WHERE movie_id = $1 AND active ORDER BY starts_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, show)
	}
	return out, rows.Err()
}

// ReserveSeats decrements availability only when enough seats remain; the
// guarded UPDATE makes concurrent reservations safe without explicit locks.
func (r *PostgresRepository) ReserveSeats(ctx context.Context, showID string, count int) error {
	id, err := uuid.Parse(showID)
	if err != nil {
		return ErrShowNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE shows SET seats_available = seats_available - $1
        WHERE id = $2 AND seats_available >= $1`, count, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, findErr := r.FindShow(ctx, showID); findErr != nil {
			return findErr
		}
		return ErrNotEnoughSeats
	}
	return nil
}

func (r *PostgresRepository) ReleaseSeats(ctx context.Context, showID string, count int) error {
	id, err := uuid.Parse(showID)
	if err != nil {
		return ErrShowNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE shows SET seats_available = LEAST(seats_available + $1, seats_total)
        WHERE id = $2`, count, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShowNotFound
	}
	return nil
}

func scanMovie(row pgx.Row) (Movie, error) {
	var (
		id          uuid.UUID
		releaseDate time.Time
		createdAt   time.Time
		movie       Movie
	)
	err := row.Scan(&id, &movie.Title, &movie.Description, &movie.Genre, &releaseDate, &movie.Director,
		&movie.Cast, &movie.PosterURL, &movie.TrailerURL, &movie.Rating, &movie.Active, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, ErrMovieNotFound
		}
		return Movie{}, err
	}
	movie.ID = id.String()
	movie.ReleaseDate = releaseDate.UTC()
	movie.CreatedAt = createdAt.UTC()
	return movie, nil
}

func scanShow(row pgx.Row) (Show, error) {
	var (
		id        uuid.UUID
		movieID   uuid.UUID
		startsAt  time.Time
		createdAt time.Time
		show      Show
	)
	err := row.Scan(&id, &movieID, &show.Theater, &show.Screen, &startsAt, &show.Price,
		&show.SeatsTotal, &show.SeatsAvailable, &show.Active, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Show{}, ErrShowNotFound
		}
		return Show{}, err
	}
	show.ID = id.String()
	show.MovieID = movieID.String()
	show.StartsAt = startsAt.UTC()
	show.CreatedAt = createdAt.UTC()
	return show, nil
}
