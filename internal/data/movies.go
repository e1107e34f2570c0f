package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aoideee/moviestock/internal/validator"
)

// Movie represents a single row in the "movies" table.
type Movie struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Genre      *string  `json:"genre"`
	Rating     *float64 `json:"rating"`
	Reviewed   bool     `json:"reviewed"`
	ReviewText *string  `json:"review_text"`
}

// MovieInput holds the fields a client sends on create and update.
// Every field is a pointer so "absent or null" can be told apart from an
// explicit zero value: a rating of 0 is a rating.
type MovieInput struct {
	Title      *string  `json:"title"`
	Genre      *string  `json:"genre"`
	Rating     *float64 `json:"rating"`
	Reviewed   *bool    `json:"reviewed"`
	ReviewText *string  `json:"review_text"`
}

// MovieFilters are the optional list filters. MinRating is an inclusive
// lower bound, not an exact match.
type MovieFilters struct {
	Genre     string
	MinRating *float64
}

const movieColumns = "id, title, genre, rating, reviewed, review_text"

// CreateMovieRules validates input for a new movie and returns it normalized.
func CreateMovieRules(input MovieInput) (MovieInput, error) {
	v := validator.New()
	v.Check(input.Title != nil && *input.Title != "", "title", "title required")
	checkRating(v, input.Rating)
	if err := v.Err(); err != nil {
		return MovieInput{}, err
	}
	return normalizeMovie(input), nil
}

// UpdateMovieRules validates input for a full-record replace. Title presence
// is deliberately not enforced here.
func UpdateMovieRules(input MovieInput) (MovieInput, error) {
	v := validator.New()
	checkRating(v, input.Rating)
	if err := v.Err(); err != nil {
		return MovieInput{}, err
	}
	return normalizeMovie(input), nil
}

func checkRating(v *validator.Validator, rating *float64) {
	if rating != nil {
		v.Check(validator.Between(*rating, 0, 10), "rating", "rating out of range")
	}
}

func normalizeMovie(input MovieInput) MovieInput {
	reviewed := false
	if input.Reviewed != nil {
		reviewed = *input.Reviewed
	}
	return MovieInput{
		Title:      input.Title,
		Genre:      nullString(input.Genre),
		Rating:     input.Rating,
		Reviewed:   &reviewed,
		ReviewText: nullString(input.ReviewText),
	}
}

// movieQuery builds the list statement for the given filters, always ordered
// by rating, highest first.
func movieQuery(filters MovieFilters) (string, []any) {
	q := NewQuery("SELECT " + movieColumns + " FROM movies")
	if filters.Genre != "" {
		q.Where("genre = ?", filters.Genre)
	}
	if filters.MinRating != nil {
		q.Where("rating >= ?", *filters.MinRating)
	}
	return q.OrderBy("rating DESC").Build()
}

// MovieModel wraps the executor and provides the movie operations.
type MovieModel struct {
	DB Executor
}

// GetAll returns every movie matching filters. The slice is never nil.
func (m MovieModel) GetAll(ctx context.Context, filters MovieFilters) ([]*Movie, error) {
	query, args := movieQuery(filters)

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list movies", err)
	}
	defer rows.Close()

	movies := []*Movie{}
	for rows.Next() {
		var movie Movie
		if err := scanMovie(rows, &movie); err != nil {
			return nil, storeErr("list movies", err)
		}
		movies = append(movies, &movie)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list movies", err)
	}

	return movies, nil
}

// Insert adds a movie and returns the stored row including its new id.
// input must already have passed CreateMovieRules.
func (m MovieModel) Insert(ctx context.Context, input MovieInput) (*Movie, error) {
	query := `
		INSERT INTO movies (title, genre, rating, reviewed, review_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + movieColumns

	var movie Movie
	row := m.DB.QueryRowContext(ctx, query, movieArgs(input)...)
	if err := scanMovie(row, &movie); err != nil {
		return nil, storeErr("insert movie", err)
	}
	return &movie, nil
}

// Update overwrites every column of the movie with the given id.
// Returns ErrRecordNotFound if no row matched.
func (m MovieModel) Update(ctx context.Context, id int64, input MovieInput) (*Movie, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		UPDATE movies
		SET title = $1, genre = $2, rating = $3, reviewed = $4, review_text = $5
		WHERE id = $6
		RETURNING ` + movieColumns

	var movie Movie
	row := m.DB.QueryRowContext(ctx, query, append(movieArgs(input), id)...)
	if err := scanMovie(row, &movie); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, storeErr("update movie", err)
	}
	return &movie, nil
}

func movieArgs(input MovieInput) []any {
	return []any{input.Title, input.Genre, input.Rating, input.Reviewed, input.ReviewText}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner, movie *Movie) error {
	return s.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.Rating,
		&movie.Reviewed,
		&movie.ReviewText,
	)
}
