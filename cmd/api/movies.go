// cmd/api/movies.go
// This file contains the HTTP handlers for the movies resource.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/moviestock/internal/data"
	"github.com/aoideee/moviestock/internal/events"
)

// listMoviesHandler handles GET /movies.
// ?genre= matches exactly and ?rating= is a minimum rating. Results are
// ordered by rating, highest first.
func (app *applicationDependencies) listMoviesHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	minRating, err := app.readFloat(qs, "rating")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	filters := data.MovieFilters{
		Genre:     app.readString(qs, "genre", ""),
		MinRating: minRating,
	}

	movies, err := app.models.Movies.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, movies, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createMovieHandler handles POST /movies and responds 201 with the stored
// movie, including its database-assigned id.
func (app *applicationDependencies) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	var input data.MovieInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input, err = data.CreateMovieRules(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movie, err := app.models.Movies.Insert(r.Context(), input)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.publish(r, events.New(events.MovieCreated, "movies", movie.ID, movie))

	err = app.writeJSON(w, http.StatusCreated, movie, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateMovieHandler handles PUT /movies/:id. Every column is replaced by
// the body; omitted optional fields become null.
func (app *applicationDependencies) updateMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.MovieInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input, err = data.UpdateMovieRules(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	movie, err := app.models.Movies.Update(r.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.recordNotFoundResponse(w, r, "Movie not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.publish(r, events.New(events.MovieUpdated, "movies", movie.ID, movie))

	err = app.writeJSON(w, http.StatusOK, movie, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
