// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → requestID → enableCORS → rateLimit → router
//
// Current endpoints:
//
//	GET    /healthcheck     – service status
//	GET    /movies          – list movies (?genre=, ?rating= minimum)
//	POST   /movies          – create a movie
//	PUT    /movies/:id      – replace a movie
//	GET    /inventory       – list inventory items (?lowStock=true)
//	POST   /inventory       – create an inventory item
//	PUT    /inventory/:id   – replace an inventory item
//	DELETE /inventory/:id   – delete an inventory item
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/movies", app.listMoviesHandler)
	router.HandlerFunc(http.MethodPost, "/movies", app.createMovieHandler)
	router.HandlerFunc(http.MethodPut, "/movies/:id", app.updateMovieHandler)

	router.HandlerFunc(http.MethodGet, "/inventory", app.listInventoryHandler)
	router.HandlerFunc(http.MethodPost, "/inventory", app.createInventoryHandler)
	router.HandlerFunc(http.MethodPut, "/inventory/:id", app.updateInventoryHandler)
	router.HandlerFunc(http.MethodDelete, "/inventory/:id", app.deleteInventoryHandler)

	return app.recoverPanic(app.requestID(app.enableCORS(app.rateLimit(router))))
}
