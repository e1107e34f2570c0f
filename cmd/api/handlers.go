// cmd/api/handlers.go
// This file contains handlers and helpers shared by every resource.
package main

import (
	"net/http"

	"github.com/aoideee/moviestock/internal/events"
)

// healthcheckHandler handles GET /healthcheck.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	body := envelope{
		"status":      "available",
		"environment": app.config.Env,
		"version":     appVersion,
	}

	err := app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// publish hands change events to the configured publisher. Failures are
// logged and never affect the response.
func (app *applicationDependencies) publish(r *http.Request, evts ...events.Event) {
	for _, e := range evts {
		if err := app.events.Publish(r.Context(), e); err != nil {
			app.logError(r, err)
		}
	}
}
