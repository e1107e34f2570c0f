// cmd/api/inventory.go
// This file contains the HTTP handlers for the inventory resource.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/moviestock/internal/data"
	"github.com/aoideee/moviestock/internal/events"
)

// listInventoryHandler handles GET /inventory. ?lowStock=true keeps only
// items at or below their reorder level.
func (app *applicationDependencies) listInventoryHandler(w http.ResponseWriter, r *http.Request) {
	filters := data.InventoryFilters{
		LowStock: app.readBool(r.URL.Query(), "lowStock", false),
	}

	items, err := app.models.Inventory.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, items, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createInventoryHandler handles POST /inventory.
func (app *applicationDependencies) createInventoryHandler(w http.ResponseWriter, r *http.Request) {
	var input data.InventoryInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input, err = data.CreateInventoryRules(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	item, err := app.models.Inventory.Insert(r.Context(), input)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.publish(r, inventoryEvents(events.InventoryCreated, item)...)

	err = app.writeJSON(w, http.StatusCreated, item, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateInventoryHandler handles PUT /inventory/:id with full-record replace
// semantics.
func (app *applicationDependencies) updateInventoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.InventoryInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input, err = data.UpdateInventoryRules(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	item, err := app.models.Inventory.Update(r.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.recordNotFoundResponse(w, r, "Inventory item not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.publish(r, inventoryEvents(events.InventoryUpdated, item)...)

	err = app.writeJSON(w, http.StatusOK, item, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteInventoryHandler handles DELETE /inventory/:id and responds 204
// with no body.
func (app *applicationDependencies) deleteInventoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Inventory.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.recordNotFoundResponse(w, r, "Inventory item not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.publish(r, events.New(events.InventoryDeleted, "inventory", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

// inventoryEvents returns the change event for item plus a low-stock event
// when the write left it at or below its reorder level.
func inventoryEvents(eventType string, item *data.InventoryItem) []events.Event {
	evts := []events.Event{events.New(eventType, "inventory", item.ID, item)}
	if item.LowStock() {
		evts = append(evts, events.New(events.InventoryLow, "inventory", item.ID, item))
	}
	return evts
}
