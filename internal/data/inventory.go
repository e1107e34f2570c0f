package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aoideee/moviestock/internal/validator"
)

// InventoryItem represents a single row in the "inventory" table.
type InventoryItem struct {
	ID           int64   `json:"id"`
	ItemName     string  `json:"item_name"`
	Quantity     int     `json:"quantity"`
	Supplier     *string `json:"supplier"`
	ReorderLevel int     `json:"reorder_level"`
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

// InventoryInput holds the fields a client sends on create and update.
// Pointers keep a quantity of 0 distinct from a missing quantity.
type InventoryInput struct {
	ItemName     *string `json:"item_name"`
	Quantity     *int    `json:"quantity"`
	Supplier     *string `json:"supplier"`
	ReorderLevel *int    `json:"reorder_level"`
}

// InventoryFilters are the optional list filters.
type InventoryFilters struct {
	LowStock bool
}

const inventoryColumns = "id, item_name, quantity, supplier, reorder_level"

// CreateInventoryRules requires item_name, quantity and reorder_level and
// rejects negative counts.
func CreateInventoryRules(input InventoryInput) (InventoryInput, error) {
	v := validator.New()
	v.Check(input.ItemName != nil && *input.ItemName != "", "item_name", "item_name required")
	v.Check(input.Quantity != nil, "quantity", "quantity required")
	v.Check(input.ReorderLevel != nil, "reorder_level", "reorder_level required")
	checkCounts(v, input)
	if err := v.Err(); err != nil {
		return InventoryInput{}, err
	}
	return normalizeInventory(input), nil
}

// UpdateInventoryRules only rejects negative counts; nothing is required.
func UpdateInventoryRules(input InventoryInput) (InventoryInput, error) {
	v := validator.New()
	checkCounts(v, input)
	if err := v.Err(); err != nil {
		return InventoryInput{}, err
	}
	return normalizeInventory(input), nil
}

func checkCounts(v *validator.Validator, input InventoryInput) {
	if input.Quantity != nil {
		v.Check(*input.Quantity >= 0, "quantity", "negative value")
	}
	if input.ReorderLevel != nil {
		v.Check(*input.ReorderLevel >= 0, "reorder_level", "negative value")
	}
}

func normalizeInventory(input InventoryInput) InventoryInput {
	input.Supplier = nullString(input.Supplier)
	return input
}

// inventoryQuery builds the list statement. The low-stock filter compares two
// columns, so it adds no parameter. No ordering is imposed.
func inventoryQuery(filters InventoryFilters) (string, []any) {
	q := NewQuery("SELECT " + inventoryColumns + " FROM inventory")
	if filters.LowStock {
		q.Where("quantity <= reorder_level")
	}
	return q.Build()
}

// InventoryModel wraps the executor and provides the inventory operations.
type InventoryModel struct {
	DB Executor
}

// GetAll returns every item matching filters. The slice is never nil.
func (m InventoryModel) GetAll(ctx context.Context, filters InventoryFilters) ([]*InventoryItem, error) {
	query, args := inventoryQuery(filters)

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list inventory", err)
	}
	defer rows.Close()

	items := []*InventoryItem{}
	for rows.Next() {
		var item InventoryItem
		if err := scanInventoryItem(rows, &item); err != nil {
			return nil, storeErr("list inventory", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list inventory", err)
	}

	return items, nil
}

// Insert adds an item and returns the stored row including its new id.
// input must already have passed CreateInventoryRules.
func (m InventoryModel) Insert(ctx context.Context, input InventoryInput) (*InventoryItem, error) {
	query := `
		INSERT INTO inventory (item_name, quantity, supplier, reorder_level)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + inventoryColumns

	var item InventoryItem
	row := m.DB.QueryRowContext(ctx, query, inventoryArgs(input)...)
	if err := scanInventoryItem(row, &item); err != nil {
		return nil, storeErr("insert inventory item", err)
	}
	return &item, nil
}

// Update overwrites every column of the item with the given id. Fields missing
// from input are written as NULL and left to the schema to accept or reject.
// Returns ErrRecordNotFound if no row matched.
func (m InventoryModel) Update(ctx context.Context, id int64, input InventoryInput) (*InventoryItem, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		UPDATE inventory
		SET item_name = $1, quantity = $2, supplier = $3, reorder_level = $4
		WHERE id = $5
		RETURNING ` + inventoryColumns

	var item InventoryItem
	row := m.DB.QueryRowContext(ctx, query, append(inventoryArgs(input), id)...)
	if err := scanInventoryItem(row, &item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, storeErr("update inventory item", err)
	}
	return &item, nil
}

// Delete removes the item with the given id.
// Returns ErrRecordNotFound if no matching record exists.
func (m InventoryModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.ExecContext(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete inventory item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("delete inventory item", err)
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func inventoryArgs(input InventoryInput) []any {
	return []any{input.ItemName, input.Quantity, input.Supplier, input.ReorderLevel}
}

func scanInventoryItem(s scanner, item *InventoryItem) error {
	return s.Scan(
		&item.ID,
		&item.ItemName,
		&item.Quantity,
		&item.Supplier,
		&item.ReorderLevel,
	)
}
