package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/aoideee/moviestock/internal/data"
	"github.com/aoideee/moviestock/internal/events"
)

// fakeMovies is an in-memory MovieStore that mimics the SQL filters.
type fakeMovies struct {
	mu          sync.Mutex
	nextID      int64
	rows        map[int64]*data.Movie
	calls       int
	lastFilters data.MovieFilters
	err         error
}

func newFakeMovies() *fakeMovies {
	return &fakeMovies{nextID: 1, rows: make(map[int64]*data.Movie)}
}

func (f *fakeMovies) GetAll(_ context.Context, filters data.MovieFilters) ([]*data.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastFilters = filters
	if f.err != nil {
		return nil, f.err
	}

	out := []*data.Movie{}
	for _, m := range f.rows {
		if filters.Genre != "" && (m.Genre == nil || *m.Genre != filters.Genre) {
			continue
		}
		if filters.MinRating != nil && (m.Rating == nil || *m.Rating < *filters.MinRating) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return rating(out[i]) > rating(out[j])
	})
	return out, nil
}

func rating(m *data.Movie) float64 {
	if m.Rating == nil {
		return -1
	}
	return *m.Rating
}

func (f *fakeMovies) Insert(_ context.Context, input data.MovieInput) (*data.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	m := movieFromInput(f.nextID, input)
	f.rows[m.ID] = m
	f.nextID++
	cp := *m
	return &cp, nil
}

func (f *fakeMovies) Update(_ context.Context, id int64, input data.MovieInput) (*data.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.rows[id]; !ok {
		return nil, data.ErrRecordNotFound
	}

	m := movieFromInput(id, input)
	f.rows[id] = m
	cp := *m
	return &cp, nil
}

func movieFromInput(id int64, input data.MovieInput) *data.Movie {
	m := &data.Movie{
		ID:         id,
		Genre:      input.Genre,
		Rating:     input.Rating,
		ReviewText: input.ReviewText,
	}
	if input.Title != nil {
		m.Title = *input.Title
	}
	if input.Reviewed != nil {
		m.Reviewed = *input.Reviewed
	}
	return m
}

// fakeInventory is an in-memory InventoryStore.
type fakeInventory struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*data.InventoryItem
	calls  int
	err    error
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{nextID: 1, rows: make(map[int64]*data.InventoryItem)}
}

func (f *fakeInventory) GetAll(_ context.Context, filters data.InventoryFilters) ([]*data.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	out := []*data.InventoryItem{}
	for _, item := range f.rows {
		if filters.LowStock && !item.LowStock() {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeInventory) Insert(_ context.Context, input data.InventoryInput) (*data.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	item := itemFromInput(f.nextID, input)
	f.rows[item.ID] = item
	f.nextID++
	cp := *item
	return &cp, nil
}

func (f *fakeInventory) Update(_ context.Context, id int64, input data.InventoryInput) (*data.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.rows[id]; !ok {
		return nil, data.ErrRecordNotFound
	}

	item := itemFromInput(id, input)
	f.rows[id] = item
	cp := *item
	return &cp, nil
}

func (f *fakeInventory) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(f.rows, id)
	return nil
}

func itemFromInput(id int64, input data.InventoryInput) *data.InventoryItem {
	item := &data.InventoryItem{ID: id, Supplier: input.Supplier}
	if input.ItemName != nil {
		item.ItemName = *input.ItemName
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.ReorderLevel != nil {
		item.ReorderLevel = *input.ReorderLevel
	}
	return item
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testApp struct {
	app       *applicationDependencies
	movies    *fakeMovies
	inventory *fakeInventory
	events    *recordingPublisher
	handler   http.Handler
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	movies := newFakeMovies()
	inventory := newFakeInventory()
	publisher := &recordingPublisher{}

	app := &applicationDependencies{
		config: serverConfig{Env: "development"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.Models{Movies: movies, Inventory: inventory},
		events: publisher,
	}

	return &testApp{
		app:       app,
		movies:    movies,
		inventory: inventory,
		events:    publisher,
		handler:   app.routes(),
	}
}

func (ta *testApp) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}
