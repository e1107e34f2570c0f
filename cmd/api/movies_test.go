package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aoideee/moviestock/internal/data"
	"github.com/aoideee/moviestock/internal/events"
)

func decodeObject(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("invalid JSON object %q: %v", body, err)
	}
	return out
}

func TestCreateMovie_Normalized(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodPost, "/movies", `{"title":"Dune","rating":9}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body)
	}

	got := decodeObject(t, rr.Body.Bytes())
	if got["id"] != float64(1) || got["title"] != "Dune" || got["rating"] != float64(9) {
		t.Errorf("unexpected movie: %v", got)
	}
	if got["reviewed"] != false {
		t.Errorf("expected reviewed false, got %v", got["reviewed"])
	}
	for _, key := range []string{"genre", "review_text"} {
		v, ok := got[key]
		if !ok || v != nil {
			t.Errorf("expected %s to be null, got %v (present=%v)", key, v, ok)
		}
	}

	if types := ta.events.types(); len(types) != 1 || types[0] != events.MovieCreated {
		t.Errorf("expected one movie.created event, got %v", types)
	}
}

func TestCreateMovie_ZeroRatingIsKept(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodPost, "/movies", `{"title":"Flop","rating":0}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body)
	}
	if got := decodeObject(t, rr.Body.Bytes()); got["rating"] != float64(0) {
		t.Errorf("expected rating 0, got %v", got["rating"])
	}
}

func TestCreateMovie_ValidationNeverReachesStore(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing title", `{"genre":"Drama"}`, "title required"},
		{"empty title", `{"title":""}`, "title required"},
		{"rating too high", `{"title":"Dune","rating":10.5}`, "rating out of range"},
		{"rating negative", `{"title":"Dune","rating":-1}`, "rating out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApplication(t)

			rr := ta.do(t, http.MethodPost, "/movies", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if got := decodeObject(t, rr.Body.Bytes()); got["error"] != tt.wantMsg {
				t.Errorf("error = %v, want %q", got["error"], tt.wantMsg)
			}
			if ta.movies.calls != 0 {
				t.Errorf("expected no store calls, got %d", ta.movies.calls)
			}
		})
	}
}

func TestCreateMovie_BadJSON(t *testing.T) {
	ta := newTestApplication(t)

	for _, body := range []string{`{"title":`, `{"title":"a"}{"title":"b"}`, `{"rating":"nine","title":"x"}`} {
		rr := ta.do(t, http.MethodPost, "/movies", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rr.Code)
		}
	}
	if ta.movies.calls != 0 {
		t.Errorf("expected no store calls, got %d", ta.movies.calls)
	}
}

func TestUpdateMovie_NotFoundIsPlainText(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodPut, "/movies/999", `{"title":"Ghost"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
	if rr.Body.String() != "Movie not found" {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}

func TestUpdateMovie_InvalidID(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodPut, "/movies/abc", `{"title":"Ghost"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpdateMovie_RatingChecked(t *testing.T) {
	ta := newTestApplication(t)
	ta.do(t, http.MethodPost, "/movies", `{"title":"Dune"}`)
	calls := ta.movies.calls

	rr := ta.do(t, http.MethodPut, "/movies/1", `{"rating":11}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if ta.movies.calls != calls {
		t.Error("store was called for an invalid update")
	}
}

func TestUpdateMovie_FullReplaceAndIdempotent(t *testing.T) {
	ta := newTestApplication(t)
	ta.do(t, http.MethodPost, "/movies", `{"title":"Dune","genre":"Sci-Fi","rating":9,"reviewed":true,"review_text":"great"}`)

	body := `{"title":"Dune","rating":8}`
	first := ta.do(t, http.MethodPut, "/movies/1", body)
	second := ta.do(t, http.MethodPut, "/movies/1", body)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200s, got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("repeated update diverged:\n%s\n%s", first.Body, second.Body)
	}

	got := decodeObject(t, second.Body.Bytes())
	if got["genre"] != nil || got["review_text"] != nil || got["reviewed"] != false {
		t.Errorf("omitted fields were merged instead of replaced: %v", got)
	}
}

func TestUpdateMovie_TitleNotRequired(t *testing.T) {
	ta := newTestApplication(t)
	ta.do(t, http.MethodPost, "/movies", `{"title":"Dune"}`)
	calls := ta.movies.calls

	ta.do(t, http.MethodPut, "/movies/1", `{"reviewed":true}`)
	if ta.movies.calls != calls+1 {
		t.Error("expected update without title to reach the store")
	}
}

func TestListMovies_Filters(t *testing.T) {
	ta := newTestApplication(t)
	ta.do(t, http.MethodPost, "/movies", `{"title":"A","genre":"Drama","rating":6}`)
	ta.do(t, http.MethodPost, "/movies", `{"title":"B","genre":"Drama","rating":8}`)
	ta.do(t, http.MethodPost, "/movies", `{"title":"C","genre":"Comedy","rating":9}`)

	rr := ta.do(t, http.MethodGet, "/movies?genre=Drama&rating=7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var movies []data.Movie
	if err := json.Unmarshal(rr.Body.Bytes(), &movies); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "B" {
		t.Errorf("expected only B, got %+v", movies)
	}

	f := ta.movies.lastFilters
	if f.Genre != "Drama" || f.MinRating == nil || *f.MinRating != 7 {
		t.Errorf("unexpected filters: %+v", f)
	}
}

func TestListMovies_NoFiltersIsEmptyArray(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodGet, "/movies", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %q", rr.Body.String())
	}
	if ta.movies.lastFilters.MinRating != nil || ta.movies.lastFilters.Genre != "" {
		t.Errorf("expected no filters, got %+v", ta.movies.lastFilters)
	}
}

func TestListMovies_BadRating(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodGet, "/movies?rating=high", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListMovies_StoreError(t *testing.T) {
	ta := newTestApplication(t)
	ta.movies.err = &data.StoreError{Op: "list movies", Err: errors.New("connection refused")}

	rr := ta.do(t, http.MethodGet, "/movies", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	got := decodeObject(t, rr.Body.Bytes())
	if got["error"] != "Server error" || got["details"] != "connection refused" {
		t.Errorf("unexpected body: %v", got)
	}
}
