package tracks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trailmate/internal/models"

	"github.com/go-playground/validator/v10"
)

type fakeTrackStore struct {
	tracks []models.Track
}

func (f *fakeTrackStore) Tracks(_ context.Context) ([]models.Track, error) {
	return f.tracks, nil
}

func (f *fakeTrackStore) SaveTrack(_ context.Context, t models.Track) error {
	f.tracks = append(f.tracks, t)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListEmpty(t *testing.T) {
	h := List(discardLogger(), &fakeTrackStore{})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/tracks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status want 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty list should encode as [], got %q", got)
	}
}

func TestCreateAndList(t *testing.T) {
	store := &fakeTrackStore{}
	validate := validator.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tracks", strings.NewReader(`{"name":"Coastal loop"}`))
	Create(discardLogger(), validate, store)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("create status want 200, got %d", rec.Code)
	}

	var created models.Track
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Name != "Coastal loop" {
		t.Errorf("unexpected track %+v", created)
	}

	rec = httptest.NewRecorder()
	List(discardLogger(), store)(rec, httptest.NewRequest(http.MethodGet, "/tracks", nil))

	var tracks []models.Track
	if err := json.Unmarshal(rec.Body.Bytes(), &tracks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tracks) != 1 || tracks[0] != created {
		t.Errorf("unexpected list %+v", tracks)
	}
}

func TestCreateRejectsMissingName(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tracks", strings.NewReader(`{}`))
	Create(discardLogger(), validator.New(), &fakeTrackStore{})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status want 400, got %d", rec.Code)
	}
}
