package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
)

type fakeIdempotencyStore struct {
	data map[string]string
	gets int
	sets int
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	f.gets++
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = value.(string)
	f.sets++
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

// newIdempotentRouter mounts the middleware the same way the production
// router does: with Use on the /api/v1 subrouter, above the route handlers.
func newIdempotentRouter(store *fakeIdempotencyStore, handlerCalls *int) http.Handler {
	logg := logger.New(logger.Options{Output: io.Discard})
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Idempotency(store, logg))
		r.Post("/inventory/request", func(w http.ResponseWriter, req *http.Request) {
			*handlerCalls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data":{"new_quantity":2}}`))
		})
		r.Get("/inventory", func(w http.ResponseWriter, req *http.Request) {
			*handlerCalls++
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestIdempotencyRequiresKeyOnMutatingRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/request", strings.NewReader(`{"item_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("handler ran %d times, expected 0", calls)
	}
	if store.gets != 0 || store.sets != 0 {
		t.Fatalf("store touched before key validation: gets=%d sets=%d", store.gets, store.sets)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	body := `{"item_id":1,"fixture_id":1,"quantity":2}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/request", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "key-1")
	firstRec := httptest.NewRecorder()
	router.ServeHTTP(firstRec, first)

	if firstRec.Code != http.StatusOK {
		t.Fatalf("expected 200 on first request, got %d", firstRec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, expected 1", calls)
	}
	if store.sets != 1 {
		t.Fatalf("expected 1 stored record, got %d", store.sets)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/request", strings.NewReader(body))
	second.Header.Set("Idempotency-Key", "key-1")
	secondRec := httptest.NewRecorder()
	router.ServeHTTP(secondRec, second)

	if secondRec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", secondRec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times on replay, expected 1", calls)
	}
	if secondRec.Body.String() != firstRec.Body.String() {
		t.Fatalf("replay body %q differs from original %q", secondRec.Body.String(), firstRec.Body.String())
	}
	if ct := secondRec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("replay lost content type, got %q", ct)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/request", strings.NewReader(`{"quantity":2}`))
	first.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/request", strings.NewReader(`{"quantity":9}`))
	second.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, second)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on body change, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, expected 1", calls)
	}
}

func TestIdempotencySkipsUnlistedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newIdempotentRouter(store, &calls)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without key on read route, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, expected 1", calls)
	}
	if store.gets != 0 {
		t.Fatalf("store consulted for unlisted route: gets=%d", store.gets)
	}
}
