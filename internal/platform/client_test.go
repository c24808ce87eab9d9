package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Contract double
// ==========================

// fakePlatform is an in-memory stand-in for the platform API implementing
// the envelope and two-stage delete contracts.
type fakePlatform struct {
	mu         sync.Mutex
	nextID     int
	entities   map[string]map[string]map[string]interface{} // entityType -> id -> record
	counts     bool                                         // whether /counts endpoints exist
	rejectWith *rejection
}

type rejection struct {
	status  int
	message string
	errors  map[string][]string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		entities: map[string]map[string]map[string]interface{}{},
		counts:   true,
	}
}

func (f *fakePlatform) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		entityType := singularOf(parts[0])

		switch {
		case len(parts) == 2 && parts[1] == "counts":
			f.handleCounts(w, entityType)
		case len(parts) == 1 && r.Method == http.MethodPost:
			f.handleCreate(w, r, entityType)
		case len(parts) == 1 && r.Method == http.MethodGet:
			f.handleList(w, entityType)
		case len(parts) == 2 && r.Method == http.MethodGet:
			f.handleGet(w, entityType, parts[1])
		case len(parts) == 2 && r.Method == http.MethodPut:
			f.handleUpdate(w, r, entityType, parts[1])
		case len(parts) == 2 && r.Method == http.MethodDelete:
			f.handleDelete(w, entityType, parts[1])
		default:
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "no such route"})
		}
	})
}

func singularOf(plural string) string {
	if plural == "properties" {
		return "property"
	}
	return strings.TrimSuffix(plural, "s")
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakePlatform) handleCreate(w http.ResponseWriter, r *http.Request, entityType string) {
	if f.rejectWith != nil {
		writeJSON(w, f.rejectWith.status, map[string]interface{}{
			"success": false,
			"message": f.rejectWith.message,
			"errors":  f.rejectWith.errors,
		})
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "malformed body"})
		return
	}

	f.nextID++
	id := fmt.Sprintf("%s-%d", entityType, f.nextID)
	payload["id"] = id
	payload["isActive"] = true

	if f.entities[entityType] == nil {
		f.entities[entityType] = map[string]map[string]interface{}{}
	}
	f.entities[entityType][id] = payload

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, entityType: payload})
}

func (f *fakePlatform) handleGet(w http.ResponseWriter, entityType, id string) {
	record, ok := f.entities[entityType][id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, entityType: record})
}

func (f *fakePlatform) handleUpdate(w http.ResponseWriter, r *http.Request, entityType, id string) {
	record, ok := f.entities[entityType][id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "malformed body"})
		return
	}
	for key, value := range payload {
		record[key] = value
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, entityType: record})
}

// handleDelete implements the two-stage contract: active records are
// deactivated in place, inactive records are removed permanently.
func (f *fakePlatform) handleDelete(w http.ResponseWriter, entityType, id string) {
	record, ok := f.entities[entityType][id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
		return
	}

	if active, _ := record["isActive"].(bool); active {
		record["isActive"] = false
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, entityType: record})
		return
	}

	delete(f.entities[entityType], id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "permanently deleted"})
}

func (f *fakePlatform) handleList(w http.ResponseWriter, entityType string) {
	items := []map[string]interface{}{}
	for _, record := range f.entities[entityType] {
		items = append(items, record)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"items":   items,
		"pagination": map[string]interface{}{
			"currentPage": 1,
			"totalPages":  1,
			"totalCount":  len(items),
			"limit":       25,
			"hasNextPage": false,
			"hasPrevPage": false,
		},
	})
}

func (f *fakePlatform) handleCounts(w http.ResponseWriter, entityType string) {
	if !f.counts {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not implemented"})
		return
	}
	active := 0
	for _, record := range f.entities[entityType] {
		if isActive, _ := record["isActive"].(bool); isActive {
			active++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"counts": map[string]interface{}{
			"total":  len(f.entities[entityType]),
			"active": active,
		},
	})
}

func newTestClient(t *testing.T) (*Client, *fakePlatform) {
	fake := newFakePlatform()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", 5*time.Second, logger.NewTestLogger(t)), fake
}

// ==========================
// Tests
// ==========================

func TestCreateAndGetRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, "plot", map[string]interface{}{
		"plotNumber": "P-204",
		"price":      map[string]interface{}{"perSqft": 980.0},
	})
	require.NoError(t, err)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, true, created["isActive"])

	fetched, err := client.Get(ctx, "plot", id)
	require.NoError(t, err)
	assert.Equal(t, "P-204", fetched["plotNumber"])
	price := fetched["price"].(map[string]interface{})
	assert.Equal(t, 980.0, price["perSqft"])
}

func TestUpdateMergesFields(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, "mall", map[string]interface{}{"name": "Marina Mall"})
	require.NoError(t, err)
	id := created["id"].(string)

	updated, err := client.Update(ctx, "mall", id, map[string]interface{}{"name": "Marina Mall II"})
	require.NoError(t, err)
	assert.Equal(t, "Marina Mall II", updated["name"])
}

func TestGetNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Get(context.Background(), "plot", "missing")
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeEntityNotFound), errors.CodeOf(err))
	assert.False(t, errors.IsRetryable(err))
}

func TestServerRejectionCarriesFieldErrors(t *testing.T) {
	client, fake := newTestClient(t)
	fake.rejectWith = &rejection{
		status:  http.StatusUnprocessableEntity,
		message: "validation failed",
		errors: map[string][]string{
			"plotNumber": {"is required", "must be unique"},
		},
	}

	_, err := client.Create(context.Background(), "plot", map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeServerRejected), errors.CodeOf(err))
	assert.False(t, errors.IsRetryable(err))

	fieldErrs := errors.FieldErrorsOf(err)
	assert.Equal(t, "is required; must be unique", fieldErrs["plotNumber"])
}

func TestTransportFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from here on
	client := NewClient(server.URL, "", time.Second, logger.NewTestLogger(t))

	_, err := client.Create(context.Background(), "plot", map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeNetworkFailure), errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestDeleteTwoStage(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, "property", map[string]interface{}{"title": "2BR Apartment"})
	require.NoError(t, err)
	id := created["id"].(string)

	// First delete deactivates and leaves the record retrievable.
	first, err := client.Delete(ctx, "property", id)
	require.NoError(t, err)
	assert.False(t, first.Permanent)
	assert.Equal(t, false, first.Entity["isActive"])

	fetched, err := client.Get(ctx, "property", id)
	require.NoError(t, err)
	assert.Equal(t, false, fetched["isActive"])

	// Second delete removes it for good.
	second, err := client.Delete(ctx, "property", id)
	require.NoError(t, err)
	assert.True(t, second.Permanent)
	assert.Nil(t, second.Entity)

	_, err = client.Get(ctx, "property", id)
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeEntityNotFound), errors.CodeOf(err))
}

func TestListReturnsPageAndPagination(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Create(ctx, "blog", map[string]interface{}{"title": fmt.Sprintf("Post %d", i)})
		require.NoError(t, err)
	}

	result, err := client.List(ctx, "blog", ListParams{Page: 1, Limit: 25})
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, 3, result.Pagination.TotalCount)
	assert.Equal(t, 1, result.Pagination.CurrentPage)
	assert.False(t, result.Pagination.HasNextPage)
}

func TestListParamsEncoding(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true, "items": []map[string]interface{}{}, "pagination": map[string]interface{}{},
		})
	}))
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "", time.Second, logger.NewTestLogger(t))

	_, err := client.List(context.Background(), "property", ListParams{
		Page:    2,
		Limit:   10,
		Search:  "marina",
		Filters: map[string]string{"propertyType": "apartment"},
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "limit=10")
	assert.Contains(t, gotQuery, "search=marina")
	assert.Contains(t, gotQuery, "propertyType=apartment")
}

func TestCountsEndpoint(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.Create(ctx, "mall", map[string]interface{}{"name": "A"})
	require.NoError(t, err)

	counts, err := client.Counts(ctx, "mall")
	require.NoError(t, err)
	assert.Equal(t, 1, counts["total"])
	assert.Equal(t, 1, counts["active"])
}

func TestCountsMissingEndpointIsTyped(t *testing.T) {
	client, fake := newTestClient(t)
	fake.counts = false

	_, err := client.Counts(context.Background(), "mall")
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeCountsNotFound), errors.CodeOf(err))
}
