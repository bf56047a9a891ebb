package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grassly/grassly/internal/model"
)

type fieldList struct {
	Items []model.Field `json:"items"`
}

func (ts *testServer) listFields(t *testing.T, token string) []model.Field {
	t.Helper()
	resp := ts.get(t, "/api/fields", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out fieldList
	decode(t, resp, &out)
	return out.Items
}

func TestFieldLifecycle(t *testing.T) {
	// The full scenario: register -> login -> create -> list -> delete -> empty.
	ts := newTestServer(t)
	ts.register(t, "Alice", "alice@example.com", "pw123")
	token, cookie := ts.login(t, "alice@example.com", "pw123")
	require.NotNil(t, cookie)

	resp := ts.postJSON(t, "/api/fields", token, map[string]any{
		"name":      "North Pitch",
		"location":  "Main St",
		"latitude":  45.0,
		"longitude": 15.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Field
	decode(t, resp, &created)
	assert.Positive(t, created.ID)
	assert.Equal(t, "North Pitch", created.Name)

	items := ts.listFields(t, token)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, "Main St", items[0].Location)
	assert.Equal(t, 45.0, items[0].Latitude)
	assert.Equal(t, 15.0, items[0].Longitude)

	del := ts.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/fields/%d", created.ID), token, nil)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	assert.Empty(t, ts.listFields(t, token))
}

func TestFieldCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Alice", "alice@example.com", "pw123")
	token, _ := ts.login(t, "alice@example.com", "pw123")

	tests := []struct {
		name    string
		request map[string]any
	}{
		{name: "missing name", request: map[string]any{"location": "Main St", "latitude": 45.0, "longitude": 15.0}},
		{name: "missing location", request: map[string]any{"name": "North Pitch", "latitude": 45.0, "longitude": 15.0}},
		{name: "missing latitude", request: map[string]any{"name": "North Pitch", "location": "Main St", "longitude": 15.0}},
		{name: "missing longitude", request: map[string]any{"name": "North Pitch", "location": "Main St", "latitude": 45.0}},
		{name: "empty body", request: map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.postJSON(t, "/api/fields", token, tt.request)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	// None of the rejected payloads performed an insert.
	assert.Empty(t, ts.listFields(t, token))
}

func TestFieldIsolationBetweenUsers(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Alice", "alice@example.com", "pw123")
	ts.register(t, "Bob", "bob@example.com", "pw456")
	aliceTok, _ := ts.login(t, "alice@example.com", "pw123")
	bobTok, _ := ts.login(t, "bob@example.com", "pw456")

	resp := ts.postJSON(t, "/api/fields", aliceTok, map[string]any{
		"name": "North Pitch", "location": "Main St", "latitude": 45.0, "longitude": 15.0,
	})
	var created model.Field
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &created)

	// Bob sees nothing and cannot touch Alice's field; both mutations
	// come back as 404, indistinguishable from a missing record.
	assert.Empty(t, ts.listFields(t, bobTok))

	del := ts.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/fields/%d", created.ID), bobTok, nil)
	del.Body.Close()
	assert.Equal(t, http.StatusNotFound, del.StatusCode)

	upd := ts.doJSON(t, http.MethodPut, fmt.Sprintf("/api/fields/%d", created.ID), bobTok, map[string]any{
		"name": "Mine Now", "location": "Elsewhere", "latitude": 1.0, "longitude": 1.0,
	})
	upd.Body.Close()
	assert.Equal(t, http.StatusNotFound, upd.StatusCode)

	// Alice's field is unchanged.
	items := ts.listFields(t, aliceTok)
	require.Len(t, items, 1)
	assert.Equal(t, "North Pitch", items[0].Name)
}

func TestFieldUpdate(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Alice", "alice@example.com", "pw123")
	token, _ := ts.login(t, "alice@example.com", "pw123")

	resp := ts.postJSON(t, "/api/fields", token, map[string]any{
		"name": "North Pitch", "location": "Main St", "latitude": 45.0, "longitude": 15.0,
	})
	var created model.Field
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &created)

	upd := ts.doJSON(t, http.MethodPut, fmt.Sprintf("/api/fields/%d", created.ID), token, map[string]any{
		"name": "Renamed Pitch", "location": "Main St 2", "latitude": 45.5, "longitude": 15.5,
		"size": 8200.0, "surface_type": "artificial",
	})
	require.Equal(t, http.StatusOK, upd.StatusCode)
	var updated model.Field
	decode(t, upd, &updated)
	assert.Equal(t, "Renamed Pitch", updated.Name)
	assert.Equal(t, 8200.0, updated.Size)
	assert.Equal(t, "artificial", updated.SurfaceType)

	missing := ts.doJSON(t, http.MethodPut, "/api/fields/99999", token, map[string]any{
		"name": "Ghost", "location": "Nowhere", "latitude": 1.0, "longitude": 1.0,
	})
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestFieldBoundaryDerivation(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Alice", "alice@example.com", "pw123")
	token, _ := ts.login(t, "alice@example.com", "pw123")

	// A 0.01-degree square around (45, 15): no explicit point or size, both
	// derived from the ring.
	boundary := []map[string]float64{
		{"lat": 45.0, "lng": 15.0},
		{"lat": 45.0, "lng": 15.01},
		{"lat": 45.01, "lng": 15.01},
		{"lat": 45.01, "lng": 15.0},
		{"lat": 45.0, "lng": 15.0},
	}
	resp := ts.postJSON(t, "/api/fields", token, map[string]any{
		"name": "Traced Pitch", "location": "Main St", "boundary": boundary,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Field
	decode(t, resp, &created)

	assert.InDelta(t, 45.005, created.Latitude, 1e-9)
	assert.InDelta(t, 15.005, created.Longitude, 1e-9)
	assert.Equal(t, 1234565.0, created.Size)

	// Explicit values win over derivation.
	resp = ts.postJSON(t, "/api/fields", token, map[string]any{
		"name": "Sized Pitch", "location": "Main St", "latitude": 45.0, "longitude": 15.0,
		"size": 7000.0, "boundary": boundary,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sized model.Field
	decode(t, resp, &sized)
	assert.Equal(t, 7000.0, sized.Size)
	assert.Equal(t, 45.0, sized.Latitude)
}
