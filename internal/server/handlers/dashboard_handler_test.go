package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbarry-dev/stationtrack/internal/domain/models"
	"github.com/dbarry-dev/stationtrack/internal/repository/registry"
	"github.com/dbarry-dev/stationtrack/internal/server/handlers"
	"github.com/dbarry-dev/stationtrack/internal/server/router"
)

const testTemplate = `{{ range .Items }}<tr data-item="{{ .ItemID }}">{{ .Location }}</tr>{{ end }}`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	store := registry.NewCSVStore(filepath.Join(dir, "Items.csv"), "Station A", nil)

	ctx := context.Background()
	for _, id := range []string{"ITEM01", "ITEM02", "OTHER"} {
		_, _, err := store.Add(ctx, id, "QRCODE", "", "")
		require.NoError(t, err)
	}

	templates := filepath.Join(dir, "dashboard.html")
	require.NoError(t, os.WriteFile(templates, []byte(testTemplate), 0o644))

	handler := handlers.NewDashboardHandler(store, nil)
	return router.New(handler, nil, filepath.Join(dir, "*.html"))
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDashboardIndex(t *testing.T) {
	r := newTestRouter(t)

	t.Run("GET renders every row", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `data-item="ITEM01"`)
		assert.Contains(t, w.Body.String(), `data-item="OTHER"`)
	})

	t.Run("POST filters by search substring", func(t *testing.T) {
		form := url.Values{"search": {"ITEM"}}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `data-item="ITEM01"`)
		assert.Contains(t, w.Body.String(), `data-item="ITEM02"`)
		assert.NotContains(t, w.Body.String(), `data-item="OTHER"`)
	})
}

func TestItemsAPI(t *testing.T) {
	r := newTestRouter(t)

	t.Run("filtered", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/items?search=ITEM", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Items []models.ItemRecord `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Items, 2)
		assert.Equal(t, "ITEM01", body.Items[0].ItemID)
		assert.Equal(t, "Station A", body.Items[0].Location)
	})

	t.Run("unfiltered returns everything", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Items []models.ItemRecord `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Items, 3)
	})
}
