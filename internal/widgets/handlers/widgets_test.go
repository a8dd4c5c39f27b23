package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"widget-board/internal/widgets/models"
	"widget-board/internal/widgets/repository"
	"widget-board/internal/widgets/service"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Fixtures
// ============================================================

type stubJournal struct {
	events []models.Event
	err    error
	limit  int
}

func (j *stubJournal) Recent(_ context.Context, limit int) ([]models.Event, error) {
	j.limit = limit
	return j.events, j.err
}

func newApp(t *testing.T, opts ...Option) *fiber.App {
	t.Helper()
	app := fiber.New()
	NewWidgetHandler(service.New(repository.NewStore()), opts...).Routes(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func create(t *testing.T, app *fiber.App, body string) widgetResponse {
	t.Helper()
	resp, data := do(t, app, http.MethodPost, "/api/widgets", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var out widgetResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func errorOf(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Error
}

func rels(links []link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Rel)
	}
	return out
}

// ============================================================
// Create / Get
// ============================================================

func TestCreate_ReturnsWidgetWithLinks(t *testing.T) {
	app := newApp(t)

	w := create(t, app, `{"xCoordinate": 10, "yCoordinate": 20, "zIndex": 3, "width": 5, "height": 6}`)
	assert.NotEqual(t, uuid.Nil, w.ID)
	assert.Equal(t, int64(10), w.X)
	assert.Equal(t, int64(3), w.ZIndex)
	assert.Equal(t, []string{"self", "widgets", "update", "delete"}, rels(w.Links))
	assert.Equal(t, "/api/widgets/"+w.ID.String(), w.Links[0].Href)

	resp, data := do(t, app, http.MethodGet, "/api/widgets/"+w.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got widgetResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, w.ID, got.ID)
	assert.True(t, w.ModifiedAt.Equal(got.ModifiedAt))
}

func TestCreate_Validation(t *testing.T) {
	app := newApp(t)

	cases := map[string]struct {
		body string
		want string
	}{
		"empty body":   {"", "empty body"},
		"bad json":     {"{", "invalid json"},
		"zero width":   {`{"width": 0, "height": 1}`, "width must be at least 1"},
		"missing both": {`{}`, "width must be at least 1; height must be at least 1"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, data := do(t, app, http.MethodPost, "/api/widgets", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.want, errorOf(t, data))
		})
	}
}

func TestCreate_CornerOutsideCoordinateRange(t *testing.T) {
	app := newApp(t)

	resp, data := do(t, app, http.MethodPost, "/api/widgets", `{"xCoordinate": 9223372036854775807, "yCoordinate": 0, "width": 4, "height": 4}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, data), "coordinate range")
}

func TestGet_Errors(t *testing.T) {
	app := newApp(t)

	resp, _ := do(t, app, http.MethodGet, "/api/widgets/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data := do(t, app, http.MethodGet, "/api/widgets/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, errorOf(t, data), "not found")
}

// ============================================================
// Update / Delete
// ============================================================

func TestUpdate(t *testing.T) {
	app := newApp(t)
	a := create(t, app, `{"zIndex": 1, "width": 1, "height": 1}`)
	b := create(t, app, `{"zIndex": 2, "width": 1, "height": 1}`)

	resp, data := do(t, app, http.MethodPut, "/api/widgets/"+a.ID.String(), `{"width": 1, "height": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, data), "zIndex")

	resp, _ = do(t, app, http.MethodPut, "/api/widgets/"+uuid.NewString(), `{"zIndex": 1, "width": 1, "height": 1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, data = do(t, app, http.MethodPut, "/api/widgets/"+a.ID.String(), `{"zIndex": 2, "width": 7, "height": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var updated widgetResponse
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, a.ID, updated.ID)
	assert.Equal(t, int64(2), updated.ZIndex)
	assert.Equal(t, int64(7), updated.Width)

	_, data = do(t, app, http.MethodGet, "/api/widgets/"+b.ID.String(), "")
	var shifted widgetResponse
	require.NoError(t, json.Unmarshal(data, &shifted))
	assert.Equal(t, int64(3), shifted.ZIndex)
}

func TestDelete(t *testing.T) {
	app := newApp(t)
	w := create(t, app, `{"width": 1, "height": 1}`)

	resp, data := do(t, app, http.MethodDelete, "/api/widgets/"+w.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var removed widgetResponse
	require.NoError(t, json.Unmarshal(data, &removed))
	assert.Equal(t, w.ID, removed.ID)
	assert.Equal(t, []string{"widgets"}, rels(removed.Links))

	resp, _ = do(t, app, http.MethodDelete, "/api/widgets/"+w.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteAll(t *testing.T) {
	app := newApp(t)
	create(t, app, `{"width": 1, "height": 1}`)
	create(t, app, `{"width": 1, "height": 1}`)

	resp, _ := do(t, app, http.MethodDelete, "/api/widgets", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, data := do(t, app, http.MethodGet, "/api/widgets", "")
	var page pageResponse
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Page.TotalItems)
}

// ============================================================
// List
// ============================================================

func TestList_PagesAndLinks(t *testing.T) {
	app := newApp(t)
	for i := 0; i < 7; i++ {
		create(t, app, `{"width": 1, "height": 1}`)
	}

	resp, data := do(t, app, http.MethodGet, "/api/widgets?page=2&size=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page pageResponse
	require.NoError(t, json.Unmarshal(data, &page))
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(3), page.Items[0].ZIndex)
	assert.Equal(t, pageMeta{Number: 2, Size: 3, TotalItems: 7, TotalPages: 3}, page.Page)
	assert.Equal(t, []string{"self", "create", "prev", "next"}, rels(page.Links))
	assert.Equal(t, "/api/widgets?page=3&size=3", page.Links[3].Href)

	_, data = do(t, app, http.MethodGet, "/api/widgets", "")
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Len(t, page.Items, 7)
	assert.Equal(t, int64(10), page.Page.Size)
	assert.Equal(t, []string{"self", "create"}, rels(page.Links))
}

func TestList_Filter(t *testing.T) {
	app := newApp(t)
	create(t, app, `{"xCoordinate": 150, "yCoordinate": 100, "width": 300, "height": 200}`)
	small := create(t, app, `{"xCoordinate": 50, "yCoordinate": 50, "width": 100, "height": 100}`)

	resp, data := do(t, app, http.MethodGet, "/api/widgets?bottomLeftX=0&bottomLeftY=0&upperRightX=100&upperRightY=100&size=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var page pageResponse
	require.NoError(t, json.Unmarshal(data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, small.ID, page.Items[0].ID)
	assert.Equal(t, "/api/widgets?page=1&size=1&bottomLeftX=0&bottomLeftY=0&upperRightX=100&upperRightY=100", page.Links[0].Href)
}

func TestList_BadQuery(t *testing.T) {
	app := newApp(t, WithMaxPageSize(50))

	for _, target := range []string{
		"/api/widgets?page=0",
		"/api/widgets?size=0",
		"/api/widgets?size=51",
		"/api/widgets?page=abc",
		"/api/widgets?bottomLeftX=1",
		"/api/widgets?bottomLeftX=x&bottomLeftY=0&upperRightX=1&upperRightY=1",
		"/api/widgets?bottomLeftX=5&bottomLeftY=0&upperRightX=1&upperRightY=1",
	} {
		resp, data := do(t, app, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s: %s", target, data)
	}
}

// ============================================================
// Render / Journal
// ============================================================

func TestRenderSVG(t *testing.T) {
	app := newApp(t)
	w := create(t, app, `{"width": 10, "height": 10}`)

	resp, data := do(t, app, http.MethodGet, "/api/widgets/render.svg", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(data), w.ID.String())
}

func TestJournal(t *testing.T) {
	resp, _ := do(t, newApp(t), http.MethodGet, "/api/widgets/journal", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	journal := &stubJournal{events: []models.Event{{Seq: 2, Kind: models.EventDeleted, WidgetID: uuid.New()}}}
	app := newApp(t, WithJournal(journal))

	resp, data := do(t, app, http.MethodGet, "/api/widgets/journal?limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, journal.limit)

	var body struct {
		Events []eventResponse `json:"events"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, "deleted", body.Events[0].Kind)

	resp, _ = do(t, app, http.MethodGet, "/api/widgets/journal?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	journal.err = errors.New("database is locked")
	resp, data = do(t, app, http.MethodGet, "/api/widgets/journal", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal error", errorOf(t, data))
	assert.Equal(t, defaultJournalLimit, journal.limit)
}
