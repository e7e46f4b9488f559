package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/samirrijal/scenedraw/internal/adapters/http"
	"github.com/samirrijal/scenedraw/internal/adapters/view"
	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/ports"
	"github.com/samirrijal/scenedraw/internal/core/usecases"
)

// ---- Mock repository ----

// mockSceneRepo keeps scenes in memory unless a function field overrides the call.
type mockSceneRepo struct {
	mu     sync.Mutex
	scenes map[string]domain.StoredScene

	saveFn func(ctx context.Context, scene *domain.StoredScene) error
	pingFn func(ctx context.Context) error
}

func newMockSceneRepo() *mockSceneRepo {
	return &mockSceneRepo{scenes: make(map[string]domain.StoredScene)}
}

func (m *mockSceneRepo) Save(ctx context.Context, scene *domain.StoredScene) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, scene)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes[scene.ID] = *scene
	return nil
}

func (m *mockSceneRepo) Get(ctx context.Context, id string) (*domain.StoredScene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scenes[id]
	if !ok {
		return nil, domain.ErrSceneNotFound
	}
	return &s, nil
}

func (m *mockSceneRepo) List(ctx context.Context, offset, limit int) ([]domain.StoredScene, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]domain.StoredScene, 0, len(m.scenes))
	for _, s := range m.scenes {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SavedAt.After(all[j].SavedAt) })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockSceneRepo) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// ---- Helpers ----

func setupApp(repo *mockSceneRepo) (*fiber.App, *usecases.SessionService) {
	svc := usecases.NewSessionService(repo, nil, nil, nil,
		func(string) ports.View { return view.NewRemote() },
		usecases.SessionOptions{})
	app := fiber.New()
	handler.SetupRoutes(app, &handler.Dependencies{Sessions: svc, Store: repo})
	return app, svc
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createSession(t *testing.T, app *fiber.App) handler.SessionResponse {
	t.Helper()
	resp, body := do(t, app, "POST", "/v1/sessions", "")
	require.Equal(t, 201, resp.StatusCode, string(body))
	var s handler.SessionResponse
	require.NoError(t, json.Unmarshal(body, &s))
	return s
}

func decodeSession(t *testing.T, body []byte) handler.SessionResponse {
	t.Helper()
	var s handler.SessionResponse
	require.NoError(t, json.Unmarshal(body, &s), string(body))
	return s
}

func decodeError(t *testing.T, body []byte) handler.APIError {
	t.Helper()
	var e handler.APIError
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e
}

func pointer(kind string, lat, lng float64) string {
	return fmt.Sprintf(`{"kind":%q,"at":{"lat":%v,"lng":%v}}`, kind, lat, lng)
}

// ---- Tests ----

func TestHealthHandler(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())

	resp, body := do(t, app, "GET", "/v1/health", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.Contains(t, string(body), `"sessions":0`)
}

func TestReadyHandler(t *testing.T) {
	repo := newMockSceneRepo()
	app, _ := setupApp(repo)

	resp, body := do(t, app, "GET", "/v1/ready", "")
	assert.Equal(t, 200, resp.StatusCode, string(body))

	repo.pingFn = func(ctx context.Context) error { return errors.New("connection refused") }
	resp, body = do(t, app, "GET", "/v1/ready", "")
	assert.Equal(t, 503, resp.StatusCode)
	assert.Contains(t, string(body), "connection refused")
}

func TestCreateAndGetSession(t *testing.T) {
	app, svc := setupApp(newMockSceneRepo())

	s := createSession(t, app)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "idle", s.Capture.Rectangle)
	assert.Equal(t, "idle", s.Capture.Point)
	assert.True(t, s.Record.ImportFlags.Terrain)
	require.NotNil(t, s.View)
	assert.True(t, s.View.Dragging)
	assert.Equal(t, 1, svc.Count())

	resp, body := do(t, app, "GET", "/v1/sessions/"+s.ID, "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, s.ID, decodeSession(t, body).ID)
}

func TestGetSession_NotFound(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())

	resp, body := do(t, app, "GET", "/v1/sessions/nope", "")
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "not_found", decodeError(t, body).Code)
}

func TestCreateSession_FromSavedScene(t *testing.T) {
	repo := newMockSceneRepo()
	repo.scenes["saved-1"] = domain.StoredScene{
		ID:      "saved-1",
		Title:   "Docks",
		SavedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Record:  json.RawMessage(`{"title":"Docks","origin":{"lat":51.5,"lng":-0.02}}`),
	}
	app, _ := setupApp(repo)

	resp, body := do(t, app, "POST", "/v1/sessions?scene=saved-1", "")
	require.Equal(t, 201, resp.StatusCode, string(body))
	s := decodeSession(t, body)
	assert.Equal(t, "saved-1", s.ID)
	assert.Equal(t, "Docks", s.Record.Title)
	assert.Equal(t, "Docks", s.View.Fields["title"])
	assert.Equal(t, "51.500000", s.View.Fields["originLat"])

	resp, _ = do(t, app, "POST", "/v1/sessions?scene=missing", "")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestRectangleCaptureOverHTTP(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	resp, body := do(t, app, "POST", "/v1/sessions/"+id+"/capture/rectangle", "")
	require.Equal(t, 200, resp.StatusCode, string(body))
	s := decodeSession(t, body)
	assert.Equal(t, "armed", s.Capture.Rectangle)
	assert.False(t, s.View.Dragging)
	assert.True(t, s.View.DrawMode)

	_, body = do(t, app, "POST", "/v1/sessions/"+id+"/pointer", pointer("press", 51.500, -0.120))
	assert.Equal(t, "anchored", decodeSession(t, body).Capture.Rectangle)

	_, body = do(t, app, "POST", "/v1/sessions/"+id+"/pointer", pointer("move", 51.510, -0.090))
	s = decodeSession(t, body)
	require.Len(t, s.View.Rectangles, 1)

	_, body = do(t, app, "POST", "/v1/sessions/"+id+"/pointer", pointer("press", 51.520, -0.060))
	s = decodeSession(t, body)
	assert.Equal(t, "idle", s.Capture.Rectangle)
	assert.True(t, s.View.Dragging)
	assert.False(t, s.View.DrawMode)
	require.Len(t, s.View.Rectangles, 1)
	require.NotNil(t, s.Record.Area.AreaSqMeters)
	assert.InDelta(t, 10475354.72, *s.Record.Area.AreaSqMeters, 1)
	assert.Equal(t, "10.48 km²", s.View.Fields["area"])
	assert.Equal(t, "51.520000", s.View.Fields["neLat"])
}

func TestPointCaptureForfeitsRectangle(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	do(t, app, "POST", "/v1/sessions/"+id+"/capture/rectangle", "")
	_, body := do(t, app, "POST", "/v1/sessions/"+id+"/capture/point", "")
	s := decodeSession(t, body)
	assert.Equal(t, "idle", s.Capture.Rectangle)
	assert.Equal(t, "armed", s.Capture.Point)

	_, body = do(t, app, "POST", "/v1/sessions/"+id+"/pointer", pointer("press", 51.505, -0.090))
	s = decodeSession(t, body)
	assert.Equal(t, "idle", s.Capture.Point)
	require.Len(t, s.View.Markers, 1)
	require.NotNil(t, s.Record.Origin.Lat)
	assert.Equal(t, 51.505, *s.Record.Origin.Lat)
}

func TestCapture_Cancel(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	do(t, app, "POST", "/v1/sessions/"+id+"/capture/rectangle", "")
	do(t, app, "POST", "/v1/sessions/"+id+"/pointer", pointer("press", 51.5, -0.1))
	do(t, app, "POST", "/v1/sessions/"+id+"/pointer", pointer("move", 51.6, -0.2))

	_, body := do(t, app, "POST", "/v1/sessions/"+id+"/capture/cancel", "")
	s := decodeSession(t, body)
	assert.Equal(t, "idle", s.Capture.Rectangle)
	assert.Empty(t, s.View.Rectangles, "half-drawn preview is dropped")
	assert.True(t, s.View.Dragging)
}

func TestCapture_UnknownMode(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	resp, body := do(t, app, "POST", "/v1/sessions/"+id+"/capture/circle", "")
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "bad_request", decodeError(t, body).Code)
}

func TestPointer_UnknownKind(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	resp, _ := do(t, app, "POST", "/v1/sessions/"+id+"/pointer", pointer("hover", 1, 1))
	assert.Equal(t, 400, resp.StatusCode)
}

func TestPointer_MissingPosition(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID
	do(t, app, "POST", "/v1/sessions/"+id+"/capture/point", "")

	resp, body := do(t, app, "POST", "/v1/sessions/"+id+"/pointer", `{"kind":"press"}`)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "bad_request", decodeError(t, body).Code)

	_, body = do(t, app, "GET", "/v1/sessions/"+id, "")
	s := decodeSession(t, body)
	assert.Nil(t, s.Record.Origin.Lat, "no origin is captured at 0,0")
	assert.Equal(t, "armed", s.Capture.Point)
}

func TestFieldHandler(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	tests := []struct {
		name   string
		field  string
		body   string
		status int
	}{
		{"title", "title", `{"value":"London"}`, 200},
		{"coordinate", "swLat", `{"value":"51.5"}`, 200},
		{"garbage coordinate clears", "swLng", `{"value":"abc"}`, 200},
		{"checkbox", "trees", `{"checked":false}`, 200},
		{"checkbox given text", "trees", `{"value":"no"}`, 400},
		{"text given checkbox", "title", `{"checked":true}`, 400},
		{"both set", "title", `{"value":"x","checked":true}`, 400},
		{"neither set", "title", `{}`, 400},
		{"read-only display", "area", `{"value":"1 km²"}`, 400},
		{"unknown field", "color", `{"value":"red"}`, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, "PUT", "/v1/sessions/"+id+"/fields/"+tt.field, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
		})
	}

	_, body := do(t, app, "GET", "/v1/sessions/"+id, "")
	s := decodeSession(t, body)
	assert.Equal(t, "London", s.Record.Title)
	require.NotNil(t, s.Record.Area.SouthWest.Lat)
	assert.Equal(t, 51.5, *s.Record.Area.SouthWest.Lat)
	assert.Nil(t, s.Record.Area.SouthWest.Lng)
	assert.Nil(t, s.Record.Area.AreaSqMeters, "partial corners leave the area unset")
	assert.False(t, s.Record.ImportFlags.Trees)
}

func TestAreaAroundHandler(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	resp, body := do(t, app, "POST", "/v1/sessions/"+id+"/area-around", `{"radius":500}`)
	assert.Equal(t, 400, resp.StatusCode, "origin unset")
	assert.Contains(t, decodeError(t, body).Message, "origin")

	do(t, app, "PUT", "/v1/sessions/"+id+"/fields/originLat", `{"value":"51.5"}`)
	do(t, app, "PUT", "/v1/sessions/"+id+"/fields/originLng", `{"value":"-0.1"}`)

	resp, body = do(t, app, "POST", "/v1/sessions/"+id+"/area-around", `{"radius":500}`)
	require.Equal(t, 200, resp.StatusCode, string(body))
	s := decodeSession(t, body)
	require.NotNil(t, s.Record.Area.AreaSqMeters)
	assert.InDelta(t, 1_411_000, *s.Record.Area.AreaSqMeters, 10_000, "diagonal times height")
	assert.Len(t, s.View.Rectangles, 1)

	resp, _ = do(t, app, "POST", "/v1/sessions/"+id+"/area-around", `{"radius":0}`)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestLoadHandler(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID
	do(t, app, "PUT", "/v1/sessions/"+id+"/fields/title", `{"value":"Before"}`)

	resp, body := do(t, app, "POST", "/v1/sessions/"+id+"/load", `{"importFlags":{"terrain":false}}`)
	require.Equal(t, 200, resp.StatusCode, string(body))
	s := decodeSession(t, body)
	assert.Equal(t, "Before", s.Record.Title, "keys absent from the record are kept")
	assert.False(t, s.Record.ImportFlags.Terrain)
	assert.False(t, s.Record.ImportFlags.Buildings, "a present key is replaced as a whole")
	assert.False(t, s.View.Checkboxes["terrain"])
}

func TestLoadHandler_Malformed(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID
	do(t, app, "PUT", "/v1/sessions/"+id+"/fields/title", `{"value":"Kept"}`)

	for _, body := range []string{`not json`, `{"title": 42}`, `[1,2]`} {
		resp, data := do(t, app, "POST", "/v1/sessions/"+id+"/load", body)
		assert.Equal(t, 400, resp.StatusCode, body)
		assert.Equal(t, "malformed_record", decodeError(t, data).Code, body)
	}

	_, data := do(t, app, "GET", "/v1/sessions/"+id, "")
	assert.Equal(t, "Kept", decodeSession(t, data).Record.Title)
}

func TestSaveHandler(t *testing.T) {
	repo := newMockSceneRepo()
	app, _ := setupApp(repo)
	id := createSession(t, app).ID
	do(t, app, "PUT", "/v1/sessions/"+id+"/fields/title", `{"value":"London"}`)

	resp, body := do(t, app, "POST", "/v1/sessions/"+id+"/save", "")
	require.Equal(t, 200, resp.StatusCode, string(body))
	assert.Equal(t, `attachment; filename="London.json"`, resp.Header.Get("Content-Disposition"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "json")

	var record map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &record))
	assert.JSONEq(t, `"London"`, string(record["title"]))
	assert.NotEqual(t, "null", string(record["savedAt"]))
	assert.JSONEq(t, `{"lat":null,"lng":null}`, string(record["origin"]), "unset values are written as null")

	stored, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "London", stored.Title)
	assert.JSONEq(t, string(body), string(stored.Record))
}

func TestSaveHandler_DefaultFilename(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	resp, _ := do(t, app, "POST", "/v1/sessions/"+id+"/save", "")
	assert.Equal(t, `attachment; filename="scene_info.json"`, resp.Header.Get("Content-Disposition"))
}

func TestSaveHandler_StoreFails(t *testing.T) {
	repo := newMockSceneRepo()
	repo.saveFn = func(ctx context.Context, scene *domain.StoredScene) error {
		return errors.New("disk full")
	}
	app, _ := setupApp(repo)
	id := createSession(t, app).ID

	resp, body := do(t, app, "POST", "/v1/sessions/"+id+"/save", "")
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "internal_error", decodeError(t, body).Code)
}

func TestCloseSessionHandler(t *testing.T) {
	app, svc := setupApp(newMockSceneRepo())
	id := createSession(t, app).ID

	resp, _ := do(t, app, "DELETE", "/v1/sessions/"+id, "")
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, 0, svc.Count())

	resp, _ = do(t, app, "DELETE", "/v1/sessions/"+id, "")
	assert.Equal(t, 404, resp.StatusCode)

	id = createSession(t, app).ID
	resp, _ = do(t, app, "DELETE", "/v1/sessions/"+id+"?discard=true", "")
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, 0, svc.Count())
}

func TestListScenesHandler(t *testing.T) {
	repo := newMockSceneRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("scene-%d", i)
		repo.scenes[id] = domain.StoredScene{
			ID:      id,
			Title:   id,
			SavedAt: base.Add(time.Duration(i) * time.Hour),
			Record:  json.RawMessage(`{}`),
		}
	}
	app, _ := setupApp(repo)

	resp, body := do(t, app, "GET", "/v1/scenes?offset=1&limit=2", "")
	require.Equal(t, 200, resp.StatusCode)

	var page struct {
		Data       []handler.SceneSummary `json:"data"`
		Pagination handler.Pagination     `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, handler.Pagination{Offset: 1, Limit: 2, Total: 5}, page.Pagination)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "scene-3", page.Data[0].ID, "most recent first")
	assert.Equal(t, "scene-2", page.Data[1].ID)

	link := resp.Header.Get("Link")
	assert.Contains(t, link, `</v1/scenes?offset=3&limit=2>; rel="next"`)
	assert.Contains(t, link, `</v1/scenes?offset=0&limit=2>; rel="prev"`)
	assert.Contains(t, link, `</v1/scenes?offset=4&limit=2>; rel="last"`)
}

func TestGetSceneHandler(t *testing.T) {
	repo := newMockSceneRepo()
	repo.scenes["s1"] = domain.StoredScene{ID: "s1", Title: "One", Record: json.RawMessage(`{"title":"One"}`)}
	app, _ := setupApp(repo)

	resp, body := do(t, app, "GET", "/v1/scenes/s1", "")
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `"record":{"title":"One"}`)

	resp, _ = do(t, app, "GET", "/v1/scenes/s2", "")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestSceneStatusHandler(t *testing.T) {
	repo := newMockSceneRepo()
	app, _ := setupApp(repo)
	id := createSession(t, app).ID
	do(t, app, "POST", "/v1/sessions/"+id+"/save", "")

	report := `{"lastRunAt":"2024-03-01T10:00:00Z","generatedArtifactPaths":{"blender":"/out/scene.blend"}}`
	resp, body := do(t, app, "POST", "/v1/scenes/"+id+"/status", report)
	require.Equal(t, 204, resp.StatusCode, string(body))

	_, body = do(t, app, "GET", "/v1/sessions/"+id, "")
	s := decodeSession(t, body)
	assert.Equal(t, "/out/scene.blend", s.View.Fields["blenderPath"])
	assert.Equal(t, "N/A", s.View.Fields["mitsubaPath"])
	assert.Equal(t, "2024-03-01 10:00:00 UTC", s.View.Fields["lastRunAt"])

	stored, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Contains(t, string(stored.Record), "/out/scene.blend")

	resp, _ = do(t, app, "POST", "/v1/scenes/unknown/status", report)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGraphQLHandler(t *testing.T) {
	repo := newMockSceneRepo()
	repo.scenes["g1"] = domain.StoredScene{
		ID:      "g1",
		Title:   "Graph",
		SavedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		Record:  json.RawMessage(`{"title":"Graph","origin":{"lat":1.5,"lng":null}}`),
	}
	app, _ := setupApp(repo)
	id := createSession(t, app).ID

	query := fmt.Sprintf(`{"query":"{ scene(id: \"g1\") { title record { origin { lat lng } importFlags { terrain } } } scenes { total } session(id: \"%s\") { rectangleCapture } }"}`, id)
	resp, body := do(t, app, "POST", "/graphql", query)
	require.Equal(t, 200, resp.StatusCode)

	var result struct {
		Data struct {
			Scene struct {
				Title  string `json:"title"`
				Record struct {
					Origin struct {
						Lat *float64 `json:"lat"`
						Lng *float64 `json:"lng"`
					} `json:"origin"`
					ImportFlags struct {
						Terrain bool `json:"terrain"`
					} `json:"importFlags"`
				} `json:"record"`
			} `json:"scene"`
			Scenes struct {
				Total int `json:"total"`
			} `json:"scenes"`
			Session struct {
				RectangleCapture string `json:"rectangleCapture"`
			} `json:"session"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(body, &result), string(body))
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Graph", result.Data.Scene.Title)
	require.NotNil(t, result.Data.Scene.Record.Origin.Lat)
	assert.Equal(t, 1.5, *result.Data.Scene.Record.Origin.Lat)
	assert.Nil(t, result.Data.Scene.Record.Origin.Lng)
	assert.True(t, result.Data.Scene.Record.ImportFlags.Terrain, "defaults fill keys the record lacks")
	assert.Equal(t, 1, result.Data.Scenes.Total)
	assert.Equal(t, "idle", result.Data.Session.RectangleCapture)
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	app, _ := setupApp(newMockSceneRepo())

	resp, _ := do(t, app, "GET", "/ws/sessions/abc", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
