package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/parcelarea/internal/adapters/http"
	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/core/usecases"
)

// ---- Mocks ----

type mockRenderer struct {
	err error
}

func (m *mockRenderer) Render(ctx context.Context, r *domain.AreaResult) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("\x89PNG\r\n"), nil
}

func (m *mockRenderer) Size() (int, int) { return 800, 600 }

type mockPublisher struct {
	submissions []*domain.BoundarySubmission
}

func (m *mockPublisher) PublishBoundaryEvent(ctx context.Context, ev *domain.BoundaryEvent) error {
	return nil
}

func (m *mockPublisher) PublishSubmission(ctx context.Context, sub *domain.BoundarySubmission) error {
	m.submissions = append(m.submissions, sub)
	return nil
}

// ---- Test helpers ----

const rectangleJSON = `{
  "points": [
    {"name": "A", "easting": 0, "northing": 0},
    {"name": "B", "easting": 4, "northing": 0},
    {"name": "C", "easting": 4, "northing": 3},
    {"name": "D", "easting": 0, "northing": 3}
  ],
  "segments": [
    {"from_point": "A", "to_point": "B", "bearing": "N 90 E", "distance": 4},
    {"from_point": "B", "to_point": "C", "bearing": "N 0 E", "distance": 3},
    {"from_point": "C", "to_point": "D", "bearing": "S 90 W", "distance": 4},
    {"from_point": "D", "to_point": "A", "bearing": "S 0 E", "distance": 3}
  ]
}`

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(renderer *mockRenderer, pub *mockPublisher) *handler.Dependencies {
	cfg := usecases.BoundaryConfig{ClosureToleranceM: 0.05, RenderTimeout: time.Second}
	var svc *usecases.BoundaryService
	switch {
	case renderer != nil && pub != nil:
		svc = usecases.NewBoundaryService(cfg, renderer, nil, pub)
	case renderer != nil:
		svc = usecases.NewBoundaryService(cfg, renderer, nil, nil)
	case pub != nil:
		svc = usecases.NewBoundaryService(cfg, nil, nil, pub)
	default:
		svc = usecases.NewBoundaryService(cfg, nil, nil, nil)
	}
	return &handler.Dependencies{Boundaries: svc}
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte, map[string][]string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body), resp.Header
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decodeError(t *testing.T, body []byte) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return apiErr
}

// ---- Root & health ----

func TestRoot(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["Hello"] != "World" {
		t.Errorf("unexpected banner %v", body)
	}
}

func TestRoot_ETag(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=10" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestReady_NothingConfigured(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Checks["nats"] != "not configured" || body.Checks["cache"] != "not configured" {
		t.Errorf("unexpected checks %v", body.Checks)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestReady_CacheDown(t *testing.T) {
	deps := makeDeps(nil, nil)
	deps.Cache = failingPinger{}
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- Area ----

func TestArea_Success(t *testing.T) {
	app := setupApp(makeDeps(&mockRenderer{}, nil))

	status, body, _ := postJSON(t, app, "/v1/boundaries/area", rectangleJSON)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var report domain.BoundaryReport
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatal(err)
	}
	if report.AreaSqm != 12.0 {
		t.Errorf("expected area 12.0, got %v", report.AreaSqm)
	}
	if len(report.Coordinates) != 5 {
		t.Errorf("expected 5 coordinates, got %d", len(report.Coordinates))
	}
	if !strings.HasPrefix(report.ImageBase64, "data:image/png;base64,") {
		t.Errorf("expected image data URL, got %q", report.ImageBase64)
	}
	if report.Closure == nil || !report.Closure.WithinTolerance {
		t.Errorf("expected closing traverse, got %+v", report.Closure)
	}
}

func TestArea_NoRender(t *testing.T) {
	app := setupApp(makeDeps(&mockRenderer{}, nil))

	status, body, _ := postJSON(t, app, "/v1/boundaries/area?render=false", rectangleJSON)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if bytes.Contains(body, []byte("image_base64")) {
		t.Errorf("image should be omitted: %s", body)
	}
}

func TestArea_RenderFailure(t *testing.T) {
	app := setupApp(makeDeps(&mockRenderer{err: errors.New("out of memory")}, nil))

	status, body, _ := postJSON(t, app, "/v1/boundaries/area", rectangleJSON)
	if status != 200 {
		t.Fatalf("render failure must still return 200, got %d", status)
	}
	var report domain.BoundaryReport
	json.Unmarshal(body, &report)
	if report.AreaSqm != 12.0 || report.RenderError == "" || report.ImageBase64 != "" {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestArea_UnresolvedReference(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))
	body := strings.Replace(rectangleJSON, `"from_point": "C"`, `"from_point": "X"`, 1)

	status, resp, _ := postJSON(t, app, "/v1/boundaries/area", body)
	if status != 422 {
		t.Fatalf("expected 422, got %d", status)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Code != "unresolved_reference" || !strings.Contains(apiErr.Message, `"X"`) {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestArea_InvalidJSON(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, resp, _ := postJSON(t, app, "/v1/boundaries/area", `{"points": [`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if code := decodeError(t, resp).Code; code != "bad_request" {
		t.Errorf("expected bad_request, got %s", code)
	}
}

func TestArea_EmptySegments(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, resp, _ := postJSON(t, app, "/v1/boundaries/area", `{"points":[{"name":"A","easting":0,"northing":0}],"segments":[]}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if msg := decodeError(t, resp).Message; !strings.Contains(msg, "segments") {
		t.Errorf("message should name the field, got %q", msg)
	}
}

func TestArea_NegativeTolerance(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, _, _ := postJSON(t, app, "/v1/boundaries/area?tolerance=-1", rectangleJSON)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestArea_MalformedTolerance(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, body, _ := postJSON(t, app, "/v1/boundaries/area?tolerance=abc", rectangleJSON)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if !strings.Contains(string(body), "tolerance must be a number") {
		t.Errorf("unexpected body %s", body)
	}
}

func TestArea_ZeroTolerance(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, body, _ := postJSON(t, app, "/v1/boundaries/area?render=false&tolerance=0", rectangleJSON)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var out struct {
		Closure struct {
			ToleranceM float64 `json:"tolerance_m"`
		} `json:"closure"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Closure.ToleranceM != 0 {
		t.Errorf("explicit zero tolerance not applied, got %v", out.Closure.ToleranceM)
	}
}

func TestArea_StrictBearings(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))
	body := strings.Replace(rectangleJSON, `"N 0 E"`, `"N 95 E"`, 1)

	status, _, _ := postJSON(t, app, "/v1/boundaries/area?render=false", body)
	if status != 200 {
		t.Fatalf("lenient mode: expected 200, got %d", status)
	}
	status, _, _ = postJSON(t, app, "/v1/boundaries/area?render=false&strict=true", body)
	if status != 400 {
		t.Fatalf("strict mode: expected 400, got %d", status)
	}
}

func TestLegacyProcessBoundary(t *testing.T) {
	app := setupApp(makeDeps(&mockRenderer{}, nil))

	status, body, header := postJSON(t, app, "/process-boundary", rectangleJSON)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if got := header["Deprecation"]; len(got) == 0 || got[0] != "true" {
		t.Errorf("expected Deprecation header, got %v", header)
	}
	var out struct {
		AreaSqm     float64 `json:"area_sqm"`
		ImageBase64 string  `json:"image_base64"`
	}
	json.Unmarshal(body, &out)
	if out.AreaSqm != 12.0 || out.ImageBase64 == "" {
		t.Errorf("unexpected legacy response %s", body)
	}
}

// ---- Plot ----

func TestPlot_Success(t *testing.T) {
	app := setupApp(makeDeps(&mockRenderer{}, nil))

	status, body, header := postJSON(t, app, "/v1/boundaries/plot.png", rectangleJSON)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if ct := header["Content-Type"]; len(ct) == 0 || ct[0] != "image/png" {
		t.Errorf("unexpected content type %v", ct)
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Errorf("unexpected body %q", body)
	}
}

func TestPlot_NoRenderer(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, _, _ := postJSON(t, app, "/v1/boundaries/plot.png", rectangleJSON)
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

// ---- Submit ----

func TestSubmit_Accepted(t *testing.T) {
	pub := &mockPublisher{}
	app := setupApp(makeDeps(nil, pub))

	status, body, _ := postJSON(t, app, "/v1/boundaries/submit", rectangleJSON)
	if status != 202 {
		t.Fatalf("expected 202, got %d: %s", status, body)
	}
	var out map[string]string
	json.Unmarshal(body, &out)
	if out["status"] != "queued" || out["id"] == "" {
		t.Errorf("unexpected response %v", out)
	}
	if len(pub.submissions) != 1 || pub.submissions[0].ID != out["id"] {
		t.Errorf("submission not published: %+v", pub.submissions)
	}
}

func TestSubmit_NoQueue(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, _, _ := postJSON(t, app, "/v1/boundaries/submit", rectangleJSON)
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

// ---- GraphQL ----

func TestGraphQL_ComputeArea(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	query := `{"query": "{ computeArea(input: {points: [{name: \"A\", easting: 0, northing: 0}, {name: \"B\", easting: 1, northing: 0}, {name: \"C\", easting: 1, northing: 1}, {name: \"D\", easting: 0, northing: 1}], segments: [{from_point: \"A\", to_point: \"B\"}, {from_point: \"B\", to_point: \"C\"}, {from_point: \"C\", to_point: \"D\"}, {from_point: \"D\", to_point: \"A\"}]}) { area_sqm coordinates { name } diagnostics { orientation simple } } }"}`

	status, body, _ := postJSON(t, app, "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var out struct {
		Data struct {
			ComputeArea struct {
				AreaSqm     float64 `json:"area_sqm"`
				Coordinates []struct {
					Name string `json:"name"`
				} `json:"coordinates"`
				Diagnostics struct {
					Orientation string `json:"orientation"`
					Simple      bool   `json:"simple"`
				} `json:"diagnostics"`
			} `json:"computeArea"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", out.Errors)
	}
	res := out.Data.ComputeArea
	if res.AreaSqm != 1.0 || len(res.Coordinates) != 5 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Diagnostics.Orientation != "counterclockwise" || !res.Diagnostics.Simple {
		t.Errorf("unexpected diagnostics %+v", res.Diagnostics)
	}
}

func TestGraphQL_NegativeTolerance(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	query := `{"query": "{ computeArea(tolerance: -0.5, input: {points: [{name: \"A\", easting: 0, northing: 0}, {name: \"B\", easting: 1, northing: 0}, {name: \"C\", easting: 1, northing: 1}], segments: [{from_point: \"A\", to_point: \"B\"}, {from_point: \"B\", to_point: \"C\"}, {from_point: \"C\", to_point: \"A\"}]}) { area_sqm } }"}`

	status, body, _ := postJSON(t, app, "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var out struct {
		Data struct {
			ComputeArea *struct{} `json:"computeArea"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Errors) == 0 || !strings.Contains(out.Errors[0].Message, "tolerance") {
		t.Fatalf("expected tolerance error, got %s", body)
	}
	if out.Data.ComputeArea != nil {
		t.Error("no result expected for a rejected tolerance")
	}
}

func TestGraphQL_Bearing(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, body, _ := postJSON(t, app, "/graphql", `{"query": "{ bearing(value: \"S 45 W\") }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var out struct {
		Data struct {
			Bearing float64 `json:"bearing"`
		} `json:"data"`
	}
	json.Unmarshal(body, &out)
	if out.Data.Bearing != 225 {
		t.Errorf("expected 225, got %v", out.Data.Bearing)
	}
}

// ---- WebSocket ----

func TestWebSocket_NotConfigured(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/ws", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
