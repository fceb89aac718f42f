package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/radiodial/internal/adapters/http"
)

// findOpenAPISpec locates api/openapi.yaml by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	t.Helper()
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	data, err := os.ReadFile(findOpenAPISpec(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}
	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}
	return spec
}

// TestOpenAPISpec validates the document and checks it covers every route.
func TestOpenAPISpec(t *testing.T) {
	spec := loadSpec(t)

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/places",
		"/v1/places/{id}",
		"/v1/places/{id}/channels",
		"/v1/channels/{id}",
		"/v1/channels/{id}/stream",
		"/v1/search",
		"/v1/geo",
		"/v1/nearby",
		"/v1/nearby/auto",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	expectedSchemas := []string{
		"Envelope",
		"Status",
		"Place",
		"PlaceDetail",
		"Channel",
		"PlaceChannels",
		"StreamURL",
		"SearchResults",
		"Geolocation",
		"NearbyChannels",
		"ChannelRef",
		"RankingEvent",
		"APIError",
		"Pagination",
	}
	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}
}

// TestOpenAPIRoutesMatchRouter checks every documented /v1 GET path is registered.
func TestOpenAPIRoutesMatchRouter(t *testing.T) {
	spec := loadSpec(t)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, makeDeps(&mockDirectory{}))

	registered := map[string]bool{}
	for _, r := range app.GetRoutes(true) {
		registered[r.Method+" "+r.Path] = true
	}

	for path, item := range spec.Paths.Map() {
		fiberPath := openAPIToFiber(path)
		if item.Get != nil && !registered["GET "+fiberPath] {
			t.Errorf("documented GET %s is not routed", path)
		}
		if item.Post != nil && !registered["POST "+fiberPath] {
			t.Errorf("documented POST %s is not routed", path)
		}
	}
}

// TestOpenAPIInfo verifies spec metadata.
func TestOpenAPIInfo(t *testing.T) {
	spec := loadSpec(t)

	if spec.Info.Title != "radiodial API" {
		t.Errorf("expected title 'radiodial API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}
}

func TestDocs_ServesSpec(t *testing.T) {
	path := findOpenAPISpec(t)
	app := setupApp(makeDeps(&mockDirectory{}, func(d *handler.Dependencies) { d.SpecPath = path }))

	code, body := get(t, app, "/docs/openapi.yaml")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	want, _ := os.ReadFile(path)
	if string(body) != string(want) {
		t.Error("served document differs from api/openapi.yaml")
	}

	if code, _ := get(t, app, "/docs"); code != 200 {
		t.Errorf("expected swagger UI, got %d", code)
	}
}

func TestDocs_MissingSpec(t *testing.T) {
	app := setupApp(makeDeps(&mockDirectory{}, func(d *handler.Dependencies) { d.SpecPath = "does/not/exist.yaml" }))

	if code, _ := get(t, app, "/docs/openapi.yaml"); code != 404 {
		t.Errorf("expected 404, got %d", code)
	}
}

// openAPIToFiber rewrites /v1/places/{id} as /v1/places/:id.
func openAPIToFiber(path string) string {
	out := make([]byte, 0, len(path))
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '{':
			out = append(out, ':')
		case '}':
		default:
			out = append(out, path[i])
		}
	}
	return string(out)
}
