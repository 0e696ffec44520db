package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Rigger/internal/buildlog"
	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/engine"
	"github.com/MikeSquared-Agency/Rigger/internal/recommend"
)

func part(category catalog.Category, name string, price, perf int, specs map[string]any) catalog.Component {
	return catalog.Component{Name: name, Category: category, Price: price, Stock: catalog.StockInStock,
		PerformanceScore: perf, Specs: specs}
}

// testCatalog assembles a 40000 gaming_budget build for budgets of 50000 and up.
func testCatalog() *catalog.MemoryCatalog {
	return catalog.NewMemoryCatalog([]catalog.Component{
		part(catalog.CategoryGPU, "Sapphire Pulse RX 6700 XT", 15000, 80, nil),
		part(catalog.CategoryCPU, "AMD Ryzen 5 5600X", 10000, 70, map[string]any{"socket": "AM4"}),
		part(catalog.CategoryMotherboard, "MSI B450 Tomahawk", 4000, 60, map[string]any{"chipset": "B450"}),
		part(catalog.CategoryRAM, "Kingston Fury 16GB", 3000, 60, map[string]any{"type": "DDR4"}),
		part(catalog.CategoryStorage, "WD Blue SN570 500GB", 3000, 55, nil),
		part(catalog.CategoryPSU, "Corsair CX750", 3000, 60, map[string]any{"wattage": 750}),
		part(catalog.CategoryCase, "Antec NX200", 2000, 50, nil),
		{Name: "Palit RTX 3060", Category: catalog.CategoryGPU, Price: 9000, Stock: catalog.StockOutOfStock, PerformanceScore: 70},
	})
}

type failingCatalog struct{}

func (failingCatalog) Query(context.Context, catalog.Query) ([]catalog.Component, error) {
	return nil, errors.New("connection refused")
}
func (failingCatalog) Summary(context.Context) (*catalog.Summary, error) {
	return nil, errors.New("connection refused")
}

func setupTestRouter(c catalog.Catalog) (http.Handler, *buildlog.MemoryStore) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logs := buildlog.NewMemoryStore()
	a := engine.NewAssembler(c, engine.DefaultOptions(), logger)
	svc := recommend.NewService(a, logs, nil, nil, recommend.DefaultOptions(), logger)
	router := NewRouter(svc, logs, c, RouterConfig{AdminToken: "test-token"}, logger)
	return router, logs
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type recommendBody struct {
	BuildID     string                       `json:"build_id"`
	TotalPrice  int                          `json:"total_price"`
	Remaining   int                          `json:"remaining_budget"`
	Purpose     string                       `json:"build_purpose"`
	Build       map[string]catalog.Component `json:"build"`
	Explanation map[string]string            `json:"build_explanation"`
	Bottlenecks map[string][]string          `json:"bottleneck_analysis"`
}

func TestRecommendBuild(t *testing.T) {
	router, logs := setupTestRouter(testCatalog())

	w := do(router, "POST", "/api/v1/builds/recommend", `{"budget":50000,"purpose":"gaming_budget"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp recommendBody
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalPrice != 40000 || resp.Remaining != 10000 {
		t.Errorf("expected total 40000 remaining 10000, got %d / %d", resp.TotalPrice, resp.Remaining)
	}
	if resp.Purpose != "gaming_budget" {
		t.Errorf("expected build_purpose gaming_budget, got %q", resp.Purpose)
	}
	if len(resp.Build) != 7 {
		t.Errorf("expected 7 parts, got %d", len(resp.Build))
	}
	if got := resp.Build["GPU"].Name; got != "Sapphire Pulse RX 6700 XT" {
		t.Errorf("expected in-stock GPU, got %q", got)
	}
	want := "Selected Sapphire Pulse RX 6700 XT (৳15,000) for its price-to-performance ratio in your budget range."
	if resp.Explanation["GPU"] != want {
		t.Errorf("unexpected GPU explanation %q", resp.Explanation["GPU"])
	}
	if len(resp.Explanation) != len(resp.Build) {
		t.Errorf("expected one explanation per part, got %d", len(resp.Explanation))
	}

	id, err := uuid.Parse(resp.BuildID)
	if err != nil {
		t.Fatalf("invalid build_id %q", resp.BuildID)
	}
	rec, _ := logs.Get(context.Background(), id)
	if rec == nil || rec.Source != buildlog.SourceAPI {
		t.Errorf("expected an api build log record, got %+v", rec)
	}
}

func TestRecommendBuildErrors(t *testing.T) {
	router, _ := setupTestRouter(testCatalog())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed body", `{"budget":`, http.StatusBadRequest},
		{"zero budget", `{"budget":0,"purpose":"office"}`, http.StatusBadRequest},
		{"unknown purpose", `{"budget":50000,"purpose":"mining"}`, http.StatusBadRequest},
		{"unimplemented purpose", `{"budget":50000,"purpose":"programming"}`, http.StatusNotImplemented},
		{"nothing affordable", `{"budget":30000,"purpose":"gaming_budget"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, "POST", "/api/v1/builds/recommend", tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRecommendMissReportsCategory(t *testing.T) {
	router, _ := setupTestRouter(testCatalog())

	w := do(router, "POST", "/api/v1/builds/recommend", `{"budget":30000,"purpose":"gaming_budget"}`)
	var body map[string]any
	json.NewDecoder(w.Body).Decode(&body)
	if body["category"] != "GPU" {
		t.Errorf("expected category GPU, got %v", body["category"])
	}
	if !strings.Contains(body["error"].(string), "no suitable GPU found within budget") {
		t.Errorf("unexpected error %v", body["error"])
	}
}

func TestRecommendCatalogFailure(t *testing.T) {
	router, _ := setupTestRouter(failingCatalog{})

	w := do(router, "POST", "/api/v1/builds/recommend", `{"budget":50000,"purpose":"gaming_budget"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestCompareBuilds(t *testing.T) {
	router, _ := setupTestRouter(testCatalog())

	w := do(router, "POST", "/api/v1/builds/compare", `{"budgets":[50000,30000,60000],"purpose":"gaming_budget"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Budgets    []int `json:"budgets"`
		Comparison struct {
			Builds    []json.RawMessage `json:"builds"`
			Cheapest  *int              `json:"cheapest"`
			BestValue *int              `json:"best_value"`
		} `json:"comparison"`
		Failures []recommend.BudgetFailure `json:"failures"`
		Insights Insights                  `json:"insights"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Comparison.Builds) != 2 {
		t.Fatalf("expected 2 builds, got %d", len(resp.Comparison.Builds))
	}
	if len(resp.Budgets) != 2 || resp.Budgets[0] != 50000 || resp.Budgets[1] != 60000 {
		t.Errorf("expected budgets [50000 60000], got %v", resp.Budgets)
	}
	if resp.Comparison.Cheapest == nil || *resp.Comparison.Cheapest != 0 {
		t.Errorf("expected cheapest index 0, got %v", resp.Comparison.Cheapest)
	}
	if len(resp.Failures) != 1 || resp.Failures[0].Budget != 30000 || resp.Failures[0].Category != "GPU" {
		t.Errorf("unexpected failures %+v", resp.Failures)
	}
	if len(resp.Insights.Recommendations) == 0 ||
		resp.Insights.Recommendations[0] != "Best value build: gaming_budget at ৳40,000" {
		t.Errorf("unexpected insights %v", resp.Insights.Recommendations)
	}
}

func TestCompareBuildsValidation(t *testing.T) {
	router, _ := setupTestRouter(testCatalog())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"one budget", `{"budgets":[50000],"purpose":"gaming_mid"}`, http.StatusBadRequest},
		{"six budgets", `{"budgets":[1,2,3,4,5,6],"purpose":"gaming_mid"}`, http.StatusBadRequest},
		{"negative budget", `{"budgets":[50000,-1],"purpose":"gaming_mid"}`, http.StatusBadRequest},
		{"unknown purpose", `{"budgets":[50000,60000],"purpose":"mining"}`, http.StatusBadRequest},
		{"unimplemented purpose", `{"budgets":[50000,60000],"purpose":"programming"}`, http.StatusNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, "POST", "/api/v1/builds/compare", tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestBuildLogEndpoints(t *testing.T) {
	router, _ := setupTestRouter(testCatalog())

	w := do(router, "POST", "/api/v1/builds/recommend", `{"budget":50000,"purpose":"gaming_budget"}`)
	var created recommendBody
	json.NewDecoder(w.Body).Decode(&created)
	do(router, "POST", "/api/v1/builds/recommend", `{"budget":30000,"purpose":"gaming_budget"}`)

	w = do(router, "GET", "/api/v1/builds/"+created.BuildID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var rec buildlog.Record
	json.NewDecoder(w.Body).Decode(&rec)
	if rec.ID.String() != created.BuildID || rec.TotalPrice != 40000 {
		t.Errorf("unexpected record %+v", rec)
	}

	w = do(router, "GET", "/api/v1/builds?purpose=gaming_budget", "")
	var recs []buildlog.Record
	json.NewDecoder(w.Body).Decode(&recs)
	if len(recs) != 2 {
		t.Errorf("expected 2 records, got %d", len(recs))
	}

	if w := do(router, "GET", "/api/v1/builds/"+uuid.NewString(), ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := do(router, "GET", "/api/v1/builds/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if w := do(router, "GET", "/api/v1/builds?limit=zero", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestListComponents(t *testing.T) {
	router, _ := setupTestRouter(testCatalog())

	w := do(router, "GET", "/api/v1/components?category=gpu", "")
	var comps []catalog.Component
	json.NewDecoder(w.Body).Decode(&comps)
	if len(comps) != 1 || comps[0].Name != "Sapphire Pulse RX 6700 XT" {
		t.Errorf("expected only the in-stock GPU, got %+v", comps)
	}

	w = do(router, "GET", "/api/v1/components?max_price=3000", "")
	comps = nil
	json.NewDecoder(w.Body).Decode(&comps)
	if len(comps) != 4 {
		t.Fatalf("expected 4 components at or under 3000, got %d", len(comps))
	}
	if comps[0].PerformanceScore != 60 || comps[3].Name != "Antec NX200" {
		t.Errorf("expected best performance first, got %+v", comps)
	}

	w = do(router, "GET", "/api/v1/components?limit=2", "")
	comps = nil
	json.NewDecoder(w.Body).Decode(&comps)
	if len(comps) != 2 || comps[0].Category != catalog.CategoryGPU {
		t.Errorf("expected top two by performance, got %+v", comps)
	}

	for _, path := range []string{
		"/api/v1/components?category=floppy",
		"/api/v1/components?limit=-4",
		"/api/v1/components?max_price=cheap",
	} {
		if w := do(router, "GET", path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestCatalogSummaryAndTemplates(t *testing.T) {
	router, _ := setupTestRouter(testCatalog())

	w := do(router, "GET", "/api/v1/catalog/summary", "")
	var s catalog.Summary
	json.NewDecoder(w.Body).Decode(&s)
	if s.TotalComponents != 8 || s.InStockComponents != 7 {
		t.Errorf("expected 8 total / 7 in stock, got %+v", s)
	}

	w = do(router, "GET", "/api/v1/build-templates", "")
	var templates map[string]BuildTemplate
	json.NewDecoder(w.Body).Decode(&templates)
	if len(templates) != 5 {
		t.Errorf("expected 5 templates, got %d", len(templates))
	}
	if templates["mid_gaming"].Purpose != "gaming_mid" || templates["mid_gaming"].BudgetRange != [2]int{60000, 90000} {
		t.Errorf("unexpected mid_gaming template %+v", templates["mid_gaming"])
	}
}

func TestAdminStatsRequiresToken(t *testing.T) {
	router, _ := setupTestRouter(testCatalog())
	do(router, "POST", "/api/v1/builds/recommend", `{"budget":50000,"purpose":"gaming_budget"}`)

	if w := do(router, "GET", "/api/v1/admin/stats", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats buildlog.Stats
	json.NewDecoder(w.Body).Decode(&stats)
	if stats.Total != 1 || stats.Succeeded != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestHealthEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	NewMetricsRouter(testCatalog()).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	NewMetricsRouter(failingCatalog{}).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when the catalog is down, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	NewMetricsRouter(testCatalog()).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
