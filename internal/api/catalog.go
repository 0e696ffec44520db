package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

const (
	defaultComponentLimit = 50
	maxComponentLimit     = 100
)

type CatalogHandler struct {
	catalog catalog.Catalog
}

func NewCatalogHandler(c catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// Components lists in-stock components, best performance first.
// GET /api/v1/components?category=&max_price=&limit=
func (h *CatalogHandler) Components(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultComponentLimit
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxComponentLimit)
	}
	maxPrice := 0
	if p := q.Get("max_price"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_price must be a positive integer"})
			return
		}
		maxPrice = n
	}

	categories := catalog.Categories
	if c := q.Get("category"); c != "" {
		cat, err := catalog.ParseCategory(c)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		categories = []catalog.Category{cat}
	}

	out := []catalog.Component{}
	for _, cat := range categories {
		comps, err := h.catalog.Query(r.Context(), catalog.Query{
			Category: cat,
			MaxPrice: maxPrice,
			Stock:    catalog.StockInStock,
			Limit:    limit,
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		out = append(out, comps...)
	}
	if len(categories) > 1 {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].PerformanceScore != out[j].PerformanceScore {
				return out[i].PerformanceScore > out[j].PerformanceScore
			}
			return out[i].Price < out[j].Price
		})
		if len(out) > limit {
			out = out[:limit]
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Summary returns component counts.
// GET /api/v1/catalog/summary
func (h *CatalogHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.catalog.Summary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type BuildTemplate struct {
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	BudgetRange         [2]int        `json:"budget_range"`
	Purpose             rules.Purpose `json:"purpose"`
	ExpectedPerformance string        `json:"expected_performance"`
}

var buildTemplates = map[string]BuildTemplate{
	"budget_gaming": {
		Name:                "Budget Gaming PC",
		Description:         "Good 1080p gaming performance for tight budgets",
		BudgetRange:         [2]int{35000, 50000},
		Purpose:             rules.PurposeGamingBudget,
		ExpectedPerformance: "1080p Medium-High settings, 60+ FPS",
	},
	"mid_gaming": {
		Name:                "Mid-Range Gaming PC",
		Description:         "Excellent 1080p, good 1440p gaming",
		BudgetRange:         [2]int{60000, 90000},
		Purpose:             rules.PurposeGamingMid,
		ExpectedPerformance: "1080p Ultra, 1440p High settings, 60+ FPS",
	},
	"high_gaming": {
		Name:                "High-End Gaming PC",
		Description:         "4K gaming and future-proof performance",
		BudgetRange:         [2]int{120000, 200000},
		Purpose:             rules.PurposeGamingHigh,
		ExpectedPerformance: "1440p Ultra, 4K High settings, 60+ FPS",
	},
	"office": {
		Name:                "Office PC",
		Description:         "Reliable performance for office work",
		BudgetRange:         [2]int{25000, 40000},
		Purpose:             rules.PurposeOffice,
		ExpectedPerformance: "Smooth office applications, web browsing",
	},
	"content_creation": {
		Name:                "Content Creation PC",
		Description:         "Video editing, 3D rendering, streaming",
		BudgetRange:         [2]int{80000, 150000},
		Purpose:             rules.PurposeContentCreation,
		ExpectedPerformance: "4K video editing, 3D rendering, live streaming",
	},
}

// Templates returns the static starter builds.
// GET /api/v1/build-templates
func (h *CatalogHandler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildTemplates)
}
