package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Rigger/internal/buildlog"
	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/engine"
	"github.com/MikeSquared-Agency/Rigger/internal/recommend"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

type BuildsHandler struct {
	service *recommend.Service
	logs    buildlog.Store
}

func NewBuildsHandler(svc *recommend.Service, logs buildlog.Store) *BuildsHandler {
	return &BuildsHandler{service: svc, logs: logs}
}

type RecommendRequest struct {
	Budget               int            `json:"budget"`
	Purpose              string         `json:"purpose"`
	PreferBrands         []string       `json:"prefer_brands,omitempty"`
	AvoidBrands          []string       `json:"avoid_brands,omitempty"`
	SpecificRequirements map[string]any `json:"specific_requirements,omitempty"`
}

// RecommendResponse wraps the build; the explanation is never stored on the build itself.
type RecommendResponse struct {
	BuildID uuid.UUID `json:"build_id"`
	*engine.Build
	Explanation map[catalog.Category]string `json:"build_explanation"`
}

// Recommend assembles one build.
// POST /api/v1/builds/recommend
func (h *BuildsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, err := h.service.Recommend(r.Context(), engine.BuildRequirements{
		Purpose:      rules.Purpose(req.Purpose),
		Budget:       req.Budget,
		Preferences:  req.SpecificRequirements,
		PreferBrands: req.PreferBrands,
		AvoidBrands:  req.AvoidBrands,
	}, buildlog.SourceAPI)
	if err != nil {
		writeBuildError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendResponse{
		BuildID:     res.BuildID,
		Build:       res.Build,
		Explanation: ExplainBuild(res.Build),
	})
}

type CompareRequest struct {
	Budgets     []int       `json:"budgets"`
	Purpose     string      `json:"purpose"`
	Preferences Preferences `json:"preferences"`
}

type Preferences struct {
	PreferBrands []string `json:"prefer_brands,omitempty"`
	AvoidBrands  []string `json:"avoid_brands,omitempty"`
}

type CompareResponse struct {
	*recommend.CompareResult
	Insights Insights `json:"insights"`
}

// Compare builds one recommendation per budget and ranks them.
// POST /api/v1/builds/compare
func (h *BuildsHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	purpose, err := rules.ParsePurpose(req.Purpose)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := h.service.Compare(r.Context(), purpose, req.Budgets, engine.Preferences{
		PreferBrands: req.Preferences.PreferBrands,
		AvoidBrands:  req.Preferences.AvoidBrands,
	})
	if err != nil {
		writeBuildError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CompareResponse{
		CompareResult: res,
		Insights:      CompareInsights(res.Comparison),
	})
}

// Get returns one build log record.
// GET /api/v1/builds/{id}
func (h *BuildsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid build id"})
		return
	}
	rec, err := h.logs.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "build not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// List returns recent build log records, newest first.
// GET /api/v1/builds?purpose=&source=&limit=
func (h *BuildsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := buildlog.Filter{Source: buildlog.Source(r.URL.Query().Get("source"))}
	if p := r.URL.Query().Get("purpose"); p != "" {
		purpose, err := rules.ParsePurpose(p)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		filter.Purpose = purpose
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = n
	}

	recs, err := h.logs.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []*buildlog.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func writeBuildError(w http.ResponseWriter, err error) {
	var miss *engine.NoSuitableComponentError
	var unimplemented *engine.UnimplementedPurposeError
	switch {
	case errors.As(err, &miss):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":       err.Error(),
			"category":    miss.Category,
			"constraints": miss.Constraints.Map(),
		})
	case errors.As(err, &unimplemented):
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidRequirements), errors.Is(err, recommend.ErrInvalidComparison):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "build assembly timed out"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
