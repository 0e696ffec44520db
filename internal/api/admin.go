package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Rigger/internal/buildlog"
)

type AdminHandler struct {
	logs buildlog.Store
}

func NewAdminHandler(logs buildlog.Store) *AdminHandler {
	return &AdminHandler{logs: logs}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.logs.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
