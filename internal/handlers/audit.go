package handlers

import (
	"net/http"

	"github.com/crucial707/vigil/internal/repo"
	"go.uber.org/zap"
)

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	Repo *repo.AuditRepo
	Log  *zap.Logger
}

// ListAudit returns recent audit log entries, newest first. Query: limit (default 100, max 1000), offset (default 0).
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.Log, err, "list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
