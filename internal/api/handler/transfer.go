package handler

import (
	"io"
	"net/http"

	"github.com/dlsl-isg/reaction-ring/internal/api/response"
	"github.com/dlsl-isg/reaction-ring/internal/dependencies/clock"
	"github.com/dlsl-isg/reaction-ring/internal/services/roster"
)

// maxImportBytes bounds an import upload; the full roster for an event is
// well under this
const maxImportBytes = 16 << 20

// TransferHandler handles bulk roster import and export
type TransferHandler struct {
	importer *roster.Importer
	cache    *roster.Cache
	clock    clock.Clock
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(importer *roster.Importer, cache *roster.Cache, clk clock.Clock) *TransferHandler {
	return &TransferHandler{importer: importer, cache: cache, clock: clk}
}

// Import handles POST /api/v1/import
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		WriteError(w, NewInvalidRequestError("failed to read request body"))
		return
	}

	imported, err := h.importer.Import(r.Context(), data, nil)
	if err != nil {
		// Chunks written before the failure stay applied; the count tells
		// the operator how far it got
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ImportResult{Imported: imported})
}

// Export handles GET /api/v1/export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.cache.Export(h.clock.Now())
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="reaction-ring-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
