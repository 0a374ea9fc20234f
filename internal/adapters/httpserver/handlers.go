// internal/adapters/httpserver/handlers.go
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/ViaEstate/feed-ingest/internal/domain"
)

// ImportRunner is the app service behind the trigger endpoint.
type ImportRunner interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}

type Handlers struct {
	Importer ImportRunner

	running atomic.Bool
}

// importResponse mirrors what the marketplace admin panel expects from a
// triggered import.
type importResponse struct {
	Success        bool     `json:"success"`
	Processed      int      `json:"processed"`
	Created        int      `json:"created"`
	Failed         int      `json:"failed"`
	ImagesUploaded int      `json:"images_uploaded"`
	PropertyIDs    []string `json:"property_ids"`
	Error          string   `json:"error,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/imports", h.runImport)
}

func (h *Handlers) runImport(w http.ResponseWriter, r *http.Request) {
	if !h.running.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, importResponse{Error: "an import is already running"})
		return
	}
	defer h.running.Store(false)

	sum, err := h.Importer.Run(r.Context())
	if err != nil {
		// fatal fetch/parse failure; per-record failures land in counts
		writeJSON(w, http.StatusBadGateway, importResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Success:        true,
		Processed:      sum.Processed,
		Created:        sum.Created,
		Failed:         sum.Failed,
		ImagesUploaded: sum.ImagesUploaded,
		PropertyIDs:    sum.References,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}
