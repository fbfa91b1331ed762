package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/adswafford/redbiom/pkg/admin"
	"github.com/adswafford/redbiom/pkg/biom"
	"github.com/adswafford/redbiom/pkg/fetch"
	"github.com/adswafford/redbiom/pkg/kv"
	"github.com/adswafford/redbiom/pkg/metadata"
	"github.com/adswafford/redbiom/pkg/summarize"
)

// Handlers serves the redbiom HTTP API on top of a kv.Store.
type Handlers struct {
	store kv.Store
}

// NewHandlers creates the API handler set.
func NewHandlers(store kv.Store) *Handlers {
	return &Handlers{store: store}
}

// createContextRequest is the body of POST /api/v1/contexts.
type createContextRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateContext registers a new context.
func (h *Handlers) CreateContext(w http.ResponseWriter, r *http.Request) {
	var req createContextRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if req.Name == "" {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", "context name is required")
		return
	}

	if err := admin.CreateContext(r.Context(), h.store, req.Name, req.Description); err != nil {
		if errors.Is(err, admin.ErrInvalidName) {
			WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

// LoadMetadata ingests a tab-separated metadata table from the request
// body.
func (h *Handlers) LoadMetadata(w http.ResponseWriter, r *http.Request) {
	table, err := metadata.ParseTSV(r.Body)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	n, err := admin.LoadSampleMetadata(r.Context(), h.store, table)
	if err != nil {
		WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"samples_loaded": n})
}

// LoadSamples ingests a tab-separated count table from the request body
// into the context named in the URL, under the optional ?tag= query
// parameter.
func (h *Handlers) LoadSamples(w http.ResponseWriter, r *http.Request) {
	contextName := chi.URLParam(r, "context")
	tag := r.URL.Query().Get("tag")

	table, err := biom.ParseTSV(r.Body)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	n, err := admin.LoadSampleData(r.Context(), h.store, table, contextName, tag)
	if err != nil {
		switch {
		case errors.Is(err, admin.ErrUnknownContext):
			WriteProblem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, admin.ErrInvalidName):
			WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		default:
			WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"samples_loaded": n})
}

// fetchSamplesRequest is the body of POST /api/v1/fetch/samples.
type fetchSamplesRequest struct {
	Context string   `json:"context"`
	Samples []string `json:"samples"`
}

// fetchSamplesResponse carries the recovered table in the classic
// tab-separated representation plus the identifier map.
type fetchSamplesResponse struct {
	TableTSV      string              `json:"table_tsv"`
	IdentifierMap map[string][]string `json:"identifier_map"`
}

// FetchSamples recovers the count table for the requested samples.
func (h *Handlers) FetchSamples(w http.ResponseWriter, r *http.Request) {
	var req fetchSamplesRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if req.Context == "" {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", "context is required")
		return
	}

	table, idMap, err := fetch.TableFromSamples(r.Context(), h.store, req.Context, req.Samples)
	if err != nil {
		if errors.Is(err, fetch.ErrNoSamplesInContext) {
			WriteProblem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	var tsv strings.Builder
	if err := table.WriteTSV(&tsv); err != nil {
		WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, fetchSamplesResponse{
		TableTSV:      tsv.String(),
		IdentifierMap: idMap,
	})
}

// fetchMetadataRequest is the body of POST /api/v1/fetch/metadata.
type fetchMetadataRequest struct {
	Samples    []string `json:"samples"`
	Context    string   `json:"context,omitempty"`
	Common     bool     `json:"common,omitempty"`
	RestrictTo []string `json:"restrict_to,omitempty"`
}

// fetchMetadataResponse carries the metadata table as tab-separated text
// (absent cells rendered as Unspecified) plus identifiers that did not
// resolve uniquely.
type fetchMetadataResponse struct {
	MetadataTSV string   `json:"metadata_tsv"`
	Unresolved  []string `json:"unresolved,omitempty"`
}

// FetchMetadata recovers the metadata table for the requested samples.
func (h *Handlers) FetchMetadata(w http.ResponseWriter, r *http.Request) {
	var req fetchMetadataRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	table, unresolved, err := fetch.SampleMetadata(r.Context(), h.store, req.Samples, fetch.MetadataOptions{
		Context:    req.Context,
		Common:     req.Common,
		RestrictTo: req.RestrictTo,
	})
	if err != nil {
		switch {
		case errors.Is(err, fetch.ErrNoSampleMetadata):
			WriteProblem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, fetch.ErrUnknownCategory):
			WriteProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		default:
			WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		}
		return
	}

	var tsv strings.Builder
	if err := table.WriteTSV(&tsv, metadata.Unspecified); err != nil {
		WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, fetchMetadataResponse{
		MetadataTSV: tsv.String(),
		Unresolved:  unresolved,
	})
}

// SummarizeMetadata reports per-category sample counts. Categories can be
// restricted with repeated ?category= query parameters.
func (h *Handlers) SummarizeMetadata(w http.ResponseWriter, r *http.Request) {
	categories := r.URL.Query()["category"]

	counts, err := fetch.SampleCountsPerCategory(r.Context(), h.store, categories)
	if err != nil {
		WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

// SummarizeContexts lists the known contexts.
func (h *Handlers) SummarizeContexts(w http.ResponseWriter, r *http.Request) {
	summaries, err := summarize.Contexts(r.Context(), h.store)
	if err != nil {
		WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// Liveness is the health probe.
func (h *Handlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness checks that the store answers.
func (h *Handlers) Readiness(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Exists(r.Context(), "state:contexts"); err != nil {
		WriteProblem(w, http.StatusServiceUnavailable, "Service Unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
