package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adswafford/redbiom/internal/api/auth"
	"github.com/adswafford/redbiom/pkg/kv"
	"github.com/adswafford/redbiom/pkg/kv/badgerkv"
)

func newTestRouter(t *testing.T, tokens *auth.TokenService) (http.Handler, kv.Store) {
	t.Helper()
	store, err := badgerkv.Open(badgerkv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewRouter(store, tokens), store
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doBody(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const countTableTSV = "#OTU ID\tS1\tS2\n" +
	"F1\t1\t0\n" +
	"F2\t2\t3\n"

const metadataTSV = "#SampleID\tBODY_SITE\tAGE\n" +
	"S1\tgut\t30\n" +
	"S2\tskin\tNA\n"

// loadViaAPI pushes the standard fixture through the admin routes.
func loadViaAPI(t *testing.T, router http.Handler) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/contexts",
		map[string]string{"name": "test", "description": "a context"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doBody(t, router, http.MethodPost, "/api/v1/metadata", metadataTSV)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doBody(t, router, http.MethodPost, "/api/v1/contexts/test/samples", countTableTSV)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateContext(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/contexts",
		map[string]string{"name": "test"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Reserved names are rejected with a problem document.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/contexts",
		map[string]string{"name": "state"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/contexts",
		map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	loadViaAPI(t, router)

	var resp map[string]int
	rec := doBody(t, router, http.MethodPost, "/api/v1/contexts/test/samples?tag=run2", countTableTSV)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["samples_loaded"])

	// Loading into a context that was never created is a 404.
	rec = doBody(t, router, http.MethodPost, "/api/v1/contexts/nope/samples", countTableTSV)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed table bodies are a 400.
	rec = doBody(t, router, http.MethodPost, "/api/v1/contexts/test/samples", "#OTU ID\tS1\nF1\tno\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFetchSamples(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	loadViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/fetch/samples",
		map[string]any{"context": "test", "samples": []string{"S1", "S2"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TableTSV      string              `json:"table_tsv"`
		IdentifierMap map[string][]string `json:"identifier_map"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.TableTSV, "#OTU ID")
	assert.Contains(t, resp.TableTSV, "S1.UNTAGGED")
	assert.Equal(t, []string{"UNTAGGED_S1"}, resp.IdentifierMap["S1"])

	// No resolvable samples is a 404 with the contract wording.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/fetch/samples",
		map[string]any{"context": "test", "samples": []string{"nope"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no requested samples in context")
}

func TestFetchMetadata(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	loadViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/fetch/metadata",
		map[string]any{"samples": []string{"S1", "S2"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		MetadataTSV string   `json:"metadata_tsv"`
		Unresolved  []string `json:"unresolved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.MetadataTSV, "#SampleID")
	assert.Contains(t, resp.MetadataTSV, "gut")
	// S2's null AGE renders as the sentinel.
	assert.Contains(t, resp.MetadataTSV, "Unspecified")

	// Unknown restrict_to category is a 400.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/fetch/metadata",
		map[string]any{"samples": []string{"S1"}, "restrict_to": []string{"NOPE"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing resolvable is a 404 with the contract wording.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/fetch/metadata",
		map[string]any{"samples": []string{"nope"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "None of the samples")
}

func TestSummarizeRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	loadViaAPI(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/summarize/contexts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"test"`)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/summarize/metadata?category=BODY_SITE&category=AGE", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Counts["BODY_SITE"])
	assert.Equal(t, 1, resp.Counts["AGE"])
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	tokens, err := auth.NewTokenService(auth.Config{Secret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	router, _ := newTestRouter(t, tokens)

	// Admin route without a token is rejected.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/contexts",
		map[string]string{"name": "test"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Read routes stay open.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/summarize/contexts", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A valid bearer token unlocks the admin route.
	token, err := tokens.Issue("admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contexts",
		strings.NewReader(`{"name":"test"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
