package assets

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(t *testing.T) (*gin.Engine, *Module) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECRET_TOKEN", "secret")
	t.Setenv("DATABASE_DSN", filepath.Join(dir, "assets.db"))
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("BASE_PATH", filepath.Join(dir, "storage"))
	t.Setenv("UPLOAD_TEMP", filepath.Join(dir, "uploads"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	module, err := RegisterRoutes(router)
	require.NoError(t, err)

	// Deterministic collaborators for tests.
	module.pipeline.prober = fakeProber{fields: map[string]interface{}{"pages": 2}}
	module.pipeline.scanner = allowAllScanner{}

	return router, module
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

// The original URL the payload returns for a non-image asset must itself
// serve the file bytes.
func TestServeNonImageOriginalURL(t *testing.T) {
	router, module := newTestModule(t)

	pdf := bytes.NewReader([]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<<>>\n%%EOF\n"))
	payload, err := module.pipeline.Ingest(pdf, "contract.pdf", "documents", true)
	require.NoError(t, err)

	original := assetOf(t, payload)["original"].(string)
	require.Equal(t, "/files/pdf/documents/"+assetOf(t, payload)["name"].(string)+".pdf", original)

	response := serve(router, http.MethodGet, original)
	require.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "%PDF-1.4")
}

func TestServeImageVariantURL(t *testing.T) {
	router, module := newTestModule(t)

	payload, err := module.pipeline.Ingest(pngUpload(t, 40, 40), "red.png", "", true)
	require.NoError(t, err)
	asset := assetOf(t, payload)

	manifest, ok := asset["responsive_images"].(map[string]VariantInfo)
	require.True(t, ok)

	response := serve(router, http.MethodGet, manifest["small"].Path)
	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "image/png", response.Header().Get("Content-Type"))

	response = serve(router, http.MethodGet, "/files/images/small/unknown.png")
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func TestServeNonImageUnknownFile(t *testing.T) {
	router, _ := newTestModule(t)

	response := serve(router, http.MethodGet, "/files/pdf/missing.pdf")
	assert.Equal(t, http.StatusNotFound, response.Code)
}
