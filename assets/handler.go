package assets

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"assetbucket/storage"
	"github.com/gin-gonic/gin"
)

// Module wires the ingestion pipeline behind a thin HTTP surface. Handlers
// parse parameters and map error kinds to statuses; every invariant lives in
// the pipeline.
type Module struct {
	cfg      Config
	pipeline *Pipeline
}

func RegisterRoutes(router *gin.Engine) (*Module, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	db, err := openDatabaseFromEnv()
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MediaAsset{}); err != nil {
		return nil, fmt.Errorf("assets: migrate tables: %w", err)
	}

	layout := NewLayout(cfg.BasePath, cfg.PublicPrefix)
	if err := layout.EnsureBase(cfg.TempPath); err != nil {
		return nil, err
	}

	mirror, err := storage.NewMirrorFromEnv()
	if err != nil {
		log.Printf("assets: offsite mirror disabled: %v", err)
		mirror = nil
	}

	pipeline := NewPipeline(cfg, layout, NewAssetStore(db),
		NewScannerFromConfig(cfg), NewToolProber(), mirror, newPayloadCacheFromEnv())

	module := &Module{cfg: cfg, pipeline: pipeline}

	router.POST("/upload", module.handleUpload)
	router.GET("/asset/:base_name", module.handleGetAsset)
	router.GET("/files/images/*filepath", module.handleServeImage)
	// Non-image categories have no renditions; their files are served
	// straight off the category roots.
	for _, category := range []Category{CategoryPDF, CategoryAudio, CategoryVideo} {
		router.Static(
			path.Join(cfg.PublicPrefix, categoryDir(category)),
			filepath.Join(cfg.BasePath, categoryDir(category)))
	}
	router.DELETE("/delete/name/:base_name", module.handleDeleteByName)
	router.DELETE("/delete/uid/:uid", module.handleDeleteByUID)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return module, nil
}

func (m *Module) authorized(c *gin.Context) bool {
	token := c.GetHeader("X-Secret-Token")
	return subtle.ConstantTimeCompare([]byte(token), []byte(m.cfg.SecretToken)) == 1
}

func (m *Module) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload"})
		return
	}
	defer src.Close()

	payload, err := m.pipeline.Ingest(src, header.Filename, c.PostForm("folder"), m.authorized(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (m *Module) handleGetAsset(c *gin.Context) {
	payload, err := m.pipeline.GetAsset(c.Param("base_name"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// handleServeImage serves rendition bytes. The wildcard follows the
// /files/images/{folder?}/{variant}/{filename} convention, so the variant is
// the second-to-last segment.
func (m *Module) handleServeImage(c *gin.Context) {
	rest := strings.Trim(c.Param("filepath"), "/")
	segments := strings.Split(rest, "/")
	if len(segments) < 2 {
		renderError(c, ErrNotFound)
		return
	}
	variant := segments[len(segments)-2]
	relPath := strings.Join(append(segments[:len(segments)-2:len(segments)-2], segments[len(segments)-1]), "/")

	physical, mimeType, err := m.pipeline.GetVariantFile(variant, relPath)
	if err != nil {
		renderError(c, err)
		return
	}
	c.Header("Content-Type", mimeType)
	c.File(physical)
}

func (m *Module) handleDeleteByName(c *gin.Context) {
	name := c.Param("base_name")
	if err := m.pipeline.DeleteByBaseName(name, m.authorized(c)); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "name": name})
}

func (m *Module) handleDeleteByUID(c *gin.Context) {
	uid := c.Param("uid")
	if err := m.pipeline.DeleteByUID(uid, m.authorized(c)); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "uid": uid})
}

// renderError maps a pipeline error kind to a status and a stable public
// message. Wrapped internals stay in the server log.
func renderError(c *gin.Context, err error) {
	kinds := []struct {
		kind   error
		status int
	}{
		{ErrInvalidCredential, http.StatusUnauthorized},
		{ErrNotFound, http.StatusNotFound},
		{ErrUnsupportedMediaType, http.StatusBadRequest},
		{ErrSecurityScanFailed, http.StatusBadRequest},
		{ErrDecode, http.StatusBadRequest},
	}
	for _, entry := range kinds {
		if errors.Is(err, entry.kind) {
			c.JSON(entry.status, gin.H{"error": entry.kind.Error()})
			return
		}
	}
	log.Printf("assets: request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
