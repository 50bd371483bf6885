package assets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirsIdempotent(t *testing.T) {
	layout := NewLayout(t.TempDir(), "/files")

	require.NoError(t, layout.EnsureDirs(CategoryImage, "products/2024"))
	require.NoError(t, layout.EnsureDirs(CategoryImage, "products/2024"))

	base := filepath.Join(layout.basePath, "images", "products", "2024")
	assert.DirExists(t, base)
	for _, variant := range variantNames {
		assert.DirExists(t, filepath.Join(base, variant))
	}
}

func TestEnsureDirsNonImageHasNoVariantSubdirs(t *testing.T) {
	layout := NewLayout(t.TempDir(), "/files")

	require.NoError(t, layout.EnsureDirs(CategoryPDF, "contracts"))
	assert.DirExists(t, filepath.Join(layout.basePath, "pdf", "contracts"))
	assert.NoDirExists(t, filepath.Join(layout.basePath, "pdf", "contracts", "original"))
}

func TestPhysicalAndPublicPaths(t *testing.T) {
	layout := NewLayout("/srv/storage", "/files")

	assert.Equal(t,
		filepath.Join("/srv/storage", "images", "a", "b", "small", "x.png"),
		layout.PhysicalPath(CategoryImage, "a/b", "small", "x.png"))
	assert.Equal(t,
		filepath.Join("/srv/storage", "pdf", "x.pdf"),
		layout.PhysicalPath(CategoryPDF, "", "", "x.pdf"))

	assert.Equal(t, "/files/images/a/b/small/x.png",
		layout.PublicPath(CategoryImage, "a/b", "small", "x.png"))
	assert.Equal(t, "/files/images/original/x.png",
		layout.PublicPath(CategoryImage, "", "original", "x.png"))
	assert.Equal(t, "/files/audio/podcasts/x.mp3",
		layout.PublicPath(CategoryAudio, "podcasts", "", "x.mp3"))
}

func TestStoredFolderRoundTrip(t *testing.T) {
	assert.Equal(t, "images", StoredFolder(CategoryImage, ""))
	assert.Equal(t, "images/products/2024", StoredFolder(CategoryImage, "products/2024"))
	assert.Equal(t, "pdf/documents/contracts", StoredFolder(CategoryPDF, "documents/contracts"))

	assert.Equal(t, "products/2024", SubfolderOf(CategoryImage, "images/products/2024"))
	assert.Equal(t, "", SubfolderOf(CategoryImage, "images"))
	assert.Equal(t, "documents/contracts", SubfolderOf(CategoryPDF, "pdf/documents/contracts"))
}

func TestHighVariantJPEGPath(t *testing.T) {
	layout := NewLayout("/srv/storage", "/files")
	assert.Equal(t,
		filepath.Join("/srv/storage", "images", "gallery", "high", "abc.jpg"),
		layout.HighVariantJPEGPath("gallery", "abc"))
}
