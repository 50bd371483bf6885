package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, dir string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	path := filepath.Join(dir, "source.png")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(out, img))
	require.NoError(t, out.Close())
	return path
}

func countFilesUnder(t *testing.T, root string) int {
	t.Helper()
	count := 0
	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestGenerateSmallSourceNeverUpscales(t *testing.T) {
	dir := t.TempDir()
	layout := NewLayout(filepath.Join(dir, "storage"), "/files")
	engine := NewVariantEngine(layout)

	source := writeTestPNG(t, dir, 100, 100)
	payload, err := engine.Generate(source, "photo.png", "")
	require.NoError(t, err)

	assert.Equal(t, 100, payload.Width)
	assert.Equal(t, 100, payload.Height)
	assert.Equal(t, "png", payload.Extension)
	require.Len(t, payload.Variants, len(variantNames))

	for _, name := range variantNames {
		info, ok := payload.Variants[name]
		require.True(t, ok, "missing variant %s", name)
		assert.Positive(t, info.Size, "variant %s size", name)

		physical := layout.PhysicalPath(CategoryImage, "", name, payload.BaseName+".png")
		assert.FileExists(t, physical)
	}

	// 100x100 fits inside every bounding box except the placeholder.
	for _, name := range []string{"original", "small", "medium", "high"} {
		assert.Equal(t, 100, payload.Variants[name].Width, name)
		assert.Equal(t, 100, payload.Variants[name].Height, name)
	}
	assert.Equal(t, 20, payload.Variants["placeholder"].Width)
	assert.Equal(t, 20, payload.Variants["placeholder"].Height)
}

func TestGenerateDownscalesPreservingAspect(t *testing.T) {
	dir := t.TempDir()
	layout := NewLayout(filepath.Join(dir, "storage"), "/files")
	engine := NewVariantEngine(layout)

	source := writeTestPNG(t, dir, 1000, 500)
	payload, err := engine.Generate(source, "wide.png", "gallery")
	require.NoError(t, err)

	assert.Equal(t, 320, payload.Variants["small"].Width)
	assert.Equal(t, 160, payload.Variants["small"].Height)
	assert.Equal(t, 800, payload.Variants["medium"].Width)
	assert.Equal(t, 400, payload.Variants["medium"].Height)
	// 1600 box is larger than the source: no upscale.
	assert.Equal(t, 1000, payload.Variants["high"].Width)
	assert.Equal(t, 500, payload.Variants["high"].Height)
	assert.Equal(t, 20, payload.Variants["placeholder"].Width)
	assert.Equal(t, 10, payload.Variants["placeholder"].Height)

	assert.Equal(t, "/files/images/gallery/small/"+payload.BaseName+".png",
		payload.Variants["small"].Path)
}

func TestGenerateExtensionDefaultsToJPEG(t *testing.T) {
	dir := t.TempDir()
	layout := NewLayout(filepath.Join(dir, "storage"), "/files")
	engine := NewVariantEngine(layout)

	source := writeTestPNG(t, dir, 40, 40)
	payload, err := engine.Generate(source, "noextension", "")
	require.NoError(t, err)

	assert.Equal(t, "jpg", payload.Extension)
	assert.FileExists(t, layout.PhysicalPath(CategoryImage, "", "original", payload.BaseName+".jpg"))
}

func TestWriteVariantErrorLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	layout := NewLayout(filepath.Join(dir, "storage"), "/files")
	engine := NewVariantEngine(layout)

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	dst := filepath.Join(dir, "no-such-dir", "x.png")

	_, err := engine.writeVariant(dst, img, imaging.PNG, 0)
	require.ErrorIs(t, err, ErrIO)
	assert.NoFileExists(t, dst)
}

func TestGenerateRejectsNonImageAndLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	storageDir := filepath.Join(dir, "storage")
	layout := NewLayout(storageDir, "/files")
	engine := NewVariantEngine(layout)

	source := filepath.Join(dir, "not-an-image.png")
	require.NoError(t, os.WriteFile(source, []byte("plain text, not pixels"), 0o644))

	_, err := engine.Generate(source, "not-an-image.png", "")
	require.ErrorIs(t, err, ErrDecode)

	require.NoError(t, layout.EnsureDirs(CategoryImage, ""))
	assert.Zero(t, countFilesUnder(t, storageDir), "failed attempt must leave no variant files")
}
