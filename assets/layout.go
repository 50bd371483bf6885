package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// variantNames lists every rendition the variant engine produces, in the
// order they are generated. Image folders carry one subdirectory per name.
var variantNames = []string{"original", "small", "medium", "high", "placeholder"}

// IsImageVariant reports whether name is a servable image rendition.
func IsImageVariant(name string) bool {
	for _, v := range variantNames {
		if v == name {
			return true
		}
	}
	return false
}

// Layout maps (category, folder, variant, filename) tuples to physical
// filesystem paths and externally addressable URL paths.
type Layout struct {
	basePath     string
	publicPrefix string
}

func NewLayout(basePath, publicPrefix string) Layout {
	return Layout{basePath: basePath, publicPrefix: publicPrefix}
}

// categoryDir returns the directory name of a category root. Images pluralize,
// the rest reuse the category name.
func categoryDir(category Category) string {
	if category == CategoryImage {
		return "images"
	}
	return string(category)
}

// StoredFolder builds the folder value persisted on the asset row: the
// category root, plus the normalized caller folder when present.
func StoredFolder(category Category, folder string) string {
	if folder == "" {
		return categoryDir(category)
	}
	return categoryDir(category) + "/" + folder
}

// SubfolderOf extracts the caller folder back out of a stored folder value.
func SubfolderOf(category Category, storedFolder string) string {
	prefix := categoryDir(category) + "/"
	if len(storedFolder) > len(prefix) && storedFolder[:len(prefix)] == prefix {
		return storedFolder[len(prefix):]
	}
	return ""
}

// EnsureBase creates the temp directory and every category root. Called once
// at registration so later per-folder creation only deals with subtrees.
func (l Layout) EnsureBase(tempPath string) error {
	dirs := []string{l.basePath, tempPath}
	for _, category := range []Category{CategoryImage, CategoryPDF, CategoryAudio, CategoryVideo} {
		dirs = append(dirs, filepath.Join(l.basePath, categoryDir(category)))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("assets: ensure dir %s: %w", dir, err)
		}
	}
	return l.EnsureDirs(CategoryImage, "")
}

// EnsureDirs idempotently creates the folder subtree for a category, and for
// images every variant subdirectory underneath it. Must run before any file
// write into that folder; file writes never create directories implicitly.
func (l Layout) EnsureDirs(category Category, folder string) error {
	folderDir := l.folderDir(category, folder)
	if err := os.MkdirAll(folderDir, 0o755); err != nil {
		return fmt.Errorf("assets: ensure folder %s: %w", folderDir, err)
	}
	if category != CategoryImage {
		return nil
	}
	for _, variant := range variantNames {
		dir := filepath.Join(folderDir, variant)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("assets: ensure variant dir %s: %w", dir, err)
		}
	}
	return nil
}

func (l Layout) folderDir(category Category, folder string) string {
	dir := filepath.Join(l.basePath, categoryDir(category))
	if folder != "" {
		dir = filepath.Join(dir, filepath.FromSlash(folder))
	}
	return dir
}

// PhysicalPath returns the absolute path of a stored file. The variant is
// empty for non-image categories.
func (l Layout) PhysicalPath(category Category, folder, variant, filename string) string {
	dir := l.folderDir(category, folder)
	if variant != "" {
		dir = filepath.Join(dir, variant)
	}
	return filepath.Join(dir, filename)
}

// PublicPath returns the URL path a stored file is served under.
func (l Layout) PublicPath(category Category, folder, variant, filename string) string {
	segments := []string{l.publicPrefix, categoryDir(category)}
	if folder != "" {
		segments = append(segments, folder)
	}
	if variant != "" {
		segments = append(segments, variant)
	}
	segments = append(segments, filename)
	return path.Join(segments...)
}

// HighVariantJPEGPath is the deletion-time probe for a narrow encode quirk:
// the high rendition may have been persisted with a .jpg extension regardless
// of the asset's recorded extension.
func (l Layout) HighVariantJPEGPath(folder, baseName string) string {
	return l.PhysicalPath(CategoryImage, folder, "high", baseName+".jpg")
}
