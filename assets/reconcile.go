package assets

import (
	"context"
	"log"
	"os"
	"time"

	"assetbucket/storage"
)

// DeletionReconciler removes every physical file an asset owns, then its
// metadata record. File removals are best-effort: absence or an OS error is
// logged and never blocks the next file or the record delete, so a consistent
// metadata view is preferred over perfect filesystem cleanup. A crash between
// the two steps leaves the record in place and deletion retryable.
type DeletionReconciler struct {
	layout Layout
	store  *AssetStore
	mirror *storage.Mirror
	cache  *payloadCache
}

func NewDeletionReconciler(layout Layout, store *AssetStore, mirror *storage.Mirror, cache *payloadCache) *DeletionReconciler {
	return &DeletionReconciler{layout: layout, store: store, mirror: mirror, cache: cache}
}

// Delete reconstructs every physical path from the stored folder, base name
// and extension with the same normalization the write path used.
func (r *DeletionReconciler) Delete(asset *MediaAsset) error {
	filename := asset.Filename()
	category := asset.Category()
	subfolder := SubfolderOf(category, asset.Folder)

	if category == CategoryImage {
		for _, variant := range variantNames {
			removeLogged(r.layout.PhysicalPath(CategoryImage, subfolder, variant, filename))
			// The high rendition may have been persisted as .jpg regardless
			// of the recorded extension.
			if variant == "high" && asset.Extension != "jpg" {
				removeLogged(r.layout.HighVariantJPEGPath(subfolder, asset.Name))
			}
		}
	} else {
		removeLogged(r.layout.PhysicalPath(category, subfolder, "", filename))
	}

	if r.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := r.mirror.Remove(ctx, mirrorObjectName(asset)); err != nil {
			log.Printf("assets: remove mirror object for %s: %v", asset.Name, err)
		}
		cancel()
	}
	r.cache.Invalidate(asset.Name)

	return r.store.Delete(asset)
}

func removeLogged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("assets: delete file %s: %v", path, err)
	}
}
