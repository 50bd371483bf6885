package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"assetbucket/storage"
	"github.com/google/uuid"
)

// Pipeline orchestrates ingestion: temp write, scan gate, classification,
// placement (variant generation or move+probe), persistence and payload
// construction. Each run operates on asset-scoped state only; concurrent
// uploads interleave freely because every asset gets a fresh generated name.
type Pipeline struct {
	cfg        Config
	layout     Layout
	variants   VariantEngine
	store      *AssetStore
	scanner    Scanner
	prober     Prober
	sniff      func(string) (string, error)
	mirror     *storage.Mirror
	cache      *payloadCache
	reconciler *DeletionReconciler
	encodeSem  chan struct{}
}

func NewPipeline(cfg Config, layout Layout, store *AssetStore, scanner Scanner, prober Prober, mirror *storage.Mirror, cache *payloadCache) *Pipeline {
	workers := cfg.EncodeWorkers
	if workers <= 0 {
		workers = defaultEncodeWorkers
	}
	return &Pipeline{
		cfg:        cfg,
		layout:     layout,
		variants:   NewVariantEngine(layout),
		store:      store,
		scanner:    scanner,
		prober:     prober,
		sniff:      SniffMIME,
		mirror:     mirror,
		cache:      cache,
		reconciler: NewDeletionReconciler(layout, store, mirror, cache),
		encodeSem:  make(chan struct{}, workers),
	}
}

// Ingest runs one upload through the full state machine and returns the
// response payload for the created asset. Every abort path removes the temp
// file; nothing permanent exists until the scan gate and classification pass.
func (p *Pipeline) Ingest(file io.Reader, originalFilename, rawFolder string, authOK bool) (AssetPayload, error) {
	if !authOK {
		return nil, ErrInvalidCredential
	}
	folder := NormalizeFolder(rawFolder)

	tempPath, err := p.writeTemp(file, originalFilename)
	if err != nil {
		return nil, err
	}

	if !p.scanner.Allow(tempPath) {
		removeIfExists(tempPath)
		return nil, ErrSecurityScanFailed
	}

	mimeType, err := p.sniff(tempPath)
	if err != nil {
		removeIfExists(tempPath)
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	category, err := Classify(mimeType, originalFilename)
	if err != nil {
		removeIfExists(tempPath)
		return nil, err
	}

	stat, err := os.Stat(tempPath)
	if err != nil {
		removeIfExists(tempPath)
		return nil, fmt.Errorf("%w: stat upload: %v", ErrIO, err)
	}
	size := stat.Size()

	var asset *MediaAsset
	if category == CategoryImage {
		asset, err = p.placeImage(tempPath, originalFilename, folder, mimeType, size)
	} else {
		asset, err = p.placeFile(tempPath, originalFilename, folder, category, mimeType, size)
	}
	if err != nil {
		return nil, err
	}

	p.mirrorOriginal(asset)
	return BuildAssetPayload(asset, p.layout), nil
}

// placeImage derives every rendition under a bounded encode slot so CPU-bound
// encoding cannot saturate the process, then persists the manifest.
func (p *Pipeline) placeImage(tempPath, originalFilename, folder, mimeType string, size int64) (*MediaAsset, error) {
	p.encodeSem <- struct{}{}
	payload, err := p.variants.Generate(tempPath, originalFilename, folder)
	<-p.encodeSem
	if err != nil {
		removeIfExists(tempPath)
		return nil, err
	}
	removeIfExists(tempPath)

	var aspect *float64
	if payload.Height > 0 {
		ratio := float64(payload.Width) / float64(payload.Height)
		aspect = &ratio
	}

	manifest, _ := json.Marshal(payload.Variants)
	manipulations, _ := json.Marshal(defaultManipulations)
	custom, _ := json.Marshal(map[string]int{"width": payload.Width, "height": payload.Height})

	asset := &MediaAsset{
		UID:              uuid.NewString(),
		AspectRatio:      aspect,
		OriginalName:     originalFilename,
		Name:             payload.BaseName,
		ModelType:        string(CategoryImage),
		Folder:           StoredFolder(CategoryImage, folder),
		MimeType:         mimeType,
		Extension:        payload.Extension,
		Disk:             "local",
		Size:             size,
		Manipulations:    manipulations,
		CustomProperties: custom,
		ResponsiveImages: manifest,
	}
	if err := p.store.Create(asset); err != nil {
		p.logOrphans(asset)
		return nil, err
	}
	return asset, nil
}

// placeFile moves a non-image upload to its final location and probes it for
// descriptive metadata. Probing runs against the placed file because the
// external tools need it at rest.
func (p *Pipeline) placeFile(tempPath, originalFilename, folder string, category Category, mimeType string, size int64) (*MediaAsset, error) {
	extension := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalFilename)), ".")
	if extension == "" {
		extension = defaultExtension(category)
	}
	baseName := uuid.NewString()
	filename := baseName + "." + extension

	if err := p.layout.EnsureDirs(category, folder); err != nil {
		removeIfExists(tempPath)
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	finalPath := p.layout.PhysicalPath(category, folder, "", filename)
	if err := moveFile(tempPath, finalPath); err != nil {
		removeIfExists(tempPath)
		return nil, fmt.Errorf("%w: place %s: %v", ErrIO, filename, err)
	}

	custom, _ := json.Marshal(p.prober.Probe(finalPath, mimeType, category))

	asset := &MediaAsset{
		UID:              uuid.NewString(),
		OriginalName:     originalFilename,
		Name:             baseName,
		ModelType:        string(category),
		Folder:           StoredFolder(category, folder),
		MimeType:         mimeType,
		Extension:        extension,
		Disk:             "local",
		Size:             size,
		CustomProperties: custom,
	}
	if err := p.store.Create(asset); err != nil {
		p.logOrphans(asset)
		return nil, err
	}
	return asset, nil
}

// GetAsset returns the payload for a stored asset, via the read-through
// cache when one is configured.
func (p *Pipeline) GetAsset(baseName string) (AssetPayload, error) {
	if payload, ok := p.cache.Get(baseName); ok {
		return payload, nil
	}
	asset, err := p.store.GetByBaseName(baseName)
	if err != nil {
		return nil, err
	}
	payload := BuildAssetPayload(asset, p.layout)
	p.cache.Set(baseName, payload)
	return payload, nil
}

// GetVariantFile resolves a servable rendition to its physical path and MIME
// type. relPath is "{folder?}/{filename}". The folder stored on the asset row
// wins over the one embedded in the URL; the high rendition probes its .jpg
// fallback before giving up.
func (p *Pipeline) GetVariantFile(variant, relPath string) (string, string, error) {
	if !IsImageVariant(variant) {
		return "", "", fmt.Errorf("%w: unknown variant %s", ErrNotFound, variant)
	}

	filename := path.Base(relPath)
	baseName := strings.TrimSuffix(filename, path.Ext(filename))
	folder := path.Dir(relPath)
	if folder == "." || folder == "/" {
		folder = ""
	}

	mimeType := "application/octet-stream"
	if asset, err := p.store.GetByBaseName(baseName); err == nil {
		if sub := SubfolderOf(CategoryImage, asset.Folder); sub != "" {
			folder = sub
		}
		if asset.MimeType != "" {
			mimeType = asset.MimeType
		}
	}

	physical := p.layout.PhysicalPath(CategoryImage, folder, variant, filename)
	if _, err := os.Stat(physical); err == nil {
		return physical, mimeType, nil
	}
	if variant == "high" {
		fallback := p.layout.HighVariantJPEGPath(folder, baseName)
		if _, err := os.Stat(fallback); err == nil {
			return fallback, mimeType, nil
		}
	}
	return "", "", fmt.Errorf("%w: file %s", ErrNotFound, relPath)
}

// DeleteByBaseName removes an asset and every file it owns.
func (p *Pipeline) DeleteByBaseName(baseName string, authOK bool) error {
	if !authOK {
		return ErrInvalidCredential
	}
	asset, err := p.store.GetByBaseName(baseName)
	if err != nil {
		return err
	}
	return p.reconciler.Delete(asset)
}

// DeleteByUID removes an asset addressed by identifier.
func (p *Pipeline) DeleteByUID(uid string, authOK bool) error {
	if !authOK {
		return ErrInvalidCredential
	}
	asset, err := p.store.GetByUID(uid)
	if err != nil {
		return err
	}
	return p.reconciler.Delete(asset)
}

// writeTemp streams the upload body to a uniquely named temp file so
// concurrent uploads of same-named files cannot collide.
func (p *Pipeline) writeTemp(file io.Reader, originalFilename string) (string, error) {
	if err := os.MkdirAll(p.cfg.TempPath, 0o755); err != nil {
		return "", fmt.Errorf("%w: ensure temp dir: %v", ErrIO, err)
	}
	name := originalFilename
	if name == "" {
		name = "unknown"
	}
	tempPath := filepath.Join(p.cfg.TempPath, uuid.NewString()+"_"+filepath.Base(name))

	out, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrIO, err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		removeIfExists(tempPath)
		return "", fmt.Errorf("%w: write upload: %v", ErrIO, err)
	}
	if err := out.Close(); err != nil {
		removeIfExists(tempPath)
		return "", fmt.Errorf("%w: close temp file: %v", ErrIO, err)
	}
	return tempPath, nil
}

// mirrorOriginal pushes the placed original to the offsite mirror when one is
// configured. Best-effort: a failure is logged and never affects the upload.
func (p *Pipeline) mirrorOriginal(asset *MediaAsset) {
	if p.mirror == nil {
		return
	}
	category := asset.Category()
	subfolder := SubfolderOf(category, asset.Folder)
	variant := ""
	if category == CategoryImage {
		variant = "original"
	}
	local := p.layout.PhysicalPath(category, subfolder, variant, asset.Filename())
	object := mirrorObjectName(asset)
	if err := p.mirror.Upload(context.Background(), local, object, asset.MimeType); err != nil {
		log.Printf("assets: mirror %s: %v", object, err)
	}
}

func mirrorObjectName(asset *MediaAsset) string {
	return path.Join("mirror", asset.Folder, asset.Filename())
}

// logOrphans records a files-exist-but-no-record inconsistency: placement
// succeeded but the insert did not. Not retried here; the listed paths are
// for operational cleanup.
func (p *Pipeline) logOrphans(asset *MediaAsset) {
	category := asset.Category()
	subfolder := SubfolderOf(category, asset.Folder)
	var paths []string
	if category == CategoryImage {
		for _, variant := range variantNames {
			paths = append(paths, p.layout.PhysicalPath(category, subfolder, variant, asset.Filename()))
		}
	} else {
		paths = append(paths, p.layout.PhysicalPath(category, subfolder, "", asset.Filename()))
	}
	log.Printf("assets: record for %s not persisted, orphaned files: %s", asset.Name, strings.Join(paths, ", "))
}

func defaultExtension(category Category) string {
	switch category {
	case CategoryPDF:
		return "pdf"
	case CategoryAudio:
		return "mp3"
	case CategoryVideo:
		return "mp4"
	default:
		return "bin"
	}
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("assets: remove %s: %v", path, err)
	}
}

// moveFile renames where possible and falls back to copy+remove for
// cross-device moves.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
