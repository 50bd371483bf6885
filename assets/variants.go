package assets

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// VariantInfo describes one written rendition. Width, height and size are
// measured after resize and encode, never estimated; UI layout depends on the
// exact values.
type VariantInfo struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// VariantPayload is the result of a full variant generation run.
type VariantPayload struct {
	BaseName  string
	Extension string
	Width     int
	Height    int
	Variants  map[string]VariantInfo
}

type variantSpec struct {
	name    string
	maxSize int     // bounding box, 0 = full resolution
	blur    float64 // gaussian blur sigma, 0 = none
	quality int     // jpeg quality, 0 = source default
}

// The fixed rendition table. Resizing is bounding-box fit: aspect ratio is
// preserved and images are never upscaled.
var imageVariants = []variantSpec{
	{name: "original"},
	{name: "small", maxSize: 320},
	{name: "medium", maxSize: 800},
	{name: "high", maxSize: 1600, quality: 70},
	{name: "placeholder", maxSize: 20, blur: 2},
}

// defaultManipulations mirrors the rendition table in the payload shape
// downstream consumers expect.
var defaultManipulations = map[string]map[string]int{
	"small":       {"max_dimension": 320},
	"medium":      {"max_dimension": 800},
	"high":        {"max_dimension": 1600},
	"placeholder": {"max_dimension": 20, "blur": 2},
}

// VariantEngine derives the fixed rendition set from a source image.
type VariantEngine struct {
	layout Layout
}

func NewVariantEngine(layout Layout) VariantEngine {
	return VariantEngine{layout: layout}
}

// Generate decodes the source once and writes every rendition under the image
// folder's variant subdirectories. On any failure all files written by this
// attempt are removed before the error returns; no partial variant set stays
// on disk.
func (e VariantEngine) Generate(sourcePath, originalFilename, folder string) (*VariantPayload, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, sourcePath, err)
	}
	decoded, formatName, err := image.Decode(src)
	src.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, originalFilename, err)
	}

	format, err := imaging.FormatFromExtension(formatName)
	if err != nil {
		format = imaging.JPEG
	}

	extension := strings.ToLower(filepath.Ext(originalFilename))
	if extension == "" {
		extension = ".jpg"
	}
	baseName := uuid.NewString()
	filename := baseName + extension

	if err := e.layout.EnsureDirs(CategoryImage, folder); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	bounds := decoded.Bounds()
	originalWidth, originalHeight := bounds.Dx(), bounds.Dy()

	variants := make(map[string]VariantInfo, len(imageVariants))
	var written []string
	cleanup := func() {
		for _, p := range written {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				log.Printf("assets: cleanup variant %s: %v", p, err)
			}
		}
	}

	for _, spec := range imageVariants {
		variant := decoded
		if spec.maxSize > 0 {
			variant = imaging.Fit(decoded, spec.maxSize, spec.maxSize, imaging.Lanczos)
		}
		if spec.blur > 0 {
			variant = imaging.Blur(variant, spec.blur)
		}

		dst := e.layout.PhysicalPath(CategoryImage, folder, spec.name, filename)
		info, err := e.writeVariant(dst, variant, format, spec.quality)
		if err != nil {
			cleanup()
			return nil, err
		}
		written = append(written, dst)

		info.Path = e.layout.PublicPath(CategoryImage, folder, spec.name, filename)
		variants[spec.name] = info
	}

	return &VariantPayload{
		BaseName:  baseName,
		Extension: strings.TrimPrefix(extension, "."),
		Width:     originalWidth,
		Height:    originalHeight,
		Variants:  variants,
	}, nil
}

func (e VariantEngine) writeVariant(dst string, img image.Image, format imaging.Format, quality int) (VariantInfo, error) {
	out, err := os.Create(dst)
	if err != nil {
		return VariantInfo{}, fmt.Errorf("%w: create %s: %v", ErrIO, dst, err)
	}

	var opts []imaging.EncodeOption
	if quality > 0 {
		opts = append(opts, imaging.JPEGQuality(quality))
	}
	if err := imaging.Encode(out, img, format, opts...); err != nil {
		out.Close()
		os.Remove(dst)
		return VariantInfo{}, fmt.Errorf("%w: encode %s: %v", ErrIO, dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return VariantInfo{}, fmt.Errorf("%w: close %s: %v", ErrIO, dst, err)
	}

	stat, err := os.Stat(dst)
	if err != nil {
		os.Remove(dst)
		return VariantInfo{}, fmt.Errorf("%w: stat %s: %v", ErrIO, dst, err)
	}

	bounds := img.Bounds()
	return VariantInfo{
		Size:   stat.Size(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
