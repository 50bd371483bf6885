package assets

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Category is the coarse asset class derived from the sniffed content type.
type Category string

const (
	CategoryImage Category = "image"
	CategoryPDF   Category = "pdf"
	CategoryAudio Category = "audio"
	CategoryVideo Category = "video"
)

// SniffMIME inspects file content to determine the MIME type. Classification
// deliberately trusts content inspection over the client-supplied extension.
func SniffMIME(path string) (string, error) {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("assets: sniff %s: %w", path, err)
	}
	mime := detected.String()
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime, nil
}

// Classify maps a sniffed MIME type to a category. The filename is accepted
// for future use but does not influence the decision.
func Classify(mimeType, _ string) (Category, error) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage, nil
	case mimeType == "application/pdf":
		return CategoryPDF, nil
	case strings.HasPrefix(mimeType, "audio/"):
		return CategoryAudio, nil
	case strings.HasPrefix(mimeType, "video/"):
		return CategoryVideo, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mimeType)
	}
}
