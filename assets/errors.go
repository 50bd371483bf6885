package assets

import "errors"

// Stable error kinds surfaced by the pipeline. Callers match with errors.Is;
// wrapped detail stays internal to log lines.
var (
	ErrInvalidCredential    = errors.New("invalid credential")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrSecurityScanFailed   = errors.New("file failed security scan")
	ErrDecode               = errors.New("source could not be decoded as an image")
	ErrIO                   = errors.New("file operation failed")
	ErrNotFound             = errors.New("asset not found")
)
