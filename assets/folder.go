package assets

import "strings"

// NormalizeFolder canonicalizes a caller-supplied folder string into a stable
// slash-separated relative path. An empty result means "no folder": the asset
// lands in its category root. The same function runs on the write path and on
// every later path reconstruction, so a stored folder value always round-trips
// to the directory the files actually live in.
func NormalizeFolder(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	trimmed = strings.Trim(trimmed, "/\\")
	if trimmed == "" {
		return ""
	}

	normalized := strings.ReplaceAll(trimmed, "\\", "/")
	for strings.Contains(normalized, "//") {
		normalized = strings.ReplaceAll(normalized, "//", "/")
	}
	if normalized == "" {
		return ""
	}
	return normalized
}
