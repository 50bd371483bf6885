package assets

import (
	"encoding/json"
	"time"
)

// AssetPayload is the JSON-serializable response shape handed to callers.
type AssetPayload map[string]interface{}

// BuildAssetPayload renders a stored row into the response shape. Image
// assets point their original URL at the original rendition and carry the
// full variant manifest; other categories carry neither.
func BuildAssetPayload(asset *MediaAsset, layout Layout) AssetPayload {
	category := asset.Category()
	subfolder := SubfolderOf(category, asset.Folder)

	var originalPath string
	var responsive interface{}
	var manipulations interface{}

	if category == CategoryImage {
		originalPath = layout.PublicPath(CategoryImage, subfolder, "original", asset.Filename())
		var manifest map[string]VariantInfo
		if err := json.Unmarshal(asset.ResponsiveImages, &manifest); err == nil {
			responsive = manifest
		} else {
			responsive = map[string]VariantInfo{}
		}
		var stored map[string]map[string]int
		if len(asset.Manipulations) > 0 && json.Unmarshal(asset.Manipulations, &stored) == nil {
			manipulations = stored
		} else {
			manipulations = defaultManipulations
		}
	} else {
		originalPath = layout.PublicPath(category, subfolder, "", asset.Filename())
	}

	custom := map[string]interface{}{}
	if len(asset.CustomProperties) > 0 {
		_ = json.Unmarshal(asset.CustomProperties, &custom)
	}

	return AssetPayload{
		"asset": map[string]interface{}{
			"uid":               asset.UID,
			"original_name":     asset.OriginalName,
			"title":             asset.Title,
			"name":              asset.Name,
			"folder":            asset.Folder,
			"mime_type":         asset.MimeType,
			"extension":         asset.Extension,
			"disk":              asset.Disk,
			"size":              asset.Size,
			"status":            asset.Status,
			"original":          originalPath,
			"manipulations":     manipulations,
			"custom_properties": custom,
			"responsive_images": responsive,
			"created_at":        isoTimestamp(asset.CreatedAt),
			"updated_at":        isoTimestamp(asset.UpdatedAt),
		},
	}
}

func isoTimestamp(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
