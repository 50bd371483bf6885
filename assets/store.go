package assets

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetStore is the metadata persistence boundary. Every operation touches a
// single row; no batch or cross-asset transaction semantics exist.
type AssetStore struct {
	db *gorm.DB
}

func NewAssetStore(db *gorm.DB) *AssetStore {
	return &AssetStore{db: db}
}

// Create inserts the asset row. UID and timestamps are assigned here.
func (s *AssetStore) Create(asset *MediaAsset) error {
	if asset.UID == "" {
		asset.UID = uuid.NewString()
	}
	if err := s.db.Create(asset).Error; err != nil {
		return fmt.Errorf("assets: create asset record: %w", err)
	}
	return nil
}

// GetByBaseName fetches the asset whose generated base name matches.
func (s *AssetStore) GetByBaseName(name string) (*MediaAsset, error) {
	var asset MediaAsset
	if err := s.db.Where("name = ?", name).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: base name %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("assets: fetch asset by name: %w", err)
	}
	return &asset, nil
}

// GetByUID fetches the asset by its identifier. A malformed identifier is
// indistinguishable from an unknown one.
func (s *AssetStore) GetByUID(uid string) (*MediaAsset, error) {
	parsed, err := uuid.Parse(uid)
	if err != nil {
		return nil, fmt.Errorf("%w: uid %s", ErrNotFound, uid)
	}
	var asset MediaAsset
	if err := s.db.Where("uid = ?", parsed.String()).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: uid %s", ErrNotFound, uid)
		}
		return nil, fmt.Errorf("assets: fetch asset by uid: %w", err)
	}
	return &asset, nil
}

// Delete removes the asset row.
func (s *AssetStore) Delete(asset *MediaAsset) error {
	if err := s.db.Delete(&MediaAsset{}, "uid = ?", asset.UID).Error; err != nil {
		return fmt.Errorf("assets: delete asset record: %w", err)
	}
	return nil
}
