// media/types.go
package media

type AssetType string

const (
	AssetTypeTexture   AssetType = "texture"
	AssetTypeThumbnail AssetType = "thumbnail"
	AssetTypeUnknown   AssetType = "unknown"
)
