package model

import "errors"

// Upload limits
const (
	MaxAvatarSizeBytes = 5 << 20   // 5MB
	MaxAssetSizeBytes  = 100 << 20 // 100MB

	AvatarWidth  = 200
	AvatarHeight = 200

	ThumbnailWidth  = 640
	ThumbnailHeight = 360

	AvatarFolder    = "avatars"
	AssetFolder     = "assets"
	ThumbnailFolder = "thumbnails"

	AvatarExt       = ".jpg"
	ContentTypeJPEG = "image/jpeg"

	AvatarCacheControl = "public, max-age=31536000"
	AssetCacheControl  = "public, max-age=86400"
)

// UploadResult is the public URL and storage key of an uploaded object.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImageType reports whether the content type is an accepted image format.
func IsAllowedImageType(contentType string) bool {
	return allowedImageTypes[contentType]
}

// FileTypeForContentType buckets a MIME type into an asset file type.
func FileTypeForContentType(contentType string) string {
	switch {
	case allowedImageTypes[contentType]:
		return FileTypeImage
	case contentType == "model/gltf-binary" || contentType == "model/gltf+json" ||
		contentType == "application/octet-stream":
		return FileTypeModel3D
	case contentType == "audio/mpeg" || contentType == "audio/wav" || contentType == "audio/ogg":
		return FileTypeAudio
	case contentType == "application/pdf" || contentType == "text/plain" ||
		contentType == "text/markdown":
		return FileTypeDocument
	default:
		return FileTypeOther
	}
}

var (
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrInvalidImageType = errors.New("unsupported image type")
	ErrFileRequired     = errors.New("file is required")
)
