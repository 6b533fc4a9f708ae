package domain

// UploadKind identifies what is being uploaded and therefore which bucket and
// key layout the object gets.
type UploadKind string

const (
	UploadKindSource       UploadKind = "source"
	UploadKindVideo        UploadKind = "video"
	UploadKindThumbnail    UploadKind = "thumbnail"
	UploadKindAudioPreview UploadKind = "audio_preview"
	UploadKind3DModel      UploadKind = "3d_model"
)

// PreviewPathSegments maps preview-type kinds to the asset-type segment used
// in previews-bucket keys. The source kind is absent: source archives go to
// the private bucket with no asset-type segment.
var PreviewPathSegments = map[UploadKind]string{
	UploadKindVideo:        "video",
	UploadKindThumbnail:    "thumbnail",
	UploadKindAudioPreview: "audio",
	UploadKind3DModel:      "3d",
}

// IsValid reports whether k is a known upload kind.
func (k UploadKind) IsValid() bool {
	if k == UploadKindSource {
		return true
	}
	_, ok := PreviewPathSegments[k]
	return ok
}

// IsPreview reports whether k belongs in the public previews bucket.
func (k UploadKind) IsPreview() bool {
	_, ok := PreviewPathSegments[k]
	return ok
}

// UserRole defines marketplace roles.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleSeller UserRole = "seller"
)

// AssetStatus represents the lifecycle of a marketplace asset.
type AssetStatus string

const (
	AssetStatusDraft     AssetStatus = "draft"
	AssetStatusPublished AssetStatus = "published"
	AssetStatusDeleted   AssetStatus = "deleted"
)
