package simpleupload

import "time"

// Request DTOs

// PresignRequest contains parameters for issuing one presigned URL.
type PresignRequest struct {
	DestinationID string
	ObjectKey     string

	// ExpiresIn bounds the URL lifetime. Zero applies the service default.
	ExpiresIn time.Duration

	// Operation defaults to OperationGet when empty.
	Operation Operation

	Mode DeploymentMode

	// DownloadFilename sets the attachment filename on GET presigns.
	DownloadFilename string

	// ContentType pins the content type on PUT presigns.
	ContentType string
}

// UploadParamsRequest contains parameters for preparing a direct browser
// upload: the object key is derived from FileName by the destination's key
// strategy, then a PUT presign is issued for it.
type UploadParamsRequest struct {
	DestinationID string
	FileName      string
	ContentType   string
	Mode          DeploymentMode
	ExpiresIn     time.Duration
}

// SignV4Request contains parameters for computing a Signature V4 signature
// over a caller-supplied string-to-sign, e.g. a browser upload policy.
type SignV4Request struct {
	// DestinationID optionally resolves the signing region; the settings
	// fallback applies when empty or when the destination has no region.
	DestinationID string

	StringToSign string

	// SigningDate scopes the derived key. Zero means now (UTC).
	SigningDate time.Time

	Mode DeploymentMode
}
