package simpleupload

import (
	"context"

	"github.com/tendant/simple-upload/pkg/simpleupload/credentials"
)

// Service defines the main interface for the simple-upload library
type Service interface {
	// GetPresignedURL issues a time-limited URL for one provider operation
	// against a configured destination.
	GetPresignedURL(ctx context.Context, req PresignRequest) (string, error)

	// GetUploadParams derives an object key for a file name, issues a PUT
	// presign for it, and returns the bundle a browser needs for a direct
	// upload.
	GetUploadParams(ctx context.Context, req UploadParamsRequest) (*UploadParams, error)

	// SignV4 computes the Signature V4 hex signature of a caller-supplied
	// string-to-sign under the mode-resolved secret key.
	SignV4(ctx context.Context, req SignV4Request) (string, error)

	// BuildObjectKey applies a destination's key strategy to a file name.
	BuildObjectKey(ctx context.Context, destinationID, fileName string) (string, error)

	// ResolveCredentials walks the credential chain: static settings keys,
	// then the ambient session, then anonymous. It never fails.
	ResolveCredentials(ctx context.Context) credentials.Credentials

	// Destination returns a single destination by ID.
	Destination(ctx context.Context, destinationID string) (Destination, error)

	// Destinations lists the configured destination IDs in sorted order.
	Destinations(ctx context.Context) ([]string, error)
}
