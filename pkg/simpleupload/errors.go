package simpleupload

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Error types
var (
	// ErrDestinationNotFound indicates the requested destination is not configured
	ErrDestinationNotFound = errors.New("upload destination not found")

	// ErrBucketRequired indicates neither the destination nor the settings name a bucket
	ErrBucketRequired = errors.New("bucket is required")

	// ErrNoSigningCredentials indicates no tier of the credential chain can supply a secret key
	ErrNoSigningCredentials = errors.New("no signing credentials available")
)

// ConfigurationError reports a destination lookup or fallback-resolution
// failure. These fail fast; the caller is expected to have validated that the
// destination exists.
type ConfigurationError struct {
	DestinationID string
	Field         string
	Err           error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration for destination %q: %s: %v", e.DestinationID, e.Field, e.Err)
	}
	return fmt.Sprintf("configuration for destination %q: %v", e.DestinationID, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// CredentialError reports that an operation required credential material
// absent from every tier of the chain. Plain resolution never produces it;
// absence there degrades to anonymous.
type CredentialError struct {
	Mode DeploymentMode
	Err  error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credentials unavailable in %s mode: %v", e.Mode, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// ProviderError reports a provider client construction or presign failure.
type ProviderError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider operation %s failed for key %s in bucket %s: %v", e.Op, e.Key, e.Bucket, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// APIErrorCode returns the provider fault code when the underlying error is
// a provider API error, and "" otherwise.
func (e *ProviderError) APIErrorCode() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
