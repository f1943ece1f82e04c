package simpleupload

import (
	"net/http"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload/objectkey"
)

// DeploymentMode selects which settings fallback set serves a request.
type DeploymentMode int

// Deployment mode constants (typed).
const (
	// ModeProviderNative uses the primary settings set. Zero value, so
	// requests that never think about modes get it.
	ModeProviderNative DeploymentMode = iota

	// ModeForeign uses the "original" settings set, for deployments whose
	// native cloud identity differs from the storage provider being signed
	// for (e.g., cross-cloud presigning).
	ModeForeign
)

func (m DeploymentMode) String() string {
	switch m {
	case ModeForeign:
		return "foreign"
	default:
		return "provider-native"
	}
}

// Operation identifies the provider operation a presigned URL grants.
type Operation string

// Operation constants (typed).
const (
	OperationGet    Operation = "GET"
	OperationPut    Operation = "PUT"
	OperationHead   Operation = "HEAD"
	OperationDelete Operation = "DELETE"
)

// Destination is a named configuration profile describing where uploads land
// and how their object keys are named. Destinations are owned by the host
// application's configuration; this library only reads them.
type Destination struct {
	// Bucket falls back to Settings.Bucket when empty.
	Bucket string

	// Region and Endpoint fall back to the mode-specific settings set when
	// empty.
	Region   string
	Endpoint string

	// KeyStrategy names objects under this destination. Nil behaves as
	// objectkey.Root().
	KeyStrategy objectkey.Strategy

	// KeyArgs is handed opaquely to custom key strategies.
	KeyArgs any

	// ACL is the canned ACL advertised to uploaders, e.g. "public-read".
	ACL string

	// ContentType pins the content type of PUT presigns when the request
	// does not carry one.
	ContentType string

	// Allow optionally gates this destination. The api handlers evaluate it
	// against the incoming request before issuing upload parameters; a nil
	// Allow admits everyone.
	Allow func(r *http.Request) bool
}

// Settings holds the process-wide fallbacks applied when a destination omits
// a value. The primary set serves ModeProviderNative; the Original set is the
// parallel identity consulted in ModeForeign. All fields are optional.
type Settings struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string

	OriginalAccessKey string
	OriginalSecretKey string
	OriginalRegion    string
	OriginalEndpoint  string

	// UsePathStyle switches provider clients to path-style addressing, needed
	// by MinIO and some S3-compatible services.
	UsePathStyle bool
}

// keyPair returns the access/secret pair for the deployment mode.
func (s Settings) keyPair(mode DeploymentMode) (accessKey, secretKey string) {
	if mode == ModeForeign {
		return s.OriginalAccessKey, s.OriginalSecretKey
	}
	return s.AccessKey, s.SecretKey
}

// regionFor returns the fallback region for the deployment mode.
func (s Settings) regionFor(mode DeploymentMode) string {
	if mode == ModeForeign {
		return s.OriginalRegion
	}
	return s.Region
}

// endpointFor returns the fallback endpoint for the deployment mode.
func (s Settings) endpointFor(mode DeploymentMode) string {
	if mode == ModeForeign {
		return s.OriginalEndpoint
	}
	return s.Endpoint
}

// UploadParams is the bundle a browser needs to perform a direct upload.
type UploadParams struct {
	DestinationID string    `json:"destination_id"`
	Bucket        string    `json:"bucket"`
	ObjectKey     string    `json:"object_key"`
	Region        string    `json:"region,omitempty"`
	Endpoint      string    `json:"endpoint,omitempty"`
	URL           string    `json:"url"`
	Method        string    `json:"method"`
	ACL           string    `json:"acl,omitempty"`
	ContentType   string    `json:"content_type,omitempty"`
	AccessKey     string    `json:"access_key,omitempty"`
	SessionToken  string    `json:"session_token,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}
