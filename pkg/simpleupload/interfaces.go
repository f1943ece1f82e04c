package simpleupload

import (
	"context"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload/credentials"
)

// DestinationSource supplies the named destination records the service
// consumes. It is queried fresh on every operation so configuration changes
// take effect at runtime; implementations own their synchronization. The
// returned map is read-only to the service.
type DestinationSource interface {
	Destinations(ctx context.Context) (map[string]Destination, error)
}

// DestinationSourceFunc adapts a function to a DestinationSource.
type DestinationSourceFunc func(ctx context.Context) (map[string]Destination, error)

func (f DestinationSourceFunc) Destinations(ctx context.Context) (map[string]Destination, error) {
	return f(ctx)
}

// DestinationMap is a fixed in-memory DestinationSource. To reconfigure at
// runtime, swap the whole source (or use a DestinationSourceFunc closing over
// the host's own synchronization) rather than mutating the map.
type DestinationMap map[string]Destination

func (m DestinationMap) Destinations(ctx context.Context) (map[string]Destination, error) {
	return m, nil
}

// PresignClient exposes a provider's presign operation. Presigning is a local
// signature computation; implementations perform no network round-trip.
type PresignClient interface {
	PresignURL(ctx context.Context, op Operation, in PresignInput) (string, error)
}

// PresignInput identifies the object and expiry for one presigned URL.
type PresignInput struct {
	Bucket  string
	Key     string
	Expires time.Duration

	// DownloadFilename sets the response content disposition on GET URLs.
	DownloadFilename string

	// ContentType is signed into PUT URLs so the uploader must send it.
	ContentType string
}

// ClientFactory yields provider presign clients. A factory is consulted per
// request because endpoint, region, and identity all vary by destination and
// deployment mode.
type ClientFactory interface {
	NewPresignClient(ctx context.Context, cfg ClientConfig) (PresignClient, error)
}

// ClientConfig carries everything a factory needs to build a provider client
// bound to one endpoint and identity.
type ClientConfig struct {
	Region   string
	Endpoint string

	// Credentials of the client. The anonymous zero value leaves credential
	// selection to the factory: its own ambient chain, or unsigned access if
	// it is configured for publicly-writable buckets.
	Credentials credentials.Credentials

	UsePathStyle bool
}
