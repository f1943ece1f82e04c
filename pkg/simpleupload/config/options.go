package config

import (
	"fmt"
)

// WithCredentials sets the static signing key pair for the native provider.
func WithCredentials(accessKeyID, secretAccessKey string) Option {
	return func(c *Config) error {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithRegion sets the signing region for the native provider.
func WithRegion(region string) Option {
	return func(c *Config) error {
		if region == "" {
			return fmt.Errorf("region cannot be empty")
		}
		c.Region = region
		return nil
	}
}

// WithEndpoint sets a custom endpoint (for MinIO, Oracle OCI, etc.).
func WithEndpoint(endpoint string, usePathStyle bool) Option {
	return func(c *Config) error {
		if endpoint == "" {
			return fmt.Errorf("endpoint cannot be empty")
		}
		c.Endpoint = endpoint
		c.UsePathStyle = usePathStyle
		return nil
	}
}

// WithBucket sets the default bucket used by destinations that name none.
func WithBucket(bucket string) Option {
	return func(c *Config) error {
		if bucket == "" {
			return fmt.Errorf("bucket cannot be empty")
		}
		c.Bucket = bucket
		return nil
	}
}

// WithOriginalProvider configures the original provider used by migrated
// deployments. Region and endpoint may be empty when destinations carry
// their own.
func WithOriginalProvider(accessKeyID, secretAccessKey, region, endpoint string) Option {
	return func(c *Config) error {
		c.OriginalAccessKeyID = accessKeyID
		c.OriginalSecretAccessKey = secretAccessKey
		c.OriginalRegion = region
		c.OriginalEndpoint = endpoint
		return nil
	}
}

// WithExpiresSeconds sets the default presigned URL lifetime in seconds.
func WithExpiresSeconds(seconds int) Option {
	return func(c *Config) error {
		if seconds <= 0 {
			return fmt.Errorf("expires seconds must be positive, got: %d", seconds)
		}
		c.ExpiresSeconds = seconds
		return nil
	}
}

// WithAnonymousFallback controls whether the client factory emits unsigned
// URLs when no credentials resolve.
func WithAnonymousFallback(enabled bool) Option {
	return func(c *Config) error {
		c.AnonymousFallback = enabled
		return nil
	}
}

// WithDestination adds or replaces a named upload destination.
func WithDestination(name string, dest DestinationConfig) Option {
	return func(c *Config) error {
		if name == "" {
			return fmt.Errorf("destination name cannot be empty")
		}
		c.Destinations[name] = dest
		return nil
	}
}

// WithDestinationURL adds or replaces a named upload destination from its
// s3:// URL form. See ParseDestinations for the syntax.
func WithDestinationURL(name, rawURL string) Option {
	return func(c *Config) error {
		if name == "" {
			return fmt.Errorf("destination name cannot be empty")
		}
		dest, err := parseDestinationURL(rawURL)
		if err != nil {
			return fmt.Errorf("invalid destination %q: %w", name, err)
		}
		c.Destinations[name] = dest
		return nil
	}
}
