package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig maps the environment variables understood by WithEnv.
type envConfig struct {
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Region          string `env:"AWS_S3_REGION"`
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	Bucket          string `env:"AWS_S3_BUCKET"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`

	OriginalAccessKeyID     string `env:"ORIGINAL_AWS_ACCESS_KEY_ID"`
	OriginalSecretAccessKey string `env:"ORIGINAL_AWS_SECRET_ACCESS_KEY"`
	OriginalRegion          string `env:"ORIGINAL_AWS_S3_REGION"`
	OriginalEndpoint        string `env:"ORIGINAL_AWS_S3_ENDPOINT"`

	ExpiresSeconds    int    `env:"UPLOAD_EXPIRES_SECONDS" env-default:"0"`
	AnonymousFallback bool   `env:"UPLOAD_ANONYMOUS_FALLBACK" env-default:"false"`
	Destinations      string `env:"UPLOAD_DESTINATIONS"`
}

// WithEnv applies environment variable overrides.
//
// Environment variable mapping:
//
// Provider settings:
//
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY - Static signing key pair
//	AWS_S3_REGION - Signing region
//	AWS_S3_ENDPOINT - Custom endpoint (MinIO, Oracle OCI, ...)
//	AWS_S3_BUCKET - Default bucket for destinations that name none
//	AWS_S3_USE_PATH_STYLE - Path-style addressing for custom endpoints
//
// The same set prefixed with ORIGINAL_ configures the original provider
// used by migrated deployments (bucket and path style excluded).
//
// Service settings:
//
//	UPLOAD_EXPIRES_SECONDS - Default presigned URL lifetime
//	UPLOAD_ANONYMOUS_FALLBACK - Emit unsigned URLs when nothing resolves
//	UPLOAD_DESTINATIONS - Comma-separated destination list, for example:
//	    files=s3://my-bucket?region=us-east-1&prefix=uploads,media=s3://media-bucket
//
// Unset variables leave prior configuration untouched.
func WithEnv() Option {
	return func(c *Config) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		applyString(&c.AccessKeyID, env.AccessKeyID)
		applyString(&c.SecretAccessKey, env.SecretAccessKey)
		applyString(&c.Region, env.Region)
		applyString(&c.Endpoint, env.Endpoint)
		applyString(&c.Bucket, env.Bucket)
		applyString(&c.OriginalAccessKeyID, env.OriginalAccessKeyID)
		applyString(&c.OriginalSecretAccessKey, env.OriginalSecretAccessKey)
		applyString(&c.OriginalRegion, env.OriginalRegion)
		applyString(&c.OriginalEndpoint, env.OriginalEndpoint)

		// Booleans only override when the variable is actually present,
		// so a programmatic true survives an unset environment.
		if _, ok := os.LookupEnv("AWS_S3_USE_PATH_STYLE"); ok {
			c.UsePathStyle = env.UsePathStyle
		}
		if _, ok := os.LookupEnv("UPLOAD_ANONYMOUS_FALLBACK"); ok {
			c.AnonymousFallback = env.AnonymousFallback
		}

		if env.ExpiresSeconds > 0 {
			c.ExpiresSeconds = env.ExpiresSeconds
		}

		if env.Destinations != "" {
			destinations, err := ParseDestinations(env.Destinations)
			if err != nil {
				return err
			}
			for name, dest := range destinations {
				c.Destinations[name] = dest
			}
		}

		return nil
	}
}

func applyString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// ParseDestinations parses a comma-separated destination list of the form
// accepted by UPLOAD_DESTINATIONS:
//
//	name=s3://bucket?region=us-east-1&prefix=uploads&acl=public-read
//
// The bucket may be omitted (s3://?prefix=...) to fall back to the default
// bucket. A path segment doubles as the prefix: s3://bucket/uploads.
func ParseDestinations(raw string) (map[string]DestinationConfig, error) {
	destinations := map[string]DestinationConfig{}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, rawURL, found := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("invalid destination entry %q (want name=s3://bucket)", entry)
		}

		dest, err := parseDestinationURL(strings.TrimSpace(rawURL))
		if err != nil {
			return nil, fmt.Errorf("invalid destination %q: %w", name, err)
		}
		destinations[name] = dest
	}

	return destinations, nil
}

// parseDestinationURL parses a single s3:// destination URL.
func parseDestinationURL(raw string) (DestinationConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return DestinationConfig{}, fmt.Errorf("unparseable URL %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return DestinationConfig{}, fmt.Errorf("unsupported scheme %q (only s3:// is supported)", u.Scheme)
	}

	query := u.Query()
	dest := DestinationConfig{
		Bucket:      u.Host,
		Region:      query.Get("region"),
		Endpoint:    query.Get("endpoint"),
		KeyPrefix:   query.Get("prefix"),
		ACL:         query.Get("acl"),
		ContentType: query.Get("content_type"),
	}

	if dest.KeyPrefix == "" {
		dest.KeyPrefix = strings.TrimPrefix(u.Path, "/")
	}

	return dest, nil
}
