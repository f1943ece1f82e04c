// Package config assembles a ready-to-use upload service from environment
// variables and programmatic options.
//
// Configuration is applied through functional options on top of library
// defaults:
//
//	cfg, err := config.Load(
//	    config.WithEnv(),
//	    config.WithDestinationURL("files", "s3://my-bucket?region=us-east-1&prefix=uploads"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := cfg.BuildService()
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/credentials"
	"github.com/tendant/simple-upload/pkg/simpleupload/objectkey"
	s3storage "github.com/tendant/simple-upload/pkg/simpleupload/storage/s3"
)

// Option applies configuration to a Config instance.
type Option func(*Config) error

// Load constructs a Config by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*Config, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() Config {
	return Config{
		ExpiresSeconds: 3600,
		Destinations:   map[string]DestinationConfig{},
	}
}

// Config represents configuration for the upload service.
type Config struct {
	// Provider settings for the deployment's native object store.
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	UsePathStyle    bool

	// Original-provider settings used when requests are signed for the
	// store the deployment migrated away from.
	OriginalAccessKeyID     string
	OriginalSecretAccessKey string
	OriginalRegion          string
	OriginalEndpoint        string

	// ExpiresSeconds is the default presigned URL lifetime.
	ExpiresSeconds int

	// AnonymousFallback makes the client factory emit unsigned URLs when
	// no credentials resolve, instead of borrowing the SDK's own chain.
	AnonymousFallback bool

	Destinations map[string]DestinationConfig
}

// DestinationConfig represents configuration for a named upload destination.
type DestinationConfig struct {
	Bucket      string
	Region      string
	Endpoint    string
	KeyPrefix   string // empty or "/" places objects at the bucket root
	ACL         string
	ContentType string
}

// Destination converts the destination configuration into the form consumed
// by the upload service.
func (d DestinationConfig) Destination() simpleupload.Destination {
	strategy := objectkey.Root()
	if d.KeyPrefix != "" {
		strategy = objectkey.FromString(d.KeyPrefix)
	}

	return simpleupload.Destination{
		Bucket:      d.Bucket,
		Region:      d.Region,
		Endpoint:    d.Endpoint,
		KeyStrategy: strategy,
		ACL:         d.ACL,
		ContentType: d.ContentType,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ExpiresSeconds <= 0 {
		return errors.New("expires_seconds must be positive")
	}

	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("access key and secret key must be set together")
	}
	if (c.OriginalAccessKeyID == "") != (c.OriginalSecretAccessKey == "") {
		return errors.New("original access key and secret key must be set together")
	}

	return nil
}

// Settings converts the configuration into the provider settings consumed
// by the upload service. Hosts that reload configuration at runtime can
// combine this with simpleupload.WithSettingsSource.
func (c *Config) Settings() simpleupload.Settings {
	return simpleupload.Settings{
		AccessKey:         c.AccessKeyID,
		SecretKey:         c.SecretAccessKey,
		Region:            c.Region,
		Endpoint:          c.Endpoint,
		Bucket:            c.Bucket,
		OriginalAccessKey: c.OriginalAccessKeyID,
		OriginalSecretKey: c.OriginalSecretAccessKey,
		OriginalRegion:    c.OriginalRegion,
		OriginalEndpoint:  c.OriginalEndpoint,
		UsePathStyle:      c.UsePathStyle,
	}
}

// BuildService creates a Service instance from the configuration.
func (c *Config) BuildService() (simpleupload.Service, error) {
	destinations := make(map[string]simpleupload.Destination, len(c.Destinations))
	for name, dest := range c.Destinations {
		destinations[name] = dest.Destination()
	}

	options := []simpleupload.Option{
		simpleupload.WithDestinations(destinations),
		simpleupload.WithSettings(c.Settings()),
		simpleupload.WithClientFactory(s3storage.New(s3storage.Config{
			AnonymousFallback: c.AnonymousFallback,
		})),
		simpleupload.WithDefaultExpiry(time.Duration(c.ExpiresSeconds) * time.Second),
	}

	// Ambient credentials back the signing operations when no static pair
	// is configured. A session that cannot be built is treated the same
	// as one that yields nothing.
	if session, err := credentials.NewAmbientSession(context.Background()); err == nil {
		options = append(options, simpleupload.WithCredentialSession(session))
	}

	svc, err := simpleupload.New(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload service: %w", err)
	}
	return svc, nil
}
