package simpleupload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload/credentials"
	"github.com/tendant/simple-upload/pkg/simpleupload/objectkey"
	"github.com/tendant/simple-upload/pkg/simpleupload/sigv4"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// service implements the Service interface
type service struct {
	destinations  DestinationSource
	settings      func() Settings
	session       credentials.Session
	clientFactory ClientFactory
	defaultExpiry time.Duration
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithDestinationSource sets the destination source for the service
func WithDestinationSource(src DestinationSource) Option {
	return func(s *service) {
		s.destinations = src
	}
}

// WithDestinations sets a fixed destination map for the service
func WithDestinations(m map[string]Destination) Option {
	return func(s *service) {
		s.destinations = DestinationMap(m)
	}
}

// WithSettings sets the process-wide fallback settings
func WithSettings(settings Settings) Option {
	return func(s *service) {
		s.settings = func() Settings { return settings }
	}
}

// WithSettingsSource sets a live settings source, re-read on every operation.
// Use this when the host reloads configuration at runtime.
func WithSettingsSource(fn func() Settings) Option {
	return func(s *service) {
		s.settings = fn
	}
}

// WithCredentialSession sets the ambient credential session consulted when no
// static keys are configured
func WithCredentialSession(session credentials.Session) Option {
	return func(s *service) {
		s.session = session
	}
}

// WithClientFactory sets the provider client factory
func WithClientFactory(factory ClientFactory) Option {
	return func(s *service) {
		s.clientFactory = factory
	}
}

// WithDefaultExpiry sets the URL lifetime applied when a request carries none
func WithDefaultExpiry(d time.Duration) Option {
	return func(s *service) {
		s.defaultExpiry = d
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		settings:      func() Settings { return Settings{} },
		defaultExpiry: time.Hour,
	}

	for _, option := range options {
		option(s)
	}

	if s.destinations == nil {
		return nil, fmt.Errorf("destination source is required")
	}
	if s.clientFactory == nil {
		return nil, fmt.Errorf("client factory is required")
	}

	return s, nil
}

// target is the provider binding resolved for one request: the bucket plus
// the mode-resolved region, endpoint, addressing style, and explicit
// credentials (if any). Every field comes from the same settings snapshot;
// a request never observes two readings of a live source.
type target struct {
	bucket       string
	region       string
	endpoint     string
	creds        credentials.Credentials
	usePathStyle bool
}

func (s *service) lookupDestination(ctx context.Context, id string) (Destination, error) {
	dests, err := s.destinations.Destinations(ctx)
	if err != nil {
		return Destination{}, &ConfigurationError{DestinationID: id, Err: err}
	}
	dest, ok := dests[id]
	if !ok {
		return Destination{}, &ConfigurationError{DestinationID: id, Err: ErrDestinationNotFound}
	}
	return dest, nil
}

func resolveTarget(settings Settings, dest Destination, destinationID string, mode DeploymentMode) (target, error) {
	t := target{
		bucket:       dest.Bucket,
		region:       dest.Region,
		endpoint:     dest.Endpoint,
		usePathStyle: settings.UsePathStyle,
	}

	if t.bucket == "" {
		t.bucket = settings.Bucket
	}
	if t.bucket == "" {
		return target{}, &ConfigurationError{DestinationID: destinationID, Field: "bucket", Err: ErrBucketRequired}
	}

	if t.region == "" {
		t.region = settings.regionFor(mode)
	}
	if t.endpoint == "" {
		t.endpoint = settings.endpointFor(mode)
	}

	// Explicit keys ride along only when the mode-specific pair is complete;
	// otherwise the provider client is left to its own ambient or anonymous
	// resolution.
	if accessKey, secretKey := settings.keyPair(mode); accessKey != "" && secretKey != "" {
		t.creds = credentials.Static(accessKey, secretKey)
	}

	return t, nil
}

func (s *service) GetPresignedURL(ctx context.Context, req PresignRequest) (string, error) {
	dest, err := s.lookupDestination(ctx, req.DestinationID)
	if err != nil {
		return "", err
	}

	t, err := resolveTarget(s.settings(), dest, req.DestinationID, req.Mode)
	if err != nil {
		return "", err
	}

	op := req.Operation
	if op == "" {
		op = OperationGet
	}
	expires := req.ExpiresIn
	if expires <= 0 {
		expires = s.defaultExpiry
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = dest.ContentType
	}

	client, err := s.newClient(ctx, t)
	if err != nil {
		return "", &ProviderError{Op: "new_client", Bucket: t.bucket, Key: req.ObjectKey, Err: err}
	}

	url, err := client.PresignURL(ctx, op, PresignInput{
		Bucket:           t.bucket,
		Key:              req.ObjectKey,
		Expires:          expires,
		DownloadFilename: req.DownloadFilename,
		ContentType:      contentType,
	})
	if err != nil {
		return "", &ProviderError{
			Op:     "presign_" + strings.ToLower(string(op)),
			Bucket: t.bucket,
			Key:    req.ObjectKey,
			Err:    err,
		}
	}

	return url, nil
}

func (s *service) GetUploadParams(ctx context.Context, req UploadParamsRequest) (*UploadParams, error) {
	dest, err := s.lookupDestination(ctx, req.DestinationID)
	if err != nil {
		return nil, err
	}

	settings := s.settings()
	t, err := resolveTarget(settings, dest, req.DestinationID, req.Mode)
	if err != nil {
		return nil, err
	}

	objectKey := objectkey.Build(dest.KeyStrategy, req.FileName, dest.KeyArgs)

	expires := req.ExpiresIn
	if expires <= 0 {
		expires = s.defaultExpiry
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = dest.ContentType
	}

	client, err := s.newClient(ctx, t)
	if err != nil {
		return nil, &ProviderError{Op: "new_client", Bucket: t.bucket, Key: objectKey, Err: err}
	}

	url, err := client.PresignURL(ctx, OperationPut, PresignInput{
		Bucket:      t.bucket,
		Key:         objectKey,
		Expires:     expires,
		ContentType: contentType,
	})
	if err != nil {
		return nil, &ProviderError{Op: "presign_put", Bucket: t.bucket, Key: objectKey, Err: err}
	}

	// Resolved for visibility only: uploaders may need the access key and
	// session token as form fields. The secret never leaves the service.
	accessKey, secretKey := settings.keyPair(req.Mode)
	creds := credentials.Resolver{
		Static:  credentials.Static(accessKey, secretKey),
		Session: s.session,
	}.Resolve(ctx)

	return &UploadParams{
		DestinationID: req.DestinationID,
		Bucket:        t.bucket,
		ObjectKey:     objectKey,
		Region:        t.region,
		Endpoint:      t.endpoint,
		URL:           url,
		Method:        "PUT",
		ACL:           dest.ACL,
		ContentType:   contentType,
		AccessKey:     creds.AccessKey,
		SessionToken:  creds.SessionToken,
		ExpiresAt:     time.Now().UTC().Add(expires),
	}, nil
}

func (s *service) SignV4(ctx context.Context, req SignV4Request) (string, error) {
	settings := s.settings()

	region := settings.regionFor(req.Mode)
	if req.DestinationID != "" {
		dest, err := s.lookupDestination(ctx, req.DestinationID)
		if err != nil {
			return "", err
		}
		if dest.Region != "" {
			region = dest.Region
		}
	}

	accessKey, secretKey := settings.keyPair(req.Mode)
	creds := credentials.Resolver{
		Static:  credentials.Static(accessKey, secretKey),
		Session: s.session,
	}.Resolve(ctx)
	if creds.SecretKey == "" {
		return "", &CredentialError{Mode: req.Mode, Err: ErrNoSigningCredentials}
	}

	date := req.SigningDate
	if date.IsZero() {
		date = time.Now().UTC()
	}

	key := sigv4.SigningKey(creds.SecretKey, date, region, sigv4.ServiceS3)
	return sigv4.Signature(key, req.StringToSign), nil
}

func (s *service) BuildObjectKey(ctx context.Context, destinationID, fileName string) (string, error) {
	dest, err := s.lookupDestination(ctx, destinationID)
	if err != nil {
		return "", err
	}
	return objectkey.Build(dest.KeyStrategy, fileName, dest.KeyArgs), nil
}

func (s *service) ResolveCredentials(ctx context.Context) credentials.Credentials {
	settings := s.settings()
	return credentials.Resolver{
		Static:  credentials.Static(settings.AccessKey, settings.SecretKey),
		Session: s.session,
	}.Resolve(ctx)
}

func (s *service) Destination(ctx context.Context, destinationID string) (Destination, error) {
	return s.lookupDestination(ctx, destinationID)
}

func (s *service) Destinations(ctx context.Context) ([]string, error) {
	dests, err := s.destinations.Destinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}

	ids := maps.Keys(dests)
	slices.Sort(ids)
	return ids, nil
}

func (s *service) newClient(ctx context.Context, t target) (PresignClient, error) {
	return s.clientFactory.NewPresignClient(ctx, ClientConfig{
		Region:       t.region,
		Endpoint:     t.endpoint,
		Credentials:  t.creds,
		UsePathStyle: t.usePathStyle,
	})
}
