// Package memory provides an in-memory provider client factory for tests and
// local development. URLs carry the same X-Amz-* query parameters a real
// provider would sign, with signatures derived through the sigv4 package over
// a simplified string-to-sign, so callers can exercise the full presign flow
// offline.
package memory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/sigv4"
)

const timestampFormat = "20060102T150405Z"

// Factory yields in-memory presign clients. It records every client
// configuration it is asked for, so tests can assert how the service resolved
// region, endpoint, and credentials.
type Factory struct {
	// Now supplies the signing time. Defaults to time.Now; tests pin it for
	// stable signatures.
	Now func() time.Time

	mu      sync.Mutex
	configs []simpleupload.ClientConfig
}

// New creates a new in-memory presign client factory
func New() *Factory {
	return &Factory{}
}

// NewPresignClient returns a client producing fake but well-formed presigned
// URLs for the given configuration.
func (f *Factory) NewPresignClient(ctx context.Context, cfg simpleupload.ClientConfig) (simpleupload.PresignClient, error) {
	f.mu.Lock()
	f.configs = append(f.configs, cfg)
	f.mu.Unlock()

	now := f.Now
	if now == nil {
		now = time.Now
	}

	return &presignClient{config: cfg, now: now}, nil
}

// Configs returns a copy of every client configuration requested so far.
func (f *Factory) Configs() []simpleupload.ClientConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]simpleupload.ClientConfig, len(f.configs))
	copy(out, f.configs)
	return out
}

// LastConfig returns the most recently requested client configuration.
func (f *Factory) LastConfig() (simpleupload.ClientConfig, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.configs) == 0 {
		return simpleupload.ClientConfig{}, false
	}
	return f.configs[len(f.configs)-1], true
}

type presignClient struct {
	config simpleupload.ClientConfig
	now    func() time.Time
}

func (c *presignClient) PresignURL(ctx context.Context, op simpleupload.Operation, in simpleupload.PresignInput) (string, error) {
	if in.Bucket == "" {
		return "", errors.New("bucket name is required")
	}
	if op == "" {
		op = simpleupload.OperationGet
	}

	expires := in.Expires
	if expires <= 0 {
		expires = time.Hour
	}

	base := c.config.Endpoint
	if base == "" {
		base = "memory://" + in.Bucket
	} else {
		base = strings.TrimSuffix(base, "/") + "/" + in.Bucket
	}

	query := url.Values{}
	query.Set("X-Amz-Expires", strconv.Itoa(int(expires.Seconds())))
	if in.DownloadFilename != "" {
		query.Set("response-content-disposition", fmt.Sprintf("attachment; filename=\"%s\"", in.DownloadFilename))
	}

	// Anonymous clients get bare unsigned URLs, the same shape an unsigned
	// request to a publicly-readable bucket would use.
	if creds := c.config.Credentials; creds.HasKeys() {
		now := c.now().UTC()
		scope := strings.Join([]string{
			now.Format(sigv4.DateFormat),
			c.config.Region,
			sigv4.ServiceS3,
			sigv4.TerminationString,
		}, "/")

		signedHeaders := "host"
		if in.ContentType != "" {
			signedHeaders = "content-type;host"
		}

		query.Set("X-Amz-Algorithm", sigv4.Algorithm)
		query.Set("X-Amz-Credential", creds.AccessKey+"/"+scope)
		query.Set("X-Amz-Date", now.Format(timestampFormat))
		query.Set("X-Amz-SignedHeaders", signedHeaders)
		if creds.SessionToken != "" {
			query.Set("X-Amz-Security-Token", creds.SessionToken)
		}

		stringToSign := strings.Join([]string{
			string(op),
			in.Bucket,
			in.Key,
			in.ContentType,
			scope,
			now.Format(timestampFormat),
			query.Get("X-Amz-Expires"),
		}, "\n")

		signingKey := sigv4.SigningKey(creds.SecretKey, now, c.config.Region, sigv4.ServiceS3)
		query.Set("X-Amz-Signature", sigv4.Signature(signingKey, stringToSign))
	}

	return base + "/" + in.Key + "?" + query.Encode(), nil
}
