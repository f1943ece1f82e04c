package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// Session is an ambient credential source, typically backed by the AWS
// default chain (environment, shared profiles, instance metadata).
// Implementations must be safe for concurrent use; the SDK providers cache
// and refresh internally.
type Session interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// NewAmbientSession builds a Session over the AWS default credential chain.
// Construct it once at process start and share it; each Retrieve then hits
// the SDK's internal cache rather than re-walking the chain.
func NewAmbientSession(ctx context.Context) (Session, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return SessionFromProvider(cfg.Credentials), nil
}

// SessionFromProvider adapts any SDK credentials provider into a Session.
func SessionFromProvider(p aws.CredentialsProvider) Session {
	return providerSession{provider: p}
}

type providerSession struct {
	provider aws.CredentialsProvider
}

func (s providerSession) Retrieve(ctx context.Context) (Credentials, error) {
	if s.provider == nil {
		return Credentials{}, nil
	}
	creds, err := s.provider.Retrieve(ctx)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{
		AccessKey:    creds.AccessKeyID,
		SecretKey:    creds.SecretAccessKey,
		SessionToken: creds.SessionToken,
	}, nil
}
