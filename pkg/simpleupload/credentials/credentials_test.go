package credentials_test

import (
	"context"
	"errors"
	"testing"

	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-upload/pkg/simpleupload/credentials"
)

type stubSession struct {
	creds credentials.Credentials
	err   error
	calls int
}

func (s *stubSession) Retrieve(ctx context.Context) (credentials.Credentials, error) {
	s.calls++
	return s.creds, s.err
}

func TestResolveStaticWins(t *testing.T) {
	session := &stubSession{
		creds: credentials.Credentials{
			AccessKey:    "SESSIONKEY",
			SecretKey:    "sessionsecret",
			SessionToken: "sessiontoken",
		},
	}
	r := credentials.Resolver{
		Static:  credentials.Static("AKIAEXAMPLE", "staticsecret"),
		Session: session,
	}

	got := r.Resolve(context.Background())

	assert.Equal(t, "AKIAEXAMPLE", got.AccessKey)
	assert.Equal(t, "staticsecret", got.SecretKey)
	assert.Empty(t, got.SessionToken)
	assert.Zero(t, session.calls, "session should not be consulted when static keys are set")
}

func TestResolveStaticDropsToken(t *testing.T) {
	r := credentials.Resolver{
		Static: credentials.Credentials{
			AccessKey:    "AKIAEXAMPLE",
			SecretKey:    "staticsecret",
			SessionToken: "stale-token",
		},
	}

	got := r.Resolve(context.Background())

	assert.True(t, got.HasKeys())
	assert.Empty(t, got.SessionToken)
}

func TestResolveFallsBackToSession(t *testing.T) {
	session := &stubSession{
		creds: credentials.Credentials{
			AccessKey:    "SESSIONKEY",
			SecretKey:    "sessionsecret",
			SessionToken: "sessiontoken",
		},
	}
	r := credentials.Resolver{Session: session}

	got := r.Resolve(context.Background())

	assert.Equal(t, session.creds, got)
	assert.Equal(t, 1, session.calls)
}

func TestResolvePartialStaticFallsThrough(t *testing.T) {
	session := &stubSession{creds: credentials.Static("SESSIONKEY", "sessionsecret")}
	r := credentials.Resolver{
		Static:  credentials.Credentials{AccessKey: "AKIAEXAMPLE"}, // secret missing
		Session: session,
	}

	got := r.Resolve(context.Background())

	assert.Equal(t, "SESSIONKEY", got.AccessKey)
	assert.Equal(t, 1, session.calls)
}

func TestResolveAnonymousWhenNothingConfigured(t *testing.T) {
	r := credentials.Resolver{}

	got := r.Resolve(context.Background())

	assert.True(t, got.IsAnonymous())
}

func TestResolveSessionErrorDegradesToAnonymous(t *testing.T) {
	session := &stubSession{err: errors.New("metadata service unreachable")}
	r := credentials.Resolver{Session: session}

	got := r.Resolve(context.Background())

	assert.True(t, got.IsAnonymous())
	assert.Equal(t, 1, session.calls)
}

func TestSessionFromProvider(t *testing.T) {
	provider := awscreds.NewStaticCredentialsProvider("AKIAEXAMPLE", "secret", "token")
	session := credentials.SessionFromProvider(provider)

	got, err := session.Retrieve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "AKIAEXAMPLE", got.AccessKey)
	assert.Equal(t, "secret", got.SecretKey)
	assert.Equal(t, "token", got.SessionToken)
}

func TestSessionFromNilProvider(t *testing.T) {
	session := credentials.SessionFromProvider(nil)

	got, err := session.Retrieve(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsAnonymous())
}

func TestCredentialsPredicates(t *testing.T) {
	tests := []struct {
		name        string
		creds       credentials.Credentials
		hasKeys     bool
		isAnonymous bool
	}{
		{"zero value", credentials.Credentials{}, false, true},
		{"anonymous helper", credentials.Anonymous(), false, true},
		{"full pair", credentials.Static("AKIAEXAMPLE", "secret"), true, false},
		{"access key only", credentials.Credentials{AccessKey: "AKIAEXAMPLE"}, false, false},
		{"secret only", credentials.Credentials{SecretKey: "secret"}, false, false},
		{"token only", credentials.Credentials{SessionToken: "token"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hasKeys, tt.creds.HasKeys())
			assert.Equal(t, tt.isAnonymous, tt.creds.IsAnonymous())
		})
	}
}
