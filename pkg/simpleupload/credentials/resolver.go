package credentials

import "context"

// Resolver selects credentials from the fallback chain. It holds no state of
// its own and is meant to be constructed per resolution with whatever static
// keys are currently configured, so configuration changes take effect
// immediately.
type Resolver struct {
	// Static is the configured key pair. It wins whenever both keys are set,
	// regardless of what the session would return.
	Static Credentials

	// Session is the optional ambient credential source consulted when no
	// static pair is configured.
	Session Session
}

// Resolve walks the chain and returns the first match: static keys, then the
// ambient session, then anonymous. It never fails; a session error or an
// absent session degrades to the anonymous credential.
func (r Resolver) Resolve(ctx context.Context) Credentials {
	if r.Static.HasKeys() {
		return Static(r.Static.AccessKey, r.Static.SecretKey)
	}

	if r.Session == nil {
		return Anonymous()
	}

	creds, err := r.Session.Retrieve(ctx)
	if err != nil {
		return Anonymous()
	}
	return creds
}
