// Package credentials resolves AWS-style credentials from a fallback chain:
// statically configured keys, then an ambient provider session, then
// anonymous. Absence of credentials is a valid terminal state, not an error;
// publicly-writable buckets need none.
package credentials

// Credentials is an immutable access key triple. The zero value is the
// anonymous credential.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// Static builds a credential pair from pregenerated keys. Session tokens are
// not issued for pregenerated access keys, so none is set.
func Static(accessKey, secretKey string) Credentials {
	return Credentials{AccessKey: accessKey, SecretKey: secretKey}
}

// Anonymous returns the empty credential used for publicly-writable buckets.
func Anonymous() Credentials {
	return Credentials{}
}

// HasKeys reports whether both the access key and the secret key are present.
func (c Credentials) HasKeys() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// IsAnonymous reports whether the credential carries no material at all.
func (c Credentials) IsAnonymous() bool {
	return c.AccessKey == "" && c.SecretKey == "" && c.SessionToken == ""
}
