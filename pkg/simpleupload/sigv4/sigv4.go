// Package sigv4 implements the AWS Signature Version 4 key derivation and
// signing primitives used for presigned URLs and browser upload policies.
//
// The derivation chain follows the published algorithm: a secret access key is
// folded with the request date, region, and service name through successive
// HMAC-SHA256 rounds, terminated with "aws4_request". The resulting key signs
// an arbitrary string-to-sign and the signature is rendered as lowercase hex.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// DateFormat is the calendar-date layout used in the key derivation chain.
	DateFormat = "20060102"

	// TerminationString closes the derivation chain.
	TerminationString = "aws4_request"

	// ServiceS3 is the service name used when signing S3 requests.
	ServiceS3 = "s3"

	// Algorithm identifies the signing scheme in credential scopes.
	Algorithm = "AWS4-HMAC-SHA256"

	// KeyPrefix is prepended to the secret key before the first HMAC round.
	KeyPrefix = "AWS4"
)

// Sign computes a single HMAC-SHA256 round over message using key and returns
// the raw digest. It is the building block for SigningKey and Signature.
func Sign(key []byte, message string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(message))
	return h.Sum(nil)
}

// SigningKey derives the signing key for the given secret, date, region, and
// service. Only the calendar date of the timestamp participates; the time of
// day is ignored, so any two moments on the same UTC day produce identical
// keys.
//
// Example:
//
//	key := sigv4.SigningKey(secret, time.Now().UTC(), "us-east-1", sigv4.ServiceS3)
//	sig := sigv4.Signature(key, stringToSign)
func SigningKey(secret string, date time.Time, region, service string) []byte {
	dateKey := Sign([]byte(KeyPrefix+secret), date.Format(DateFormat))
	regionKey := Sign(dateKey, region)
	serviceKey := Sign(regionKey, service)
	return Sign(serviceKey, TerminationString)
}

// Signature signs message with key and returns the lowercase hexadecimal
// encoding of the digest, the form embedded in signed requests and policies.
func Signature(key []byte, message string) string {
	return hex.EncodeToString(Sign(key, message))
}
