// Package simpleupload issues time-limited presigned URLs for direct
// browser-to-storage uploads and downloads against S3-compatible providers.
//
// It exposes a single Service interface that composes named destination
// configuration, a credential fallback chain (static keys, ambient provider
// session, anonymous), per-destination object key naming strategies, and AWS
// Signature V4 computation. Provider clients (e.g., S3, in-memory) are
// provided under subpackages; the library signs and hands out URLs but never
// moves object bytes itself.
//
// # Deployment Modes
//
// Every request carries a DeploymentMode selecting which settings fallback
// set fills in values a destination omits. ModeProviderNative (the zero
// value) uses the primary settings; ModeForeign uses the parallel "original"
// settings, for deployments whose native cloud identity differs from the
// storage provider being signed for. The mode is always supplied by the
// caller and never inferred.
package simpleupload
