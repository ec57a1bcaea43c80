package commands

import "github.com/rios0rios0/autokeeper/internal/domain/entities"

// ParseRemoteURL exports parseRemoteURL for testing.
var ParseRemoteURL = parseRemoteURL //nolint:gochecknoglobals // test export

// ResolveTokenFromEnv exports resolveTokenFromEnv for testing.
var ResolveTokenFromEnv = resolveTokenFromEnv //nolint:gochecknoglobals // test export

// TokenEnvHint exports tokenEnvHint for testing.
var TokenEnvHint = tokenEnvHint //nolint:gochecknoglobals // test export

// ResolveTarget exports resolveTarget for testing.
var ResolveTarget = resolveTarget //nolint:gochecknoglobals // test export

// RemoteInfo exports remoteInfo for testing.
type RemoteInfo = remoteInfo

// HTTPSURL exports remoteInfo.httpsURL for testing.
func (r remoteInfo) HTTPSURL() string { return r.httpsURL() }

// Fork exports remoteInfo.fork for testing.
func (r remoteInfo) Fork() entities.ForkData { return r.fork() }

// ErrUnsupportedRemote exports errUnsupportedRemote for testing.
var ErrUnsupportedRemote = errUnsupportedRemote //nolint:gochecknoglobals // test export

// ErrMalformedRemote exports errMalformedRemote for testing.
var ErrMalformedRemote = errMalformedRemote //nolint:gochecknoglobals // test export
