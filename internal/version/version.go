// Package version holds the build version, overridden with -ldflags.
package version

// Version is set at build time: -ldflags "-X github.com/katalvlaran/rotapair/internal/version.Version=v1.2.3".
var Version = "dev"
