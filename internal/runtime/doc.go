// Package runtime provides a unified interface for container runtimes.
//
// Supported runtimes:
//   - docker: the Docker CLI
//   - podman: the Podman CLI, driven with the same arguments
//
// # Runtime Interface
//
// The Runtime interface covers what ruche needs to manage bee containers:
//   - Create, Start, Stop, Remove: Container lifecycle
//   - Status: Container state queries
//   - Logs: Combined stdout/stderr lines
//   - List: Enumerate containers by name prefix
//
// # Mock Runtime
//
// For testing, use NewMockRuntime() to create a mock implementation that can
// be configured with injected errors and used to verify the calls made.
package runtime
