// Package integration provides a test harness for integration tests
// that drive a real container runtime.
//
// Integration tests are skipped unless the RUCHE_INTEGRATION_TESTS
// environment variable is set. They require docker or podman and free
// ports in the 27xx and 28xx ranges. The bee image defaults to
// DefaultImage and can be overridden with RUCHE_INTEGRATION_IMAGE.
//
//	func TestMyIntegration(t *testing.T) {
//	    h := integration.NewHarness(t) // Skips if env var not set
//
//	    info := h.Provision()
//	    // Drive h.App().Nodes...
//
//	    // Containers are removed via t.Cleanup
//	}
//
// # Running Integration Tests
//
//	RUCHE_INTEGRATION_TESTS=1 go test -v ./internal/integration/...
package integration
