// Package health checks whether a node is operational.
//
// A node is healthy when its container runs and its bee API answers
// GET /health on the published API port:
//
//	StatusHealthy   - Container running, bee API reachable
//	StatusUnhealthy - Container running but bee API unreachable
//	StatusStopped   - Container exists but is not running
//	StatusMissing   - Node is registered but has no container
//	StatusUnknown   - The runtime could not be queried
//
// Check runs every probe for one node:
//
//	result := health.Check(ctx, rt, health.NewHTTPProber(), info)
package health
