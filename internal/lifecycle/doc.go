// Package lifecycle coordinates bee node provisioning and teardown.
//
// The Orchestrator ties together id allocation, port and directory
// resolution, the registry, the container runtime and the deletion guard.
// A node moves through these states:
//
//	Absent -> Provisioning -> Running <-> Stopped -> PendingDeletion -> Destroyed
//
// Provisioning is serialized so two concurrent requests never read the same
// free id. Each step runs once; a failure leaves earlier side effects in
// place and is reported as a typed error from internal/errors.
package lifecycle
