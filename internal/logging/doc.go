// Package logging provides logging utilities for ruche.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for CLI users
//
// # Debug Logging
//
// Structured logs are written using slog and controlled by verbosity:
//
//	logging.Debug("creating container", "name", name, "image", image)
//	logging.Node(3, "node_03").Info("node provisioned")
//
// # User Output
//
//	logging.UserInfo("Requesting deletion of node %d...", id)
//	logging.UserSuccess("Node %s created", name)
//	logging.UserWarning("Node %s is not running", name)
//	logging.UserError("Failed to start node: %v", err)
//
// UserInfo and UserSuccess write to Stdout; UserWarning and UserError to
// Stderr.
package logging
