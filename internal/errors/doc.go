// Package errors provides typed errors with exit codes for ruche.
//
// # Error Types
//
// RucheError is the base error type. Its Kind classifies the failure and
// drives both the CLI exit code and the HTTP status the API answers with:
//
//	type RucheError struct {
//	    Kind    Kind   // Classification
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Origin  Origin // Collaborator behind an upstream failure
//	    Cause   error  // Wrapped error
//	}
//
// # Kinds
//
//	KindCapacityExceeded        400  fleet already holds 99 nodes
//	KindIDUnavailable           400  no free identity slot
//	KindInvalidTemplate         400  port or directory template rejected
//	KindDirectoryAlreadyExists  409  node directory present before creation
//	KindNotFound                404  unknown node id
//	KindConfirmationRequired    400  no deletion request in the last 30s
//	KindUpstreamFailure         500  registry, filesystem, runtime or lookup failed
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
