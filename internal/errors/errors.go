package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Exit codes for ruche
const (
	ExitSuccess              = 0
	ExitGeneralError         = 1
	ExitNotFound             = 2
	ExitCapacityExceeded     = 3
	ExitInvalidTemplate      = 4
	ExitDirectoryExists      = 5
	ExitConfirmationRequired = 6
	ExitUpstreamFailure      = 7
	ExitConfigError          = 8
	ExitDeletionPending      = 9
)

// Kind classifies a RucheError.
type Kind string

const (
	KindCapacityExceeded       Kind = "capacity_exceeded"
	KindIDUnavailable          Kind = "id_unavailable"
	KindInvalidTemplate        Kind = "invalid_template"
	KindDirectoryAlreadyExists Kind = "directory_already_exists"
	KindNotFound               Kind = "not_found"
	KindConfirmationRequired   Kind = "confirmation_required"
	KindUpstreamFailure        Kind = "upstream_failure"
	KindDeletionPending        Kind = "deletion_pending"
	KindValidation             Kind = "validation"
	KindConfig                 Kind = "config"
	KindGeneral                Kind = "general"
)

// Origin names the collaborator behind an UpstreamFailure.
type Origin string

const (
	OriginRegistry     Origin = "registry"
	OriginFilesystem   Origin = "filesystem"
	OriginRuntime      Origin = "runtime"
	OriginNeighborhood Origin = "neighborhood"
)

// RucheError is the base error type for ruche
type RucheError struct {
	Kind    Kind
	Code    int
	Message string
	Origin  Origin
	Cause   error
}

func (e *RucheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RucheError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *RucheError) ExitCode() int {
	return e.Code
}

// New creates a new RucheError
func New(kind Kind, message string) *RucheError {
	return &RucheError{
		Kind:    kind,
		Code:    exitCodeFor(kind),
		Message: message,
	}
}

// Wrap wraps an existing error with a RucheError
func Wrap(kind Kind, message string, cause error) *RucheError {
	return &RucheError{
		Kind:    kind,
		Code:    exitCodeFor(kind),
		Message: message,
		Cause:   cause,
	}
}

func exitCodeFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return ExitNotFound
	case KindCapacityExceeded, KindIDUnavailable:
		return ExitCapacityExceeded
	case KindInvalidTemplate:
		return ExitInvalidTemplate
	case KindDirectoryAlreadyExists:
		return ExitDirectoryExists
	case KindConfirmationRequired:
		return ExitConfirmationRequired
	case KindUpstreamFailure:
		return ExitUpstreamFailure
	case KindDeletionPending:
		return ExitDeletionPending
	case KindConfig:
		return ExitConfigError
	default:
		return ExitGeneralError
	}
}

// Common error constructors

// CapacityExceeded returns an error when the fleet is full
func CapacityExceeded(count int) *RucheError {
	return New(KindCapacityExceeded, fmt.Sprintf("Max capacity reached. %d bee nodes already registered.", count))
}

// IDUnavailable returns an error when no identity slot is free
func IDUnavailable() *RucheError {
	return New(KindIDUnavailable, "no node id available")
}

// InvalidTemplate returns an error for a port or directory template that
// does not match its pattern
func InvalidTemplate(kind, template string) *RucheError {
	return New(KindInvalidTemplate, fmt.Sprintf("invalid %s template %q", kind, template))
}

// DirectoryAlreadyExists returns an error when a node directory is present
func DirectoryAlreadyExists(path string) *RucheError {
	return New(KindDirectoryAlreadyExists, fmt.Sprintf("Directory '%s' already exists", path))
}

// NodeNotFound returns an error for an unknown node id
func NodeNotFound(id int) *RucheError {
	return New(KindNotFound, fmt.Sprintf("Unable to find bee node with id %d.", id))
}

// ConfirmationRequired returns an error when no fresh deletion request exists
func ConfirmationRequired(id int) *RucheError {
	return New(KindConfirmationRequired,
		fmt.Sprintf("Unable to confirm deletion of bee node with id %d. No request made in last 30sec.", id))
}

// DeletionPending returns an error when a node holds an open deletion ticket
func DeletionPending(id int) *RucheError {
	return New(KindDeletionPending, fmt.Sprintf("Bee node with id %d is pending deletion.", id))
}

// Upstream wraps a failure reported by an external collaborator
func Upstream(origin Origin, message string, cause error) *RucheError {
	e := Wrap(KindUpstreamFailure, message, cause)
	e.Origin = origin
	return e
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *RucheError {
	return Wrap(KindConfig, message, cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *RucheError {
	return New(KindValidation, message)
}

// KindOf returns the kind of the first RucheError in err's chain, or
// KindGeneral.
func KindOf(err error) Kind {
	var rucheErr *RucheError
	if errors.As(err, &rucheErr) {
		return rucheErr.Kind
	}
	return KindGeneral
}

// IsKind reports whether any RucheError in err's chain has the given kind
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if rucheErr, ok := err.(*RucheError); ok && rucheErr.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// HTTPStatus maps an error to the status code the management API answers
// with. Errors without a client-facing kind are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindCapacityExceeded, KindIDUnavailable, KindInvalidTemplate, KindConfirmationRequired, KindValidation:
		return http.StatusBadRequest
	case KindDirectoryAlreadyExists, KindDeletionPending:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var rucheErr *RucheError
	if errors.As(err, &rucheErr) {
		return rucheErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
