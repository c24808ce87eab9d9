// Package errors provides standardized error handling for the listings console.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Form validation
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeSubmitBlocked        ErrorCode = "SUBMIT_BLOCKED"
	ErrCodeSubmitInProgress     ErrorCode = "SUBMIT_IN_PROGRESS"
	ErrCodeDraftDecisionPending ErrorCode = "DRAFT_DECISION_PENDING"
	ErrCodeFormNotOpen          ErrorCode = "FORM_NOT_OPEN"

	// Draft persistence
	ErrCodeDraftNotFound    ErrorCode = "DRAFT_NOT_FOUND"
	ErrCodeDraftCorrupt     ErrorCode = "DRAFT_CORRUPT"
	ErrCodeDraftStoreFailed ErrorCode = "DRAFT_STORE_FAILED"

	// Platform API
	ErrCodeServerRejected  ErrorCode = "SERVER_REJECTED"
	ErrCodeNetworkFailure  ErrorCode = "NETWORK_FAILURE"
	ErrCodeEntityNotFound  ErrorCode = "ENTITY_NOT_FOUND"
	ErrCodeCountsNotFound  ErrorCode = "COUNTS_NOT_FOUND"
	ErrCodeUnexpectedReply ErrorCode = "UNEXPECTED_REPLY"

	// List views / deletion
	ErrCodeDeleteInProgress ErrorCode = "DELETE_IN_PROGRESS"

	// Sessions and definitions
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeUnknownFormType ErrorCode = "UNKNOWN_FORM_TYPE"

	// Journal
	ErrCodeJournalWriteFailed ErrorCode = "JOURNAL_WRITE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Field Errors
// ==========================

// FieldErrors maps a dotted field path to a human-readable error message.
// A path absent from the map, or mapped to "", is valid.
type FieldErrors map[string]string

func (f FieldErrors) Set(path, message string) {
	f[path] = message
}

// Clear removes any active error for the path. Used by the
// optimistic-clear-on-edit policy.
func (f FieldErrors) Clear(path string) {
	delete(f, path)
}

func (f FieldErrors) Has(path string) bool {
	return f[path] != ""
}

// Any reports whether at least one field carries a non-empty error.
func (f FieldErrors) Any() bool {
	for _, msg := range f {
		if msg != "" {
			return true
		}
	}
	return false
}

// Merge copies every non-empty entry from other into f.
func (f FieldErrors) Merge(other FieldErrors) {
	for path, msg := range other {
		if msg != "" {
			f[path] = msg
		}
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable local validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Form validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmitBlockedError is returned when submit is attempted while the form
// is not overall-valid. No network call is made.
func NewSubmitBlockedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmitBlocked,
		Message:   "Form has incomplete or invalid steps",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmitInProgressError rejects a re-entrant submit call.
func NewSubmitInProgressError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmitInProgress,
		Message:   "A submission is already in flight",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftDecisionPendingError is returned when editing is attempted before
// the pending draft has been restored or discarded.
func NewDraftDecisionPendingError() *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftDecisionPending,
		Message:   "A saved draft must be restored or discarded first",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFormNotOpenError is returned when an operation requires an open form.
func NewFormNotOpenError() *StandardError {
	return &StandardError{
		Code:      ErrCodeFormNotOpen,
		Message:   "Form is not open for editing",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftNotFoundError creates a non-retryable draft lookup error.
func NewDraftNotFoundError(formType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftNotFound,
		Message:   "No saved draft for form type",
		Details:   fmt.Sprintf("formType: %s", formType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftCorruptError marks a stored draft payload that failed structural
// validation. The slot is still clearable.
func NewDraftCorruptError(formType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftCorrupt,
		Message:   "Saved draft payload is not usable",
		Details:   fmt.Sprintf("formType: %s, error: %s", formType, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftStoreFailedError creates a retryable draft persistence error.
func NewDraftStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftStoreFailed,
		Message:   "Draft store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewServerRejectedError carries a platform-side validation rejection. The
// per-field errors are preserved in Metadata under "fieldErrors".
func NewServerRejectedError(message string, fieldErrors FieldErrors) *StandardError {
	e := &StandardError{
		Code:      ErrCodeServerRejected,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	if len(fieldErrors) > 0 {
		e.Metadata = map[string]interface{}{"fieldErrors": fieldErrors}
	}
	return e
}

// FieldErrorsOf extracts per-field errors from a server rejection, or nil.
func FieldErrorsOf(err error) FieldErrors {
	stdErr, ok := err.(*StandardError)
	if !ok || stdErr.Metadata == nil {
		return nil
	}
	if fe, ok := stdErr.Metadata["fieldErrors"].(FieldErrors); ok {
		return fe
	}
	return nil
}

// NewNetworkFailureError creates a retryable transport error.
func NewNetworkFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkFailure,
		Message:   "Could not reach the listings platform",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEntityNotFoundError creates a non-retryable lookup error.
func NewEntityNotFoundError(entityType, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntityNotFound,
		Message:   "Entity not found",
		Details:   fmt.Sprintf("entityType: %s, id: %s", entityType, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCountsNotFoundError marks a counts endpoint that is not implemented yet
// (HTTP 404). Callers fall back to client-side counting.
func NewCountsNotFoundError(entityType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCountsNotFound,
		Message:   "Counts endpoint not available",
		Details:   fmt.Sprintf("entityType: %s", entityType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnexpectedReplyError creates a retryable error for malformed platform
// responses.
func NewUnexpectedReplyError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnexpectedReply,
		Message:   "Unexpected platform response",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeleteInProgressError ignores a repeated delete confirmation while one
// is outstanding.
func NewDeleteInProgressError(entityType, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeleteInProgress,
		Message:   "Deletion already in progress",
		Details:   fmt.Sprintf("entityType: %s, id: %s", entityType, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Form session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownFormTypeError creates a non-retryable form definition error.
func NewUnknownFormTypeError(formType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownFormType,
		Message:   "No form definition registered for type",
		Details:   fmt.Sprintf("formType: %s", formType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewJournalWriteFailedError creates a retryable journal error.
func NewJournalWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeJournalWriteFailed,
		Message:   "Failed to record submission in journal",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Helpers
// ==========================

// CodeOf returns the error code of a StandardError, or UNKNOWN_ERROR.
func CodeOf(err error) string {
	if stdErr, ok := err.(*StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}

// IsRetryable reports whether the error represents a transient condition the
// user can simply retry (transport failure) rather than correct (rejection).
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// Convert wraps an arbitrary error into a StandardError with the given
// fallback code.
func Convert(err error, code ErrorCode, message string) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
