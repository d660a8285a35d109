// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, while the
// accompanying message is for humans. Every error response carries one.
//
// The public form routes use exactly one rejection code, submission_blocked,
// whatever check fired. Detection detail stays in the event log.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "submission_blocked",
//	  "message": "Your submission was blocked. Please try again."
//	}
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeSubmissionBlocked  = "submission_blocked"
	ErrCodeInvalidFormType    = "invalid_form_type"
	ErrCodeInvalidListEntry   = "invalid_list_entry"
	ErrCodeInvalidPreferences = "invalid_preferences"
	ErrCodeLoginDisabled      = "login_disabled"
	ErrCodeListFailed         = "list_failed"
	ErrCodeCleanupFailed      = "cleanup_failed"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)
