// Package services defines the business logic of the form gatekeeper: the
// validation pipeline, the event log, and the list, preference and report
// operations behind the admin API. This file centralizes service-level error
// values so that callers can check them with errors.Is.
//
// Rejected submissions are not errors; they are Decision values. These
// errors describe invalid admin input and missing resources, and handlers
// translate them into HTTP results.
package services

import "errors"

var (
	// ErrListEntryNotFound indicates that the requested list entry does not exist.
	ErrListEntryNotFound = errors.New("list entry not found")

	// ErrDuplicateListEntry is returned when the same value is already on the
	// same list.
	ErrDuplicateListEntry = errors.New("list entry already exists")

	// ErrInvalidListEntry is returned for an unknown kind or type, or a value
	// that does not parse for its type.
	ErrInvalidListEntry = errors.New("invalid list entry")

	// ErrInvalidPreferences wraps a rejected preference update.
	ErrInvalidPreferences = errors.New("invalid preferences")
)
