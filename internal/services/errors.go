package services

import "errors"

// Workflow sentinel errors. Handlers map these onto the JSON error codes in
// internal/common; everything else is treated as an upstream failure.
var (
	// ErrNotFound indicates no record matches the provided token or id.
	ErrNotFound = errors.New("workflow: not found")
	// ErrAlreadyAccepted signals an invite that has already been accepted.
	ErrAlreadyAccepted = errors.New("invite: already accepted")
	// ErrRevoked signals an invite that has been revoked.
	ErrRevoked = errors.New("invite: revoked")
	// ErrExpired signals an invite whose expires_at is in the past.
	ErrExpired = errors.New("invite: expired")
	// ErrEmailMismatch signals an accepting identity whose email does not
	// match the invite's target email.
	ErrEmailMismatch = errors.New("invite: email mismatch")
	// ErrAlreadyProcessed signals a join request that has already been
	// approved or rejected.
	ErrAlreadyProcessed = errors.New("join request: already processed")
	// ErrNotAdmin signals a caller without admin rights over the company.
	ErrNotAdmin = errors.New("workflow: caller is not a company admin")
	// ErrDuplicateAccess signals an email that already holds project access.
	ErrDuplicateAccess = errors.New("project access: already granted")
	// ErrEmailDeliveryFailed signals a notification email that could not be
	// delivered in a flow that treats delivery as mandatory.
	ErrEmailDeliveryFailed = errors.New("email delivery failed")
)
