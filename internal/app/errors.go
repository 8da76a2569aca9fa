package app

import "errors"

var (
	// ErrJobNotFound indicates the referenced enriched issue does not exist.
	ErrJobNotFound = errors.New("job not found")
	// ErrAlreadyClaimed indicates the job was claimed by another contractor.
	// This is an expected outcome of the offer race, not a fault.
	ErrAlreadyClaimed = errors.New("job already claimed")
	// ErrIssueNotFound indicates the referenced issue does not exist.
	ErrIssueNotFound = errors.New("issue not found")
	// ErrContractorNotFound indicates no contractor matches the given identity.
	ErrContractorNotFound = errors.New("contractor not found")
	// ErrAppointmentNotFound indicates the referenced appointment does not exist.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrNotAuthorized indicates the acting user is not a party to the resource.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInvalidIssue indicates a submitted issue is missing required fields.
	ErrInvalidIssue = errors.New("issue description required")
	// ErrInvalidStatus indicates an unknown appointment status value.
	ErrInvalidStatus = errors.New("invalid appointment status")
)
