package marketplace

import "github.com/shipdesk/backend/internal/domain/shared"

// Error codes carried by marketplace domain errors
const (
	CodeUpstreamAuthFailed  = "UPSTREAM_AUTH_FAILED"
	CodeUpstreamFetchFailed = "UPSTREAM_FETCH_FAILED"
	CodeUpstreamListFailed  = "UPSTREAM_LIST_FAILED"
	CodeUpstreamTimeout     = "UPSTREAM_TIMEOUT"
	CodeMappingSkipped      = "MAPPING_SKIPPED"
)

var (
	// ErrInvalidArgument is returned for blank or malformed required parameters
	ErrInvalidArgument = shared.NewDomainError("INVALID_INPUT", "marketplace: invalid argument")
	// ErrNotFound is returned when a referenced label or order item is not stored
	ErrNotFound = shared.NewDomainError("NOT_FOUND", "marketplace: not found")

	// ErrUpstreamAuthFailure is returned when the auth endpoint is unreachable or rejects the account
	ErrUpstreamAuthFailure = shared.NewDomainError(CodeUpstreamAuthFailed, "marketplace: upstream auth failure")
	// ErrUpstreamFetchFailure is returned when a single-resource upstream call fails
	ErrUpstreamFetchFailure = shared.NewDomainError(CodeUpstreamFetchFailed, "marketplace: upstream fetch failure")
	// ErrUpstreamListFailure is returned when a paged upstream index call fails
	ErrUpstreamListFailure = shared.NewDomainError(CodeUpstreamListFailed, "marketplace: upstream list failure")
	// ErrUpstreamTimeout marks an upstream failure caused by the call timeout
	ErrUpstreamTimeout = shared.NewDomainError(CodeUpstreamTimeout, "marketplace: upstream timeout")

	// ErrMappingSkipped is the mapper's skip signal for line items without a product identifier
	ErrMappingSkipped = shared.NewDomainError(CodeMappingSkipped, "marketplace: line item skipped")
)
