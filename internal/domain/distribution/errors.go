package distribution

import "errors"

var (
	// Destination errors
	ErrDestinationNotFound     = errors.New("distribution: destination not found")
	ErrDestinationDisconnected = errors.New("distribution: destination is disconnected")
	ErrNoClientForDestination  = errors.New("distribution: no storefront client for destination")

	// Remote call errors
	ErrRemoteRequestFailed   = errors.New("distribution: storefront request failed")
	ErrRemoteAuthFailed      = errors.New("distribution: storefront authentication failed")
	ErrRemoteRateLimited     = errors.New("distribution: storefront rate limited")
	ErrRemoteProductNotFound = errors.New("distribution: remote product not found")
	ErrRemoteInvalidResponse = errors.New("distribution: invalid storefront response")

	// Ledger errors
	ErrSyncRecordNotFound = errors.New("distribution: sync record not found")

	// Pool errors
	ErrNegativeQuantity   = errors.New("distribution: inventory request must not be negative")
	ErrVariantNotFound    = errors.New("distribution: variant not found")
	ErrAssignmentNotFound = errors.New("distribution: inventory assignment not found")
	ErrOverrideNotFound   = errors.New("distribution: variant override not found")
)
