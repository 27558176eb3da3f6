package domain

import "errors"

var (
	// ErrAuthFailure indicates the upstream token exchange failed. Without a
	// token no customer data is retrievable, so the current request degrades
	// straight to a not-found answer.
	ErrAuthFailure = errors.New("upstream authentication failed")
	// ErrUpstreamPage indicates a single page request against the upstream
	// API failed. It aborts only the scan stage that issued it.
	ErrUpstreamPage = errors.New("upstream page request failed")
	// ErrNotFound indicates a direct-by-id fetch found no such client.
	ErrNotFound = errors.New("client not found")
)
