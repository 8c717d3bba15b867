// Package services defines the business logic for hotel search, hotel detail
// lookups, location autocomplete, and cache inspection. This file centralizes
// the service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrInvalidCriteria is returned when a search or lookup request fails
	// validation (dates, guests, paging, price bounds).
	ErrInvalidCriteria = errors.New("invalid search criteria")

	// ErrHotelNotFound indicates that upstream has no record for the
	// requested hotel in the requested language.
	ErrHotelNotFound = errors.New("hotel not found")

	// ErrUpstreamUnavailable is returned when the remote search, detail, or
	// autocomplete API failed or refused the call. It wraps the cause.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
