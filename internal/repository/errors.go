// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrLoginExists is returned when a user registration collides with an
// existing login. Handlers should translate this into an HTTP 409.
var ErrLoginExists = errors.New("login already exists")

// ErrEmailExists is returned when a user registration collides with an
// existing email address. Handlers should translate this into an
// HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrFlightNotFound is returned when a flight lookup by number matches
// no row.
var ErrFlightNotFound = errors.New("flight not found")

// ErrTicketNotFound is returned when a ticket does not exist or does
// not belong to the requesting user.
var ErrTicketNotFound = errors.New("ticket not found")
