// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error strings themselves.
package repository

import "errors"

// ErrEmailExists is returned when registration hits the UNIQUE constraint
// on users.email. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrFieldNotFound is returned when a field does not exist or does not
// belong to the requesting user. The two cases are deliberately collapsed
// into one value so handlers cannot leak the existence of other users'
// fields; both surface as HTTP 404.
var ErrFieldNotFound = errors.New("field not found")
