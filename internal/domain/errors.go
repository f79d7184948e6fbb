package domain

import "errors"

// ErrValidation is returned when input fails a business rule
// (e.g. end odometer not greater than start odometer). The page surfaces
// these as a transient notice without touching the remote backend.
var ErrValidation = errors.New("validation error")

// ErrNotFound is returned when a trip referenced by ID is not present in the
// session cache or the remote backend.
var ErrNotFound = errors.New("not found")

// ErrBusy is returned when a mutation is attempted while another one is
// still in flight. The page serializes mutations behind a single-slot
// guard rather than queueing them.
var ErrBusy = errors.New("another submission is in flight")
