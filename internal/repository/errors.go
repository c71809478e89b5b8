// Package repository reads layouts and discount rules from MySQL.  Lookups
// that find nothing return the sentinels below so handlers can map them to
// HTTP statuses with errors.Is.
package repository

import "errors"

// ErrLayoutNotFound is returned when a layout id has no layouts row.
// Handlers translate it into 404.
var ErrLayoutNotFound = errors.New("layout not found")

// ErrDiscountNotFound is returned when no rule carries the requested code.
var ErrDiscountNotFound = errors.New("discount not found")

// ErrConflict is returned when a guarded update matches no row because the
// stored state moved on, such as a usage counter that reached its limit
// between the quote and the redemption.  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")
