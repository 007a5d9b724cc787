// Package repository implements the data access layer over database/sql.
// Sentinel values defined here let handlers distinguish failure scenarios
// without inspecting driver errors: ErrForbidden signals an operation on a
// resource the caller does not control, ErrConflict signals state that
// blocks the operation (e.g. a duplicate settlement for a schedule).
// Missing rows are reported as sql.ErrNoRows.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation reserved
// for another user, such as requesting a settlement without the LEADER
// role.  Handlers translate this into PermissionDenied.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot proceed because
// of existing state, such as joining a schedule twice or requesting a
// second settlement for the same schedule.  Handlers translate this into
// InvalidState.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by UserRepo.Create for a duplicate email.
var ErrEmailExists = errors.New("email already exists")
