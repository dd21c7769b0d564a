// Package repository holds the persistence layer: the abstract slot
// repository consumed by the scheduling service, its MySQL implementation,
// and the account/token repositories backing authentication.  Scheduling
// failures are reported with the schedule package's sentinel errors; the
// sentinels below cover purely persistence-level conditions.
package repository

import "errors"

// ErrEmailExists is returned when registering an account with an email
// address that is already taken.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
