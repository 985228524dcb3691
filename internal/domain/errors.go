package domain

import "errors"

// ErrNotFound is returned by repositories when no row matches,
// including ownership-checked mutations that touched zero rows.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by repositories when an insert loses to a
// uniqueness constraint, e.g. the one-live-thread-per-(user, agent) index.
var ErrDuplicate = errors.New("already exists")
