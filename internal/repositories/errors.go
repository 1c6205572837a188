package repositories

import "errors"

// ErrNotFound is returned by every repository when the requested record is absent
var ErrNotFound = errors.New("record not found")
