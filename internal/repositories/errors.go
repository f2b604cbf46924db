package repositories

import "github.com/go-faster/errors"

// ErrNotFound is returned (wrapped) by every repository when a record is absent.
var ErrNotFound = errors.New("record not found")
