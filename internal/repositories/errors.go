package repositories

import "errors"

// Sentinel errors shared by the MySQL and in-memory stores.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)
