package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by repositories when a record does not exist.
// Callers that treat absence as a defined no-op match on it with errors.Is.
var ErrNotFound = goerr.New("record not found")
