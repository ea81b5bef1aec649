// Package common defines shared constants and sentinel errors used across
// the indexer layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrorDuplicate means the row (keyed by signature or transaction id)
	// is already stored. Persistence treats it as success.
	ErrorDuplicate = errors.New("duplicate")
)
