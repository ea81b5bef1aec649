// Package models defines the row types written to (and read from) the
// indexer schema. RawTransaction is owned by the upstream ingester and is
// read-only here; everything else is produced by the persistence layer.
package models

import "time"

// RawTransaction is one row of the ingester-owned transactions table.
// ID is the lowercase hex transaction hash; Payload is the opaque
// transaction payload as it appeared on chain.
type RawTransaction struct {
	ID        string
	Payload   []byte
	CreatedAt time.Time
}
