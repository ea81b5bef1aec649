package models

import "time"

// Profile is self-published identity metadata from a broadcast action.
// At most one live row exists per sender; a newer broadcast replaces the
// previous one atomically.
type Profile struct {
	ID        string
	SenderKey string
	CreatedAt time.Time
	Nickname  []byte
	Image     []byte
	Message   []byte
}
