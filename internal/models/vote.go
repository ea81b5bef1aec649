package models

import "time"

// VoteDirection is the stored direction of a vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// VoteMentionKind is the content_kind stored on a mention row created
// alongside a vote (the vote id is the referencing record).
const VoteMentionKind = "vote"

// Vote is one up/down vote on a content row. Signature is the dedup key.
type Vote struct {
	ID        string
	CreatedAt time.Time
	SenderKey string
	Signature string
	TargetID  string
	Direction VoteDirection
}
