package models

import "time"

// ContentKind discriminates the unified content table.
type ContentKind string

const (
	ContentPost  ContentKind = "post"
	ContentReply ContentKind = "reply"
	ContentQuote ContentKind = "quote"
)

// Content is the unified row for a post, reply, or quote.
//
// Invariant: Kind == ContentPost ⇒ Reference == "";
// Kind ∈ {ContentReply, ContentQuote} ⇒ Reference is set. Reference may point
// at content not yet indexed; reconciliation happens outside this process.
// Signature is the dedup key (unique index, first write wins).
type Content struct {
	ID        string
	CreatedAt time.Time
	SenderKey string
	Signature string
	Message   []byte
	Kind      ContentKind
	Reference string
}

// Mention records one identity referenced inside another's content or vote.
// ContentKind is the kind of the referencing record ("post", "reply",
// "quote", or "vote").
type Mention struct {
	ContentID    string
	ContentKind  string
	MentionedKey string
	CreatedAt    time.Time
	SenderKey    string
}

// Hashtag is one normalized lowercase tag (≤30 chars) scanned from a
// content message.
type Hashtag struct {
	ContentID string
	SenderKey string
	CreatedAt time.Time
	Tag       string
}
