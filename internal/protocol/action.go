// Package protocol decodes the colon-delimited social-protocol wire format
// carried inside transaction payloads into tagged action values.
//
// Every payload has the shape
//
//	k:1:<action>:<pubkey>:<sig>:<field>...
//
// where <pubkey> is a 33-byte compressed key as 66 hex chars and <sig> a
// 64-byte signature as 128 hex chars. Parsing is pure: text in, action or
// error out, no shared state.
package protocol

import "github.com/knetproto/kindex/internal/models"

// Prefix is the byte sequence an eligible payload must start with.
const Prefix = "k:1:"

// Action is one decoded protocol action. The set of implementations is
// closed: Broadcast, Post, Reply, Quote, Vote, Block, Follow, Unrecognized.
type Action interface {
	Kind() string
	Env() Envelope
	isAction()
}

// Envelope carries the fields common to every action: the sender key, the
// detached signature, and the canonical signing payload.
//
// SigningPayload is the exact text the sender signed: all wire fields except
// the signature, joined with ':' in wire order. Single mentioned keys and
// bracketed mention lists are signed as their literal wire tokens, so a
// verifier never re-serializes anything.
type Envelope struct {
	SenderKey      string
	Signature      string
	SigningPayload string
}

// Env satisfies Action for every variant embedding the envelope.
func (e Envelope) Env() Envelope { return e }

// Broadcast publishes the sender's profile (nickname, avatar image, intro
// message). A new broadcast replaces the sender's previous one.
type Broadcast struct {
	Envelope
	Nickname []byte
	Image    []byte
	Message  []byte
}

// Post is a top-level message with zero or more mentioned keys.
type Post struct {
	Envelope
	Message  []byte
	Mentions []string
}

// Reply is a message referencing a parent content id.
type Reply struct {
	Envelope
	Parent   string
	Message  []byte
	Mentions []string
}

// Quote is a message referencing another content id, optionally mentioning
// its author.
type Quote struct {
	Envelope
	Reference    string
	Message      []byte
	MentionedKey string
}

// Vote is an up/down vote on a content id, optionally mentioning the target
// author.
type Vote struct {
	Envelope
	TargetID     string
	Direction    models.VoteDirection
	MentionedKey string
}

// Block toggles a block edge toward TargetKey. On is true for the "block"
// sub-action and false for "unblock".
type Block struct {
	Envelope
	On        bool
	TargetKey string
}

// Follow toggles a follow edge toward TargetKey. On is true for the "follow"
// sub-action and false for "unfollow".
type Follow struct {
	Envelope
	On        bool
	TargetKey string
}

// Unrecognized is a structurally valid payload whose action name is not one
// of the seven known kinds. It is counted and skipped, never persisted.
type Unrecognized struct {
	Envelope
	Name string
}

func (Broadcast) Kind() string    { return "broadcast" }
func (Post) Kind() string         { return "post" }
func (Reply) Kind() string        { return "reply" }
func (Quote) Kind() string        { return "quote" }
func (Vote) Kind() string         { return "vote" }
func (Block) Kind() string        { return "block" }
func (Follow) Kind() string       { return "follow" }
func (u Unrecognized) Kind() string { return u.Name }

func (Broadcast) isAction()    {}
func (Post) isAction()         {}
func (Reply) isAction()        {}
func (Quote) isAction()        {}
func (Vote) isAction()         {}
func (Block) isAction()        {}
func (Follow) isAction()       {}
func (Unrecognized) isAction() {}
