package models

// EdgeKind discriminates follow and block relationships.
type EdgeKind string

const (
	EdgeFollow EdgeKind = "follow"
	EdgeBlock  EdgeKind = "block"
)

// Edge is a directed relationship between two identities. Existence is the
// state: the "on" sub-action creates it, the "off" sub-action removes it.
// Unique per (kind, sender, target).
type Edge struct {
	Kind      EdgeKind
	SenderKey string
	TargetKey string
}
