package protocol

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/knetproto/kindex/internal/models"
)

// ErrMalformed is wrapped by every parse failure: bad arity, bad hex or
// base64, unknown sub-action token, malformed mention list. Match with
// errors.Is.
var ErrMalformed = errors.New("malformed payload")

const (
	delimiter = ":"

	magicToken   = "k"
	versionToken = "1"

	pubKeyHexLen = 66  // 33-byte compressed key
	sigHexLen    = 128 // 64-byte signature
	idHexLen     = 64  // 32-byte transaction hash
)

// Field positions shared by every action kind.
const (
	idxMagic = iota
	idxVersion
	idxAction
	idxSender
	idxSignature
	idxFirstField
)

// Parse decodes one wire payload into a tagged action. An unknown action
// name with a structurally valid envelope parses to Unrecognized; everything
// else that does not match its kind's shape returns an error wrapping
// ErrMalformed.
func Parse(payload string) (Action, error) {
	parts := strings.Split(payload, delimiter)
	if len(parts) < idxFirstField {
		return nil, fmt.Errorf("%w: want at least %d fields, got %d", ErrMalformed, idxFirstField, len(parts))
	}
	if parts[idxMagic] != magicToken || parts[idxVersion] != versionToken {
		return nil, fmt.Errorf("%w: bad prefix %q", ErrMalformed, parts[idxMagic]+delimiter+parts[idxVersion])
	}

	sender, err := hexField("pubkey", parts[idxSender], pubKeyHexLen)
	if err != nil {
		return nil, err
	}
	sig, err := hexField("signature", parts[idxSignature], sigHexLen)
	if err != nil {
		return nil, err
	}
	env := Envelope{
		SenderKey:      sender,
		Signature:      sig,
		SigningPayload: signingPayload(parts),
	}

	action := parts[idxAction]
	fields := parts[idxFirstField:]

	switch action {
	case "broadcast":
		return parseBroadcast(env, fields)
	case "post":
		return parsePost(env, fields)
	case "reply":
		return parseReply(env, fields)
	case "quote":
		return parseQuote(env, fields)
	case "vote":
		return parseVote(env, fields)
	case "block":
		on, target, err := parseToggle("block", "unblock", fields)
		if err != nil {
			return nil, err
		}
		return Block{Envelope: env, On: on, TargetKey: target}, nil
	case "follow":
		on, target, err := parseToggle("follow", "unfollow", fields)
		if err != nil {
			return nil, err
		}
		return Follow{Envelope: env, On: on, TargetKey: target}, nil
	default:
		return Unrecognized{Envelope: env, Name: action}, nil
	}
}

// signingPayload rebuilds the canonical signed message: every wire field
// except the signature, joined in wire order.
func signingPayload(parts []string) string {
	fields := make([]string, 0, len(parts)-1)
	fields = append(fields, parts[:idxSignature]...)
	fields = append(fields, parts[idxSignature+1:]...)
	return strings.Join(fields, delimiter)
}

// k:1:broadcast:<pubkey>:<sig>:<b64 nickname>:<b64 image>:<b64 message>
func parseBroadcast(env Envelope, fields []string) (Action, error) {
	if err := arity("broadcast", fields, 3); err != nil {
		return nil, err
	}
	nickname, err := b64Field("nickname", fields[0])
	if err != nil {
		return nil, err
	}
	image, err := b64Field("image", fields[1])
	if err != nil {
		return nil, err
	}
	message, err := b64Field("message", fields[2])
	if err != nil {
		return nil, err
	}
	return Broadcast{Envelope: env, Nickname: nickname, Image: image, Message: message}, nil
}

// k:1:post:<pubkey>:<sig>:<b64 message>:<mentions>
func parsePost(env Envelope, fields []string) (Action, error) {
	if err := arity("post", fields, 2); err != nil {
		return nil, err
	}
	message, err := b64Field("message", fields[0])
	if err != nil {
		return nil, err
	}
	mentions, err := mentionListField(fields[1])
	if err != nil {
		return nil, err
	}
	return Post{Envelope: env, Message: message, Mentions: mentions}, nil
}

// k:1:reply:<pubkey>:<sig>:<parent_id>:<b64 message>:<mentions>
func parseReply(env Envelope, fields []string) (Action, error) {
	if err := arity("reply", fields, 3); err != nil {
		return nil, err
	}
	parent, err := hexField("parent_id", fields[0], idHexLen)
	if err != nil {
		return nil, err
	}
	message, err := b64Field("message", fields[1])
	if err != nil {
		return nil, err
	}
	mentions, err := mentionListField(fields[2])
	if err != nil {
		return nil, err
	}
	return Reply{Envelope: env, Parent: parent, Message: message, Mentions: mentions}, nil
}

// k:1:quote:<pubkey>:<sig>:<referenced_id>:<b64 message>:<mentioned_key>
func parseQuote(env Envelope, fields []string) (Action, error) {
	if err := arity("quote", fields, 3); err != nil {
		return nil, err
	}
	ref, err := hexField("referenced_id", fields[0], idHexLen)
	if err != nil {
		return nil, err
	}
	message, err := b64Field("message", fields[1])
	if err != nil {
		return nil, err
	}
	mentioned, err := optionalKeyField(fields[2])
	if err != nil {
		return nil, err
	}
	return Quote{Envelope: env, Reference: ref, Message: message, MentionedKey: mentioned}, nil
}

// k:1:vote:<pubkey>:<sig>:<post_id>:<upvote|downvote>:<mentioned_key>
func parseVote(env Envelope, fields []string) (Action, error) {
	if err := arity("vote", fields, 3); err != nil {
		return nil, err
	}
	target, err := hexField("post_id", fields[0], idHexLen)
	if err != nil {
		return nil, err
	}
	var direction models.VoteDirection
	switch fields[1] {
	case "upvote":
		direction = models.VoteUp
	case "downvote":
		direction = models.VoteDown
	default:
		return nil, fmt.Errorf("%w: vote direction %q", ErrMalformed, fields[1])
	}
	mentioned, err := optionalKeyField(fields[2])
	if err != nil {
		return nil, err
	}
	return Vote{Envelope: env, TargetID: target, Direction: direction, MentionedKey: mentioned}, nil
}

// block/follow share the shape <on|off token>:<target_pubkey>.
func parseToggle(onToken, offToken string, fields []string) (bool, string, error) {
	if err := arity(onToken, fields, 2); err != nil {
		return false, "", err
	}
	var on bool
	switch fields[0] {
	case onToken:
		on = true
	case offToken:
		on = false
	default:
		return false, "", fmt.Errorf("%w: %s sub-action %q", ErrMalformed, onToken, fields[0])
	}
	target, err := hexField("target_pubkey", fields[1], pubKeyHexLen)
	if err != nil {
		return false, "", err
	}
	return on, target, nil
}

func arity(kind string, fields []string, want int) error {
	if len(fields) != want {
		return fmt.Errorf("%w: %s: want %d fields after signature, got %d", ErrMalformed, kind, want, len(fields))
	}
	return nil
}

// hexField validates an exact-length hex token and returns it lowercased.
func hexField(name, value string, hexLen int) (string, error) {
	if len(value) != hexLen {
		return "", fmt.Errorf("%w: %s: want %d hex chars, got %d", ErrMalformed, name, hexLen, len(value))
	}
	if _, err := hex.DecodeString(value); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	return strings.ToLower(value), nil
}

func b64Field(name, value string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	return decoded, nil
}

// mentionListField decodes the bracketed JSON key list, e.g.
// ["02ab...","03cd..."]. An empty list is valid.
func mentionListField(value string) ([]string, error) {
	var raw []string
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("%w: mentions: %v", ErrMalformed, err)
	}
	mentions := make([]string, 0, len(raw))
	for _, key := range raw {
		k, err := hexField("mentioned key", key, pubKeyHexLen)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, k)
	}
	return mentions, nil
}

// optionalKeyField accepts a single 66-hex key or an empty token.
func optionalKeyField(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return hexField("mentioned key", value, pubKeyHexLen)
}
