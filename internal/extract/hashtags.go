// Package extract derives secondary records from verified content: mention
// keys come straight from the parsed action, hashtags are scanned out of the
// decoded message text.
package extract

import (
	"strings"
	"unicode"
)

// maxTagLen is the longest accepted hashtag, in runes, excluding the '#'.
const maxTagLen = 30

// Hashtags scans message for hashtag candidates. A candidate is '#' followed
// by 1–30 Unicode letters, digits, or underscores, preceded by start-of-text
// or whitespace, and followed by whitespace, end-of-text, or terminal
// punctuation. Valid tags are lowercased and de-duplicated in first-seen
// order. Candidates violating a boundary or the length limit are returned in
// rejected so the caller can log them; they never abort the scan.
func Hashtags(message []byte) (tags []string, rejected []string) {
	runes := []rune(string(message))
	seen := make(map[string]struct{})

	for i := 0; i < len(runes); i++ {
		if runes[i] != '#' {
			continue
		}

		body := tagBody(runes[i+1:])
		if len(body) == 0 {
			continue
		}
		candidate := "#" + string(body)
		next := i + 1 + len(body)

		switch {
		case i > 0 && !unicode.IsSpace(runes[i-1]):
			rejected = append(rejected, candidate)
		case len(body) > maxTagLen:
			rejected = append(rejected, candidate)
		case next < len(runes) && !unicode.IsSpace(runes[next]) && !isTerminalPunct(runes[next]):
			rejected = append(rejected, candidate)
		default:
			tag := strings.ToLower(string(body))
			if _, dup := seen[tag]; !dup {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}

		i = next - 1
	}

	return tags, rejected
}

// tagBody returns the maximal run of word runes following the '#'.
func tagBody(rest []rune) []rune {
	for i, r := range rest {
		if !isWordRune(r) {
			return rest[:i]
		}
	}
	return rest
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isTerminalPunct reports runes allowed to close a hashtag directly, the way
// sentences end: "take a look at #kindex!".
func isTerminalPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':', ')', ']', '}', '"', '\'', '…':
		return true
	}
	return false
}
