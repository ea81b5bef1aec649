package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashtags_BoundaryLaw(t *testing.T) {
	tags, rejected := Hashtags([]byte("Hello #world! word#tag #ok_2"))

	assert.Equal(t, []string{"world", "ok_2"}, tags)
	assert.Equal(t, []string{"#tag"}, rejected)
}

func TestHashtags(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		wantTags     []string
		wantRejected []string
	}{
		{
			name:     "empty message",
			message:  "",
			wantTags: nil,
		},
		{
			name:     "no hashtags",
			message:  "just plain text",
			wantTags: nil,
		},
		{
			name:     "tag at start of text",
			message:  "#first thing",
			wantTags: []string{"first"},
		},
		{
			name:     "tag at end of text",
			message:  "the very #last",
			wantTags: []string{"last"},
		},
		{
			name:     "lowercased",
			message:  "go #GoLang",
			wantTags: []string{"golang"},
		},
		{
			name:     "deduplicated keeping first-seen order",
			message:  "#b #a #B #a",
			wantTags: []string{"b", "a"},
		},
		{
			name:     "unicode letters and digits",
			message:  "näin #käsitellään2 asia",
			wantTags: []string{"käsitellään2"},
		},
		{
			name:     "terminal punctuation closes a tag",
			message:  "ship it #now. #really, #yes!",
			wantTags: []string{"now", "really", "yes"},
		},
		{
			name:         "dash after tag is a boundary violation",
			message:      "#semi-detached",
			wantRejected: []string{"#semi"},
		},
		{
			name:         "embedded hash is rejected with warning",
			message:      "word#tag",
			wantRejected: []string{"#tag"},
		},
		{
			name:         "over 30 runes is rejected",
			message:      "#" + strings.Repeat("a", 31),
			wantRejected: []string{"#" + strings.Repeat("a", 31)},
		},
		{
			name:     "exactly 30 runes is accepted",
			message:  "#" + strings.Repeat("a", 30),
			wantTags: []string{strings.Repeat("a", 30)},
		},
		{
			name:    "bare hash is not a candidate",
			message: "# nothing ## here",
		},
		{
			name:         "rejection does not abort later valid tags",
			message:      "bad#one but #good survives",
			wantTags:     []string{"good"},
			wantRejected: []string{"#one"},
		},
		{
			name:         "double hash rejects the second",
			message:      "##tag",
			wantRejected: []string{"#tag"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, rejected := Hashtags([]byte(tt.message))
			assert.Equal(t, tt.wantTags, tags)
			assert.Equal(t, tt.wantRejected, rejected)
		})
	}
}
