package domain

import (
	"strings"
)

// ComposePrompt builds the text sent to the image backend:
//
//	"<Style> style tattoo, <prompt>[, for a <gender> person][, on a <placement>]"
//
// Gender and placement are lower-cased and omitted when blank.
func ComposePrompt(styleDisplayName, prompt, gender, placement string) string {
	var b strings.Builder
	b.WriteString(styleDisplayName)
	b.WriteString(" style tattoo, ")
	b.WriteString(strings.TrimSpace(prompt))

	if g := strings.TrimSpace(gender); g != "" {
		b.WriteString(", for a ")
		b.WriteString(strings.ToLower(g))
		b.WriteString(" person")
	}

	if p := strings.TrimSpace(placement); p != "" {
		b.WriteString(", on a ")
		b.WriteString(strings.ToLower(p))
	}

	return b.String()
}
