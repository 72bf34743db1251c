package graphapi

import (
	"strings"
)

// Polarity labels a text-encoding node as carrying positive or negative
// prompt text.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

func (p Polarity) String() string {
	if p == Negative {
		return "negative"
	}
	return "positive"
}

// negativeKeywords signal that a template's placeholder text belongs to the
// negative prompt node. The matching is a deliberately simple case-insensitive
// substring test; a positive prompt containing "bad" will misclassify.
var negativeKeywords = []string{"nsfw", "worst", "low quality", "bad", "negative", "ugly"}

// ClassifyText decides whether placeholder text marks a positive or negative
// prompt node. It is evaluated against the text already embedded in the
// template, not against the incoming prompt.
func ClassifyText(text string) Polarity {
	lower := strings.ToLower(text)
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			return Negative
		}
	}
	return Positive
}
