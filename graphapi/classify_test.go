package graphapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyText(t *testing.T) {
	cases := []struct {
		text string
		want Polarity
	}{
		{"masterpiece, best quality, cinematic light", Positive},
		{"a cat sitting on a window sill", Positive},
		{"", Positive},
		{"worst quality, low quality", Negative},
		{"NSFW", Negative},
		{"blurry, Bad Hands", Negative},
		{"ugly, deformed", Negative},
		{"negative embedding here", Negative},
		// substring matching misfires on purpose: "bad" inside a positive
		// sentence still classifies negative
		{"a badger in the woods", Negative},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyText(tc.text), "text: %q", tc.text)
	}
}

func TestClassifyTextIsDeterministic(t *testing.T) {
	text := "worst quality, watermark"
	first := ClassifyText(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ClassifyText(text))
	}
}
