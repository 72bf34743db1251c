package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"prompts": [
			{"id": 1, "positive": "a cat", "negative": "ugly"},
			{"id": "portrait-02", "positive": "a dog", "negative": ""}
		]
	}`), 0o644))

	items, err := LoadPrompts(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// numeric ids keep their literal form, string ids pass through
	assert.Equal(t, "1", items[0].Key())
	assert.Equal(t, "portrait-02", items[1].Key())
	assert.Equal(t, "a cat", items[0].Positive)
	assert.Equal(t, "ugly", items[0].Negative)
}

func TestLoadPromptsMissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadPromptsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"prompts": [{`), 0o644))

	_, err := LoadPrompts(path)
	require.Error(t, err)
}
