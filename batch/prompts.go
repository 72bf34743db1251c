package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// PromptItem is one entry of the prompt list: an identifier plus the
// positive and negative prompt text. List order defines processing order.
type PromptItem struct {
	ID       interface{} `json:"id"`
	Positive string      `json:"positive"`
	Negative string      `json:"negative"`
}

// Key renders the item id for logs and output filenames. Numeric ids keep
// their literal JSON form.
func (p PromptItem) Key() string {
	return fmt.Sprint(p.ID)
}

type promptList struct {
	Prompts []PromptItem `json:"prompts"`
}

// LoadPrompts reads a prompt list file: {"prompts": [{id, positive, negative}, ...]}
func LoadPrompts(path string) ([]PromptItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	// keep numeric ids in their literal form for filenames
	dec.UseNumber()

	var list promptList
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("parsing prompt list %s: %w", path, err)
	}
	return list.Prompts, nil
}
