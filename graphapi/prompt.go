package graphapi

import (
	"encoding/json"
	"sort"
)

// PromptGraph is the flat execution-form representation consumed by the
// ComfyUI backend: node ids (as decimal strings) mapped to their class type
// and inputs. Input values are either literals or [origin_id, output_index]
// reference pairs; there is no separate links array.
type PromptGraph map[string]PromptNode

type PromptNode struct {
	// Inputs can be one of:
	//	float64
	//	string
	//	[]interface{} where: [0] is string of origin node id
	//					     [1] is int of origin output slot
	Inputs    map[string]interface{} `json:"inputs"`
	ClassType string                 `json:"class_type"`
}

// PromptRequest is the envelope posted to the /prompt endpoint.
type PromptRequest struct {
	Prompt   PromptGraph `json:"prompt"`
	ClientID string      `json:"client_id"`
}

// inputRef reports whether an input value is a [origin_id, output_index]
// reference pair and returns the origin node id.
func inputRef(v interface{}) (string, bool) {
	pair, ok := v.([]interface{})
	if !ok || len(pair) != 2 {
		return "", false
	}
	id, ok := pair[0].(string)
	if !ok {
		return "", false
	}
	switch pair[1].(type) {
	case int, float64:
		return id, true
	}
	return "", false
}

// TextNodeIDs returns the ids of text-encoding nodes carrying a string text
// input, sorted for deterministic iteration over the map form.
func (p PromptGraph) TextNodeIDs() []string {
	retv := make([]string, 0)
	for id, node := range p {
		if node.ClassType != TextEncodeType {
			continue
		}
		if _, ok := node.Inputs["text"].(string); ok {
			retv = append(retv, id)
		}
	}
	sort.Strings(retv)
	return retv
}

// Clone returns an independent deep copy of the prompt graph.
func (p PromptGraph) Clone() (PromptGraph, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	clone := PromptGraph{}
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return clone, nil
}
