package graphapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphValidate(t *testing.T) {
	graph := loadTestGraph(t)
	require.NoError(t, graph.Validate())
}

func TestGraphValidateMissingNodes(t *testing.T) {
	graph := &Graph{}
	err := graph.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "link", verr.Form)
}

func TestGraphValidateDanglingLink(t *testing.T) {
	graph := loadTestGraph(t)
	graph.Links = append(graph.Links, &Link{ID: 99, OriginID: 42, TargetID: 3})

	err := graph.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "origin node 42")
}

func TestGraphValidateDuplicateNodeID(t *testing.T) {
	graph := loadTestGraph(t)
	graph.Nodes = append(graph.Nodes, &GraphNode{ID: 3, Type: "KSampler"})

	err := graph.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node id 3")
}

func TestPromptGraphValidate(t *testing.T) {
	prompt := loadTestPrompt(t)
	require.NoError(t, prompt.Validate())
}

func TestPromptGraphValidateBadKey(t *testing.T) {
	prompt := loadTestPrompt(t)
	prompt["not-a-number"] = PromptNode{ClassType: "KSampler"}

	err := prompt.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "api", verr.Form)
}

func TestPromptGraphValidateMissingClassType(t *testing.T) {
	prompt := loadTestPrompt(t)
	prompt["99"] = PromptNode{Inputs: map[string]interface{}{}}

	err := prompt.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class_type")
}

func TestPromptGraphValidateDanglingReference(t *testing.T) {
	prompt := loadTestPrompt(t)
	node := prompt["3"]
	node.Inputs["model"] = []interface{}{"42", 0}
	prompt["3"] = node

	err := prompt.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node 42")
}

// a graph that validates keeps validating after a deep copy round-trip
func TestValidateIdempotentAfterClone(t *testing.T) {
	graph := loadTestGraph(t)
	require.NoError(t, graph.Validate())

	clone, err := graph.Clone()
	require.NoError(t, err)
	require.NoError(t, clone.Validate())

	prompt := loadTestPrompt(t)
	require.NoError(t, prompt.Validate())

	data, err := json.Marshal(prompt)
	require.NoError(t, err)
	roundtrip := PromptGraph{}
	require.NoError(t, json.Unmarshal(data, &roundtrip))
	require.NoError(t, roundtrip.Validate())
}
