package graphapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a minimal text-to-image editor export: checkpoint, two text encoders (one
// with negative placeholder text), empty latent, sampler
const testLinkWorkflow = `{
	"last_node_id": 7,
	"last_link_id": 6,
	"nodes": [
		{
			"id": 3,
			"type": "KSampler",
			"pos": [863, 186],
			"size": [315, 262],
			"order": 4,
			"mode": 0,
			"inputs": [
				{"name": "model", "type": "MODEL", "link": 6},
				{"name": "positive", "type": "CONDITIONING", "link": 3},
				{"name": "negative", "type": "CONDITIONING", "link": 4},
				{"name": "latent_image", "type": "LATENT", "link": 5}
			],
			"outputs": [{"name": "LATENT", "type": "LATENT", "links": [], "slot_index": 0}],
			"widgets_values": [156680208700286, "randomize", 20, 8.0, "euler", "normal", 1.0]
		},
		{
			"id": 4,
			"type": "CheckpointLoaderSimple",
			"pos": [26, 474],
			"size": [315, 98],
			"order": 0,
			"mode": 0,
			"outputs": [
				{"name": "MODEL", "type": "MODEL", "links": [6], "slot_index": 0},
				{"name": "CLIP", "type": "CLIP", "links": [1, 2], "slot_index": 1},
				{"name": "VAE", "type": "VAE", "links": [], "slot_index": 2}
			],
			"widgets_values": ["v1-5-pruned-emaonly.safetensors"]
		},
		{
			"id": 5,
			"type": "EmptyLatentImage",
			"pos": [473, 609],
			"size": [315, 106],
			"order": 1,
			"mode": 0,
			"outputs": [{"name": "LATENT", "type": "LATENT", "links": [5], "slot_index": 0}],
			"widgets_values": [512, 512, 1]
		},
		{
			"id": 6,
			"type": "CLIPTextEncode",
			"pos": [415, 186],
			"size": [422, 164],
			"order": 2,
			"mode": 0,
			"inputs": [{"name": "clip", "type": "CLIP", "link": 1}],
			"outputs": [{"name": "CONDITIONING", "type": "CONDITIONING", "links": [3], "slot_index": 0}],
			"widgets_values": ["masterpiece, best quality"]
		},
		{
			"id": 7,
			"type": "CLIPTextEncode",
			"pos": [415, 389],
			"size": [425, 180],
			"order": 3,
			"mode": 0,
			"inputs": [{"name": "clip", "type": "CLIP", "link": 2}],
			"outputs": [{"name": "CONDITIONING", "type": "CONDITIONING", "links": [4], "slot_index": 0}],
			"widgets_values": ["worst quality, low quality"]
		}
	],
	"links": [
		[1, 4, 1, 6, 0, "CLIP"],
		[2, 4, 1, 7, 0, "CLIP"],
		[3, 6, 0, 3, 1, "CONDITIONING"],
		[4, 7, 0, 3, 2, "CONDITIONING"],
		[5, 5, 0, 3, 3, "LATENT"],
		[6, 4, 0, 3, 0, "MODEL"]
	],
	"version": 0.4
}`

const testAPIWorkflow = `{
	"3": {
		"class_type": "KSampler",
		"inputs": {
			"seed": 156680208700286,
			"steps": 20,
			"cfg": 8.0,
			"sampler_name": "euler",
			"scheduler": "normal",
			"denoise": 1.0,
			"model": ["4", 0],
			"positive": ["6", 0],
			"negative": ["7", 0],
			"latent_image": ["5", 0]
		}
	},
	"4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "v1-5-pruned-emaonly.safetensors"}},
	"5": {"class_type": "EmptyLatentImage", "inputs": {"width": 512, "height": 512, "batch_size": 1}},
	"6": {"class_type": "CLIPTextEncode", "inputs": {"text": "masterpiece, best quality", "clip": ["4", 1]}},
	"7": {"class_type": "CLIPTextEncode", "inputs": {"text": "worst quality, low quality", "clip": ["4", 1]}}
}`

func loadTestGraph(t *testing.T) *Graph {
	t.Helper()
	graph := &Graph{}
	require.NoError(t, json.Unmarshal([]byte(testLinkWorkflow), graph))
	return graph
}

func loadTestPrompt(t *testing.T) PromptGraph {
	t.Helper()
	prompt := PromptGraph{}
	require.NoError(t, json.Unmarshal([]byte(testAPIWorkflow), &prompt))
	return prompt
}

func TestGraphUnmarshalBuildsIndexes(t *testing.T) {
	graph := loadTestGraph(t)

	assert.Len(t, graph.Nodes, 5)
	assert.Len(t, graph.Links, 6)

	sampler := graph.GetNodeById(3)
	require.NotNil(t, sampler)
	assert.Equal(t, "KSampler", sampler.Type)
	assert.Same(t, graph, sampler.Graph)

	link := graph.GetLinkById(3)
	require.NotNil(t, link)
	assert.Equal(t, 6, link.OriginID)
	assert.Equal(t, 3, link.TargetID)
	assert.Equal(t, 1, link.TargetSlot)
}

func TestToPrompt(t *testing.T) {
	graph := loadTestGraph(t)

	prompt, err := graph.ToPrompt()
	require.NoError(t, err)
	require.Len(t, prompt, len(graph.Nodes))

	sampler, ok := prompt["3"]
	require.True(t, ok)
	assert.Equal(t, "KSampler", sampler.ClassType)

	// the 7 positional widget values in documented order
	assert.Equal(t, float64(156680208700286), sampler.Inputs["seed"])
	assert.Equal(t, "randomize", sampler.Inputs["control_after_generate"])
	assert.Equal(t, float64(20), sampler.Inputs["steps"])
	assert.Equal(t, float64(8), sampler.Inputs["cfg"])
	assert.Equal(t, "euler", sampler.Inputs["sampler_name"])
	assert.Equal(t, "normal", sampler.Inputs["scheduler"])
	assert.Equal(t, float64(1), sampler.Inputs["denoise"])

	// connected inputs resolved through the link table
	assert.Equal(t, []interface{}{"6", 0}, sampler.Inputs["positive"])
	assert.Equal(t, []interface{}{"7", 0}, sampler.Inputs["negative"])

	checkpoint := prompt["4"]
	assert.Equal(t, "CheckpointLoaderSimple", checkpoint.ClassType)
	assert.Equal(t, "v1-5-pruned-emaonly.safetensors", checkpoint.Inputs["ckpt_name"])

	latent := prompt["5"]
	assert.Equal(t, float64(512), latent.Inputs["width"])
	assert.Equal(t, float64(512), latent.Inputs["height"])
	assert.Equal(t, float64(1), latent.Inputs["batch_size"])

	// text nodes carry their widget text plus the resolved clip link
	positive := prompt["6"]
	assert.Equal(t, "masterpiece, best quality", positive.Inputs["text"])
	assert.Equal(t, []interface{}{"4", 1}, positive.Inputs["clip"])

	require.NoError(t, prompt.Validate())
}

func TestToPromptTextWidgetOverridesLinkedInput(t *testing.T) {
	graph := loadTestGraph(t)

	// give the positive text node a converted "text" input fed by a link;
	// the widget value must still win
	node := graph.GetNodeById(6)
	require.NotNil(t, node)
	node.Inputs = append(node.Inputs, Slot{Name: "text", Type: "STRING", Link: 5})

	prompt, err := graph.ToPrompt()
	require.NoError(t, err)
	assert.Equal(t, "masterpiece, best quality", prompt["6"].Inputs["text"])
}

func TestToPromptIsPure(t *testing.T) {
	graph := loadTestGraph(t)

	before, err := json.Marshal(graph)
	require.NoError(t, err)

	first, err := graph.ToPrompt()
	require.NoError(t, err)
	second, err := graph.ToPrompt()
	require.NoError(t, err)

	after, err := json.Marshal(graph)
	require.NoError(t, err)

	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, first, second)
}

func TestToPromptUnmappedTypeKeepsLinkInputsOnly(t *testing.T) {
	graph := loadTestGraph(t)

	// retag the latent node as a type without a widget mapping
	node := graph.GetNodeById(5)
	require.NotNil(t, node)
	node.Type = "CustomLatentNode"

	prompt, err := graph.ToPrompt()
	require.NoError(t, err)

	custom := prompt["5"]
	assert.Equal(t, "CustomLatentNode", custom.ClassType)
	assert.Empty(t, custom.Inputs)
}

func TestGraphCloneIsIndependent(t *testing.T) {
	graph := loadTestGraph(t)

	clone, err := graph.Clone()
	require.NoError(t, err)
	require.Len(t, clone.Nodes, len(graph.Nodes))

	clone.GetNodeById(6).SetText("changed")

	text, ok := graph.GetNodeById(6).Text()
	require.True(t, ok)
	assert.Equal(t, "masterpiece, best quality", text)
}
