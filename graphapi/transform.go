package graphapi

import (
	"fmt"
	"strconv"
)

// widgetInputOrder maps a node type to the input names of its positional
// widget values. Only this closed set is covered; unmapped types keep their
// link-resolved inputs only, which can silently omit literal parameters.
// Do not extend this table by guessing widget layouts.
var widgetInputOrder = map[string][]string{
	"KSampler":               {"seed", "control_after_generate", "steps", "cfg", "sampler_name", "scheduler", "denoise"},
	"EmptyLatentImage":       {"width", "height", "batch_size"},
	"CheckpointLoaderSimple": {"ckpt_name"},
	"LoraLoader":             {"lora_name", "strength_model", "strength_clip"},
}

// ToPrompt converts a link-form graph into the flat execution form the
// backend consumes. The receiver is never mutated; the same graph always
// produces the same prompt.
//
// Connected inputs are resolved through the link table into
// [origin_id, output_index] pairs. Literal parameters are overlaid from
// widgets_values using widgetInputOrder. For text-encoding nodes the first
// widget value always wins over a link-resolved "text" input, because the
// canonical prompt text lives in the widget slot for that type.
func (t *Graph) ToPrompt() (PromptGraph, error) {
	p := make(PromptGraph, len(t.Nodes))

	for _, node := range t.Nodes {
		pn := PromptNode{
			ClassType: node.Type,
			Inputs:    make(map[string]interface{}),
		}

		// resolve connected inputs through the link table
		for _, slot := range node.Inputs {
			if slot.Link == 0 {
				continue
			}
			link := t.GetLinkById(slot.Link)
			if link == nil {
				return nil, fmt.Errorf("node %d input %q references unknown link %d", node.ID, slot.Name, slot.Link)
			}
			pn.Inputs[slot.Name] = []interface{}{strconv.Itoa(link.OriginID), link.OriginSlot}
		}

		// overlay positional widget literals
		if order, ok := widgetInputOrder[node.Type]; ok {
			for i, name := range order {
				if i >= len(node.WidgetValues) {
					break
				}
				pn.Inputs[name] = node.WidgetValues[i]
			}
		}

		if node.Type == TextEncodeType {
			if text, ok := node.Text(); ok {
				pn.Inputs["text"] = text
			}
		}

		p[strconv.Itoa(node.ID)] = pn
	}

	return p, nil
}
