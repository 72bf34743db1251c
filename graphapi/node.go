package graphapi

// TextEncodeType is the node type that holds a block of prompt text in its
// first widget value, consumed by the sampler downstream.
const TextEncodeType = "CLIPTextEncode"

// GraphNode represents the encapsulation of an individual functionality within a Graph
type GraphNode struct {
	ID           int            `json:"id"`
	Type         string         `json:"type"`
	Position     Pos            `json:"pos"`
	Size         Size           `json:"size"`
	Flags        map[string]any `json:"flags,omitempty"`
	Order        int            `json:"order"`
	Mode         int            `json:"mode"`
	Title        string         `json:"title,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"` // editor metadata, carried through untouched
	WidgetValues []any          `json:"widgets_values,omitempty"`
	Inputs       []Slot         `json:"inputs,omitempty"`
	Outputs      []Slot         `json:"outputs,omitempty"`
	Graph        *Graph         `json:"-"`
}

func (n *GraphNode) GetInputWithName(name string) *Slot {
	for i, s := range n.Inputs {
		if s.Name == name {
			return &n.Inputs[i]
		}
	}
	return nil
}

func (n *GraphNode) GetInputLink(slotIndex int) *Link {
	ncount := len(n.Inputs)
	if ncount == 0 || slotIndex >= ncount {
		return nil
	}

	slot := n.Inputs[slotIndex]
	return n.Graph.GetLinkById(slot.Link)
}

// Text returns the node's first widget value if it is a string. For
// text-encoding nodes this is where the canonical prompt text lives.
func (n *GraphNode) Text() (string, bool) {
	if len(n.WidgetValues) == 0 {
		return "", false
	}
	s, ok := n.WidgetValues[0].(string)
	return s, ok
}

// SetText overwrites the node's first widget value. It reports whether the
// node had a string widget slot to overwrite.
func (n *GraphNode) SetText(text string) bool {
	if _, ok := n.Text(); !ok {
		return false
	}
	n.WidgetValues[0] = text
	return true
}
