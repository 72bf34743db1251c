package graphapi

import (
	"encoding/json"
)

// Graph is the link-form workflow representation exported by the ComfyUI
// editor: a node array plus a separate link array encoding every non-literal
// connection. Literal parameters live in each node's widgets_values.
type Graph struct {
	Nodes      []*GraphNode       `json:"nodes"`
	Links      []*Link            `json:"links"`
	LastNodeID int                `json:"last_node_id"`
	LastLinkID int                `json:"last_link_id"`
	Version    float32            `json:"version"`
	NodesByID  map[int]*GraphNode `json:"-"`
	LinksByID  map[int]*Link      `json:"-"`
}

func (t *Graph) UnmarshalJSON(b []byte) error {
	// Create an alias type to avoid recursive call to UnmarshalJSON
	type Alias Graph

	alias := &Alias{}
	if err := json.Unmarshal(b, alias); err != nil {
		return err
	}

	t.Nodes = alias.Nodes
	t.Links = alias.Links
	t.LastNodeID = alias.LastNodeID
	t.LastLinkID = alias.LastLinkID
	t.Version = alias.Version
	t.NodesByID = make(map[int]*GraphNode)
	t.LinksByID = make(map[int]*Link)

	for _, node := range t.Nodes {
		// Populate the "by ID's"
		t.NodesByID[node.ID] = node
		// Give the node a pointer to it's parent graph
		t.NodesByID[node.ID].Graph = t
	}

	for _, link := range t.Links {
		t.LinksByID[link.ID] = link
	}

	return nil
}

func (t *Graph) GetLinkById(id int) *Link {
	val, ok := t.LinksByID[id]
	if ok {
		return val
	}
	return nil
}

func (t *Graph) GetNodeById(id int) *GraphNode {
	val, ok := t.NodesByID[id]
	if ok {
		return val
	}
	return nil
}

// GetNodesWithType retrieves all nodes in the graph that match a specified type.
func (t *Graph) GetNodesWithType(nodeType string) []*GraphNode {
	retv := make([]*GraphNode, 0)
	for _, n := range t.Nodes {
		if n.Type == nodeType {
			retv = append(retv, n)
		}
	}
	return retv
}

// TextNodes returns the text-encoding nodes whose first widget value is a
// string. These are the injection candidates for prompt text.
func (t *Graph) TextNodes() []*GraphNode {
	retv := make([]*GraphNode, 0)
	for _, n := range t.GetNodesWithType(TextEncodeType) {
		if _, ok := n.Text(); ok {
			retv = append(retv, n)
		}
	}
	return retv
}

// Clone returns an independent deep copy of the graph. The copy is made with
// a JSON round-trip so the derived indexes are rebuilt along the way.
func (t *Graph) Clone() (*Graph, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	clone := &Graph{}
	if err := json.Unmarshal(data, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

func (t *Graph) GraphToJSON() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
