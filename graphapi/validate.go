package graphapi

import (
	"fmt"
)

// ValidationError describes a structural problem with a workflow graph. It
// is always returned as a value; callers decide whether it aborts the
// current item or the whole run.
type ValidationError struct {
	Form   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s-form workflow: %s", e.Form, e.Reason)
}

// Validate checks the structural well-formedness of a link-form graph: a
// nodes array must be present, every node needs a type and a unique id, and
// every link endpoint must resolve to a node in the same graph.
func (t *Graph) Validate() error {
	if t.Nodes == nil {
		return &ValidationError{Form: "link", Reason: "missing nodes array"}
	}

	seen := make(map[int]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.Type == "" {
			return &ValidationError{Form: "link", Reason: fmt.Sprintf("node %d has no type", n.ID)}
		}
		if seen[n.ID] {
			return &ValidationError{Form: "link", Reason: fmt.Sprintf("duplicate node id %d", n.ID)}
		}
		seen[n.ID] = true
	}

	for _, l := range t.Links {
		if !seen[l.OriginID] {
			return &ValidationError{Form: "link", Reason: fmt.Sprintf("link %d origin node %d does not exist", l.ID, l.OriginID)}
		}
		if !seen[l.TargetID] {
			return &ValidationError{Form: "link", Reason: fmt.Sprintf("link %d target node %d does not exist", l.ID, l.TargetID)}
		}
	}

	return nil
}

// Validate checks the structural well-formedness of an execution-form graph:
// every key must be a decimal node id, every node needs a class_type, and
// every input reference pair must resolve to a key in the same graph.
func (p PromptGraph) Validate() error {
	for id, node := range p {
		if !isDecimal(id) {
			return &ValidationError{Form: "api", Reason: fmt.Sprintf("node key %q is not a decimal id", id)}
		}
		if node.ClassType == "" {
			return &ValidationError{Form: "api", Reason: fmt.Sprintf("node %s has no class_type", id)}
		}
	}

	for id, node := range p {
		for name, v := range node.Inputs {
			origin, ok := inputRef(v)
			if !ok {
				continue
			}
			if _, ok := p[origin]; !ok {
				return &ValidationError{Form: "api", Reason: fmt.Sprintf("node %s input %q references unknown node %s", id, name, origin)}
			}
		}
	}

	return nil
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
