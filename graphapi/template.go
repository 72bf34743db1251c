package graphapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Form tags which of the two workflow representations a Template holds.
type Form int

const (
	// FormLink is the editor export: nodes plus a separate links array.
	FormLink Form = iota
	// FormAPI is the flat execution form consumed by the backend.
	FormAPI
)

func (f Form) String() string {
	if f == FormAPI {
		return "api"
	}
	return "link"
}

// Template is the tagged union of the two workflow shapes. Exactly one of
// Graph or Prompt is set, according to Form. The base template loaded at
// startup is treated as immutable; every batch item works on a Clone.
type Template struct {
	Form   Form
	Graph  *Graph
	Prompt PromptGraph
}

// ParseTemplate detects which representation the JSON document uses and
// parses and validates it. A document with a "nodes" key is taken as the
// link form, anything else is tried as the execution form.
func ParseTemplate(data []byte) (*Template, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("workflow is not a JSON object: %w", err)
	}

	if _, ok := probe["nodes"]; ok {
		graph := &Graph{}
		if err := json.Unmarshal(data, graph); err != nil {
			return nil, fmt.Errorf("parsing link-form workflow: %w", err)
		}
		t := &Template{Form: FormLink, Graph: graph}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		return t, nil
	}

	prompt := PromptGraph{}
	if err := json.Unmarshal(data, &prompt); err != nil {
		return nil, fmt.Errorf("parsing api-form workflow: %w", err)
	}
	t := &Template{Form: FormAPI, Prompt: prompt}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate runs the validation profile matching the template's form.
func (t *Template) Validate() error {
	switch t.Form {
	case FormLink:
		if t.Graph == nil {
			return &ValidationError{Form: "link", Reason: "missing graph"}
		}
		return t.Graph.Validate()
	case FormAPI:
		if t.Prompt == nil {
			return &ValidationError{Form: "api", Reason: "missing graph"}
		}
		return t.Prompt.Validate()
	}
	return errors.New("unknown template form")
}

// Clone returns an independent deep copy of the template.
func (t *Template) Clone() (*Template, error) {
	switch t.Form {
	case FormLink:
		graph, err := t.Graph.Clone()
		if err != nil {
			return nil, err
		}
		return &Template{Form: FormLink, Graph: graph}, nil
	case FormAPI:
		prompt, err := t.Prompt.Clone()
		if err != nil {
			return nil, err
		}
		return &Template{Form: FormAPI, Prompt: prompt}, nil
	}
	return nil, errors.New("unknown template form")
}

// NodeCount returns the number of nodes in whichever form is held.
func (t *Template) NodeCount() int {
	if t.Form == FormLink {
		return len(t.Graph.Nodes)
	}
	return len(t.Prompt)
}

// MarshalJSON serializes the underlying representation, so debug dumps of
// either form are written in their native shape.
func (t *Template) MarshalJSON() ([]byte, error) {
	if t.Form == FormLink {
		return json.Marshal(t.Graph)
	}
	return json.Marshal(t.Prompt)
}
