package graphapi

import (
	"log/slog"
	"strconv"
)

// Default node ids for the fixed-id strategy. They match the layout of the
// stock text-to-image workflow, where node 6 encodes the positive prompt and
// node 7 the negative one.
const (
	DefaultPositiveNodeID = 6
	DefaultNegativeNodeID = 7
)

// InjectionStrategy selects which text-encoding nodes receive the positive
// and negative prompt text. Two strategies exist because the two template
// forms grew up with different selection mechanisms; callers pick one by
// configuration. Apply mutates the given template in place and returns the
// ids of the nodes it updated.
type InjectionStrategy interface {
	Name() string
	Apply(t *Template, positive, negative string) []int
}

// ClassifierStrategy routes prompt text by classifying the placeholder text
// already present in each candidate node. It only updates anything when the
// template contains both a positive and a negative candidate; a template
// where every candidate classifies the same way is left untouched.
type ClassifierStrategy struct{}

func (s ClassifierStrategy) Name() string { return "classifier" }

func (s ClassifierStrategy) Apply(t *Template, positive, negative string) []int {
	if t.Form == FormLink {
		return s.applyGraph(t.Graph, positive, negative)
	}
	return s.applyPrompt(t.Prompt, positive, negative)
}

func (s ClassifierStrategy) applyGraph(g *Graph, positive, negative string) []int {
	candidates := g.TextNodes()
	polarities := make([]Polarity, len(candidates))
	counts := make(map[Polarity]int)
	for i, n := range candidates {
		text, _ := n.Text()
		polarities[i] = ClassifyText(text)
		counts[polarities[i]]++
	}
	if counts[Positive] == 0 || counts[Negative] == 0 {
		slog.Warn("Classifier could not split text nodes", "candidates", len(candidates))
		return nil
	}

	updated := make([]int, 0, len(candidates))
	for i, n := range candidates {
		if polarities[i] == Negative {
			n.SetText(negative)
		} else {
			n.SetText(positive)
		}
		updated = append(updated, n.ID)
	}
	return updated
}

func (s ClassifierStrategy) applyPrompt(p PromptGraph, positive, negative string) []int {
	candidates := p.TextNodeIDs()
	polarities := make([]Polarity, len(candidates))
	counts := make(map[Polarity]int)
	for i, id := range candidates {
		text := p[id].Inputs["text"].(string)
		polarities[i] = ClassifyText(text)
		counts[polarities[i]]++
	}
	if counts[Positive] == 0 || counts[Negative] == 0 {
		slog.Warn("Classifier could not split text nodes", "candidates", len(candidates))
		return nil
	}

	updated := make([]int, 0, len(candidates))
	for i, id := range candidates {
		if polarities[i] == Negative {
			p[id].Inputs["text"] = negative
		} else {
			p[id].Inputs["text"] = positive
		}
		n, _ := strconv.Atoi(id)
		updated = append(updated, n)
	}
	return updated
}

// FixedIDStrategy writes the prompt text into two nodes named by id,
// skipping classification entirely. A missing node is skipped with a
// warning so a partial template still processes.
type FixedIDStrategy struct {
	PositiveNodeID int
	NegativeNodeID int
}

// NewFixedIDStrategy returns the strategy with the default node ids.
func NewFixedIDStrategy() FixedIDStrategy {
	return FixedIDStrategy{
		PositiveNodeID: DefaultPositiveNodeID,
		NegativeNodeID: DefaultNegativeNodeID,
	}
}

func (s FixedIDStrategy) Name() string { return "fixed" }

func (s FixedIDStrategy) Apply(t *Template, positive, negative string) []int {
	updated := make([]int, 0, 2)
	for _, target := range []struct {
		id   int
		text string
	}{
		{s.PositiveNodeID, positive},
		{s.NegativeNodeID, negative},
	} {
		if applyFixedText(t, target.id, target.text) {
			updated = append(updated, target.id)
		} else {
			slog.Warn("Text node not found", "node_id", target.id)
		}
	}
	return updated
}

func applyFixedText(t *Template, id int, text string) bool {
	if t.Form == FormLink {
		node := t.Graph.GetNodeById(id)
		if node == nil {
			return false
		}
		return node.SetText(text)
	}

	key := strconv.Itoa(id)
	node, ok := t.Prompt[key]
	if !ok {
		return false
	}
	if node.Inputs == nil {
		node.Inputs = make(map[string]interface{})
		t.Prompt[key] = node
	}
	node.Inputs["text"] = text
	return true
}

// Injector applies a prompt pair to a fresh copy of a template using the
// configured strategy. The input template is validated before cloning and
// the mutated copy is validated again before it is returned; injection only
// ever replaces text values, never topology.
type Injector struct {
	Strategy InjectionStrategy
}

// Inject returns the mutated copy and the ids of the updated nodes. An empty
// id list is the "no nodes updated" condition: the copy is still returned
// unmodified and the caller decides whether to proceed or warn.
func (in *Injector) Inject(t *Template, positive, negative string) (*Template, []int, error) {
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	clone, err := t.Clone()
	if err != nil {
		return nil, nil, err
	}

	updated := in.Strategy.Apply(clone, positive, negative)

	if err := clone.Validate(); err != nil {
		return nil, nil, err
	}
	return clone, updated, nil
}
