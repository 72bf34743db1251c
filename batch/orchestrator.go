package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/comfybatch/comfybatch/client"
	"github.com/comfybatch/comfybatch/graphapi"
)

// ExecutionClient is the slice of the ComfyUI client the orchestrator
// drives: one session, sequential submit/wait/collect per prompt.
type ExecutionClient interface {
	Connect() error
	Close() error
	QueuePrompt(prompt graphapi.PromptGraph) (string, error)
	WaitForCompletion(promptID string) error
	GetHistory(promptID string) (map[string]client.HistoryOutputs, error)
	GetImage(output client.DataOutput) ([]byte, error)
}

type Config struct {
	WorkflowPath string
	PromptsPath  string
	OutputDir    string
	// Debug writes per-item graph snapshots next to the generated images.
	Debug bool
	// Strategy selects how prompt text is routed to nodes. Nil defaults to
	// the classifier strategy.
	Strategy graphapi.InjectionStrategy
}

// Summary aggregates the outcome of one batch run. It only lives for the
// duration of the invocation.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	// Saved maps item id to the number of images written for it.
	Saved map[string]int
}

// Orchestrator owns the base template and the prompt list and processes the
// items strictly in order, one submission in flight at a time. Per-item
// failures are logged and skipped; only setup failures abort the run.
type Orchestrator struct {
	cfg      Config
	exec     ExecutionClient
	injector *graphapi.Injector
}

func New(cfg Config, exec ExecutionClient) *Orchestrator {
	strategy := cfg.Strategy
	if strategy == nil {
		strategy = graphapi.ClassifierStrategy{}
	}
	return &Orchestrator{
		cfg:      cfg,
		exec:     exec,
		injector: &graphapi.Injector{Strategy: strategy},
	}
}

// Run executes the whole batch. The returned error is non-nil only for
// fatal setup failures (template, prompt list, output dir, connect); item
// failures are reflected in the summary instead.
func (o *Orchestrator) Run() (*Summary, error) {
	template, err := o.loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("loading workflow template: %w", err)
	}

	items, err := LoadPrompts(o.cfg.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}

	if err := os.MkdirAll(o.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// release the session on every exit path, connected or not
	defer o.exec.Close()
	if err := o.exec.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to server: %w", err)
	}

	slog.Info("Starting batch", "prompts", len(items), "form", template.Form.String(), "nodes", template.NodeCount())

	summary := &Summary{Total: len(items), Saved: make(map[string]int)}
	for i, item := range items {
		slog.Info("Processing prompt", "index", i+1, "total", len(items), "id", item.Key())
		saved, err := o.processItem(template, item)
		summary.Saved[item.Key()] = saved
		if err != nil {
			slog.Error("Prompt failed", "id", item.Key(), "error", err)
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}
	return summary, nil
}

func (o *Orchestrator) loadTemplate() (*graphapi.Template, error) {
	data, err := os.ReadFile(o.cfg.WorkflowPath)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(o.cfg.WorkflowPath), ".png") {
		data, err = client.WorkflowFromPNG(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	}

	return graphapi.ParseTemplate(data)
}

func (o *Orchestrator) processItem(template *graphapi.Template, item PromptItem) (int, error) {
	o.dump(item, "original", template)

	injected, updated, err := o.injector.Inject(template, item.Positive, item.Negative)
	if err != nil {
		return 0, err
	}
	if len(updated) == 0 {
		slog.Warn("No text nodes updated", "id", item.Key(), "strategy", o.injector.Strategy.Name())
	}
	o.dump(item, "updated", injected)

	prompt := injected.Prompt
	if injected.Form == graphapi.FormLink {
		prompt, err = injected.Graph.ToPrompt()
		if err != nil {
			return 0, err
		}
		if err := prompt.Validate(); err != nil {
			return 0, err
		}
		o.dump(item, "api_format", prompt)
	}

	promptID, err := o.exec.QueuePrompt(prompt)
	if err != nil {
		return 0, err
	}
	slog.Info("Prompt queued", "id", item.Key(), "prompt_id", promptID)

	if err := o.exec.WaitForCompletion(promptID); err != nil {
		return 0, err
	}

	outputs, err := o.exec.GetHistory(promptID)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, nodeID := range sortedKeys(outputs) {
		for idx, img := range outputs[nodeID].Images {
			data, err := o.exec.GetImage(img)
			if err != nil {
				return saved, err
			}

			name := fmt.Sprintf("prompt_%s_node_%s_%d.png", item.Key(), nodeID, idx)
			path := filepath.Join(o.cfg.OutputDir, name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				// a failed write does not abort the item's remaining outputs
				slog.Error("Saving image failed", "path", path, "error", err)
				continue
			}
			slog.Info("Image saved", "path", path)
			saved++
		}
	}
	return saved, nil
}

// dump writes a per-stage graph snapshot when debug mode is on. Dump
// failures never affect the item.
func (o *Orchestrator) dump(item PromptItem, stage string, v interface{}) {
	if !o.cfg.Debug {
		return
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Warn("Serializing debug snapshot failed", "id", item.Key(), "stage", stage, "error", err)
		return
	}

	name := fmt.Sprintf("workflow_prompt_%s_%s.json", item.Key(), stage)
	path := filepath.Join(o.cfg.OutputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("Writing debug snapshot failed", "path", path, "error", err)
	}
}

func sortedKeys(m map[string]client.HistoryOutputs) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
