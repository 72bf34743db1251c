package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/comfybatch/comfybatch/batch"
	"github.com/comfybatch/comfybatch/client"
	"github.com/comfybatch/comfybatch/graphapi"
)

type cliOptions struct {
	workflow     string
	prompts      string
	output       string
	address      string
	port         int
	debug        bool
	strategy     string
	positiveNode int
	negativeNode int
	logLevel     string
}

// process CLI arguments
func procCLI() cliOptions {
	var opts cliOptions
	flag.StringVar(&opts.workflow, "workflow", "workflow.json", "Workflow template file (.json or .png with embedded workflow)")
	flag.StringVar(&opts.prompts, "prompts", "prompts.json", "Prompt list file")
	flag.StringVar(&opts.output, "output", "output", "Output directory for generated images")
	flag.StringVar(&opts.address, "address", "127.0.0.1", "Server address")
	flag.IntVar(&opts.port, "port", 8188, "Server port")
	flag.BoolVar(&opts.debug, "debug", false, "Write per-prompt graph snapshots to the output directory")
	flag.StringVar(&opts.strategy, "strategy", "classifier", "Text injection strategy: 'classifier' or 'fixed'")
	flag.IntVar(&opts.positiveNode, "positive-node", graphapi.DefaultPositiveNodeID, "Positive text node id for the fixed strategy")
	flag.IntVar(&opts.negativeNode, "negative-node", graphapi.DefaultNegativeNodeID, "Negative text node id for the fixed strategy")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		fmt.Printf("  %s [OPTIONS]", os.Args[0])
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opts
}

func setupLogging(level string) error {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("invalid log-level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func selectStrategy(opts cliOptions) (graphapi.InjectionStrategy, error) {
	switch opts.strategy {
	case "classifier":
		return graphapi.ClassifierStrategy{}, nil
	case "fixed":
		return graphapi.FixedIDStrategy{
			PositiveNodeID: opts.positiveNode,
			NegativeNodeID: opts.negativeNode,
		}, nil
	}
	return nil, fmt.Errorf("invalid strategy %q", opts.strategy)
}

func main() {
	opts := procCLI()

	if err := setupLogging(opts.logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	strategy, err := selectStrategy(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	// progress bar for the currently executing node
	var bar *progressbar.ProgressBar
	var currentNode string
	callbacks := &client.Callbacks{
		QueueCountChanged: func(c *client.ComfyClient, queuecount int) {
			slog.Debug("Queue size changed", "remaining", queuecount)
		},
		Executing: func(c *client.ComfyClient, node string) {
			bar = nil
			currentNode = node
			slog.Debug("Executing node", "node_id", node)
		},
		Progress: func(c *client.ComfyClient, value, max int) {
			if bar == nil {
				bar = progressbar.Default(int64(max), "node "+currentNode)
			}
			bar.Set(value)
		},
	}

	c := client.NewComfyClient(opts.address, opts.port, callbacks)
	slog.Info("ComfyUI batch generator", "client_id", c.ClientID(), "server", fmt.Sprintf("%s:%d", opts.address, opts.port))

	if stats, err := c.GetSystemStats(); err == nil {
		for _, gpu := range stats.Devices {
			slog.Info("Server device", "name", gpu.Name, "vram_free", gpu.VRAM_Free, "vram_total", gpu.VRAM_Total)
		}
	} else {
		slog.Warn("Could not fetch server stats", "error", err)
	}

	if info, err := c.GetQueueExecutionInfo(); err == nil {
		slog.Info("Server queue", "remaining", info.ExecInfo.QueueRemaining)
	}

	orch := batch.New(batch.Config{
		WorkflowPath: opts.workflow,
		PromptsPath:  opts.prompts,
		OutputDir:    opts.output,
		Debug:        opts.debug,
		Strategy:     strategy,
	}, c)

	summary, err := orch.Run()
	if err != nil {
		slog.Error("Batch aborted", "error", err)
		os.Exit(1)
	}

	slog.Info("Batch complete", "total", summary.Total, "succeeded", summary.Succeeded, "failed", summary.Failed)
}
