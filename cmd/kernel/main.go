// Command kernel is a CLI driver for the Notebook Execution Kernel: it
// runs a single cell's source against a notebook sandbox and prints
// the resulting output records as JSON lines. The HTTP/WebSocket
// transport between a UI and the Kernel is explicitly out of scope
// for this module (spec.md §1); this binary exists to exercise the
// Kernel API end to end without one.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nodebooks/kernel/internal/cfg"
	"github.com/nodebooks/kernel/internal/kernel"
	"github.com/nodebooks/kernel/internal/model"
	"github.com/nodebooks/kernel/pkg/kernellog"
)

func main() {
	var (
		notebookID = flag.String("notebook", "scratch", "notebook id")
		cellID     = flag.String("cell", "cell-1", "cell id")
		language   = flag.String("lang", "js", "source language: js or ts")
		sourcePath = flag.String("source", "", "path to the cell source file (required)")
		timeoutMs  = flag.Int("timeout-ms", 0, "cell timeout in milliseconds (0 = kernel default)")
		dev        = flag.Bool("dev", false, "use a development (console) logger instead of the production JSON logger")
	)
	flag.Parse()

	l, err := newLogger(*dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "building logger:", err)
		os.Exit(1)
	}
	kernellog.ReplaceGlobals(l)

	if *sourcePath == "" {
		fmt.Fprintln(os.Stderr, "-source is required")
		os.Exit(2)
	}

	source, err := os.ReadFile(*sourcePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reading source:", err)
		os.Exit(1)
	}

	config, err := cfg.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "parsing config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	k := kernel.New(config)

	lang := model.LanguageJS
	if *language == "ts" {
		lang = model.LanguageTS
	}

	req := kernel.ExecuteRequest{
		NotebookID: *notebookID,
		Cell: model.Cell{
			ID:        *cellID,
			Language:  lang,
			Source:    string(source),
			TimeoutMs: *timeoutMs,
		},
		Environment: model.NotebookEnvironment{NotebookID: *notebookID},
		OnStream:    printRecord,
		OnDisplay:   printRecord,
	}

	result, err := k.Execute(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "execute:", err)
		os.Exit(1)
	}

	if result.Execution.Status == model.StatusError {
		os.Exit(1)
	}
}

func printRecord(rec model.OutputRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal output record:", err)
		return
	}
	fmt.Println(string(data))
}

func newLogger(dev bool) (kernellog.Logger, error) {
	if !dev {
		return kernellog.New()
	}
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return kernellog.Wrap(z), nil
}
