package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/opal-lang/clc/runtime/cache"
	"github.com/opal-lang/clc/runtime/compiler"
)

func (a *app) watchCmd() *cobra.Command {
	var output, mode string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Recompile a CL script whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			w := &watcher{
				path:   args[0],
				output: output,
				mode:   m,
				out:    cmd.OutOrStdout(),
				logger: a.logger(cmd),
				cache:  cache.NewMemory(0),
			}
			return w.run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&mode, "mode", string(compiler.ModeProcedure), "Translation mode: proc or single")
	return cmd
}

type watcher struct {
	path   string
	output string
	mode   compiler.Mode
	out    io.Writer
	logger *slog.Logger
	cache  *cache.Memory
}

// run compiles the file once and again after every write until ctx is
// done. The directory is watched so editors that save by renaming a new
// file into place are still seen.
func (w *watcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	target := filepath.Clean(w.path)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("error watching %s: %w", w.path, err)
	}

	w.build()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("file changed", "file", ev.Name, "op", ev.Op.String())
			w.build()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// build compiles the current revision. Failures are logged and the
// watch carries on.
func (w *watcher) build() {
	unit, err := w.compile()
	if err != nil {
		w.logger.Error("compile failed", "file", w.path, "error", err)
		return
	}
	if err := writeOutput(w.out, w.output, unit.Code); err != nil {
		w.logger.Error("write failed", "file", w.output, "error", err)
		return
	}
	w.logger.Info("compiled", "file", w.path, "procedure", unit.ProcName, "warnings", len(unit.Warnings))
}

func (w *watcher) compile() (*compiler.CompiledUnit, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", w.path, err)
	}
	return compiler.Compile(string(data),
		compiler.WithFilename(w.path),
		compiler.WithMode(w.mode),
		compiler.WithCache(w.cache),
		compiler.WithFileStat(statKey(w.path, info)),
		compiler.WithLogger(w.logger))
}

func statKey(path string, info os.FileInfo) cache.StatKey {
	return cache.StatKey{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}
}
