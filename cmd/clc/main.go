package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opal-lang/clc/runtime/compiler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the state shared by every subcommand
type app struct {
	debug bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "clc [command]",
		Short:         "Compile CL procedures into Python",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug output (also CLC_DEBUG)")

	rootCmd.AddCommand(
		a.compileCmd(),
		a.tokensCmd(),
		a.treeCmd(),
		a.watchCmd(),
	)
	return rootCmd
}

// logger writes to the command's stderr without timestamps
func (a *app) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if a.debug || os.Getenv("CLC_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return newLogger(cmd.ErrOrStderr(), level)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) == 0 && attr.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return attr
		},
	}))
}

func parseMode(s string) (compiler.Mode, error) {
	switch m := compiler.Mode(s); m {
	case compiler.ModeProcedure, compiler.ModeSingle:
		return m, nil
	}
	return "", fmt.Errorf("unsupported mode %q: use %s or %s", s, compiler.ModeProcedure, compiler.ModeSingle)
}

// readSource reads a script from path, or from stdin when path is "-"
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading file %s: %w", path, err)
	}
	return string(data), nil
}

// sourceName is the file name recorded in compiled units
func sourceName(path string) string {
	if path == "-" {
		return ""
	}
	return path
}

// writeOutput writes code to the named file, or to w when output is
// empty or "-"
func writeOutput(w io.Writer, output, code string) error {
	if output == "" || output == "-" {
		_, err := io.WriteString(w, code)
		return err
	}
	if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
		return fmt.Errorf("error writing file %s: %w", output, err)
	}
	return nil
}
