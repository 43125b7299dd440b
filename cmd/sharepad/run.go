package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sharepad/internal/config"
	"sharepad/internal/executor"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a source file in the sandbox",
	Long: `Execute a source file through the same isolated, time-bounded runner the
server uses. The language is taken from --language or inferred from the file
extension.

Examples:
  sharepad run script.py
  sharepad run --language javascript snippet.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	runtimes, err := loadRuntimes(cfg)
	if err != nil {
		return err
	}

	path := args[0]
	language := languageFlag
	if language == "" {
		language = languageForExtension(runtimes, filepath.Ext(path))
	}
	if language == "" {
		return fmt.Errorf("cannot infer language for %s, pass --language", path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	runner := executor.NewRunner(runtimes, cfg.Executor.Timeout)
	res, err := runner.Run(context.Background(), string(source), language)
	if err != nil {
		if errors.Is(err, executor.ErrTimeout) {
			return fmt.Errorf("execution timed out after %s", cfg.Executor.Timeout)
		}
		return err
	}

	if out := executor.Normalize(res); out != "" {
		fmt.Println(out)
	}
	if res.ExitCode != 0 {
		os.Exit(res.ExitCode)
	}
	return nil
}

// languageForExtension finds the runtime whose extension matches the file's.
func languageForExtension(runtimes map[string]executor.Runtime, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	for name, rt := range runtimes {
		if rt.Extension == ext {
			return name
		}
	}
	return ""
}
