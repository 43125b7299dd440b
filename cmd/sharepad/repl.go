package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"sharepad/internal/config"
	"sharepad/internal/executor"
	"sharepad/internal/room"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run code snippets interactively",
	Long: `An interactive snippet runner on top of the sandbox. Type a block of code
and finish it with an empty line to execute. Each block runs in a fresh
interpreter process with the usual deadline.

Commands:
  /lang <name>  switch language
  /quit         exit

Examples:
  sharepad repl
  sharepad repl --language python`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	runtimes, err := loadRuntimes(cfg)
	if err != nil {
		return err
	}
	runner := executor.NewRunner(runtimes, cfg.Executor.Timeout)

	language := languageFlag
	if language == "" {
		language = room.DefaultLanguage
	}
	if !runner.Supports(language) {
		return fmt.Errorf("unsupported language %q (have: %s)", language, strings.Join(runner.Languages(), ", "))
	}

	fmt.Printf("sharepad repl - %s (blank line runs the block, /quit exits)\n\n", language)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "... ",
		HistoryFile:     "/tmp/sharepad_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	var block []string
	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("bye")
				return nil
			}
			return err
		}

		if strings.HasPrefix(strings.TrimSpace(input), "/") {
			switch fields := strings.Fields(input); fields[0] {
			case "/quit", "/exit", "/q":
				fmt.Println("bye")
				return nil
			case "/lang":
				if len(fields) < 2 || !runner.Supports(fields[1]) {
					fmt.Printf("usage: /lang <%s>\n", strings.Join(runner.Languages(), "|"))
					continue
				}
				language = fields[1]
				block = nil
				fmt.Printf("language: %s\n", language)
			default:
				fmt.Printf("unknown command: %s\n", fields[0])
			}
			continue
		}

		if strings.TrimSpace(input) != "" {
			block = append(block, input)
			continue
		}
		if len(block) == 0 {
			continue
		}

		source := strings.Join(block, "\n")
		block = nil

		res, err := runner.Run(context.Background(), source, language)
		if err != nil {
			if errors.Is(err, executor.ErrTimeout) {
				fmt.Printf("(timed out after %s)\n", cfg.Executor.Timeout)
				continue
			}
			fmt.Printf("error: %v\n", err)
			continue
		}
		if out := executor.Normalize(res); out != "" {
			fmt.Println(out)
		}
	}
}
