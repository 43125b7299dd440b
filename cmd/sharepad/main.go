package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var languageFlag string

var rootCmd = &cobra.Command{
	Use:   "sharepad",
	Short: "sharepad - collaborative code rooms with sandboxed execution",
	Long: `sharepad hosts shared code rooms: participants join over websocket, edit one
buffer together, and run the code in a short-lived interpreter sandbox.

It also runs code locally via the same sandbox (run, repl).`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&languageFlag, "language", "", "Language runtime (python, javascript)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
