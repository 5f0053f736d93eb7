package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

var quickCmd = &cobra.Command{
	Use:   "quick [prompt]",
	Short: "Optimize a prompt in a single pass",
	Long: `Fixes grammar and structure of a prompt for the target model in one pass.

Uses the AI when GEMINI_API_KEY is set and falls back to local rewrite rules when the AI is
unavailable or fails.`,
	RunE: runQuick,
}

var quickFlags promptFlags

func init() {
	quickFlags.register(quickCmd)
	rootCmd.AddCommand(quickCmd)
}

func runQuick(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	input, err := quickFlags.input(a.userID, args)
	if err != nil {
		return err
	}

	rec, err := a.optimizer.QuickOptimize(cmd.Context(), types.QuickRequest{PromptInput: input})
	if err != nil {
		return describe(err)
	}
	return a.emit(rec, func() { a.printer.PrintOptimization(rec) })
}
