package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [prompt]",
	Short: "Run the pre-validation gate on a prompt",
	Long:  "Checks a prompt for emptiness, gibberish and nonsense patterns without calling the AI. Exits non-zero when the prompt would be rejected.",
	RunE:  runCheck,
}

var checkFlags struct {
	prompt string
	file   string
}

func init() {
	checkCmd.Flags().StringVarP(&checkFlags.prompt, "prompt", "p", "", "Prompt text (or pass it as arguments)")
	checkCmd.Flags().StringVarP(&checkFlags.file, "file", "f", "", "Read the prompt from a file")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	pf := promptFlags{prompt: checkFlags.prompt, file: checkFlags.file}
	text, err := pf.text(args)
	if err != nil {
		return err
	}

	res := a.optimizer.ValidatePrompt(text)
	if err := a.emit(res, func() { a.printer.PrintValidation(res) }); err != nil {
		return err
	}
	if !res.IsAcceptable {
		return errors.New(res.ValidationMessage)
	}
	return nil
}
