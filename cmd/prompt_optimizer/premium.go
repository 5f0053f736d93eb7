package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [prompt]",
	Short: "Start a premium optimization and print its clarifying questions",
	Long: `Analyzes the prompt and generates 3-5 clarifying questions. Answer them with the build
command, which finds the record again by user, prompt, target model and media type. Both steps
must share a database (DATABASE_URL); use the premium command to run them in one go.`,
	RunE: runAnalyze,
}

var buildCmd = &cobra.Command{
	Use:   "build [prompt]",
	Short: "Complete a premium optimization from the answers to its questions",
	Long: `Builds the optimized prompt from the original prompt, the answers and any additional
details. Only content from these inputs is allowed; anything else is reported as an intent
violation. Requires the AI.`,
	RunE: runBuild,
}

var premiumCmd = &cobra.Command{
	Use:   "premium [prompt]",
	Short: "Run analyze and build in one invocation",
	Long: `Runs the premium flow end to end. Questions without an entry in --answers keep their
default.`,
	RunE: runPremium,
}

var (
	analyzeFlags promptFlags

	buildFlags   promptFlags
	buildAnswers string
	buildDetails string

	premiumFlags   promptFlags
	premiumAnswers string
	premiumDetails string
)

func init() {
	analyzeFlags.register(analyzeCmd)

	buildFlags.register(buildCmd)
	buildCmd.Flags().StringVarP(&buildAnswers, "answers", "a", "", "Path to a JSON object mapping question ids to answers")
	buildCmd.Flags().StringVarP(&buildDetails, "details", "d", "", "Additional free-form details")

	premiumFlags.register(premiumCmd)
	premiumCmd.Flags().StringVarP(&premiumAnswers, "answers", "a", "", "Path to a JSON object mapping question ids to answers")
	premiumCmd.Flags().StringVarP(&premiumDetails, "details", "d", "", "Additional free-form details")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(premiumCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	input, err := analyzeFlags.input(a.userID, args)
	if err != nil {
		return err
	}

	rec, err := a.optimizer.Analyze(cmd.Context(), types.AnalyzeRequest{PromptInput: input})
	if err != nil {
		return describe(err)
	}
	return a.emit(rec, func() { a.printer.PrintQuestions(rec) })
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	input, err := buildFlags.input(a.userID, args)
	if err != nil {
		return err
	}
	answers, err := readAnswers(buildAnswers)
	if err != nil {
		return err
	}

	rec, err := a.optimizer.Build(cmd.Context(), types.BuildRequest{
		PromptInput:       input,
		Answers:           answers,
		AdditionalDetails: buildDetails,
	})
	if err != nil {
		return describe(err)
	}
	return a.emit(rec, func() { a.printer.PrintOptimization(rec) })
}

func runPremium(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	input, err := premiumFlags.input(a.userID, args)
	if err != nil {
		return err
	}
	answers, err := readAnswers(premiumAnswers)
	if err != nil {
		return err
	}

	analyzed, err := a.optimizer.Analyze(cmd.Context(), types.AnalyzeRequest{PromptInput: input})
	if err != nil {
		return describe(err)
	}
	if a.cfg.Verbose {
		a.printer.PrintQuestions(analyzed)
	}

	answers = withDefaults(analyzed.Questions, answers)
	rec, err := a.optimizer.Build(cmd.Context(), types.BuildRequest{
		PromptInput:       input,
		Answers:           answers,
		AdditionalDetails: premiumDetails,
	})
	if err != nil {
		return fmt.Errorf("optimization %s: %w", analyzed.ID, describe(err))
	}
	return a.emit(rec, func() { a.printer.PrintOptimization(rec) })
}

// withDefaults fills every unanswered question with a default answer
func withDefaults(qs []types.Question, answers map[string]types.Answer) map[string]types.Answer {
	out := make(map[string]types.Answer, len(qs))
	for id, ans := range answers {
		out[id] = ans
	}
	for _, q := range qs {
		if _, ok := out[q.ID]; !ok {
			out[q.ID] = types.Answer{Type: types.AnswerDefault}
		}
	}
	return out
}
