package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/prompt-optimizer/internal/db"
	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one of your optimizations",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your most recent optimizations",
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your optimizations",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <id>",
	Short: "Rate a completed optimization",
	Long:  "Attaches a 1-5 rating and optional comments to a completed optimization. Scores are not changed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedback,
}

var applyCmd = &cobra.Command{
	Use:   "apply <id>",
	Short: "Publish a completed optimization as a reusable prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

var (
	listLimit int

	feedbackRating   int
	feedbackHelpful  bool
	feedbackComments string

	applyVisibility string
	applyTags       string
	applyOutputs    string
)

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum records to show (defaults to list_limit from config)")

	feedbackCmd.Flags().IntVarP(&feedbackRating, "rating", "r", 0, "Rating from 1 to 5 (required)")
	feedbackCmd.Flags().BoolVar(&feedbackHelpful, "helpful", false, "Mark the optimization as helpful")
	feedbackCmd.Flags().StringVar(&feedbackComments, "comments", "", "Free-form comments")
	if err := feedbackCmd.MarkFlagRequired("rating"); err != nil {
		panic(fmt.Sprintf("failed to mark rating flag as required: %v", err))
	}

	applyCmd.Flags().StringVar(&applyVisibility, "visibility", publishing.VisibilityPrivate, "public, private or unlisted")
	applyCmd.Flags().StringVar(&applyTags, "tags", "", "Comma-separated tags")
	applyCmd.Flags().StringVar(&applyOutputs, "outputs", "", "Comma-separated example output URLs")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(applyCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.optimizer.Get(cmd.Context(), a.userID, id)
	if err != nil {
		return err
	}
	return a.emit(rec, func() {
		a.printer.PrintQuestions(rec)
		a.printer.PrintOptimization(rec)
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	limit := listLimit
	if limit <= 0 {
		limit = a.cfg.ListLimit
	}
	recs, err := a.optimizer.List(cmd.Context(), a.userID, limit)
	if err != nil {
		return describe(err)
	}
	return a.emit(recs, func() {
		for i := range recs {
			a.printer.PrintOptimization(&recs[i])
		}
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Delete(cmd.Context(), a.userID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("optimization %s not found", id)
		}
		return err
	}
	return writeJSON(a.out, map[string]string{"deleted": id.String()})
}

func runFeedback(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.optimizer.SubmitFeedback(cmd.Context(), a.userID, id, types.FeedbackRequest{
		Rating:     feedbackRating,
		WasHelpful: feedbackHelpful,
		Comments:   feedbackComments,
	})
	if err != nil {
		return describe(err)
	}
	return a.emit(rec.Feedback, func() { a.printer.PrintOptimization(rec) })
}

func runApply(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	receipt, err := a.optimizer.Apply(cmd.Context(), a.userID, id, types.ApplyRequest{
		Tags:       splitList(applyTags),
		Visibility: applyVisibility,
		Outputs:    splitList(applyOutputs),
	})
	if err != nil {
		return describe(err)
	}
	return a.emit(receipt, func() { a.printer.PrintReceipt(receipt) })
}
