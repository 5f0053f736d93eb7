package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Quick-optimize many prompts concurrently",
	Long: `Reads prompts from a JSON array or a JSON-lines file and quick-optimizes them with up to
batch_concurrent optimizations in flight. One failed prompt does not stop the others; results
are printed in input order.`,
	RunE: runBatch,
}

var (
	batchInput       string
	batchModel       string
	batchMedia       string
	batchConcurrency int
)

// batchItem is one input line. Missing fields fall back to --model and --media.
type batchItem struct {
	Prompt      string          `json:"prompt"`
	TargetModel string          `json:"target_model,omitempty"`
	MediaType   types.MediaType `json:"media_type,omitempty"`
}

// batchResult is one output entry
type batchResult struct {
	Index           int                 `json:"index"`
	ID              string              `json:"id,omitempty"`
	OriginalPrompt  string              `json:"original_prompt"`
	OptimizedPrompt string              `json:"optimized_prompt,omitempty"`
	QualityScore    *types.QualityScore `json:"quality_score,omitempty"`
	Error           string              `json:"error,omitempty"`
}

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "in", "i", "", "Path to a JSON array or JSON-lines file of prompts (required)")
	batchCmd.Flags().StringVarP(&batchModel, "model", "m", "", "Target model for items that do not name one")
	batchCmd.Flags().StringVar(&batchMedia, "media", string(types.MediaText), "Media type for items that do not name one")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Parallel optimizations (defaults to batch_concurrent from config)")

	if err := batchCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := readBatch(batchInput)
	if err != nil {
		return err
	}

	limit := a.cfg.BatchConcurrent
	if batchConcurrency > 0 {
		limit = batchConcurrency
	}

	results := make([]batchResult, len(items))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			res := batchResult{Index: i, OriginalPrompt: item.Prompt}
			defer func() { results[i] = res }()

			req := types.QuickRequest{PromptInput: types.PromptInput{
				UserID:         a.userID,
				OriginalPrompt: item.Prompt,
				TargetModel:    firstNonEmpty(item.TargetModel, batchModel),
				MediaType:      types.MediaType(firstNonEmpty(string(item.MediaType), batchMedia)),
			}}
			rec, err := a.optimizer.QuickOptimize(ctx, req)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				res.Error = describe(err).Error()
				a.logger.Warn("batch item failed", zap.Int("index", i), zap.Error(err))
				return nil
			}
			res.ID = rec.ID.String()
			res.OptimizedPrompt = rec.OptimizedPrompt
			res.QualityScore = &rec.QualityScore
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	a.logger.Info("batch finished", zap.Int("items", len(results)), zap.Int("failed", failed))
	return writeJSON(a.out, results)
}

// readBatch accepts a JSON array of items or one JSON object per line
func readBatch(path string) ([]batchItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	data = bytes.TrimSpace(data)

	var items []batchItem
	if bytes.HasPrefix(data, []byte("[")) {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal batch JSON: %w", err)
		}
		return items, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var item batchItem
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("batch line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
