package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/config"
	"github.com/jonathan/prompt-optimizer/internal/db"
	"github.com/jonathan/prompt-optimizer/internal/llm"
)

// getBinaryPath returns the path to the prompt_optimizer binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "prompt_optimizer"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}

	return binaryPath
}

// resetFlags restores every flag to its default so commands can run repeatedly in one process
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// cli runs commands in-process against a shared memory store and AI double
type cli struct {
	t     *testing.T
	store *db.MemoryStore
	ai    llm.Generator
}

func newCLI(t *testing.T, ai llm.Generator) *cli {
	t.Helper()
	t.Setenv(config.EnvDatabaseURL, "")
	t.Setenv(config.EnvAPIKey, "")

	c := &cli{t: t, store: db.NewMemoryStore(), ai: ai}

	origStore, origGenerator := openStore, newGenerator
	openStore = func(context.Context, config.Config, *zap.Logger) (recordStore, func(), error) {
		return c.store, func() {}, nil
	}
	newGenerator = func(context.Context, config.Config, *zap.Logger) (llm.Generator, func(), error) {
		return c.ai, func() {}, nil
	}
	t.Cleanup(func() {
		openStore, newGenerator = origStore, origGenerator
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return c
}

// run executes args and returns stdout
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
