package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/cache"
	"github.com/jonathan/prompt-optimizer/internal/config"
	"github.com/jonathan/prompt-optimizer/internal/db"
	"github.com/jonathan/prompt-optimizer/internal/llm"
	"github.com/jonathan/prompt-optimizer/internal/logging"
	"github.com/jonathan/prompt-optimizer/internal/observability"
	"github.com/jonathan/prompt-optimizer/internal/pipeline"
	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

// localUser owns records when no user is configured
var localUser = uuid.NewSHA1(uuid.NameSpaceOID, []byte("prompt-optimizer/local"))

// recordStore is what the CLI needs from storage
type recordStore interface {
	pipeline.Store
	publishing.Publisher
}

// openStore connects to PostgreSQL, or returns a memory store when no URL is configured
var openStore = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (recordStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Debug("DATABASE_URL not set, records are kept in memory for this run only")
		return db.NewMemoryStore(), func() {}, nil
	}
	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}

// newGenerator builds the AI gateway. Without an API key the gateway reports itself unavailable
// and every AI-assisted stage takes its offline path.
var newGenerator = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (llm.Generator, func(), error) {
	if cfg.APIKey == "" {
		logger.Debug("GEMINI_API_KEY not set, AI features are disabled")
		return llm.NewGateway(nil, cfg.Gateway(), logger), func() {}, nil
	}
	client, err := llm.NewClient(ctx, cfg.LLM(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	gw := llm.NewGateway(client, cfg.Gateway(), logger)
	return gw, func() { _ = gw.Close() }, nil
}

// app holds the collaborators of one command invocation
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     recordStore
	optimizer *pipeline.Optimizer
	printer   *observability.Printer
	out       io.Writer
	userID    uuid.UUID
	closers   []func()
}

// loadConfig merges the config file, the environment and the persistent flags
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	cfg.ApplyEnv(os.LookupEnv)

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = rootAPIKey
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = rootDatabaseURL
	}
	if flags.Changed("user") {
		cfg.UserID = rootUser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = rootVerbose
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.MergeWithDefaults(config.Defaults()), nil
}

// setup builds the app for cmd. Callers must defer app.Close.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	userID := localUser
	if cfg.UserID != "" {
		userID, err = uuid.Parse(cfg.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", cfg.UserID, err)
		}
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		printer: observability.NewPrinter(cmd.OutOrStdout()),
		out:     cmd.OutOrStdout(),
		userID:  userID,
	}

	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, closeStore)

	ai, closeAI, err := newGenerator(ctx, cfg, logger.Named("llm"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeAI)

	opts := pipeline.Options{
		AI:            ai,
		Store:         store,
		Publisher:     store,
		QuestionCache: cache.NewLRU[[]types.Question](cfg.CacheSize, cfg.CacheTTL()),
		QuickCache:    cache.NewLRU[pipeline.QuickOutcome](cfg.CacheSize, cfg.CacheTTL()),
		Logger:        logger.Named("pipeline"),
	}
	if cfg.Verbose {
		errOut := cmd.ErrOrStderr()
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			if e.Total > 0 {
				_, _ = fmt.Fprintf(errOut, "[%d/%d] %s: %s\n", e.Index, e.Total, e.Stage, e.Message)
				return
			}
			_, _ = fmt.Fprintf(errOut, "%s: %s\n", e.Stage, e.Message)
		}
	}
	a.optimizer = pipeline.New(opts)
	return a, nil
}

// Close releases the store, the gateway and flushes the logger
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

// emit writes v as indented JSON unless verbose output was already printed
func (a *app) emit(v any, verbose func()) error {
	if a.cfg.Verbose && verbose != nil {
		verbose()
		return nil
	}
	return writeJSON(a.out, v)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// describe turns pipeline errors into the message shown to the user
func describe(err error) error {
	var verr *pipeline.ValidationError
	if errors.As(err, &verr) {
		if len(verr.Issues) > 0 {
			return fmt.Errorf("%s (%s)", verr.Message, strings.Join(verr.Issues, ", "))
		}
		return errors.New(verr.Message)
	}
	if llm.IsAIFailure(err) {
		return fmt.Errorf("%s: %w", llm.UserMessage(err), err)
	}
	return err
}

// parseID parses the record id argument
func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(arg))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid optimization id %q: %w", arg, err)
	}
	return id, nil
}

// splitList splits a comma-separated flag value, dropping empty entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
