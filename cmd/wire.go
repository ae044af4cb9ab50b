package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/fileassist/internal/adapters/activitylog/jsonl"
	"github.com/bnema/fileassist/internal/adapters/fs/local"
	"github.com/bnema/fileassist/internal/adapters/llm/ollama"
	"github.com/bnema/fileassist/internal/adapters/llm/openai"
	"github.com/bnema/fileassist/internal/adapters/render/terminal"
	"github.com/bnema/fileassist/internal/adapters/repo/jsonfile"
	"github.com/bnema/fileassist/internal/config"
	"github.com/bnema/fileassist/internal/logging"
	"github.com/bnema/fileassist/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	provider ports.LLMProvider
	fs       ports.Filesystem
	log      *jsonl.Log
	sessions *jsonfile.Repository
	ui       *terminal.Presenter
	noPrompt bool
}

func wireApp(ctx context.Context, cmd *cobra.Command, cfg config.Config, flags rootFlags) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	sessions, err := jsonfile.NewRepository(cfg.Paths.SessionContext, logger)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	provider, err := newProvider(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		fs:       local.New(logger),
		log: jsonl.New(cfg.Paths.ActivityLog, jsonl.Options{
			MaxBytes:     cfg.Activity.MaxBytes,
			LookupWindow: cfg.Activity.LookupWindow,
			Logger:       logger,
		}),
		sessions: sessions,
		ui: terminal.New(terminal.Options{
			In:  interruptible(ctx, cmd.InOrStdin()),
			Out: cmd.OutOrStdout(),
		}),
		noPrompt: flags.noPrompt,
	}, nil
}

func newProvider(cfg config.LLMConfig, logger *zap.Logger) (ports.LLMProvider, error) {
	switch cfg.Provider {
	case ollama.ProviderName:
		return ollama.New(ollama.Options{
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			RequestTimeout: cfg.RequestTimeout,
			CheckTimeout:   cfg.CheckTimeout,
			Logger:         logger,
		}), nil
	case openai.ProviderName:
		return openai.New(openai.Options{
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			APIKey:         cfg.APIKey,
			RequestTimeout: cfg.RequestTimeout,
			CheckTimeout:   cfg.CheckTimeout,
			Logger:         logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
