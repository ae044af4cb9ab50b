package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/fileassist/internal/adapters/llm/ollama"
	"github.com/bnema/fileassist/internal/application"
	"github.com/bnema/fileassist/internal/config"
	"github.com/bnema/fileassist/internal/domain"
	"github.com/bnema/fileassist/internal/ports"
	"go.uber.org/zap"
)

var errProviderUnavailable = errors.New("llm provider unavailable")

// run loads the session, checks the provider and hands over to the REPL.
// The session context is saved on every way out, panics included.
func (a *app) run(ctx context.Context) error {
	defer func() { _ = a.logger.Sync() }()

	session, err := a.sessions.Load(ctx)
	if err != nil {
		a.logger.Warn("session context not loaded, starting fresh", zap.Error(err))
		session = domain.NewSessionContext()
	}

	assistant, err := application.New(application.Deps{
		LLM:      a.provider,
		FS:       a.fs,
		Log:      a.log,
		UI:       a.ui,
		Sessions: a.sessions,
		Logger:   a.logger,
	}, session, application.Options{NoPrompt: a.noPrompt})
	if err != nil {
		return fmt.Errorf("wire assistant: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			a.save(ctx, assistant)
			panic(recovered)
		}
	}()

	status := a.provider.CheckConnection(ctx)
	if !status.ConnectionOK || !status.ModelOK {
		a.ui.Error(providerErrorTitle(a.cfg.LLM.Provider), connectionHelp(a.cfg.LLM, status))
		a.save(ctx, assistant)
		return fmt.Errorf("%w: %s", errProviderUnavailable, status.Details)
	}
	a.logger.Info("llm provider ready",
		zap.String("provider", a.provider.Name()),
		zap.String("model", a.cfg.LLM.Model),
		zap.String("base_url", a.cfg.LLM.BaseURL),
	)

	runErr := assistant.Run(ctx)
	a.save(ctx, assistant)

	if errors.Is(runErr, context.Canceled) {
		a.ui.Info("Interrupted.")
		return nil
	}
	return runErr
}

func (a *app) save(ctx context.Context, assistant *application.Assistant) {
	if err := assistant.SaveSession(context.WithoutCancel(ctx)); err != nil {
		a.logger.Error("session context not saved", zap.Error(err))
	}
}

func providerErrorTitle(provider string) string {
	if provider == ollama.ProviderName {
		return "Ollama Error"
	}
	return "LLM Provider Error"
}

func connectionHelp(cfg config.LLMConfig, status ports.ConnectionStatus) string {
	if !status.ConnectionOK {
		if cfg.Provider == ollama.ProviderName {
			return fmt.Sprintf("%s\n\nIs Ollama running at %s?\nStart it with 'ollama serve'.", status.Details, cfg.BaseURL)
		}
		return fmt.Sprintf("%s\n\nCheck that the server at %s is reachable.", status.Details, cfg.BaseURL)
	}

	if cfg.Provider == ollama.ProviderName {
		return fmt.Sprintf("%s\n\nPull the model with 'ollama pull %s'\nor pick another one with --model.", status.Details, cfg.Model)
	}
	return fmt.Sprintf("%s\n\nPick an available model with --model.", status.Details)
}

// contextReader stops handing out input once ctx is done, so an interrupt
// ends a blocked prompt with io.EOF. A read abandoned that way finishes in
// the background and its bytes are dropped.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

type readResult struct {
	data []byte
	err  error
}

func interruptible(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

func (c *contextReader) Read(p []byte) (int, error) {
	if c.ctx.Err() != nil {
		return 0, io.EOF
	}

	done := make(chan readResult, 1)
	go func() {
		buf := make([]byte, len(p))
		n, err := c.r.Read(buf)
		done <- readResult{data: buf[:n], err: err}
	}()

	select {
	case res := <-done:
		return copy(p, res.data), res.err
	case <-c.ctx.Done():
		return 0, io.EOF
	}
}
