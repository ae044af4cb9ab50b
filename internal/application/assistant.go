package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/bnema/fileassist/internal/ports"
	"go.uber.org/zap"
)

var ErrMissingDependency = errors.New("missing assistant dependency")

type Deps struct {
	LLM      ports.LLMProvider
	FS       ports.Filesystem
	Log      ports.ActivityLog
	UI       ports.Presenter
	Sessions ports.SessionRepository
	Clock    ports.Clock
	Logger   *zap.Logger
}

type Options struct {
	// MaxClarificationAttempts bounds the extra NLU round trips after the
	// first one. Zero means MaxClarificationAttempts.
	MaxClarificationAttempts int
	// NoPrompt turns missing required parameters into
	// parameter_missing_no_ui instead of asking the user.
	NoPrompt bool
}

// Assistant owns the session context for the lifetime of the REPL and routes
// every user line through understanding, resolution and execution.
type Assistant struct {
	llm      ports.LLMProvider
	fs       ports.Filesystem
	log      ports.ActivityLog
	ui       ports.Presenter
	sessions ports.SessionRepository
	clock    ports.Clock
	logger   *zap.Logger
	opts     Options

	session  *domain.SessionContext
	handlers map[domain.ActionName]handler
}

func New(deps Deps, session *domain.SessionContext, opts Options) (*Assistant, error) {
	switch {
	case deps.LLM == nil:
		return nil, fmt.Errorf("%w: llm provider", ErrMissingDependency)
	case deps.FS == nil:
		return nil, fmt.Errorf("%w: filesystem", ErrMissingDependency)
	case deps.Log == nil:
		return nil, fmt.Errorf("%w: activity log", ErrMissingDependency)
	case deps.UI == nil:
		return nil, fmt.Errorf("%w: presenter", ErrMissingDependency)
	}

	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if session == nil {
		session = domain.NewSessionContext()
	}
	if opts.MaxClarificationAttempts <= 0 {
		opts.MaxClarificationAttempts = MaxClarificationAttempts
	}

	a := &Assistant{
		llm:      deps.LLM,
		fs:       deps.FS,
		log:      deps.Log,
		ui:       deps.UI,
		sessions: deps.Sessions,
		clock:    deps.Clock,
		logger:   deps.Logger,
		opts:     opts,
		session:  session,
	}
	a.handlers = a.handlerMap()

	return a, nil
}

func (a *Assistant) Session() *domain.SessionContext {
	return a.session
}

// SaveSession persists the session context. It is a no-op without a
// repository.
func (a *Assistant) SaveSession(ctx context.Context) error {
	if a.sessions == nil {
		return nil
	}
	if err := a.sessions.Save(ctx, a.session); err != nil {
		return fmt.Errorf("save session context: %w", err)
	}
	return nil
}

// update funnels every session mutation; a rejected value is a programming
// error and is only logged.
func (a *Assistant) update(key domain.ContextKey, value any) {
	if err := a.session.Update(key, value); err != nil {
		a.logger.Error("session update rejected", zap.String("key", string(key)), zap.Error(err))
	}
}

func (a *Assistant) recordStep(action domain.ActionName, params domain.Params, status domain.Status, result string) {
	a.update(domain.KeyLastCommandStatus, status)
	a.update(domain.KeyLastAction, action)
	a.update(domain.KeyLastParameters, params)
	a.update(domain.KeyLastActionResult, result)
}
