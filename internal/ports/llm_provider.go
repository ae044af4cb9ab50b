package ports

import (
	"context"

	"github.com/bnema/fileassist/internal/domain"
)

type ConnectionStatus struct {
	ConnectionOK bool
	ModelOK      bool
	Details      string
}

// LLMProvider is implemented by every model backend. ExtractIntent never
// returns an error: failures come back as an NLUResult with a single unknown
// action carrying error_reason.
type LLMProvider interface {
	Name() string
	CheckConnection(ctx context.Context) ConnectionStatus
	ExtractIntent(ctx context.Context, userText string, session *domain.SessionContext) domain.NLUResult
	InvokeForContent(ctx context.Context, instruction string, content string) (string, error)
	CheckContentMatch(ctx context.Context, content string, criteria string) (bool, error)
	GenerateOrganizationPlan(ctx context.Context, itemsSummary string, goal string, basePath string) ([]domain.OrganizationAction, error)
}

// ContentMatcher is the slice of LLMProvider the filesystem search needs.
type ContentMatcher interface {
	CheckContentMatch(ctx context.Context, content string, criteria string) (bool, error)
}
