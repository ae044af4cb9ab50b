package ports

import (
	"context"

	"github.com/bnema/fileassist/internal/domain"
)

type SessionRepository interface {
	Load(ctx context.Context) (*domain.SessionContext, error)
	Save(ctx context.Context, session *domain.SessionContext) error
}
