package ports

import (
	"context"

	"github.com/bnema/fileassist/internal/domain"
)

type Filesystem interface {
	ContentForSummary(path string) (string, error)
	ContentForSearch(path string) (string, error)
	ListFolder(path string) ([]domain.ResultItem, error)
	Move(source string, destination string) (string, error)
	CreateFolder(path string) (created bool, err error)
	Search(ctx context.Context, start string, criteria string, matcher ContentMatcher) ([]domain.ResultItem, error)
}
