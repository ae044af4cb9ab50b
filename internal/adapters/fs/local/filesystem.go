package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/bnema/fileassist/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultSearchContentBytes = 100 * 1024

	folderMode = 0o755
)

type Filesystem struct {
	logger       *zap.Logger
	searchBytes  int
	skipDirNames func(name string) bool
}

var _ ports.Filesystem = (*Filesystem)(nil)

func New(logger *zap.Logger) *Filesystem {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Filesystem{
		logger:       logger,
		searchBytes:  DefaultSearchContentBytes,
		skipDirNames: isHiddenOrSystem,
	}
}

func (f *Filesystem) ContentForSummary(path string) (string, error) {
	if err := requireFile(path); err != nil {
		return "", err
	}

	return extract(path)
}

// ContentForSearch is ContentForSummary capped at the search limit on a rune
// boundary. Text files are never read past the limit.
func (f *Filesystem) ContentForSearch(path string) (string, error) {
	if err := requireFile(path); err != nil {
		return "", err
	}

	var (
		content string
		err     error
	)
	if kindOf(path) == kindText {
		content, err = readTextPrefix(path, f.searchBytes)
	} else {
		content, err = extract(path)
	}
	if err != nil {
		return "", err
	}

	return truncate(content, f.searchBytes), nil
}

func (f *Filesystem) ListFolder(path string) ([]domain.ResultItem, error) {
	if err := requireDir(path); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}

	absDir, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve directory %s: %w", path, err)
	}

	items := make([]domain.ResultItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, describe(filepath.Join(absDir, entry.Name()), entry))
	}

	return items, nil
}

// Move moves source to destination and returns the final path. An existing
// destination directory receives the source inside it; a destination with a
// trailing separator is created as a directory first. Existing targets are
// never overwritten.
func (f *Filesystem) Move(source string, destination string) (string, error) {
	sourceInfo, err := os.Lstat(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, source)
		}
		return "", fmt.Errorf("stat source %s: %w", source, err)
	}

	intoDir := strings.HasSuffix(destination, "/") || strings.HasSuffix(destination, string(filepath.Separator))
	target := filepath.Clean(destination)

	destInfo, err := os.Stat(target)
	switch {
	case err == nil && destInfo.IsDir():
		target = filepath.Join(target, filepath.Base(source))
	case err == nil && sourceInfo.IsDir():
		return "", fmt.Errorf("%w: %s", domain.ErrDirectoryOverFile, target)
	case err == nil:
		return "", fmt.Errorf("%w: %s", domain.ErrDestinationExists, target)
	case errors.Is(err, os.ErrNotExist) && intoDir:
		if err := os.MkdirAll(target, folderMode); err != nil {
			return "", fmt.Errorf("create destination directory %s: %w", target, err)
		}
		target = filepath.Join(target, filepath.Base(source))
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(target), folderMode); err != nil {
			return "", fmt.Errorf("create destination parent %s: %w", filepath.Dir(target), err)
		}
	default:
		return "", fmt.Errorf("stat destination %s: %w", target, err)
	}

	if filepath.Clean(source) == target {
		return "", fmt.Errorf("%w: source and destination are the same", domain.ErrDestinationExists)
	}

	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrDestinationExists, target)
	}

	if err := os.Rename(source, target); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return "", fmt.Errorf("move %s to %s: %w", source, target, err)
		}
		if err := copyThenRemove(source, target); err != nil {
			return "", err
		}
	}

	f.logger.Debug("moved item", zap.String("source", source), zap.String("target", target))
	return target, nil
}

// CreateFolder is idempotent: an existing directory reports created=false.
func (f *Filesystem) CreateFolder(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", domain.ErrNotDirectory, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat folder %s: %w", path, err)
	}

	if err := os.MkdirAll(path, folderMode); err != nil {
		return false, fmt.Errorf("create folder %s: %w", path, err)
	}
	return true, nil
}

// Search walks start top-down and returns the files matching criteria. The
// semantic check only runs after the literal check fails.
func (f *Filesystem) Search(ctx context.Context, start string, criteria string, matcher ports.ContentMatcher) ([]domain.ResultItem, error) {
	if err := requireDir(start); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve search root %s: %w", start, err)
	}

	parsed := ParseCriteria(criteria)
	f.logger.Debug("search criteria",
		zap.String("root", root),
		zap.String("containing", parsed.Containing),
		zap.String("about", parsed.About),
		zap.String("named", parsed.Named),
		zap.Strings("extensions", parsed.Extensions()),
	)

	results := []domain.ResultItem{}
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			f.logger.Debug("skip unreadable path", zap.String("path", path), zap.Error(walkErr))
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if entry.IsDir() {
			if path != root && f.skipDirNames(name) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !entry.Type().IsRegular() {
			return nil
		}

		if !parsed.acceptsExtension(name) || !parsed.acceptsName(name) {
			return nil
		}

		if !parsed.NeedsContent() {
			results = append(results, describe(path, entry))
			return nil
		}

		if f.matchesContent(ctx, path, parsed, matcher) {
			results = append(results, describe(path, entry))
		}
		return nil
	})
	if err != nil {
		return results, fmt.Errorf("search %s: %w", root, err)
	}

	return results, nil
}

func (f *Filesystem) matchesContent(ctx context.Context, path string, criteria Criteria, matcher ports.ContentMatcher) bool {
	content, err := f.ContentForSearch(path)
	if err != nil {
		f.logger.Debug("skip unreadable candidate", zap.String("path", path), zap.Error(err))
		return false
	}
	if domain.IsPDFStub(content) {
		return false
	}

	if criteria.Containing != "" && strings.Contains(strings.ToLower(content), strings.ToLower(criteria.Containing)) {
		return true
	}

	if criteria.About == "" || matcher == nil {
		return false
	}

	matched, err := matcher.CheckContentMatch(ctx, content, criteria.About)
	if err != nil {
		f.logger.Warn("content match failed", zap.String("path", path), zap.Error(err))
		return false
	}
	return matched
}

func isHiddenOrSystem(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "$")
}

func describe(path string, entry fs.DirEntry) domain.ResultItem {
	item := domain.ResultItem{Name: entry.Name(), Path: path, Type: domain.ItemTypeOther}

	info, err := os.Stat(path)
	if err != nil {
		return item
	}

	switch {
	case info.IsDir():
		item.Type = domain.ItemTypeFolder
	case info.Mode().IsRegular():
		item.Type = domain.ItemTypeFile
		item.Size = info.Size()
	}

	return item
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrNotFile, path)
	}
	return nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrNotDirectory, path)
	}
	return nil
}

func truncate(content string, limit int) string {
	if limit <= 0 || len(content) <= limit {
		return content
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

// copyThenRemove is the cross-device fallback for Move.
func copyThenRemove(source, target string) error {
	err := filepath.WalkDir(source, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(target, rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return os.MkdirAll(dest, info.Mode().Perm())
		}
		return copyFile(path, dest, info.Mode().Perm())
	})
	if err != nil {
		_ = os.RemoveAll(target)
		return fmt.Errorf("copy %s to %s: %w", source, target, err)
	}

	if err := os.RemoveAll(source); err != nil {
		return fmt.Errorf("remove moved source %s: %w", source, err)
	}
	return nil
}

func copyFile(source, dest string, mode fs.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
