package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/bnema/fileassist/internal/ports"
	"go.uber.org/zap"
)

const (
	sessionFileMode = 0o600
	sessionDirMode  = 0o755
	tempFilePattern = ".session-*.json.tmp"
)

type Repository struct {
	sessionPath string
	logger      *zap.Logger
	clock       ports.Clock
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionRepository = (*Repository)(nil)

func NewRepository(path string, logger *zap.Logger) (*Repository, error) {
	if path == "" {
		return nil, errors.New("session context path is empty")
	}

	sessionPath, err := normalizeSessionPath(path)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Repository{
		sessionPath: sessionPath,
		logger:      logger.With(zap.String("session_context", sessionPath)),
		clock:       ports.SystemClock{},
		mu:          lockForPath(sessionPath),
	}, nil
}

func (r *Repository) Path() string {
	return r.sessionPath
}

// Load always returns a usable session. A missing file yields a fresh one
// silently; an unreadable or corrupted file yields a fresh one together with
// an error wrapping domain.ErrSessionFileCorrupted.
func (r *Repository) Load(ctx context.Context) (*domain.SessionContext, error) {
	if err := ctx.Err(); err != nil {
		return domain.NewSessionContext(), err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.sessionPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewSessionContext(), nil
		}
		r.logger.Warn("read session context", zap.Error(err))
		return domain.NewSessionContext(), fmt.Errorf("read session file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return domain.NewSessionContext(), nil
	}

	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		r.logger.Warn("decode session context", zap.Error(err))
		return domain.NewSessionContext(), fmt.Errorf("%w: %v", domain.ErrSessionFileCorrupted, err)
	}
	if err := file.validateVersion(); err != nil {
		r.logger.Warn("session context version", zap.Error(err))
		return domain.NewSessionContext(), fmt.Errorf("%w: %v", domain.ErrSessionFileCorrupted, err)
	}
	file.applyDefaults()

	return fromSchema(file), nil
}

func (r *Repository) Save(ctx context.Context, session *domain.SessionContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil {
		return errors.New("session context is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeSchema(toSchema(session, r.clock.Now()))
}

func normalizeSessionPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve session path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(r.sessionPath), sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	data = append(data, '\n')

	tempFile, err := os.CreateTemp(filepath.Dir(r.sessionPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}

	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tempName, r.sessionPath); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	cleanup = false
	return nil
}
