package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/bnema/fileassist/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxBytes     = 5 * 1024 * 1024
	DefaultLookupWindow = 50

	logFileMode      = 0o644
	logDirMode       = 0o755
	rotationLayout   = "20060102150405"
	rotatedSuffix    = ".old"
	tempFilePattern  = ".activity-*.jsonl.tmp"
	maxLineBytes     = 16 * 1024 * 1024
	minIDPrefixBytes = 8
)

type Options struct {
	MaxBytes     int64
	LookupWindow int
	SessionID    string
	Logger       *zap.Logger
	Clock        ports.Clock
}

// Log is the append-only JSON Lines activity log. It has a single writer and
// never returns I/O errors to callers; failures go to the logger.
type Log struct {
	path      string
	maxBytes  int64
	window    int
	sessionID string
	logger    *zap.Logger
	clock     ports.Clock

	mu   sync.Mutex
	last time.Time
	// open holds appended entries still waiting for their final status, so
	// an update can be written as a corrective record after rotation.
	open map[string]domain.ActivityEntry
}

var _ ports.ActivityLog = (*Log)(nil)

func New(path string, opts Options) *Log {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.LookupWindow <= 0 {
		opts.LookupWindow = DefaultLookupWindow
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}

	return &Log{
		path:      path,
		maxBytes:  opts.MaxBytes,
		window:    opts.LookupWindow,
		sessionID: opts.SessionID,
		logger:    opts.Logger.With(zap.String("activity_log", path)),
		clock:     opts.Clock,
		open:      make(map[string]domain.ActivityEntry),
	}
}

func (l *Log) Path() string {
	return l.path
}

func (l *Log) SessionID() string {
	return l.sessionID
}

func (l *Log) Append(entry domain.ActivityEntry) domain.EntryRef {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SessionID == "" {
		entry.SessionID = l.sessionID
	}
	entry.Timestamp = l.nextTimestamp()

	ref := domain.EntryRef{ID: entry.ID}

	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Error("encode activity entry", zap.String("action", string(entry.Action)), zap.Error(err))
		return ref
	}

	if err := os.MkdirAll(filepath.Dir(l.path), logDirMode); err != nil {
		l.logger.Error("create activity log directory", zap.Error(err))
		return ref
	}

	l.rotateIfNeeded()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		l.logger.Error("open activity log", zap.Error(err))
		return ref
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		l.logger.Error("append activity entry", zap.Error(err))
		return ref
	}

	if entry.Status == domain.StatusPendingExecution || entry.Status == domain.StatusPlanReceived {
		l.open[entry.ID] = entry
	}

	return ref
}

func (l *Log) Update(ref domain.EntryRef, status domain.Status, details string, resultData map[string]any) {
	if !ref.Valid() {
		l.logger.Warn("update activity entry without reference")
		return
	}

	if l.rewrite(func(entry domain.ActivityEntry) bool {
		return entry.ID == ref.ID
	}, status, details, resultData) {
		return
	}

	// The entry was rotated out of the live file; record the final status
	// as a new line with the same id.
	l.mu.Lock()
	entry, ok := l.open[ref.ID]
	delete(l.open, ref.ID)
	l.mu.Unlock()
	if !ok {
		return
	}

	entry.Status = status
	entry.Details = details
	if resultData != nil {
		entry.ResultData = resultData
	}
	l.Append(entry)
	l.logger.Info("appended corrective activity entry", zap.String("id", ref.ID), zap.String("status", string(status)))
}

func (l *Log) UpdateLast(status domain.Status, details string, resultData map[string]any) {
	l.rewrite(func(domain.ActivityEntry) bool { return true }, status, details, resultData)
}

func (l *Log) Recent(count int) []domain.ActivityEntry {
	if count <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.readEntries()
	if len(entries) > count {
		entries = entries[len(entries)-count:]
	}
	return entries
}

func (l *Log) Lookup(identifier string, skip ...string) (domain.ActivityEntry, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.ActivityEntry{}, fmt.Errorf("%w: empty identifier", domain.ErrActivityNotFound)
	}

	l.mu.Lock()
	entries := l.readEntries()
	l.mu.Unlock()

	skipped := make(map[string]struct{}, len(skip))
	for _, id := range skip {
		skipped[id] = struct{}{}
	}

	// Newest first, limited to the lookup window.
	window := make([]domain.ActivityEntry, 0, l.window)
	for i := len(entries) - 1; i >= 0 && len(window) < l.window; i-- {
		if _, ok := skipped[entries[i].ID]; ok {
			continue
		}
		window = append(window, entries[i])
	}

	if len(window) == 0 {
		return domain.ActivityEntry{}, fmt.Errorf("%w: log is empty", domain.ErrActivityNotFound)
	}

	if strings.EqualFold(identifier, "last") {
		return window[0], nil
	}

	if index, err := strconv.Atoi(identifier); err == nil {
		if index < 1 || index > len(window) {
			return domain.ActivityEntry{}, fmt.Errorf("%w: index %d outside 1..%d", domain.ErrActivityNotFound, index, len(window))
		}
		return window[index-1], nil
	}

	if len(identifier) >= minIDPrefixBytes {
		for _, entry := range window {
			if strings.HasPrefix(entry.ID, identifier) {
				return entry, nil
			}
		}
	}

	for _, entry := range window {
		if strings.Contains(entry.Timestamp.Format(time.RFC3339Nano), identifier) {
			return entry, nil
		}
	}

	return domain.ActivityEntry{}, fmt.Errorf("%w: %q within the last %d entries", domain.ErrActivityNotFound, identifier, len(window))
}

// nextTimestamp never goes backwards within a process.
func (l *Log) nextTimestamp() time.Time {
	now := l.clock.Now().UTC()
	if now.Before(l.last) {
		now = l.last
	}
	l.last = now
	return now
}

func (l *Log) rotateIfNeeded() {
	info, err := os.Stat(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("stat activity log", zap.Error(err))
		}
		return
	}

	if info.Size() <= l.maxBytes {
		return
	}

	rotated := l.path + "." + l.clock.Now().Local().Format(rotationLayout) + rotatedSuffix
	if err := os.Rename(l.path, rotated); err != nil {
		l.logger.Error("rotate activity log", zap.String("target", rotated), zap.Error(err))
		return
	}

	l.logger.Info("rotated activity log", zap.String("target", rotated), zap.Int64("size", info.Size()))
}

// rewrite updates the newest entry accepted by match and replaces the file
// atomically. Lines that fail to decode are kept verbatim. It reports
// whether a matching entry was found.
func (l *Log) rewrite(match func(domain.ActivityEntry) bool, status domain.Status, details string, resultData map[string]any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines, err := l.readLines()
	if err != nil {
		l.logger.Error("read activity log", zap.Error(err))
		return false
	}

	for i := len(lines) - 1; i >= 0; i-- {
		var entry domain.ActivityEntry
		if err := json.Unmarshal(lines[i], &entry); err != nil {
			continue
		}
		if !match(entry) {
			continue
		}

		entry.Status = status
		entry.Details = details
		if resultData != nil {
			entry.ResultData = resultData
		}

		delete(l.open, entry.ID)

		encoded, err := json.Marshal(entry)
		if err != nil {
			l.logger.Error("encode activity entry", zap.String("id", entry.ID), zap.Error(err))
			return true
		}
		lines[i] = encoded

		if err := l.writeLines(lines); err != nil {
			l.logger.Error("rewrite activity log", zap.Error(err))
		}
		return true
	}

	l.logger.Warn("no activity entry to update", zap.String("status", string(status)))
	return false
}

func (l *Log) readLines() ([][]byte, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open activity log: %w", err)
	}
	defer file.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan activity log: %w", err)
	}

	return lines, nil
}

func (l *Log) readEntries() []domain.ActivityEntry {
	lines, err := l.readLines()
	if err != nil {
		l.logger.Error("read activity log", zap.Error(err))
		return nil
	}

	entries := make([]domain.ActivityEntry, 0, len(lines))
	for lineNo, line := range lines {
		var entry domain.ActivityEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			l.logger.Warn("skip malformed activity line", zap.Int("line", lineNo+1), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

func (l *Log) writeLines(lines [][]byte) error {
	tempFile, err := os.CreateTemp(filepath.Dir(l.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp activity log: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	writer := bufio.NewWriter(tempFile)
	for _, line := range lines {
		if _, err := writer.Write(line); err != nil {
			_ = tempFile.Close()
			return fmt.Errorf("write temp activity log: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			_ = tempFile.Close()
			return fmt.Errorf("write temp activity log: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("flush temp activity log: %w", err)
	}

	if err := tempFile.Chmod(logFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp activity log: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp activity log: %w", err)
	}

	if err := os.Rename(tempName, l.path); err != nil {
		return fmt.Errorf("replace activity log: %w", err)
	}

	cleanup = false
	return nil
}
