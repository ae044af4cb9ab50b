package domain

import (
	"fmt"
	"os"
	"time"
)

const HistoryLimit = 20

type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"
	ItemTypeOther  ItemType = "other"
)

type ResultItem struct {
	Name string   `json:"name"`
	Type ItemType `json:"type"`
	Path string   `json:"path"`
	Size int64    `json:"size,omitempty"`
}

type HistoryEntry struct {
	Timestamp  time.Time  `json:"timestamp"`
	Action     ActionName `json:"action"`
	Parameters Params     `json:"parameters"`
	NLUNotes   string     `json:"nlu_notes,omitempty"`
}

type ContextKey string

const (
	KeyLastReferencedFilePath ContextKey = "last_referenced_file_path"
	KeyLastFolderListedPath   ContextKey = "last_folder_listed_path"
	KeyLastSearchResults      ContextKey = "last_search_results"
	KeyLastCommandStatus      ContextKey = "last_command_status"
	KeyLastAction             ContextKey = "last_action"
	KeyLastParameters         ContextKey = "last_parameters"
	KeyLastActionResult       ContextKey = "last_action_result"
)

// SessionContext is the per-session memory of recent foci. Exactly one of
// file focus, folder focus and search focus drives context resolution; Update
// keeps that true.
type SessionContext struct {
	LastReferencedFilePath string
	LastFolderListedPath   string
	LastSearchResults      []ResultItem
	CommandHistory         []HistoryEntry
	LastCommandStatus      Status
	LastAction             ActionName
	LastParameters         Params
	LastActionResult       string

	// Getwd and IsDir are the OS hooks; nil means the real OS.
	Getwd func() (string, error)
	IsDir func(path string) bool
}

func NewSessionContext() *SessionContext {
	return &SessionContext{}
}

// CurrentDirectory is refreshed from the OS on every call.
func (s *SessionContext) CurrentDirectory() string {
	getwd := s.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}

	dir, err := getwd()
	if err != nil {
		return "."
	}

	return dir
}

func (s *SessionContext) Update(key ContextKey, value any) error {
	switch key {
	case KeyLastReferencedFilePath:
		path, err := stringValue(key, value)
		if err != nil {
			return err
		}
		if path != "" && s.isDir(path) {
			s.LastFolderListedPath = path
			s.LastReferencedFilePath = ""
			return nil
		}
		s.LastReferencedFilePath = path
		if path != "" {
			s.LastFolderListedPath = ""
		}
	case KeyLastFolderListedPath:
		path, err := stringValue(key, value)
		if err != nil {
			return err
		}
		s.LastFolderListedPath = path
		if path != "" {
			s.LastReferencedFilePath = ""
		}
	case KeyLastSearchResults:
		switch items := value.(type) {
		case nil:
			s.LastSearchResults = nil
		case []ResultItem:
			s.LastSearchResults = append([]ResultItem(nil), items...)
			s.LastReferencedFilePath = ""
		default:
			return fmt.Errorf("%w: %s expects []ResultItem, got %T", ErrInvalidContextValue, key, value)
		}
	case KeyLastCommandStatus:
		switch status := value.(type) {
		case Status:
			s.LastCommandStatus = status
		case string:
			s.LastCommandStatus = Status(status)
		default:
			return fmt.Errorf("%w: %s expects Status, got %T", ErrInvalidContextValue, key, value)
		}
	case KeyLastAction:
		switch action := value.(type) {
		case ActionName:
			s.LastAction = action
		case string:
			s.LastAction = ActionName(action)
		default:
			return fmt.Errorf("%w: %s expects ActionName, got %T", ErrInvalidContextValue, key, value)
		}
	case KeyLastParameters:
		switch params := value.(type) {
		case nil:
			s.LastParameters = nil
		case Params:
			s.LastParameters = params.Clone()
		case map[string]any:
			s.LastParameters = Params(params).Clone()
		default:
			return fmt.Errorf("%w: %s expects Params, got %T", ErrInvalidContextValue, key, value)
		}
	case KeyLastActionResult:
		result, err := stringValue(key, value)
		if err != nil {
			return err
		}
		s.LastActionResult = result
	default:
		return fmt.Errorf("%w: %q", ErrUnknownContextKey, key)
	}

	return nil
}

// AddHistory appends an entry and keeps only the newest HistoryLimit entries.
func (s *SessionContext) AddHistory(entry HistoryEntry) {
	s.CommandHistory = append(s.CommandHistory, entry)
	if overflow := len(s.CommandHistory) - HistoryLimit; overflow > 0 {
		s.CommandHistory = append([]HistoryEntry(nil), s.CommandHistory[overflow:]...)
	}
}

// ClearFoci drops every focus at once, used after filesystem changes.
func (s *SessionContext) ClearFoci() {
	s.LastReferencedFilePath = ""
	s.LastFolderListedPath = ""
	s.LastSearchResults = nil
}

func (s *SessionContext) isDir(path string) bool {
	if s.IsDir != nil {
		return s.IsDir(path)
	}

	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func stringValue(key ContextKey, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %s expects string, got %T", ErrInvalidContextValue, key, value)
	}
}
