package jsonfile

import (
	"fmt"
	"time"

	"github.com/bnema/fileassist/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version                int             `json:"version"`
	SavedAt                time.Time       `json:"saved_at"`
	CurrentDirectory       string          `json:"current_directory"`
	LastReferencedFilePath *string         `json:"last_referenced_file_path"`
	LastFolderListedPath   *string         `json:"last_folder_listed_path"`
	LastSearchResults      []resultSchema  `json:"last_search_results"`
	CommandHistory         []historySchema `json:"command_history"`
	LastCommandStatus      *string         `json:"last_command_status"`
	LastAction             *string         `json:"last_action"`
	LastParameters         map[string]any  `json:"last_parameters"`
	LastActionResult       *string         `json:"last_action_result"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.LastSearchResults == nil {
		s.LastSearchResults = []resultSchema{}
	}
	if s.CommandHistory == nil {
		s.CommandHistory = []historySchema{}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type resultSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
}

type historySchema struct {
	Timestamp  time.Time      `json:"timestamp"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	NLUNotes   string         `json:"nlu_notes,omitempty"`
}

func toSchema(session *domain.SessionContext, savedAt time.Time) fileSchema {
	file := fileSchema{
		Version:                currentSchemaVersion,
		SavedAt:                savedAt.UTC(),
		CurrentDirectory:       session.CurrentDirectory(),
		LastReferencedFilePath: optional(session.LastReferencedFilePath),
		LastFolderListedPath:   optional(session.LastFolderListedPath),
		LastCommandStatus:      optional(string(session.LastCommandStatus)),
		LastAction:             optional(string(session.LastAction)),
		LastParameters:         session.LastParameters,
		LastActionResult:       optional(session.LastActionResult),
	}

	for _, item := range session.LastSearchResults {
		file.LastSearchResults = append(file.LastSearchResults, resultSchema{
			Name: item.Name,
			Type: string(item.Type),
			Path: item.Path,
			Size: item.Size,
		})
	}

	for _, entry := range session.CommandHistory {
		file.CommandHistory = append(file.CommandHistory, historySchema{
			Timestamp:  entry.Timestamp.UTC(),
			Action:     string(entry.Action),
			Parameters: entry.Parameters,
			NLUNotes:   entry.NLUNotes,
		})
	}

	file.applyDefaults()
	return file
}

func fromSchema(file fileSchema) *domain.SessionContext {
	session := domain.NewSessionContext()
	session.LastReferencedFilePath = deref(file.LastReferencedFilePath)
	session.LastFolderListedPath = deref(file.LastFolderListedPath)
	session.LastCommandStatus = domain.Status(deref(file.LastCommandStatus))
	session.LastAction = domain.ActionName(deref(file.LastAction))
	session.LastActionResult = deref(file.LastActionResult)
	if file.LastParameters != nil {
		session.LastParameters = domain.Params(file.LastParameters)
	}

	// A hand-edited file may carry both foci; file focus loses.
	if session.LastReferencedFilePath != "" && session.LastFolderListedPath != "" {
		session.LastReferencedFilePath = ""
	}

	for _, item := range file.LastSearchResults {
		session.LastSearchResults = append(session.LastSearchResults, domain.ResultItem{
			Name: item.Name,
			Type: domain.ItemType(item.Type),
			Path: item.Path,
			Size: item.Size,
		})
	}

	for _, entry := range file.CommandHistory {
		var params domain.Params
		if entry.Parameters != nil {
			params = domain.Params(entry.Parameters)
		}
		session.AddHistory(domain.HistoryEntry{
			Timestamp:  entry.Timestamp,
			Action:     domain.ActionName(entry.Action),
			Parameters: params,
			NLUNotes:   entry.NLUNotes,
		})
	}

	return session
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
