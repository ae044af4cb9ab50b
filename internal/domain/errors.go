package domain

import "errors"

var (
	ErrNotFound             = errors.New("path does not exist")
	ErrNotDirectory         = errors.New("path is not a directory")
	ErrNotFile              = errors.New("path is not a file")
	ErrDestinationExists    = errors.New("destination already exists")
	ErrDirectoryOverFile    = errors.New("cannot replace a file with a directory")
	ErrUnsupportedType      = errors.New("unsupported file type")
	ErrInvalidPlan          = errors.New("invalid organization plan")
	ErrActivityNotFound     = errors.New("activity not found")
	ErrUnknownContextKey    = errors.New("unknown session context key")
	ErrInvalidContextValue  = errors.New("invalid session context value")
	ErrSessionFileCorrupted = errors.New("session context file is corrupted")
)
