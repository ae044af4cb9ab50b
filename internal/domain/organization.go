package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

type OrganizationActionType string

const (
	OrgCreateFolder OrganizationActionType = "CREATE_FOLDER"
	OrgMoveItem     OrganizationActionType = "MOVE_ITEM"
)

const DefaultOrganizationGoal = "improve structure based on item names and types"

type OrganizationAction struct {
	Type        OrganizationActionType `json:"action_type"`
	Path        string                 `json:"path,omitempty"`
	Source      string                 `json:"source,omitempty"`
	Destination string                 `json:"destination,omitempty"`
}

// Validate checks the action against the absolute base path of the plan.
// CREATE_FOLDER and MOVE_ITEM sources must lie strictly inside base; a move
// destination may be base itself.
func (a OrganizationAction) Validate(base string) error {
	if !filepath.IsAbs(base) {
		return fmt.Errorf("base path %q is not absolute", base)
	}
	base = filepath.Clean(base)

	switch a.Type {
	case OrgCreateFolder:
		if strings.TrimSpace(a.Path) == "" {
			return fmt.Errorf("path is required")
		}
		if !filepath.IsAbs(a.Path) {
			return fmt.Errorf("path %q is not absolute", a.Path)
		}
		if !isStrictlyWithin(base, a.Path) {
			return fmt.Errorf("path %q is outside %s", a.Path, base)
		}
	case OrgMoveItem:
		if strings.TrimSpace(a.Source) == "" || strings.TrimSpace(a.Destination) == "" {
			return fmt.Errorf("source and destination are required")
		}
		if !filepath.IsAbs(a.Source) {
			return fmt.Errorf("source %q is not absolute", a.Source)
		}
		if !filepath.IsAbs(a.Destination) {
			return fmt.Errorf("destination %q is not absolute", a.Destination)
		}
		if !isStrictlyWithin(base, a.Source) {
			return fmt.Errorf("source %q is outside %s", a.Source, base)
		}
		if !IsWithin(base, a.Destination) {
			return fmt.Errorf("destination %q is outside %s", a.Destination, base)
		}
		if filepath.Clean(a.Source) == filepath.Clean(a.Destination) {
			return fmt.Errorf("source and destination are the same")
		}
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}

	return nil
}

// IsWithin reports whether path is base or lies below it, after cleaning.
func IsWithin(base, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func isStrictlyWithin(base, path string) bool {
	return filepath.Clean(base) != filepath.Clean(path) && IsWithin(base, path)
}

// ValidatedAction pairs a proposed action with its validation result.
type ValidatedAction struct {
	Action OrganizationAction
	Err    error
}

func (v ValidatedAction) Valid() bool {
	return v.Err == nil
}

func ValidatePlan(actions []OrganizationAction, base string) []ValidatedAction {
	out := make([]ValidatedAction, 0, len(actions))
	for _, action := range actions {
		out = append(out, ValidatedAction{Action: action, Err: action.Validate(base)})
	}
	return out
}
