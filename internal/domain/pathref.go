package domain

import "strings"

// Placeholders the NLU layer may put in path parameters.
const (
	PlaceholderFromContext = "__FROM_CONTEXT__"
	PlaceholderCurrentDir  = "__CURRENT_DIR__"
	PlaceholderMissing     = "__MISSING__"
)

type PathRefKind int

const (
	PathMissing PathRefKind = iota
	PathExplicit
	PathFromContext
	PathCurrentDir
)

func (k PathRefKind) String() string {
	switch k {
	case PathExplicit:
		return "explicit"
	case PathFromContext:
		return "from_context"
	case PathCurrentDir:
		return "current_dir"
	default:
		return "missing"
	}
}

// PathRef is a path parameter after placeholder recognition. Only Explicit
// carries a Path.
type PathRef struct {
	Kind PathRefKind
	Path string
}

func ParsePathRef(raw string) PathRef {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "", PlaceholderMissing:
		return PathRef{Kind: PathMissing}
	case PlaceholderFromContext:
		return PathRef{Kind: PathFromContext}
	case PlaceholderCurrentDir:
		return PathRef{Kind: PathCurrentDir}
	}

	return PathRef{Kind: PathExplicit, Path: trimQuotes(trimmed)}
}

func trimQuotes(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return strings.TrimSpace(value[1 : len(value)-1])
		}
	}
	return value
}
