package local

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Criteria is a parsed search description.
type Criteria struct {
	Containing       string
	About            string
	Named            string
	TargetExtensions map[string]struct{}
}

// NeedsContent reports whether file content has to be read.
func (c Criteria) NeedsContent() bool {
	return c.Containing != "" || c.About != ""
}

func (c Criteria) acceptsExtension(path string) bool {
	if len(c.TargetExtensions) == 0 {
		return true
	}
	_, ok := c.TargetExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (c Criteria) acceptsName(name string) bool {
	if c.Named == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(c.Named))
}

// Extensions returns the target extensions sorted, mostly for display.
func (c Criteria) Extensions() []string {
	out := make([]string, 0, len(c.TargetExtensions))
	for ext := range c.TargetExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

const termPattern = `\s+(?:'([^']+)'|"([^"]+)"|(\S+))`

var (
	containingPattern = regexp.MustCompile(`(?i)\bcontaining` + termPattern)
	aboutPattern      = regexp.MustCompile(`(?i)\b(?:about|related to|regarding|on the topic of)` + termPattern)
	namedPattern      = regexp.MustCompile(`(?i)\b(?:named|called)` + termPattern)
	wordPattern       = regexp.MustCompile(`[a-z0-9]+`)
)

var typeTable = []struct {
	words      []string
	extensions []string
}{
	{
		words:      []string{"image", "images", "picture", "pictures", "photo", "photos", "screenshot", "screenshots"},
		extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tiff", ".svg", ".heic"},
	},
	{
		words:      []string{"document", "documents", "doc", "docs"},
		extensions: []string{".pdf", ".doc", ".docx", ".txt", ".md", ".odt", ".rtf"},
	},
	{
		words:      []string{"text"},
		extensions: []string{".txt", ".md", ".log"},
	},
	{
		words:      []string{"pdf", "pdfs"},
		extensions: []string{".pdf"},
	},
	{
		words:      []string{"spreadsheet", "spreadsheets", "excel"},
		extensions: []string{".xls", ".xlsx", ".csv", ".ods"},
	},
	{
		words:      []string{"presentation", "presentations", "slides"},
		extensions: []string{".ppt", ".pptx", ".odp", ".key"},
	},
	{
		words:      []string{"video", "videos", "movie", "movies"},
		extensions: []string{".mp4", ".mov", ".avi", ".mkv", ".webm"},
	},
	{
		words:      []string{"audio", "music", "song", "songs"},
		extensions: []string{".mp3", ".wav", ".flac", ".ogg", ".m4a"},
	},
	{
		words:      []string{"code", "source", "script", "scripts"},
		extensions: []string{".go", ".py", ".js", ".ts", ".java", ".c", ".cpp", ".h", ".rs", ".rb", ".sh"},
	},
	{
		words:      []string{"archive", "archives", "zip", "compressed"},
		extensions: []string{".zip", ".tar", ".gz", ".tgz", ".rar", ".7z"},
	},
}

// Words that carry no search meaning on their own.
var fillerWords = map[string]struct{}{
	"a": {}, "an": {}, "all": {}, "any": {}, "the": {}, "for": {}, "find": {}, "search": {}, "show": {},
	"me": {}, "my": {}, "file": {}, "files": {}, "folder": {}, "folders": {}, "in": {}, "with": {},
	"of": {}, "and": {}, "or": {}, "that": {}, "which": {}, "are": {}, "is": {}, "here": {}, "this": {},
}

// ParseCriteria extracts the content clauses, an optional filename clause and
// the type words of a free-text search description. When nothing matches,
// the remaining meaningful words become a filename filter.
func ParseCriteria(raw string) Criteria {
	var criteria Criteria
	rest := raw

	criteria.Containing, rest = takeClause(containingPattern, rest)
	criteria.About, rest = takeClause(aboutPattern, rest)
	criteria.Named, rest = takeClause(namedPattern, rest)

	var leftovers []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(rest), -1) {
		matched := false
		for _, entry := range typeTable {
			if contains(entry.words, word) {
				if criteria.TargetExtensions == nil {
					criteria.TargetExtensions = map[string]struct{}{}
				}
				for _, ext := range entry.extensions {
					criteria.TargetExtensions[ext] = struct{}{}
				}
				matched = true
			}
		}
		if _, filler := fillerWords[word]; !matched && !filler {
			leftovers = append(leftovers, word)
		}
	}

	if !criteria.NeedsContent() && criteria.Named == "" && len(criteria.TargetExtensions) == 0 && len(leftovers) > 0 {
		criteria.Named = strings.Join(leftovers, " ")
	}

	return criteria
}

func takeClause(pattern *regexp.Regexp, text string) (string, string) {
	match := pattern.FindStringSubmatchIndex(text)
	if match == nil {
		return "", text
	}

	var term string
	for group := 1; group <= 3; group++ {
		start, end := match[2*group], match[2*group+1]
		if start >= 0 {
			term = strings.TrimSpace(text[start:end])
			break
		}
	}

	return term, text[:match[0]] + " " + text[match[1]:]
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
