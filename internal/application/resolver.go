package application

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bnema/fileassist/internal/domain"
	"go.uber.org/zap"
)

// AntiHallucinationMarker prefixes the nlu_notes line written when a model
// example path is replaced by a path the user quoted.
const AntiHallucinationMarker = "[anti-hallucination override]"

type pathRequirement int

const (
	requireNothing pathRequirement = iota
	requireExisting
	requireFile
	requireDirectory
)

type pathParam struct {
	key        string
	folderHint bool
	optional   bool
	require    pathRequirement
	prompt     string
}

var actionPathParams = map[domain.ActionName][]pathParam{
	domain.ActionSummarizeFile: {
		{key: domain.ParamFilePath, require: requireFile, prompt: "Which file should I summarize? "},
	},
	domain.ActionAskQuestionAboutFile: {
		{key: domain.ParamFilePath, require: requireExisting, prompt: "Which file or folder is the question about? "},
	},
	domain.ActionListFolderContents: {
		{key: domain.ParamFolderPath, folderHint: true, require: requireDirectory, prompt: "Which folder should I list? "},
	},
	domain.ActionMoveItem: {
		{key: domain.ParamSourcePath, require: requireExisting, prompt: "What should I move? "},
		{key: domain.ParamDestinationPath, folderHint: true, prompt: "Where should it go? "},
	},
	domain.ActionSearchFiles: {
		{key: domain.ParamSearchPath, folderHint: true, optional: true, require: requireDirectory},
	},
	domain.ActionOrganize: {
		{key: domain.ParamTargetPath, folderHint: true, require: requireDirectory, prompt: "Which folder should I organize? "},
	},
}

// exampleFragments are path shapes the model copies from prompt examples
// instead of taking them from the user's request.
var exampleFragments = []string{
	"path/to/",
	"your/file/here",
	"your/folder/here",
	"example/path",
	"some/path",
	"<path",
}

var quotedLiteralPattern = regexp.MustCompile("\"([^\"]+)\"|'([^']+)'|`([^`]+)`")

type resolution struct {
	Params  domain.Params
	Notes   []string
	Status  domain.Status
	Message string
}

func (r resolution) ok() bool {
	return r.Status == ""
}

func isExamplePath(value string) bool {
	lower := strings.ToLower(filepath.ToSlash(value))
	for _, fragment := range exampleFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// quotedLiterals returns the quoted strings of the user input, in order.
func quotedLiterals(input string) []string {
	matches := quotedLiteralPattern.FindAllStringSubmatch(input, -1)
	literals := make([]string, 0, len(matches))
	for _, match := range matches {
		for _, group := range match[1:] {
			if trimmed := strings.TrimSpace(group); trimmed != "" {
				literals = append(literals, trimmed)
				break
			}
		}
	}
	return literals
}

// resolve turns the step's path parameters into absolute, validated paths.
func (a *Assistant) resolve(step domain.ActionStep, input string) resolution {
	params := step.Parameters.Clone()
	if params == nil {
		params = domain.Params{}
	}
	res := resolution{Params: params}

	if _, ok := a.handlers[step.Name]; !ok || step.Name == domain.ActionUnknown {
		res.Status = domain.StatusUnknown
		res.Message = fmt.Sprintf("I don't know how to %q.", step.Name)
		if reason := params.String(domain.ParamErrorReason); reason != "" {
			res.Message = reason
		}
		return res
	}

	if step.Name == domain.ActionGeneralChat && params.String(domain.ParamOriginalRequest) == "" {
		params[domain.ParamOriginalRequest] = input
	}

	literals := quotedLiterals(input)
	for position, spec := range actionPathParams[step.Name] {
		value, note := a.resolveValue(params.String(spec.key), spec, position, literals)
		if note != "" {
			res.Notes = append(res.Notes, note)
		}

		if value == "" {
			if spec.optional {
				value = a.session.CurrentDirectory()
			} else {
				prompted, status := a.promptPath(spec)
				if status != "" {
					res.Status = status
					res.Message = fmt.Sprintf("No %s was given.", strings.ReplaceAll(spec.key, "_", " "))
					return res
				}
				value = prompted
			}
		}

		if msg := validatePath(value, spec.require); msg != "" {
			res.Status = domain.StatusPathValidationFailed
			res.Message = msg
			params[spec.key] = value
			return res
		}

		params[spec.key] = value
	}

	return res
}

func (a *Assistant) resolveValue(raw string, spec pathParam, position int, literals []string) (string, string) {
	ref := domain.ParsePathRef(raw)

	var value string
	switch ref.Kind {
	case domain.PathCurrentDir:
		value = a.session.CurrentDirectory()
	case domain.PathFromContext:
		value = a.fromContext(spec.folderHint)
	case domain.PathExplicit:
		value = a.absolute(ref.Path)
	default:
		return "", ""
	}

	if ref.Kind != domain.PathExplicit || !isExamplePath(ref.Path) || position >= len(literals) {
		return value, ""
	}

	literal := literals[position]
	note := fmt.Sprintf("%s %s: %q replaced by user path %q", AntiHallucinationMarker, spec.key, ref.Path, literal)
	a.logger.Info("example path replaced", zap.String("param", spec.key), zap.String("model_value", ref.Path), zap.String("user_value", literal))
	return a.absolute(literal), note
}

// fromContext picks the focus a __FROM_CONTEXT__ placeholder refers to.
func (a *Assistant) fromContext(folderHint bool) string {
	s := a.session
	if folderHint {
		if s.LastFolderListedPath != "" {
			return s.LastFolderListedPath
		}
		if s.LastReferencedFilePath != "" && isFile(s.LastReferencedFilePath) {
			return filepath.Dir(s.LastReferencedFilePath)
		}
		return s.CurrentDirectory()
	}

	if s.LastReferencedFilePath != "" {
		return s.LastReferencedFilePath
	}
	if s.LastFolderListedPath != "" {
		return s.LastFolderListedPath
	}
	return s.CurrentDirectory()
}

// absolute resolves path against the current directory. A trailing
// separator survives so "archive/" still names a folder destination.
func (a *Assistant) absolute(path string) string {
	path = expandHome(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	trailing := strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator))
	joined := filepath.Join(a.session.CurrentDirectory(), path)
	if trailing {
		joined += string(filepath.Separator)
	}
	return joined
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (a *Assistant) promptPath(spec pathParam) (string, domain.Status) {
	if a.opts.NoPrompt {
		return "", domain.StatusParameterMissingNoUI
	}

	answer, err := a.ui.Prompt(spec.prompt)
	if err != nil || answer == "" {
		return "", domain.StatusCancelledPathPrompt
	}

	ref := domain.ParsePathRef(answer)
	switch ref.Kind {
	case domain.PathExplicit:
		return a.absolute(ref.Path), ""
	case domain.PathCurrentDir:
		return a.session.CurrentDirectory(), ""
	case domain.PathFromContext:
		return a.fromContext(spec.folderHint), ""
	default:
		return "", domain.StatusCancelledPathPrompt
	}
}

func validatePath(path string, requirement pathRequirement) string {
	if requirement == requireNothing {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Path does not exist: %s", path)
		}
		return fmt.Sprintf("Cannot access %s: %v", path, err)
	}

	switch requirement {
	case requireFile:
		if info.IsDir() {
			return fmt.Sprintf("Expected a file but %s is a folder.", path)
		}
	case requireDirectory:
		if !info.IsDir() {
			return fmt.Sprintf("Expected a folder but %s is not one.", path)
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
