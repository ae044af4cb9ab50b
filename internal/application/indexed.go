package application

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bnema/fileassist/internal/domain"
)

var indexedReferencePattern = regexp.MustCompile(`(?i)^(?:(summari[sz]e|list|ask|move|organi[sz]e)\s+)?(?:the\s+)?` +
	`(?:(?:item|number|no\.?)\s*#?(\d+)|#(\d+)|(\d+)(?:st|nd|rd|th)?(\s+one)?|` +
	`(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)(\s+one)?)` +
	`(?:\s+(.*))?$`)

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// indexableActions are the actions whose path parameter an indexed
// reference may fill.
var indexableActions = map[domain.ActionName]bool{
	domain.ActionSummarizeFile:        true,
	domain.ActionAskQuestionAboutFile: true,
	domain.ActionListFolderContents:   true,
	domain.ActionMoveItem:             true,
	domain.ActionOrganize:             true,
}

type indexedReference struct {
	Verb  string
	Index int
	Rest  string
}

// parseIndexedReference recognizes "item 3", "#3", "3", "3rd one" and "the
// third one", optionally led by a verb. Trailing text is accepted only after
// an explicit form ("item 3", "#3", "the 3rd one"), so "list 3 largest
// files" stays a plain request.
func parseIndexedReference(input string) (indexedReference, bool) {
	match := indexedReferencePattern.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		return indexedReference{}, false
	}

	ref := indexedReference{Verb: strings.ToLower(match[1]), Rest: strings.TrimSpace(match[8])}
	explicit := true
	switch {
	case match[2] != "":
		ref.Index, _ = strconv.Atoi(match[2])
	case match[3] != "":
		ref.Index, _ = strconv.Atoi(match[3])
	case match[4] != "":
		ref.Index, _ = strconv.Atoi(match[4])
		explicit = match[5] != ""
	default:
		ref.Index = ordinalWords[strings.ToLower(match[6])]
		explicit = match[7] != ""
	}

	if ref.Rest != "" && !explicit {
		return indexedReference{}, false
	}

	switch {
	case strings.HasPrefix(ref.Verb, "summari"):
		ref.Verb = "summarize"
	case strings.HasPrefix(ref.Verb, "organi"):
		ref.Verb = "organize"
	}

	return ref, true
}

// applyIndexedReference rewrites step to target the referenced entry of the
// last results. It returns a history note, or "" when nothing changed.
// Steps the model planned as anything but a path action are left alone.
func (a *Assistant) applyIndexedReference(input string, step *domain.ActionStep) string {
	if !indexableActions[step.Name] {
		return ""
	}

	ref, ok := parseIndexedReference(input)
	if !ok {
		return ""
	}

	results := a.session.LastSearchResults
	if ref.Index < 1 || ref.Index > len(results) {
		if len(results) == 0 {
			a.ui.Warn(fmt.Sprintf("There are no previous results to pick item %d from.", ref.Index))
		} else {
			a.ui.Warn(fmt.Sprintf("Item %d is out of range; the last results have %d entries.", ref.Index, len(results)))
		}
		return ""
	}

	item := results[ref.Index-1]
	params := step.Parameters.Clone()
	if params == nil {
		params = domain.Params{}
	}

	name := referencedAction(ref.Verb, step.Name, item.Type)
	switch name {
	case domain.ActionMoveItem:
		params[domain.ParamSourcePath] = item.Path
	case domain.ActionAskQuestionAboutFile, domain.ActionSummarizeFile:
		params[domain.ParamFilePath] = item.Path
	case domain.ActionListFolderContents:
		params[domain.ParamFolderPath] = item.Path
	case domain.ActionOrganize:
		params[domain.ParamTargetPath] = item.Path
	}
	if name == domain.ActionAskQuestionAboutFile && params.String(domain.ParamQuestionText) == "" && ref.Rest != "" {
		params[domain.ParamQuestionText] = ref.Rest
	}

	step.Name = name
	step.Parameters = params

	return fmt.Sprintf("indexed reference: item %d -> %s", ref.Index, item.Path)
}

// referencedAction fits the action to the referenced entry: files are
// summarized or asked about, folders are listed or organized.
func referencedAction(verb string, current domain.ActionName, itemType domain.ItemType) domain.ActionName {
	if verb == "move" || (verb == "" && current == domain.ActionMoveItem) {
		return domain.ActionMoveItem
	}

	wantsAsk := verb == "ask" || (verb == "" && current == domain.ActionAskQuestionAboutFile)
	wantsOrganize := verb == "organize" || (verb == "" && current == domain.ActionOrganize)

	if itemType == domain.ItemTypeFolder {
		if wantsOrganize {
			return domain.ActionOrganize
		}
		if wantsAsk {
			return domain.ActionAskQuestionAboutFile
		}
		return domain.ActionListFolderContents
	}

	if wantsAsk {
		return domain.ActionAskQuestionAboutFile
	}
	return domain.ActionSummarizeFile
}
