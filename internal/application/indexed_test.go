package application

import (
	"testing"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseIndexedReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  indexedReference
		ok    bool
	}{
		{input: "item 2", want: indexedReference{Index: 2}, ok: true},
		{input: "#3", want: indexedReference{Index: 3}, ok: true},
		{input: "4", want: indexedReference{Index: 4}, ok: true},
		{input: "2nd one", want: indexedReference{Index: 2}, ok: true},
		{input: "the third one", want: indexedReference{Index: 3}, ok: true},
		{input: "summarize item 2", want: indexedReference{Verb: "summarize", Index: 2}, ok: true},
		{input: "Summarise #1", want: indexedReference{Verb: "summarize", Index: 1}, ok: true},
		{input: "organize the first one", want: indexedReference{Verb: "organize", Index: 1}, ok: true},
		{input: "ask item 1 what is the deadline", want: indexedReference{Verb: "ask", Index: 1, Rest: "what is the deadline"}, ok: true},
		{input: "summarize 3", want: indexedReference{Verb: "summarize", Index: 3}, ok: true},
		{input: "move the 2nd one to archive/", want: indexedReference{Verb: "move", Index: 2, Rest: "to archive/"}, ok: true},
		{input: "2 files about taxes"},
		{input: "show 5 activities"},
		{input: "open item 2"},
		{input: "list 3 largest files"},
		{input: "move 2 files to archive"},
		{input: "summarize the third report"},
		{input: "list contents of ./docs"},
		{input: "search images in ."},
		{input: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, ok := parseIndexedReference(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestReferencedAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		verb     string
		current  domain.ActionName
		itemType domain.ItemType
		want     domain.ActionName
	}{
		{name: "file defaults to summary", current: domain.ActionSummarizeFile, itemType: domain.ItemTypeFile, want: domain.ActionSummarizeFile},
		{name: "folder defaults to listing", current: domain.ActionSummarizeFile, itemType: domain.ItemTypeFolder, want: domain.ActionListFolderContents},
		{name: "ask verb on file", verb: "ask", current: domain.ActionGeneralChat, itemType: domain.ItemTypeFile, want: domain.ActionAskQuestionAboutFile},
		{name: "ask action on folder", current: domain.ActionAskQuestionAboutFile, itemType: domain.ItemTypeFolder, want: domain.ActionAskQuestionAboutFile},
		{name: "organize folder", verb: "organize", current: domain.ActionListFolderContents, itemType: domain.ItemTypeFolder, want: domain.ActionOrganize},
		{name: "organize verb on file summarizes", verb: "organize", current: domain.ActionOrganize, itemType: domain.ItemTypeFile, want: domain.ActionSummarizeFile},
		{name: "move keeps move", current: domain.ActionMoveItem, itemType: domain.ItemTypeFolder, want: domain.ActionMoveItem},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, referencedAction(tt.verb, tt.current, tt.itemType))
		})
	}
}

func TestApplyIndexedReference(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.session.LastSearchResults = []domain.ResultItem{
		{Name: "a.png", Type: domain.ItemTypeFile, Path: "/data/a.png"},
		{Name: "reports", Type: domain.ItemTypeFolder, Path: "/data/reports"},
	}

	t.Run("folder becomes listing", func(t *testing.T) {
		s := step(domain.ActionSummarizeFile, domain.Params{domain.ParamFilePath: domain.PlaceholderFromContext})
		note := h.assistant.applyIndexedReference("the second one", &s)

		assert.Equal(t, domain.ActionListFolderContents, s.Name)
		assert.Equal(t, "/data/reports", s.Parameters.String(domain.ParamFolderPath))
		assert.Equal(t, "indexed reference: item 2 -> /data/reports", note)
	})

	t.Run("move source", func(t *testing.T) {
		s := step(domain.ActionMoveItem, domain.Params{domain.ParamDestinationPath: "archive/"})
		h.assistant.applyIndexedReference("move item 1 to archive", &s)

		assert.Equal(t, domain.ActionMoveItem, s.Name)
		assert.Equal(t, "/data/a.png", s.Parameters.String(domain.ParamSourcePath))
		assert.Equal(t, "archive/", s.Parameters.String(domain.ParamDestinationPath))
	})

	t.Run("ask carries trailing question", func(t *testing.T) {
		s := step(domain.ActionAskQuestionAboutFile, domain.Params{})
		h.assistant.applyIndexedReference("ask #1 what is in the picture", &s)

		assert.Equal(t, domain.ActionAskQuestionAboutFile, s.Name)
		assert.Equal(t, "/data/a.png", s.Parameters.String(domain.ParamFilePath))
		assert.Equal(t, "what is in the picture", s.Parameters.String(domain.ParamQuestionText))
	})

	t.Run("non path actions are left alone", func(t *testing.T) {
		for _, name := range []domain.ActionName{
			domain.ActionShowActivityLog,
			domain.ActionRedoActivity,
			domain.ActionSearchFiles,
			domain.ActionGeneralChat,
		} {
			s := step(name, domain.Params{domain.ParamCount: float64(2)})
			note := h.assistant.applyIndexedReference("item 2", &s)

			assert.Empty(t, note, name)
			assert.Equal(t, name, s.Name)
			assert.Equal(t, domain.Params{domain.ParamCount: float64(2)}, s.Parameters)
		}
	})

	t.Run("out of range keeps step", func(t *testing.T) {
		s := step(domain.ActionSummarizeFile, domain.Params{domain.ParamFilePath: "x.txt"})
		note := h.assistant.applyIndexedReference("item 9", &s)

		assert.Empty(t, note)
		assert.Equal(t, domain.ActionSummarizeFile, s.Name)
		assert.Equal(t, "x.txt", s.Parameters.String(domain.ParamFilePath))
		assert.Contains(t, h.ui.warnings[len(h.ui.warnings)-1], "Item 9 is out of range")
	})
}
