package application

import (
	"context"
	"testing"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) clarification(input, question string) {
	h.llm.EXPECT().ExtractIntent(mockAnyContext(), input, h.session).Return(domain.NLUResult{
		ClarificationNeeded: true,
		SuggestedQuestion:   question,
		Method:              "ollama",
	}).Once()
}

func TestComposeClarified(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"Original request: move it. Question: Which file? Clarifying answer: x.txt",
		composeClarified("move it", "Which file?", "x.txt"),
	)
}

func TestClarificationAnswerIsComposedIntoNextRequest(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.mkdir(t, "docs")
	h.ui.answers = []string{"the docs folder"}

	input := "list it"
	h.clarification(input, "Which folder?")
	h.intent(composeClarified(input, "Which folder?", "the docs folder"),
		step(domain.ActionListFolderContents, domain.Params{domain.ParamFolderPath: "docs"}))

	result := h.assistant.Execute(context.Background(), input)

	assert.Equal(t, domain.StatusSuccess, result.Status)
	require.Len(t, h.ui.panels, 1)
	assert.Equal(t, "Clarification needed", h.ui.panels[0].Title)
	assert.Equal(t, "Which folder?", h.ui.panels[0].Body)
	assert.Equal(t, []string{"Your answer: "}, h.ui.prompts)
}

func TestClarificationStopsAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	h.ui.answers = []string{"first answer", "second answer"}

	input := "do it"
	first := composeClarified(input, "What?", "first answer")
	second := composeClarified(input, "What?", "second answer")
	h.clarification(input, "What?")
	h.clarification(first, "What?")
	h.clarification(second, "What?")

	result := h.assistant.Execute(context.Background(), input)

	assert.Equal(t, domain.StatusClarificationFailed, result.Status)
	assert.Len(t, h.ui.prompts, MaxClarificationAttempts)
	require.Len(t, h.ui.errors, 1)
	assert.Equal(t, "Clarification failed", h.ui.errors[0].Title)

	entry := h.lastEntry(t, domain.ActionClarification)
	assert.Equal(t, domain.StatusClarificationFailed, entry.Status)
	assert.Equal(t, domain.StatusClarificationFailed, h.session.LastCommandStatus)
}

func TestClarificationCancelled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       Options
		answers    []string
		wantStatus domain.Status
	}{
		{name: "empty answer", answers: []string{""}, wantStatus: domain.StatusCancelledClarification},
		{name: "closed input", wantStatus: domain.StatusCancelledClarification},
		{name: "prompting disabled", opts: Options{NoPrompt: true}, wantStatus: domain.StatusParameterMissingNoUI},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, tt.opts)
			h.ui.answers = tt.answers
			h.clarification("move it", "Move what?")

			result := h.assistant.Execute(context.Background(), "move it")

			assert.Equal(t, tt.wantStatus, result.Status)
			entry := h.lastEntry(t, domain.ActionClarification)
			assert.Equal(t, tt.wantStatus, entry.Status)
			assert.Equal(t, "move it", entry.Parameters.String(domain.ParamOriginalRequest))
		})
	}
}
