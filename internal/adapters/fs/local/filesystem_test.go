package local

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatcher struct {
	answers map[string]bool
	calls   []string
	err     error
}

func (m *fakeMatcher) CheckContentMatch(_ context.Context, content string, criteria string) (bool, error) {
	m.calls = append(m.calls, content)
	if m.err != nil {
		return false, m.err
	}
	return m.answers[strings.TrimSpace(content)], nil
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeDocx(t *testing.T, path string, body string) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)

	archive := zip.NewWriter(file)
	part, err := archive.Create(docxBodyPart)
	require.NoError(t, err)
	_, err = part.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body +
		`</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, archive.Close())
	require.NoError(t, file.Close())
}

func names(items []domain.ResultItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestContentForSummaryDispatchesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.md"), "# Notes\nhello")
	writeFile(t, filepath.Join(dir, "broken.txt"), "ok \xff\xfe end")
	writeFile(t, filepath.Join(dir, "paper.pdf"), "%PDF-1.4")
	writeFile(t, filepath.Join(dir, "photo.png"), "\x89PNG")
	writeDocx(t, filepath.Join(dir, "report.docx"),
		`<w:p><w:r><w:t>Quarterly</w:t></w:r><w:r><w:tab/><w:t>report</w:t></w:r></w:p><w:p><w:r><w:t>Second line</w:t></w:r></w:p>`)

	fsys := New(nil)

	content, err := fsys.ContentForSummary(filepath.Join(dir, "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Notes\nhello", content)

	content, err = fsys.ContentForSummary(filepath.Join(dir, "broken.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ok \uFFFD end", content)

	content, err = fsys.ContentForSummary(filepath.Join(dir, "report.docx"))
	require.NoError(t, err)
	assert.Equal(t, "Quarterly\treport\nSecond line", content)

	content, err = fsys.ContentForSummary(filepath.Join(dir, "paper.pdf"))
	require.NoError(t, err)
	assert.True(t, domain.IsPDFStub(content))

	_, err = fsys.ContentForSummary(filepath.Join(dir, "photo.png"))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))

	_, err = fsys.ContentForSummary(filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = fsys.ContentForSummary(dir)
	assert.True(t, errors.Is(err, domain.ErrNotFile))
}

func TestContentForSearchTruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	writeFile(t, path, strings.Repeat("é", DefaultSearchContentBytes))

	content, err := New(nil).ContentForSearch(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(content), DefaultSearchContentBytes)
	assert.Equal(t, DefaultSearchContentBytes, len(content))
	assert.True(t, strings.HasSuffix(content, "é"))
}

func TestContentForSearchReadsOnlyUpToTheCap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "huge.log")
	file, err := os.Create(path)
	require.NoError(t, err)
	_, err = file.WriteString("header line\n")
	require.NoError(t, err)
	require.NoError(t, file.Truncate(64*1024*1024))
	require.NoError(t, file.Close())

	content, err := New(nil).ContentForSearch(path)
	require.NoError(t, err)
	assert.Len(t, content, DefaultSearchContentBytes)
	assert.True(t, strings.HasPrefix(content, "header line\n"))
}

func TestContentForSearchDropsRuneCutByTheCap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "accents.txt")
	writeFile(t, path, "ééé")

	fsys := New(nil)
	fsys.searchBytes = 5

	content, err := fsys.ContentForSearch(path)
	require.NoError(t, err)
	assert.Equal(t, "éé", content)
}

func TestListFolder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "bb")
	writeFile(t, filepath.Join(dir, "a.png"), "a")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	fsys := New(nil)
	items, err := fsys.ListFolder(dir)
	require.NoError(t, err)

	assert.Equal(t, []domain.ResultItem{
		{Name: "a.png", Type: domain.ItemTypeFile, Path: filepath.Join(dir, "a.png"), Size: 1},
		{Name: "b.txt", Type: domain.ItemTypeFile, Path: filepath.Join(dir, "b.txt"), Size: 2},
		{Name: "sub", Type: domain.ItemTypeFolder, Path: filepath.Join(dir, "sub")},
	}, items)

	again, err := fsys.ListFolder(dir)
	require.NoError(t, err)
	assert.Equal(t, items, again)

	_, err = fsys.ListFolder(filepath.Join(dir, "nope"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = fsys.ListFolder(filepath.Join(dir, "b.txt"))
	assert.True(t, errors.Is(err, domain.ErrNotDirectory))
}

func TestMove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setup      func(t *testing.T, dir string)
		source     string
		dest       string
		wantTarget string
		wantErr    error
	}{
		{
			name: "into existing directory",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, "x.txt"), "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))
			},
			source:     "x.txt",
			dest:       "archive",
			wantTarget: "archive/x.txt",
		},
		{
			name:       "trailing separator creates directory",
			setup:      func(t *testing.T, dir string) { writeFile(t, filepath.Join(dir, "x.txt"), "x") },
			source:     "x.txt",
			dest:       "archive/",
			wantTarget: "archive/x.txt",
		},
		{
			name:       "full path creates parents",
			setup:      func(t *testing.T, dir string) { writeFile(t, filepath.Join(dir, "x.txt"), "x") },
			source:     "x.txt",
			dest:       "deep/er/renamed.txt",
			wantTarget: "deep/er/renamed.txt",
		},
		{
			name: "refuses same-named target in directory",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, "x.txt"), "x")
				writeFile(t, filepath.Join(dir, "archive", "x.txt"), "old")
			},
			source:  "x.txt",
			dest:    "archive",
			wantErr: domain.ErrDestinationExists,
		},
		{
			name: "refuses directory over file",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.Mkdir(filepath.Join(dir, "folder"), 0o755))
				writeFile(t, filepath.Join(dir, "file.txt"), "f")
			},
			source:  "folder",
			dest:    "file.txt",
			wantErr: domain.ErrDirectoryOverFile,
		},
		{
			name: "refuses file over file",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, "a.txt"), "a")
				writeFile(t, filepath.Join(dir, "b.txt"), "b")
			},
			source:  "a.txt",
			dest:    "b.txt",
			wantErr: domain.ErrDestinationExists,
		},
		{
			name:    "missing source",
			setup:   func(t *testing.T, dir string) {},
			source:  "ghost.txt",
			dest:    "archive",
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			tt.setup(t, dir)

			target, err := New(nil).Move(filepath.Join(dir, tt.source), filepath.Join(dir, tt.dest)+trailing(tt.dest))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.wantTarget), target)
			assert.FileExists(t, target)
			assert.NoFileExists(t, filepath.Join(dir, tt.source))
		})
	}
}

func trailing(dest string) string {
	if strings.HasSuffix(dest, "/") {
		return string(filepath.Separator)
	}
	return ""
}

func TestCreateFolderIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "A_files")
	fsys := New(nil)

	created, err := fsys.CreateFolder(target)
	require.NoError(t, err)
	assert.True(t, created)
	assert.DirExists(t, target)

	created, err = fsys.CreateFolder(target)
	require.NoError(t, err)
	assert.False(t, created)

	writeFile(t, filepath.Join(dir, "plain"), "x")
	_, err = fsys.CreateFolder(filepath.Join(dir, "plain"))
	assert.True(t, errors.Is(err, domain.ErrNotDirectory))
}

func TestSearchByTypeSkipsHiddenAndSystem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "png")
	writeFile(t, filepath.Join(dir, "b.txt"), "text")
	writeFile(t, filepath.Join(dir, ".hidden.png"), "png")
	writeFile(t, filepath.Join(dir, ".git", "logo.png"), "png")
	writeFile(t, filepath.Join(dir, "$RECYCLE.BIN", "old.png"), "png")
	writeFile(t, filepath.Join(dir, "pics", "c.JPG"), "jpg")

	results, err := New(nil).Search(context.Background(), dir, "images", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.png", "c.JPG"}, names(results))
	assert.Equal(t, filepath.Join(dir, "a.png"), results[0].Path)
	assert.Equal(t, domain.ItemTypeFile, results[0].Type)
}

func TestSearchLiteralBeforeSemantic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "budget.txt"), "The BUDGET for 2026")
	writeFile(t, filepath.Join(dir, "plan.txt"), "travel plans")
	writeFile(t, filepath.Join(dir, "misc.txt"), "nothing here")

	matcher := &fakeMatcher{answers: map[string]bool{"travel plans": true}}
	results, err := New(nil).Search(context.Background(), dir, "text files containing 'budget' about 'money'", matcher)
	require.NoError(t, err)

	assert.Equal(t, []string{"budget.txt", "plan.txt"}, names(results))
	assert.ElementsMatch(t, []string{"nothing here", "travel plans"}, matcher.calls, "literal hits must not reach the matcher")
}

func TestSearchLiteralOnlyNeverCallsMatcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.txt"), "alpha beta")
	writeFile(t, filepath.Join(dir, "two.txt"), "gamma")

	matcher := &fakeMatcher{}
	results, err := New(nil).Search(context.Background(), dir, `containing "BETA"`, matcher)
	require.NoError(t, err)

	assert.Equal(t, []string{"one.txt"}, names(results))
	assert.Empty(t, matcher.calls)
}

func TestSearchSkipsPDFStubContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scan.pdf"), "%PDF-1.4 binary")
	writeFile(t, filepath.Join(dir, "notes.txt"), "text is available here")

	results, err := New(nil).Search(context.Background(), dir, "files containing 'available'", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt"}, names(results))

	matcher := &fakeMatcher{answers: map[string]bool{}}
	results, err = New(nil).Search(context.Background(), dir, "pdf files about 'extraction'", matcher)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, matcher.calls)
}

func TestSearchMatcherErrorsExcludeCandidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.txt"), "alpha")

	results, err := New(nil).Search(context.Background(), dir, "about 'greek letters'", &fakeMatcher{err: errors.New("timeout")})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchNamedClauseAndFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Invoice-March.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")

	fsys := New(nil)

	results, err := fsys.Search(context.Background(), dir, "files named 'invoice'", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice-March.pdf"}, names(results))

	results, err = fsys.Search(context.Background(), dir, "notes", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt"}, names(results))
}

func TestSearchHonoursCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Search(ctx, dir, "text", nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSearchRejectsMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Search(context.Background(), filepath.Join(t.TempDir(), "nope"), "images", nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
