package local

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bnema/fileassist/internal/domain"
)

const docxBodyPart = "word/document.xml"

type contentKind int

const (
	kindUnsupported contentKind = iota
	kindText
	kindDocx
	kindPDF
)

var textExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".markdown": {}, ".rst": {}, ".log": {}, ".csv": {}, ".tsv": {},
	".json": {}, ".jsonl": {}, ".yaml": {}, ".yml": {}, ".toml": {}, ".ini": {}, ".cfg": {}, ".conf": {},
	".xml": {}, ".html": {}, ".htm": {}, ".css": {}, ".sql": {},
	".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".java": {}, ".c": {}, ".h": {}, ".cpp": {}, ".hpp": {},
	".rs": {}, ".rb": {}, ".php": {}, ".sh": {}, ".bash": {}, ".zsh": {}, ".ps1": {}, ".bat": {},
}

func kindOf(path string) contentKind {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return kindDocx
	case ".pdf":
		return kindPDF
	}
	if _, ok := textExtensions[ext]; ok {
		return kindText
	}
	// Extension-less files such as README or Makefile are read as text.
	if ext == "" {
		return kindText
	}
	return kindUnsupported
}

// ReadText reads a file as UTF-8, replacing invalid sequences.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file %s: %w", path, err)
	}

	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// readTextPrefix reads at most limit bytes of a text file, dropping a rune cut
// in half at the end.
func readTextPrefix(path string, limit int) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read text file %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(limit)))
	if err != nil {
		return "", fmt.Errorf("read text file %s: %w", path, err)
	}

	if len(data) == limit {
		for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
			if !utf8.RuneStart(data[len(data)-i]) {
				continue
			}
			if !utf8.FullRune(data[len(data)-i:]) {
				data = data[:len(data)-i]
			}
			break
		}
	}

	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// ExtractDocxText returns the paragraph text of a WordprocessingML document.
func ExtractDocxText(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer archive.Close()

	var part *zip.File
	for _, file := range archive.File {
		if file.Name == docxBodyPart {
			part = file
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("open docx %s: missing %s", path, docxBodyPart)
	}

	reader, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open docx body %s: %w", path, err)
	}
	defer reader.Close()

	text, err := wordprocessingText(reader)
	if err != nil {
		return "", fmt.Errorf("parse docx %s: %w", path, err)
	}

	return text, nil
}

func wordprocessingText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		out    strings.Builder
		inText bool
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(el)
			}
		}
	}

	return strings.TrimSpace(out.String()), nil
}

// ExtractPDFText is a stub: it reports the file as present without text.
func ExtractPDFText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat pdf %s: %w", path, err)
	}

	return fmt.Sprintf("%s (%s, %d bytes)", domain.PDFStubText, filepath.Base(path), info.Size()), nil
}

func extract(path string) (string, error) {
	switch kindOf(path) {
	case kindText:
		return ReadText(path)
	case kindDocx:
		return ExtractDocxText(path)
	case kindPDF:
		return ExtractPDFText(path)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, filepath.Ext(path))
	}
}
