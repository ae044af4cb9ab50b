package domain

import "strings"

// PDFStubText is returned in place of PDF text until a real extractor exists.
const PDFStubText = "[PDF text extraction is not available; only the file name and size are known]"

func IsPDFStub(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), PDFStubText)
}
