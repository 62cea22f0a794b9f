package ingestion

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Document formats understood by ExtractText.
const (
	FormatText = "text"
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var pdfMagic = []byte("%PDF")

// ExtractText returns the cleaned plain text of an uploaded document. The format is taken from the
// content type, then the file extension, then the PDF magic number.
func ExtractText(filename, contentType string, data []byte) (string, error) {
	format, err := DetectFormat(filename, contentType, data)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	default:
		if !utf8.Valid(data) {
			return "", &ExtractionError{Format: FormatText, Message: "text is not valid UTF-8"}
		}
		text = string(data)
	}
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

// DetectFormat resolves the document format without parsing it.
func DetectFormat(filename, contentType string, data []byte) (string, error) {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mediaType {
			case mimePDF:
				return FormatPDF, nil
			case mimeDOCX:
				return FormatDOCX, nil
			case mimeText, "text/markdown":
				return FormatText, nil
			}
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt", ".md", ".text":
		return FormatText, nil
	}

	if bytes.HasPrefix(data, pdfMagic) {
		return FormatPDF, nil
	}
	// Generic upload types with readable bodies are accepted as text.
	if (contentType == "" || strings.HasPrefix(contentType, "application/octet-stream")) &&
		filepath.Ext(filename) == "" && utf8.Valid(data) {
		return FormatText, nil
	}

	return "", &UnsupportedTypeError{Filename: filename, ContentType: contentType}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatPDF, Message: "failed to read pdf", Cause: err}
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Format: FormatPDF, Message: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Message: "failed to parse docx", Cause: err}
	}
	defer doc.Close()

	return stripXML(doc.Editable().GetContent()), nil
}

// stripXML reduces WordprocessingML to text, breaking lines at paragraph ends.
func stripXML(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", " ")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")

	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return unescapeXML(b.String())
}

var xmlEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}
