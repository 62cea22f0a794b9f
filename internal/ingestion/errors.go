package ingestion

import "fmt"

// UnsupportedTypeError is returned for documents that are not plain text, PDF or DOCX.
type UnsupportedTypeError struct {
	Filename    string
	ContentType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type (filename %q, content type %q): expected text, pdf or docx",
		e.Filename, e.ContentType)
}

// ExtractionError is returned when a document of a supported type cannot be read.
type ExtractionError struct {
	Format  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s extraction: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s extraction: %s", e.Format, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
