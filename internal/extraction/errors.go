package extraction

import "fmt"

// UnsupportedFormatError marks a file whose extension is outside the closed
// format set. It degrades the document to a failed record, never the job.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %s", e.Path)
}

// CorruptDocumentError marks input bytes that could not be parsed as the
// detected format.
type CorruptDocumentError struct {
	Format  string
	Message string
	Cause   error
}

func (e *CorruptDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt %s document: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("corrupt %s document: %s", e.Format, e.Message)
}

func (e *CorruptDocumentError) Unwrap() error {
	return e.Cause
}
