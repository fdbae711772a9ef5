package parsing

import "fmt"

// EmptyInputError is returned when the document text is missing or has no
// usable line. Extraction is not attempted.
type EmptyInputError struct {
	Reason string
}

func (e *EmptyInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("empty input: %s", e.Reason)
	}
	return "empty input: document has no usable text"
}

// ParserServiceError represents a failure of the remote structured parser:
// a non-success status, an unusable body, or a transport fault.
type ParserServiceError struct {
	Message string
	Cause   error
}

func (e *ParserServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parser service error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parser service error: %s", e.Message)
}

func (e *ParserServiceError) Unwrap() error {
	return e.Cause
}
