package extract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies extraction failures.
type ErrorKind string

const (
	KindInvalidPageNumber ErrorKind = "invalid_page_number"
	KindDocumentDecode    ErrorKind = "document_decode"
	KindImageDecode       ErrorKind = "image_decode"
	KindImageDescription  ErrorKind = "image_description"
)

// Sentinels for errors.Is. An image decode failure also matches
// ErrDocumentDecode: it is terminal for the page just like a broken document.
var (
	ErrInvalidPageNumber = errors.New("invalid page number")
	ErrDocumentDecode    = errors.New("document decode error")
	ErrImageDecode       = errors.New("image decode error")
	ErrImageDescription  = errors.New("image description error")
)

// ExtractionError is returned by every failing PageExtractor call.
type ExtractionError struct {
	Kind    ErrorKind
	Page    int
	ImageID string
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("[%s] page %d", e.Kind, e.Page)
	if e.ImageID != "" {
		msg += " image " + e.ImageID
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	switch target {
	case ErrInvalidPageNumber:
		return e.Kind == KindInvalidPageNumber
	case ErrDocumentDecode:
		return e.Kind == KindDocumentDecode || e.Kind == KindImageDecode
	case ErrImageDecode:
		return e.Kind == KindImageDecode
	case ErrImageDescription:
		return e.Kind == KindImageDescription
	}
	return false
}

func invalidPage(page, total int) *ExtractionError {
	return &ExtractionError{
		Kind:    KindInvalidPageNumber,
		Page:    page,
		Message: fmt.Sprintf("page must be between 1 and %d", total),
	}
}

func documentDecodeError(page int, message string, err error) *ExtractionError {
	return &ExtractionError{Kind: KindDocumentDecode, Page: page, Message: message, Err: err}
}

func imageDecodeError(page int, imageID, message string, err error) *ExtractionError {
	return &ExtractionError{Kind: KindImageDecode, Page: page, ImageID: imageID, Message: message, Err: err}
}

func imageDescriptionError(page int, imageID, message string, err error) *ExtractionError {
	return &ExtractionError{Kind: KindImageDescription, Page: page, ImageID: imageID, Message: message, Err: err}
}

// KindOf reports the ErrorKind of err, or "" when err is not an extraction error.
func KindOf(err error) ErrorKind {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}
