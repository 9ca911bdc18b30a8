// Package extract converts raw email attachments into plain text.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"quickmail_server/core/domain"
	"quickmail_server/pkg/apperr"
)

// extractFunc converts an attachment blob into plain text.
type extractFunc func(data []byte) (string, error)

// Extractor dispatches attachment blobs to the extraction strategy for their
// declared media type. The strategy set is closed; unknown media types fail
// without inspecting the bytes.
type Extractor struct {
	strategies map[domain.MediaType]extractFunc
}

// NewExtractor creates an extractor with the supported strategies registered.
func NewExtractor() *Extractor {
	return &Extractor{
		strategies: map[domain.MediaType]extractFunc{
			domain.MediaTypePlainText: extractPlainText,
			domain.MediaTypePDF:       extractPDF,
		},
	}
}

// Extract returns the plain text of the attachment. An attachment that
// parses but carries no text yields "" with a nil error.
func (e *Extractor) Extract(att domain.Attachment) (string, error) {
	fn, ok := e.strategies[att.MediaType]
	if !ok {
		return "", apperr.UnsupportedMediaType(string(att.MediaType))
	}
	return fn(att.Data)
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", apperr.DecodingError(fmt.Errorf("invalid UTF-8 at byte offset %d", validPrefixLen(data)))
	}
	return string(data), nil
}

func validPrefixLen(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf library panics on some malformed inputs instead of returning
	// an error, so the corrupt-document path must cover panics too.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = apperr.CorruptDocument(fmt.Errorf("pdf parse panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.CorruptDocument(err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A page without an extractable text layer is not an error;
			// scanned PDFs legitimately yield nothing.
			continue
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}
