package extract

import (
	"errors"
	"testing"

	"quickmail_server/core/domain"
	"quickmail_server/pkg/apperr"
)

// TestExtractPlainText tests the text/plain strategy.
func TestExtractPlainText(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name     string
		data     []byte
		want     string
		wantCode string
	}{
		{
			name: "valid UTF-8 passes through byte-exact",
			data: []byte("Segue o relatório mensal em anexo.\n"),
			want: "Segue o relatório mensal em anexo.\n",
		},
		{
			name: "empty file yields empty text without error",
			data: []byte{},
			want: "",
		},
		{
			name: "accents and emoji survive",
			data: []byte("ação, reunião, 👍"),
			want: "ação, reunião, 👍",
		},
		{
			name:     "invalid UTF-8 fails with decoding error",
			data:     []byte{0x53, 0x65, 0xff, 0xfe},
			wantCode: apperr.CodeDecodingError,
		},
		{
			name:     "truncated multibyte sequence fails",
			data:     []byte{0xc3},
			wantCode: apperr.CodeDecodingError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(domain.Attachment{
				MediaType: domain.MediaTypePlainText,
				Data:      tt.data,
			})

			if tt.wantCode != "" {
				if !apperr.HasCode(err, tt.wantCode) {
					t.Fatalf("Extract() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExtractUnsupportedMediaType verifies the strategy set is closed.
func TestExtractUnsupportedMediaType(t *testing.T) {
	e := NewExtractor()

	for _, mediaType := range []string{"image/png", "application/msword", ""} {
		_, err := e.Extract(domain.Attachment{
			MediaType: domain.MediaType(mediaType),
			Data:      []byte("irrelevant"),
		})
		if !apperr.HasCode(err, apperr.CodeUnsupportedMediaType) {
			t.Errorf("Extract(%q) error = %v, want code %s",
				mediaType, err, apperr.CodeUnsupportedMediaType)
		}
	}
}

// TestExtractCorruptPDF verifies that malformed PDF bytes map to the corrupt
// document error, whether the parser errors or panics.
func TestExtractCorruptPDF(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name string
		data []byte
	}{
		{"not a pdf at all", []byte("this is definitely not a pdf")},
		{"truncated header", []byte("%PDF-1.4")},
		{"empty file", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(domain.Attachment{
				MediaType: domain.MediaTypePDF,
				Data:      tt.data,
			})
			if !apperr.HasCode(err, apperr.CodeCorruptDocument) {
				t.Errorf("Extract() error = %v, want code %s", err, apperr.CodeCorruptDocument)
			}

			var appErr *apperr.AppError
			if errors.As(err, &appErr) && appErr.Status != 422 {
				t.Errorf("Extract() status = %d, want 422", appErr.Status)
			}
		})
	}
}
