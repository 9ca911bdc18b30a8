// Package domain holds the core types of the email analysis pipeline.
package domain

import "time"

// =============================================================================
// Attachment
// =============================================================================

// MediaType is the declared type of an email attachment. The set is closed:
// extraction dispatches on the tag, never on content sniffing.
type MediaType string

const (
	MediaTypePDF       MediaType = "application/pdf"
	MediaTypePlainText MediaType = "text/plain"
)

// IsValid reports whether the media type is one of the supported kinds.
func (m MediaType) IsValid() bool {
	return m == MediaTypePDF || m == MediaTypePlainText
}

// Attachment is a raw attachment blob with its declared media type.
type Attachment struct {
	MediaType MediaType
	Data      []byte
}

// =============================================================================
// Email input
// =============================================================================

// RawEmailInput is the immutable input to a single pipeline invocation.
type RawEmailInput struct {
	Sender     string
	Subject    string
	Body       string
	Attachment *Attachment // nil when the email has no attachment
}

// =============================================================================
// Classification
// =============================================================================

// Category is one of the two business-relevance classes.
type Category string

const (
	CategoryProductive   Category = "Produtivo"
	CategoryUnproductive Category = "Improdutivo"
)

// IsValid reports whether the category is one of the two recognized classes.
func (c Category) IsValid() bool {
	return c == CategoryProductive || c == CategoryUnproductive
}

// ClassificationResult is the classifier's verdict for one invocation.
type ClassificationResult struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// =============================================================================
// Analysis record
// =============================================================================

// AnalysisRecord is the completed pipeline output handed to persistence.
type AnalysisRecord struct {
	ID             string    `json:"id,omitempty"`
	Sender         string    `json:"email"`
	Snippet        string    `json:"snippet"`
	Content        string    `json:"content"`
	Category       Category  `json:"category"`
	Confidence     float64   `json:"confidence"`
	SuggestedReply string    `json:"suggested_reply"`
	NormalizedText string    `json:"normalized_text"`
	CreatedAt      time.Time `json:"created_at"`
}
