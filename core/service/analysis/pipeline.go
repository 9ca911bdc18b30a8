// Package analysis implements the email analysis pipeline orchestrator.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"quickmail_server/core/domain"
	"quickmail_server/core/port/out"
	"quickmail_server/core/service/extract"
	"quickmail_server/core/service/reply"
	"quickmail_server/core/service/textnorm"
	"quickmail_server/pkg/apperr"
	"quickmail_server/pkg/logger"
)

// =============================================================================
// Pipeline States
// =============================================================================

// State is a stage of the linear analysis pipeline.
type State string

const (
	StateReceived       State = "received"
	StateExtracted      State = "extracted"
	StateNormalized     State = "normalized"
	StateClassified     State = "classified"
	StateReplySuggested State = "reply_suggested"
	StateComplete       State = "complete"
)

// =============================================================================
// Service
// =============================================================================

// Config holds orchestrator tuning knobs.
type Config struct {
	// MaxRetries is the number of additional classifier attempts after the
	// first one fails with CLASSIFIER_UNAVAILABLE. Other errors never retry.
	MaxRetries int
	RetryDelay time.Duration
	CacheTTL   time.Duration
}

// Service runs the analysis pipeline: extract → normalize → classify →
// suggest reply. It holds no per-invocation state and is safe for
// concurrent use.
type Service struct {
	extractor   *extract.Extractor
	normalizer  *textnorm.Normalizer
	classifier  out.Classifier
	synthesizer *reply.Synthesizer
	cache       out.ResultCache // optional, nil disables caching
	config      Config
}

// NewService creates the pipeline orchestrator. cache may be nil.
func NewService(
	extractor *extract.Extractor,
	normalizer *textnorm.Normalizer,
	classifier out.Classifier,
	synthesizer *reply.Synthesizer,
	cache out.ResultCache,
	config Config,
) *Service {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = time.Hour
	}
	return &Service{
		extractor:   extractor,
		normalizer:  normalizer,
		classifier:  classifier,
		synthesizer: synthesizer,
		cache:       cache,
		config:      config,
	}
}

// Analyze runs one email through the pipeline and returns the completed
// record. Any stage failure aborts with the originating tagged error; no
// partial record is produced.
func (s *Service) Analyze(ctx context.Context, input domain.RawEmailInput) (*domain.AnalysisRecord, error) {
	log := logger.WithField("sender", input.Sender)
	log.Debug("Pipeline state: %s", StateReceived)

	// Received → Extracted. A missing attachment is not an error.
	extracted := ""
	if input.Attachment != nil {
		text, err := s.extractor.Extract(*input.Attachment)
		if err != nil {
			return nil, err
		}
		extracted = text
	}
	log.Debug("Pipeline state: %s (attachment chars: %d)", StateExtracted, len(extracted))

	// Extracted → Normalized. Attachment text is appended after the body,
	// separated by a single newline.
	classifySource := input.Body
	if extracted != "" {
		classifySource = input.Body + "\n" + extracted
	}
	normalized := s.normalizer.NormalizeJoined(classifySource)
	rawText := "Assunto: " + input.Subject + "\n\n" + classifySource
	log.Debug("Pipeline state: %s (tokens chars: %d)", StateNormalized, len(normalized))

	// Normalized → Classified.
	result, err := s.classify(ctx, normalized, rawText)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]any{
		"category":   result.Category,
		"confidence": result.Confidence,
	}).Debug("Pipeline state: %s", StateClassified)

	// Classified → ReplySuggested.
	suggested := s.synthesizer.Suggest(result.Category, result.Confidence)
	log.Debug("Pipeline state: %s", StateReplySuggested)

	// ReplySuggested → Complete.
	record := &domain.AnalysisRecord{
		Sender:         input.Sender,
		Snippet:        input.Subject,
		Content:        input.Body,
		Category:       result.Category,
		Confidence:     result.Confidence,
		SuggestedReply: suggested,
		NormalizedText: normalized,
		CreatedAt:      time.Now().UTC(),
	}
	log.Debug("Pipeline state: %s", StateComplete)

	return record, nil
}

// =============================================================================
// Classification with cache and retry
// =============================================================================

// classify consults the result cache, then calls the classifier with the
// orchestrator's retry policy: only CLASSIFIER_UNAVAILABLE is retried, up to
// MaxRetries extra attempts with linear backoff.
func (s *Service) classify(ctx context.Context, normalized, rawText string) (domain.ClassificationResult, error) {
	key := cacheKey(normalized)

	if s.cache != nil {
		var cached domain.ClassificationResult
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.WithError(err).Warn("Result cache lookup failed")
		} else if hit && cached.Category.IsValid() {
			return cached, nil
		}
	}

	var result domain.ClassificationResult
	var err error
	for attempt := 0; ; attempt++ {
		result, err = s.classifier.Classify(ctx, normalized, rawText)
		if err == nil {
			break
		}
		if !apperr.HasCode(err, apperr.CodeClassifierUnavailable) || attempt >= s.config.MaxRetries {
			return domain.ClassificationResult{}, err
		}

		logger.WithError(err).Warn("Classifier unavailable, retrying (attempt %d/%d)",
			attempt+1, s.config.MaxRetries)
		select {
		case <-ctx.Done():
			return domain.ClassificationResult{}, apperr.ClassifierUnavailable(ctx.Err())
		case <-time.After(s.config.RetryDelay * time.Duration(attempt+1)):
		}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, result, s.config.CacheTTL); err != nil {
			logger.WithError(err).Warn("Result cache store failed")
		}
	}

	return result, nil
}

func cacheKey(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return "classify:" + hex.EncodeToString(sum[:])
}
