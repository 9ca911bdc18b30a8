package analysis

import (
	"context"
	"testing"
	"time"

	"quickmail_server/core/domain"
	"quickmail_server/core/service/extract"
	"quickmail_server/core/service/reply"
	"quickmail_server/core/service/textnorm"
	"quickmail_server/pkg/apperr"
)

// fakeClassifier returns scripted results, one per call, and records the
// inputs it was given.
type fakeClassifier struct {
	results []classifierStep
	calls   int

	lastNormalized string
	lastRaw        string
}

type classifierStep struct {
	result domain.ClassificationResult
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, normalizedText, rawText string) (domain.ClassificationResult, error) {
	idx := f.calls
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	f.calls++
	f.lastNormalized = normalizedText
	f.lastRaw = rawText
	step := f.results[idx]
	return step.result, step.err
}

// fakeCache is an in-memory ResultCache.
type fakeCache struct {
	entries map[string]domain.ClassificationResult
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]domain.ClassificationResult{}}
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	f.gets++
	result, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	*dest.(*domain.ClassificationResult) = result
	return true, nil
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.sets++
	f.entries[key] = value.(domain.ClassificationResult)
	return nil
}

func newTestService(t *testing.T, classifier *fakeClassifier, cache *fakeCache, cfg Config) *Service {
	t.Helper()
	resources, err := textnorm.LoadDefaultResources()
	if err != nil {
		t.Fatalf("LoadDefaultResources() error = %v", err)
	}
	synthesizer := reply.NewSynthesizer(0.5, reply.Templates{
		ProductiveConfident:   "PC",
		ProductiveUncertain:   "PU",
		UnproductiveConfident: "UC",
		UnproductiveUncertain: "UU",
	})
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
	}
	if cache == nil {
		return NewService(extract.NewExtractor(), textnorm.NewNormalizer(resources),
			classifier, synthesizer, nil, cfg)
	}
	return NewService(extract.NewExtractor(), textnorm.NewNormalizer(resources),
		classifier, synthesizer, cache, cfg)
}

// TestAnalyzeRoundTrip runs a plain body through the full pipeline.
func TestAnalyzeRoundTrip(t *testing.T) {
	classifier := &fakeClassifier{results: []classifierStep{
		{result: domain.ClassificationResult{Category: domain.CategoryProductive, Confidence: 0.9}},
	}}
	svc := newTestService(t, classifier, nil, Config{})

	record, err := svc.Analyze(context.Background(), domain.RawEmailInput{
		Sender:  "cliente@example.com",
		Subject: "Relatório",
		Body:    "Segue o relatório mensal em anexo.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if record.Category != domain.CategoryProductive {
		t.Errorf("category = %s, want %s", record.Category, domain.CategoryProductive)
	}
	if record.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", record.Confidence)
	}
	if record.SuggestedReply != "PC" {
		t.Errorf("suggested reply = %q, want confident productive template", record.SuggestedReply)
	}
	if record.NormalizedText != "seguir relatório mensal anexo" {
		t.Errorf("normalized text = %q", record.NormalizedText)
	}
	if record.Sender != "cliente@example.com" || record.Snippet != "Relatório" {
		t.Errorf("record identity fields = %q / %q", record.Sender, record.Snippet)
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if classifier.calls != 1 {
		t.Errorf("classifier calls = %d, want 1", classifier.calls)
	}
}

// TestAnalyzeAttachmentText verifies attachment text is appended to the body
// before normalization.
func TestAnalyzeAttachmentText(t *testing.T) {
	classifier := &fakeClassifier{results: []classifierStep{
		{result: domain.ClassificationResult{Category: domain.CategoryProductive, Confidence: 0.8}},
	}}
	svc := newTestService(t, classifier, nil, Config{})

	_, err := svc.Analyze(context.Background(), domain.RawEmailInput{
		Sender:  "cliente@example.com",
		Subject: "Contrato",
		Body:    "Segue o contrato.",
		Attachment: &domain.Attachment{
			MediaType: domain.MediaTypePlainText,
			Data:      []byte("Cláusula de pagamento mensal."),
		},
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if classifier.lastNormalized != "seguir contrato cláusula pagamento mensal" {
		t.Errorf("normalized input = %q", classifier.lastNormalized)
	}
	if classifier.lastRaw != "Assunto: Contrato\n\nSegue o contrato.\nCláusula de pagamento mensal." {
		t.Errorf("raw input = %q", classifier.lastRaw)
	}
}

// TestAnalyzeCorruptAttachmentAborts verifies an extraction failure aborts
// the pipeline before the classifier runs.
func TestAnalyzeCorruptAttachmentAborts(t *testing.T) {
	classifier := &fakeClassifier{results: []classifierStep{
		{result: domain.ClassificationResult{Category: domain.CategoryProductive, Confidence: 0.9}},
	}}
	svc := newTestService(t, classifier, nil, Config{})

	record, err := svc.Analyze(context.Background(), domain.RawEmailInput{
		Sender:  "cliente@example.com",
		Subject: "Anexo",
		Body:    "Segue em anexo.",
		Attachment: &domain.Attachment{
			MediaType: domain.MediaTypePDF,
			Data:      []byte("not a pdf"),
		},
	})

	if !apperr.HasCode(err, apperr.CodeCorruptDocument) {
		t.Fatalf("Analyze() error = %v, want code %s", err, apperr.CodeCorruptDocument)
	}
	if record != nil {
		t.Error("Analyze() returned a partial record on failure")
	}
	if classifier.calls != 0 {
		t.Errorf("classifier calls = %d, want 0", classifier.calls)
	}
}

// TestAnalyzeRetryPolicy tests the single-retry default and the configurable
// retry budget for classifier outages.
func TestAnalyzeRetryPolicy(t *testing.T) {
	unavailable := classifierStep{err: apperr.ClassifierUnavailable(context.DeadlineExceeded)}
	ok := classifierStep{result: domain.ClassificationResult{
		Category: domain.CategoryUnproductive, Confidence: 0.7,
	}}

	tests := []struct {
		name       string
		steps      []classifierStep
		maxRetries int
		wantCalls  int
		wantErr    bool
	}{
		{
			name:       "outage then success within default budget",
			steps:      []classifierStep{unavailable, ok},
			maxRetries: 1,
			wantCalls:  2,
		},
		{
			name:       "two outages exhaust default budget",
			steps:      []classifierStep{unavailable, unavailable, ok},
			maxRetries: 1,
			wantCalls:  2,
			wantErr:    true,
		},
		{
			name:       "two outages recover with larger budget",
			steps:      []classifierStep{unavailable, unavailable, ok},
			maxRetries: 2,
			wantCalls:  3,
		},
		{
			name: "invalid model output is never retried",
			steps: []classifierStep{
				{err: apperr.InvalidModelOutput("confidence 1.5 outside [0,1]")},
				ok,
			},
			maxRetries: 1,
			wantCalls:  1,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &fakeClassifier{results: tt.steps}
			svc := newTestService(t, classifier, nil, Config{MaxRetries: tt.maxRetries})

			_, err := svc.Analyze(context.Background(), domain.RawEmailInput{
				Sender:  "cliente@example.com",
				Subject: "Teste",
				Body:    "Preciso de uma atualização do pedido.",
			})

			if tt.wantErr && err == nil {
				t.Fatal("Analyze() error = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if classifier.calls != tt.wantCalls {
				t.Errorf("classifier calls = %d, want %d", classifier.calls, tt.wantCalls)
			}
		})
	}
}

// TestAnalyzeResultCache verifies identical normalized text hits the cache
// instead of calling the classifier again.
func TestAnalyzeResultCache(t *testing.T) {
	classifier := &fakeClassifier{results: []classifierStep{
		{result: domain.ClassificationResult{Category: domain.CategoryProductive, Confidence: 0.85}},
		{result: domain.ClassificationResult{Category: domain.CategoryUnproductive, Confidence: 0.1}},
	}}
	cache := newFakeCache()
	svc := newTestService(t, classifier, cache, Config{})

	input := domain.RawEmailInput{
		Sender:  "cliente@example.com",
		Subject: "Relatório",
		Body:    "Segue o relatório mensal em anexo.",
	}

	first, err := svc.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("first Analyze() error = %v", err)
	}
	second, err := svc.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("second Analyze() error = %v", err)
	}

	if classifier.calls != 1 {
		t.Errorf("classifier calls = %d, want 1 (second run should hit cache)", classifier.calls)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
	if second.Category != first.Category || second.Confidence != first.Confidence {
		t.Errorf("cached verdict diverged: %v vs %v", second, first)
	}
}

// TestAnalyzeContextCancelledDuringBackoff verifies cancellation during the
// retry wait surfaces as classifier unavailability.
func TestAnalyzeContextCancelledDuringBackoff(t *testing.T) {
	unavailable := classifierStep{err: apperr.ClassifierUnavailable(context.DeadlineExceeded)}
	classifier := &fakeClassifier{results: []classifierStep{unavailable, unavailable}}
	svc := newTestService(t, classifier, nil, Config{MaxRetries: 1, RetryDelay: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Analyze(ctx, domain.RawEmailInput{
		Sender:  "cliente@example.com",
		Subject: "Teste",
		Body:    "Preciso de ajuda.",
	})
	if !apperr.HasCode(err, apperr.CodeClassifierUnavailable) {
		t.Fatalf("Analyze() error = %v, want code %s", err, apperr.CodeClassifierUnavailable)
	}
	if classifier.calls != 1 {
		t.Errorf("classifier calls = %d, want 1", classifier.calls)
	}
}
