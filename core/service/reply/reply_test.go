package reply

import (
	"testing"

	"quickmail_server/core/domain"
)

// TestSuggest tests the 2×2 template table with the default threshold.
func TestSuggest(t *testing.T) {
	s := NewSynthesizer(0.5, Templates{
		ProductiveConfident:   "PC",
		ProductiveUncertain:   "PU",
		UnproductiveConfident: "UC",
		UnproductiveUncertain: "UU",
	})

	tests := []struct {
		name       string
		category   domain.Category
		confidence float64
		want       string
	}{
		{"productive confident", domain.CategoryProductive, 0.9, "PC"},
		{"productive uncertain", domain.CategoryProductive, 0.2, "PU"},
		{"unproductive confident", domain.CategoryUnproductive, 0.8, "UC"},
		{"unproductive uncertain", domain.CategoryUnproductive, 0.1, "UU"},
		{"confidence equal to threshold counts as confident", domain.CategoryProductive, 0.5, "PC"},
		{"just below threshold is uncertain", domain.CategoryProductive, 0.4999, "PU"},
		{"zero confidence", domain.CategoryUnproductive, 0.0, "UU"},
		{"full confidence", domain.CategoryUnproductive, 1.0, "UC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Suggest(tt.category, tt.confidence); got != tt.want {
				t.Errorf("Suggest(%s, %v) = %q, want %q", tt.category, tt.confidence, got, tt.want)
			}
		})
	}
}

// TestDefaultTemplates verifies that empty overrides fall back to the
// built-in Portuguese templates.
func TestDefaultTemplates(t *testing.T) {
	s := NewSynthesizer(0.5, Templates{})

	got := s.Suggest(domain.CategoryProductive, 0.9)
	if got != defaultProductiveConfident {
		t.Errorf("Suggest() = %q, want default productive confident template", got)
	}

	got = s.Suggest(domain.CategoryUnproductive, 0.1)
	if got != defaultUnproductiveUncertain {
		t.Errorf("Suggest() = %q, want default unproductive uncertain template", got)
	}
}

// TestThresholdFallback verifies that out-of-range thresholds reset to 0.5.
func TestThresholdFallback(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"zero falls back", 0, 0.5},
		{"negative falls back", -1, 0.5},
		{"above one falls back", 1.5, 0.5},
		{"valid value kept", 0.7, 0.7},
		{"one is valid", 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.threshold, Templates{})
			if got := s.Threshold(); got != tt.want {
				t.Errorf("Threshold() = %v, want %v", got, tt.want)
			}
		})
	}
}
