// Package reply maps a classification verdict to a suggested reply.
package reply

import (
	"quickmail_server/core/domain"
)

// Default templates, one per (category, confidence band) combination.
const (
	defaultProductiveConfident = "Obrigado pelo seu email! Analisaremos sua solicitação e " +
		"retornaremos em breve com mais informações. Estamos à disposição para esclarecer qualquer dúvida."
	defaultProductiveUncertain = "Prezado(a), recebemos sua mensagem e agradecemos o interesse. " +
		"Nossa equipe fará a análise necessária e entrará em contato em breve."
	defaultUnproductiveConfident = "Agradecemos seu contato. Para melhor atendê-lo, solicitamos " +
		"que forneça mais detalhes específicos sobre sua necessidade."
	defaultUnproductiveUncertain = "Recebemos sua mensagem. Para oferecer a melhor assistência, " +
		"precisamos de informações mais detalhadas sobre sua solicitação."
)

// Templates holds the four reply templates. Empty fields fall back to the
// defaults at construction time.
type Templates struct {
	ProductiveConfident   string
	ProductiveUncertain   string
	UnproductiveConfident string
	UnproductiveUncertain string
}

// Synthesizer selects a reply template from category and confidence. It is a
// pure function over a fixed 2×2 decision table: the confidence threshold
// separates the confident from the uncertain framing.
type Synthesizer struct {
	threshold float64
	templates Templates
}

// NewSynthesizer creates a synthesizer with the given threshold and template
// overrides. A threshold outside (0,1] falls back to 0.5.
func NewSynthesizer(threshold float64, templates Templates) *Synthesizer {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.5
	}
	if templates.ProductiveConfident == "" {
		templates.ProductiveConfident = defaultProductiveConfident
	}
	if templates.ProductiveUncertain == "" {
		templates.ProductiveUncertain = defaultProductiveUncertain
	}
	if templates.UnproductiveConfident == "" {
		templates.UnproductiveConfident = defaultUnproductiveConfident
	}
	if templates.UnproductiveUncertain == "" {
		templates.UnproductiveUncertain = defaultUnproductiveUncertain
	}
	return &Synthesizer{threshold: threshold, templates: templates}
}

// Suggest returns the reply template for the verdict.
func (s *Synthesizer) Suggest(category domain.Category, confidence float64) string {
	confident := confidence >= s.threshold

	switch {
	case category == domain.CategoryProductive && confident:
		return s.templates.ProductiveConfident
	case category == domain.CategoryProductive:
		return s.templates.ProductiveUncertain
	case confident:
		return s.templates.UnproductiveConfident
	default:
		return s.templates.UnproductiveUncertain
	}
}

// Threshold returns the configured confidence cutoff.
func (s *Synthesizer) Threshold() float64 {
	return s.threshold
}
