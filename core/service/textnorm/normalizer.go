// Package textnorm normalizes Portuguese text for classification:
// lowercase, tokenize, drop stopwords, lemmatize.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalizer turns raw text into a normalized token sequence. It is a pure
// function of its input and the injected resource bundle, and is safe for
// concurrent use.
type Normalizer struct {
	resources *Resources
}

// NewNormalizer creates a normalizer over the given resource bundle.
func NewNormalizer(resources *Resources) *Normalizer {
	return &Normalizer{resources: resources}
}

// Normalize lowercases, tokenizes, strips stopwords, and lemmatizes the
// text. Empty input yields an empty slice, never an error.
func (n *Normalizer) Normalize(text string) []string {
	if text == "" {
		return []string{}
	}

	lowered := strings.ToLower(text)

	// Split on anything that is not a letter; accented characters are
	// letters, so tokens like "relatório" survive intact.
	rawTokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := make([]string, 0, len(rawTokens))
	for _, token := range rawTokens {
		if n.resources.IsStopword(token) {
			continue
		}
		lemma := n.resources.Lemma(token)
		// A suffix rule can map a surviving token onto a stopword
		// ("tens" → "tem"), so the lemma is checked again.
		if n.resources.IsStopword(lemma) {
			continue
		}
		tokens = append(tokens, lemma)
	}

	return tokens
}

// NormalizeJoined returns the normalized tokens joined by single spaces,
// the form stored alongside analysis records and sent to the classifier.
func (n *Normalizer) NormalizeJoined(text string) string {
	return strings.Join(n.Normalize(text), " ")
}

// ResourceVersion returns the version of the bundle in use.
func (n *Normalizer) ResourceVersion() string {
	return n.resources.Version()
}
