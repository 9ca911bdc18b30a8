package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"quickmail_server/core/domain"
	"quickmail_server/pkg/apperr"
)

const maxPromptChars = 4000

const classifySystemPrompt = `Você é um assistente especializado em classificar emails corporativos.
Sua tarefa é classificar emails como Produtivo ou Improdutivo baseado no conteúdo e intenção.

Produtivo: emails com perguntas específicas, solicitações claras, interesse genuíno em produtos/serviços, propostas de negócio, ou que requerem ação específica.

Improdutivo: emails genéricos, spam, promoções não solicitadas, conteúdo vago sem propósito claro, ou que não requerem resposta específica.

Responda apenas com este JSON exato:
{
  "category": "Produtivo" ou "Improdutivo",
  "confidence": 0.0-1.0
}`

// classifyResponse is the JSON contract expected from the model.
type classifyResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Classify sends the email text to the model and returns the verdict.
// Transport failures map to CLASSIFIER_UNAVAILABLE; out-of-contract model
// output maps to INVALID_MODEL_OUTPUT.
func (c *Client) Classify(ctx context.Context, normalizedText, rawText string) (domain.ClassificationResult, error) {
	userPrompt := fmt.Sprintf("Texto do email:\n%s\n\nTexto normalizado:\n%s",
		truncate(rawText, maxPromptChars), truncate(normalizedText, maxPromptChars))

	content, err := c.completeWithSystem(ctx, classifySystemPrompt, userPrompt)
	if err != nil {
		return domain.ClassificationResult{}, apperr.ClassifierUnavailable(err)
	}

	return parseClassification(content)
}

// parseClassification validates the model response against the contract.
func parseClassification(content string) (domain.ClassificationResult, error) {
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if content == "" {
		return domain.ClassificationResult{}, apperr.InvalidModelOutput("empty response")
	}

	var resp classifyResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return domain.ClassificationResult{}, apperr.InvalidModelOutput("response is not valid JSON")
	}

	category := domain.Category(strings.TrimSpace(resp.Category))
	if !category.IsValid() {
		return domain.ClassificationResult{}, apperr.InvalidModelOutput(
			fmt.Sprintf("unknown category %q", resp.Category))
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return domain.ClassificationResult{}, apperr.InvalidModelOutput(
			fmt.Sprintf("confidence %v outside [0,1]", resp.Confidence))
	}

	return domain.ClassificationResult{
		Category:   category,
		Confidence: resp.Confidence,
	}, nil
}

func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	// Back up to a rune boundary so an accented character is never split.
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
