package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// Enrichment is the structured assessment of a repair issue.
type Enrichment struct {
	IdentifiedProblem   string                `json:"identifiedProblem"`
	RepairSolution      string                `json:"repairSolution"`
	EstimatedTimeHours  float64               `json:"estimatedTimeHours"`
	DifficultyLevel     domain.Difficulty     `json:"difficultyLevel"`
	RequiredItems       []domain.RequiredItem `json:"requiredItems"`
	TotalQuotedPrice    float64               `json:"totalEstimatedCost"`
	QuestionsForUser    []string              `json:"questionsForUser"`
	ContractorChecklist []string              `json:"contractorChecklist"`
}

// Enricher turns a raw issue report into a structured assessment.
type Enricher interface {
	Enrich(ctx context.Context, title, description string) (Enrichment, error)
}

const enrichSystemPrompt = "You are a professional contractor and home repair expert. Respond only with valid JSON."

const enrichPromptTemplate = `You are an expert home repair and maintenance contractor with 20+ years of experience. Analyze the following customer issue and provide a comprehensive assessment.

Issue Title: %s
Issue Description: %s

Please provide a detailed analysis in JSON format with the following structure:

{
  "identifiedProblem": "Clear, specific identification of the problem",
  "repairSolution": "Step-by-step solution with professional recommendations",
  "estimatedTimeHours": 2.5,
  "difficultyLevel": "Easy|Medium|Hard|Expert",
  "requiredItems": [
    {"name": "Item name", "estimatedCost": 25.99, "quantity": 2, "unit": "pieces"}
  ],
  "totalEstimatedCost": 150.99,
  "questionsForUser": ["What specific questions would help clarify the scope?"],
  "contractorChecklist": ["What should the contractor verify on-site?"]
}

Guidelines:
- Be realistic with cost estimates (use current market prices)
- Include safety considerations in contractor checklist
- Ask clarifying questions that would affect scope/cost
- Difficulty levels:
  - Easy: Simple DIY, basic tools, low risk
  - Medium: Some experience needed, moderate tools, moderate risk
  - Hard: Skilled trade knowledge required, specialized tools
  - Expert: Licensed professional required, high risk/complexity

Provide only valid JSON response, no additional text.`

// LLMEnricher implements Enricher on top of any TextGenerator.
type LLMEnricher struct {
	gen TextGenerator
}

func NewLLMEnricher(gen TextGenerator) *LLMEnricher {
	return &LLMEnricher{gen: gen}
}

// Enrich prompts the model and parses its JSON reply. Replies wrapped in
// markdown code fences are unwrapped before parsing.
func (e *LLMEnricher) Enrich(ctx context.Context, title, description string) (Enrichment, error) {
	if title == "" {
		title = "Not provided"
	}
	prompt := fmt.Sprintf(enrichPromptTemplate, title, description)

	text, err := e.gen.GenerateText(ctx, enrichSystemPrompt, prompt)
	if err != nil {
		return Enrichment{}, fmt.Errorf("enrichment generation: %w", err)
	}
	return ParseEnrichment(text)
}

// ParseEnrichment decodes and validates a model reply.
func ParseEnrichment(text string) (Enrichment, error) {
	var result Enrichment
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &result); err != nil {
		return Enrichment{}, fmt.Errorf("enrichment parse: %w", err)
	}
	if result.IdentifiedProblem == "" || result.RepairSolution == "" {
		return Enrichment{}, fmt.Errorf("enrichment missing required fields")
	}
	switch result.DifficultyLevel {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard, domain.DifficultyExpert:
	default:
		return Enrichment{}, fmt.Errorf("enrichment invalid difficulty %q", result.DifficultyLevel)
	}
	if result.TotalQuotedPrice == 0 && len(result.RequiredItems) > 0 {
		for _, item := range result.RequiredItems {
			qty := item.Quantity
			if qty <= 0 {
				qty = 1
			}
			result.TotalQuotedPrice += item.EstimatedCost * float64(qty)
		}
	}
	return result, nil
}

// stripCodeFence unwraps ```json ... ``` style fences some models emit
// despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
