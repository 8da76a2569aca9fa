package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

const sampleEnrichmentJSON = `{
  "identifiedProblem": "Worn faucet cartridge",
  "repairSolution": "Shut off supply, replace cartridge, reseat handle",
  "estimatedTimeHours": 1.5,
  "difficultyLevel": "Easy",
  "requiredItems": [
    {"name": "Cartridge", "estimatedCost": 25.5, "quantity": 2, "unit": "pieces"},
    {"name": "Plumber's grease", "estimatedCost": 8}
  ],
  "totalEstimatedCost": 120,
  "questionsForUser": ["Which handle leaks?"],
  "contractorChecklist": ["Check supply valves"]
}`

func TestParseEnrichment(t *testing.T) {
	got, err := ParseEnrichment(sampleEnrichmentJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.IdentifiedProblem != "Worn faucet cartridge" || got.DifficultyLevel != domain.DifficultyEasy {
		t.Fatalf("unexpected result %+v", got)
	}
	if got.TotalQuotedPrice != 120 || got.EstimatedTimeHours != 1.5 {
		t.Fatalf("unexpected numbers %+v", got)
	}
	if len(got.RequiredItems) != 2 || got.RequiredItems[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", got.RequiredItems)
	}
}

func TestParseEnrichmentStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + sampleEnrichmentJSON + "\n```"
	got, err := ParseEnrichment(fenced)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if got.IdentifiedProblem == "" {
		t.Fatalf("unexpected result %+v", got)
	}

	bare := "```\n" + sampleEnrichmentJSON + "\n```"
	if _, err := ParseEnrichment(bare); err != nil {
		t.Fatalf("parse bare fence: %v", err)
	}
}

func TestParseEnrichmentDerivesCostFromItems(t *testing.T) {
	got, err := ParseEnrichment(`{
  "identifiedProblem": "p",
  "repairSolution": "s",
  "difficultyLevel": "Medium",
  "requiredItems": [
    {"name": "a", "estimatedCost": 10, "quantity": 3},
    {"name": "b", "estimatedCost": 5}
  ]
}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// 10*3 + 5*1, missing quantity counts as one
	if got.TotalQuotedPrice != 35 {
		t.Fatalf("expected derived cost 35, got %v", got.TotalQuotedPrice)
	}
}

func TestParseEnrichmentRejectsBadReplies(t *testing.T) {
	cases := map[string]string{
		"not json":         "the faucet is broken",
		"missing problem":  `{"repairSolution": "s", "difficultyLevel": "Easy"}`,
		"missing solution": `{"identifiedProblem": "p", "difficultyLevel": "Easy"}`,
		"bad difficulty":   `{"identifiedProblem": "p", "repairSolution": "s", "difficultyLevel": "Trivial"}`,
	}
	for name, text := range cases {
		if _, err := ParseEnrichment(text); err == nil {
			t.Errorf("%s: expected parse failure", name)
		}
	}
}

type stubGenerator struct {
	reply string
	err   error

	system string
	prompt string
}

func (s *stubGenerator) GenerateText(_ context.Context, system, prompt string) (string, error) {
	s.system = system
	s.prompt = prompt
	return s.reply, s.err
}

func TestLLMEnricherPromptsAndParses(t *testing.T) {
	gen := &stubGenerator{reply: sampleEnrichmentJSON}
	e := NewLLMEnricher(gen)

	got, err := e.Enrich(context.Background(), "Leaky faucet", "drips under the sink")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if got.IdentifiedProblem != "Worn faucet cartridge" {
		t.Fatalf("unexpected result %+v", got)
	}
	if !strings.Contains(gen.prompt, "Issue Title: Leaky faucet") ||
		!strings.Contains(gen.prompt, "drips under the sink") {
		t.Fatalf("prompt missing issue details: %q", gen.prompt)
	}
	if gen.system == "" {
		t.Fatal("expected system prompt")
	}
}

func TestLLMEnricherBlankTitle(t *testing.T) {
	gen := &stubGenerator{reply: sampleEnrichmentJSON}
	e := NewLLMEnricher(gen)

	if _, err := e.Enrich(context.Background(), "", "no heat upstairs"); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if !strings.Contains(gen.prompt, "Issue Title: Not provided") {
		t.Fatalf("expected placeholder title in prompt: %q", gen.prompt)
	}
}

func TestLLMEnricherGenerationError(t *testing.T) {
	genErr := errors.New("model unavailable")
	e := NewLLMEnricher(&stubGenerator{err: genErr})

	if _, err := e.Enrich(context.Background(), "t", "d"); !errors.Is(err, genErr) {
		t.Fatalf("expected wrapped generation error, got %v", err)
	}
}
