// Package compose assembles the grounded generation prompt and produces
// the final persona-styled answer.
package compose

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/domain"
)

// Markdown section headers the generation model is instructed to emit.
// Exported so transport tests and response validation agree on them.
const (
	SectionConcept  = "### 💡 The Core Concept"
	SectionSteps    = "### 👣 Step-by-Step Guide"
	SectionTakeaway = "### 🎯 Key Takeaway"
)

const defaultLocale = "en-IN"

// personaStyles maps a lowercase persona name to its style block.
// Unrecognized personas get no style block (plain assistant voice).
var personaStyles = map[string]string{
	"naval": `STYLE: Naval Ravikant.
- Be concise, direct, and philosophical.
- Focus on wealth creation (assets) vs status games.
- "Wealth is assets that earn while you sleep."
- Explain things simply but profoundly.
- AVOID jargon unless necessary.`,

	"ray": `STYLE: Ray Dalio.
- Think in 'Principles'.
- View the economy as a machine.
- Be radically transparent and data-driven.
- "Pain + Reflection = Progress".
- Break down complex concepts into cause-and-effect steps.`,

	"buffett": `STYLE: Warren Buffett.
- Use folksy wisdom and simple analogies (e.g., hamburgers, baseball).
- Focus on long-term value and patience.
- "Rule No. 1: Never lose money."
- Speak like a wise, patient grandfather explaining to a child.`,
}

// Service assembles prompts and delegates answer generation.
type Service struct {
	gen    Generator
	locale string
	logger *zap.Logger
}

// New creates a compose service.
func New(gen Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, locale: defaultLocale, logger: logger}
}

// WithDefaultLocale overrides the locale used when a request carries none.
func (s *Service) WithDefaultLocale(locale string) *Service {
	if locale != "" {
		s.locale = locale
	}
	return s
}

// Compose builds the system instruction and grounded user turn, then asks
// the generation model for the final answer. question is the rewritten
// standalone query; original is shown alongside it for disambiguation.
// Generation failure or empty output yields an empty answer, never an
// error: a transient outage must not crash the request.
func (s *Service) Compose(
	ctx context.Context,
	question, original string,
	passages []domain.ScoredPassage,
	persona, locale string,
) string {
	system := s.systemInstruction(persona, locale)
	user := fmt.Sprintf(
		"CONTEXT:\n%s\n\nUSER QUESTION:\n%s (Original: %s)",
		contextBlock(passages), question, original,
	)

	result, err := s.gen.Generate(ctx, system, user)
	if err != nil {
		s.logger.Warn("Answer generation failed, returning empty answer", zap.Error(err))
		return ""
	}
	return result.Text
}

// contextBlock concatenates the passages with labeled source headers, in
// rank order, separated by blank lines.
func contextBlock(passages []domain.ScoredPassage) string {
	blocks := make([]string, 0, len(passages))
	for _, p := range passages {
		title := p.Title
		if title == "" {
			title = "Unknown"
		}
		section := p.Section
		if section == "" {
			section = "General"
		}
		blocks = append(blocks, fmt.Sprintf(
			"--- Source: %s (Section: %s) ---\n%s", title, section, p.Text,
		))
	}
	return strings.Join(blocks, "\n\n")
}

func (s *Service) systemInstruction(persona, locale string) string {
	if locale == "" {
		locale = s.locale
	}
	style := personaStyles[strings.ToLower(persona)]

	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful and responsible financial education assistant for users in %s.\n", locale)

	if style != "" {
		b.WriteString("\n")
		b.WriteString(style)
		b.WriteString("\n")
	}

	b.WriteString(`
STRICT GUARDRAILS:
1. DO NOT give personalized financial advice.
2. DO NOT recommend specific stocks or crypto.
3. DO NOT promise specific returns.
4. Suggest consulting a professional for specifics.

INSTRUCTIONS:
1. **FORMATTING IS CRITICAL**: Output your answer in the following STRICT Markdown format:

   ` + SectionConcept + `
   (One simple sentence explaining the main idea)

   ` + SectionSteps + `
   1. **Step 1**: ...
   2. **Step 2**: ...
   (Keep steps simple, like teaching a 5th grader)

   ` + SectionTakeaway + `
   (A single bold sentence summarizing the advice)

2. **SIMPLICITY**: Avoid jargon. Use emojis occasionally to make it friendly.
3. **THINK STEP-BY-STEP**: Analyze the user's intent first.
4. Use the retrieved CONTEXT to formulate your answer.
5. Prioritize Indian instruments (SIP, PPF, etc.) if locale is India.
`)

	return b.String()
}
