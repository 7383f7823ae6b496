// Package interview runs mock technical and HR interview rounds through a
// text generation model.
package interview

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/ai"
)

// Round names an interview round. Its value is used verbatim in prompts.
type Round string

const (
	RoundTechnical Round = "technical"
	RoundHR        Round = "hr"

	// CustomRole is the role asked about when matching against a free-text job description.
	CustomRole = "custom role"
)

var (
	//go:embed prompts/technical.md
	technicalTemplate string
	//go:embed prompts/hr.md
	hrTemplate string
	//go:embed prompts/evaluation.md
	evaluationTemplate string
)

// Interviewer asks the model for questions and for feedback on answers.
type Interviewer struct {
	generator ai.TextGenerator
	logger    *zap.Logger
}

func New(generator ai.TextGenerator, logger *zap.Logger) *Interviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interviewer{generator: generator, logger: logger}
}

// TechnicalQuestions asks for technical questions about role.
func (i *Interviewer) TechnicalQuestions(ctx context.Context, role string) ([]string, error) {
	return i.questions(ctx, RoundTechnical, TechnicalPrompt(role))
}

// HRQuestions asks for questions about soft skills.
func (i *Interviewer) HRQuestions(ctx context.Context) ([]string, error) {
	return i.questions(ctx, RoundHR, HRPrompt())
}

// Questions dispatches to the question generator of round.
func (i *Interviewer) Questions(ctx context.Context, round Round, role string) ([]string, error) {
	switch round {
	case RoundTechnical:
		return i.TechnicalQuestions(ctx, role)
	case RoundHR:
		return i.HRQuestions(ctx)
	default:
		return nil, fmt.Errorf("unknown interview round %q", round)
	}
}

func (i *Interviewer) questions(ctx context.Context, round Round, prompt string) ([]string, error) {
	raw, err := i.generate(ctx, round, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate %s questions: %w", round, err)
	}

	questions := SplitLines(raw)
	if len(questions) == 0 {
		return nil, fmt.Errorf("generate %s questions: model returned no questions", round)
	}

	i.logger.Debug("questions generated", zap.String("round", string(round)), zap.Int("questions", len(questions)))
	return questions, nil
}

// Evaluate asks for feedback on answers. Questions and answers are paired by
// position; extra entries on either side are ignored.
func (i *Interviewer) Evaluate(ctx context.Context, round Round, questions, answers []string) (string, error) {
	if len(questions) == 0 {
		return "", errors.New("no questions to evaluate")
	}

	feedback, err := i.generate(ctx, round, EvaluationPrompt(round, questions, answers))
	if err != nil {
		return "", fmt.Errorf("evaluate %s answers: %w", round, err)
	}
	return feedback, nil
}

func (i *Interviewer) generate(ctx context.Context, round Round, prompt string) (string, error) {
	i.logger.Debug("prompting model",
		zap.String("round", string(round)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)
	return i.generator.Generate(ctx, prompt)
}

// TechnicalPrompt is the question prompt for role.
func TechnicalPrompt(role string) string {
	return strings.TrimSpace(strings.ReplaceAll(technicalTemplate, "{{ROLE}}", role))
}

// HRPrompt is the soft skills question prompt.
func HRPrompt() string {
	return strings.TrimSpace(hrTemplate)
}

// EvaluationPrompt lists each pair as "Q{n}: question" and "A{n}: answer".
func EvaluationPrompt(round Round, questions, answers []string) string {
	var pairs strings.Builder
	for n := 0; n < min(len(questions), len(answers)); n++ {
		fmt.Fprintf(&pairs, "Q%d: %s\nA%d: %s\n", n+1, questions[n], n+1, answers[n])
	}

	prompt := strings.TrimSuffix(evaluationTemplate, "\n")
	prompt = strings.ReplaceAll(prompt, "{{ROUND}}", string(round))
	return strings.ReplaceAll(prompt, "{{ANSWERS}}", pairs.String())
}

// SplitLines splits a model answer on line breaks, trimming each line and
// dropping blank ones.
func SplitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
