package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/entity"
)

const (
	FocusedFallback    = "Solid session. Keep the same setup for your next block, take a five-minute break first, and protect the start of it from notifications."
	DistractedFallback = "Analysis unavailable. Maintain your current workflow and attempt to minimize task-switching for the next 20 minutes."

	defaultTimeout = 15 * time.Second
)

// Generator produces free text for a prompt. Implementations talk to an
// external generative-text service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Advice struct {
	Text     string `json:"advice"`
	Fallback bool   `json:"fallback"`
}

type Advisor struct {
	generator Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// NewAdvisor builds an advisor. A nil generator means every call returns the
// fallback message.
func NewAdvisor(generator Generator, timeout time.Duration, logger *slog.Logger) *Advisor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{generator: generator, timeout: timeout, logger: logger}
}

// Advise makes a single attempt at a coaching message and never fails; any
// problem yields the fixed message for the status.
func (a *Advisor) Advise(ctx context.Context, status entity.Status, intensityPercent int) Advice {
	if a.generator == nil {
		return fallback(status)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.generator.Generate(ctx, buildPrompt(status, intensityPercent))
	if err != nil {
		a.logger.Warn("advice generation failed", slog.String("error", err.Error()))
		return fallback(status)
	}

	text := CleanAdvice(raw)
	if text == "" {
		a.logger.Warn("advice generation returned empty text")
		return fallback(status)
	}

	return Advice{Text: text}
}

func fallback(status entity.Status) Advice {
	if status == entity.StatusFocused {
		return Advice{Text: FocusedFallback, Fallback: true}
	}
	return Advice{Text: DistractedFallback, Fallback: true}
}

func buildPrompt(status entity.Status, intensityPercent int) string {
	return fmt.Sprintf(`Role: You are a neuro-performance coach writing a short session report.
Context: The user finished a work session with a focus score of %d%% (%s).

Write 3 short paragraphs:
1. What a %d%% score says about their attention during the session.
2. One concrete technique to sustain or recover focus, explained in 2-3 sentences.
3. One habit to build a better baseline for the next session.

Rules:
- Between 80 and 200 words.
- Plain text with line breaks. Do not use markdown symbols like ** or #.`,
		intensityPercent, status, intensityPercent)
}

var (
	codeFence     = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	headingMarker = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	emphasis      = strings.NewReplacer("**", "", "__", "")
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// CleanAdvice strips markdown emphasis, heading markers and code fences from a
// generated message.
func CleanAdvice(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = codeFence.ReplaceAllString(text, "")
	text = headingMarker.ReplaceAllString(text, "")
	text = emphasis.Replace(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
