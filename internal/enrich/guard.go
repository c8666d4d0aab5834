package enrich

import (
	"context"

	"github.com/mdombrov-33/go-promptguard/detector"
)

// Guard screens document text before it is pasted into a prompt.
type Guard interface {
	Suspicious(ctx context.Context, text string) bool
}

type promptGuard struct {
	detect func(ctx context.Context, text string) bool
}

// NewPromptGuard uses pattern and statistical detectors only, no LLM judge.
func NewPromptGuard(maxInput int) Guard {
	if maxInput <= 0 {
		maxInput = 8192
	}
	d := detector.New(
		detector.WithThreshold(0.6),
		detector.WithAllDetectors(),
		detector.WithMaxInputLength(maxInput),
	)
	return &promptGuard{detect: func(ctx context.Context, text string) bool {
		return !d.Detect(ctx, text).Safe
	}}
}

func (g *promptGuard) Suspicious(ctx context.Context, text string) bool {
	if text == "" {
		return false
	}
	return g.detect(ctx, text)
}
