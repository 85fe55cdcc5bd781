// Package generator abstracts the external image generation API. The core
// only needs the capability "generate(prompt, params) -> image bytes or
// failure"; the OpenAI client is one implementation.
package generator

import (
	"context"
)

// Options are the per-call generation parameters.
type Options struct {
	Size    string // one of models.SizeSquare/SizeLandscape/SizePortrait
	Quality string // one of models.QualityStandard/QualityHD
}

// Result carries the bytes of one generated image. RevisedPrompt is the
// provider's rewrite of the prompt, when it reports one.
type Result struct {
	Data          []byte
	RevisedPrompt string
}

// Generator is the external image generation capability. Implementations
// must honor ctx cancellation and return an *apperrors.ExternalServiceError
// for any per-call failure so callers can record it per slot.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Result, error)
}
