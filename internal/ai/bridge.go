// Package ai is the bridge to the Gemini generation API. It offers a
// single-shot call and a streaming call that reports cumulative text.
package ai

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Image is inline image data sent along with a prompt.
type Image struct {
	Data     []byte
	MIMEType string
}

// generator is the slice of the Gemini client the bridge needs.
type generator interface {
	Generate(ctx context.Context, model string, contents []*genai.Content) (string, error)
	Stream(ctx context.Context, model string, contents []*genai.Content) iter.Seq2[string, error]
}

type Bridge struct {
	gen    generator
	model  string
	logger logging.Logger
}

// NewBridge creates a bridge backed by the Gemini API.
func NewBridge(ctx context.Context, apiKey, model string, logger logging.Logger) (*Bridge, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newBridge(&geminiGenerator{models: client.Models}, model, logger), nil
}

func newBridge(gen generator, model string, logger logging.Logger) *Bridge {
	if model == "" {
		model = DefaultModel
	}
	return &Bridge{gen: gen, model: model, logger: logger.With("module", "ai")}
}

// contents builds a single user turn: the image part (if any) first, then
// the prompt text.
func contents(prompt string, img *Image) ([]*genai.Content, error) {
	var parts []*genai.Part
	if img != nil && len(img.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	if strings.TrimSpace(prompt) != "" {
		parts = append(parts, genai.NewPartFromText(prompt))
	}
	if len(parts) == 0 {
		return nil, common.ErrEmptyPrompt
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

// Generate returns the complete answer. On provider failure it returns ""
// and an error wrapping common.ErrGenerationFailed. There is no retry.
func (b *Bridge) Generate(ctx context.Context, prompt string, img *Image) (string, error) {
	c, err := contents(prompt, img)
	if err != nil {
		return "", err
	}

	text, err := b.gen.Generate(ctx, b.model, c)
	if err != nil {
		b.logger.Warn(ctx, "generation failed", "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrGenerationFailed, err)
	}
	return text, nil
}

// GenerateStream calls onFragment with the cumulative answer each time a
// non-empty chunk arrives and returns the complete answer. onFragment runs
// on the caller's goroutine and may be nil.
//
// Without a prompt or image it returns common.ErrEmptyPrompt and never
// contacts the provider. On provider failure it returns "" and an error
// wrapping common.ErrGenerationFailed; fragments already delivered stay
// delivered.
func (b *Bridge) GenerateStream(ctx context.Context, prompt string, img *Image, onFragment func(cumulative string)) (string, error) {
	c, err := contents(prompt, img)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for chunk, err := range b.gen.Stream(ctx, b.model, c) {
		if err != nil {
			b.logger.Warn(ctx, "stream failed", "error", err, "received", full.Len())
			return "", fmt.Errorf("%w: %v", common.ErrGenerationFailed, err)
		}
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onFragment != nil {
			onFragment(full.String())
		}
	}
	return full.String(), nil
}

// geminiGenerator adapts genai.Models to generator.
type geminiGenerator struct {
	models *genai.Models
}

func (g *geminiGenerator) Generate(ctx context.Context, model string, contents []*genai.Content) (string, error) {
	resp, err := g.models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *geminiGenerator) Stream(ctx context.Context, model string, contents []*genai.Content) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range g.models.GenerateContentStream(ctx, model, contents, nil) {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}
