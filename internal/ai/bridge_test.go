package ai

import (
	"context"
	"errors"
	"io"
	"iter"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	text      string
	err       error
	chunks    []string
	streamErr error

	calls    int
	model    string
	contents []*genai.Content
}

func (f *fakeGenerator) Generate(ctx context.Context, model string, contents []*genai.Content) (string, error) {
	f.calls++
	f.model, f.contents = model, contents
	return f.text, f.err
}

func (f *fakeGenerator) Stream(ctx context.Context, model string, contents []*genai.Content) iter.Seq2[string, error] {
	f.calls++
	f.model, f.contents = model, contents
	return func(yield func(string, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.streamErr != nil {
			yield("", f.streamErr)
		}
	}
}

func newTestBridge(gen generator) *Bridge {
	return newBridge(gen, "", logging.NewText(io.Discard, "error"))
}

func TestGenerate_ReturnsText(t *testing.T) {
	gen := &fakeGenerator{text: "Recursion is..."}
	b := newTestBridge(gen)

	got, err := b.Generate(context.Background(), "Explain recursion", nil)
	require.NoError(t, err)
	assert.Equal(t, "Recursion is...", got)
	assert.Equal(t, DefaultModel, gen.model)

	require.Len(t, gen.contents, 1)
	assert.Equal(t, genai.RoleUser, genai.Role(gen.contents[0].Role))
	require.Len(t, gen.contents[0].Parts, 1)
	assert.Equal(t, "Explain recursion", gen.contents[0].Parts[0].Text)
}

func TestGenerate_ProviderFailure(t *testing.T) {
	b := newTestBridge(&fakeGenerator{err: errors.New("quota")})

	got, err := b.Generate(context.Background(), "hi", nil)
	require.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.Empty(t, got)
}

func TestGenerateStream_CumulativeFragments(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"Re", "", "cur", "sion"}}
	b := newTestBridge(gen)

	var seen []string
	got, err := b.GenerateStream(context.Background(), "q", nil, func(c string) { seen = append(seen, c) })
	require.NoError(t, err)

	assert.Equal(t, "Recursion", got)
	assert.Equal(t, []string{"Re", "Recur", "Recursion"}, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, len(seen[i]), len(seen[i-1]))
	}
}

func TestGenerateStream_NoChunks(t *testing.T) {
	b := newTestBridge(&fakeGenerator{})

	calls := 0
	got, err := b.GenerateStream(context.Background(), "q", nil, func(string) { calls++ })
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, calls)
}

func TestGenerateStream_EmptyPromptSkipsProvider(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"x"}}
	b := newTestBridge(gen)

	for _, img := range []*Image{nil, {MIMEType: "image/png"}} {
		_, err := b.GenerateStream(context.Background(), "  ", img, nil)
		require.ErrorIs(t, err, common.ErrEmptyPrompt)
	}
	assert.Zero(t, gen.calls)
}

func TestGenerateStream_ImageOnly(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"a cat"}}
	b := newTestBridge(gen)

	got, err := b.GenerateStream(context.Background(), "", &Image{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a cat", got)

	parts := gen.contents[0].Parts
	require.Len(t, parts, 1)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
}

func TestGenerateStream_ImageBeforeText(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"ok"}}
	b := newTestBridge(gen)

	_, err := b.GenerateStream(context.Background(), "what is this?", &Image{Data: []byte("img"), MIMEType: "image/jpeg"}, nil)
	require.NoError(t, err)

	parts := gen.contents[0].Parts
	require.Len(t, parts, 2)
	assert.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "what is this?", parts[1].Text)
}

func TestGenerateStream_FailureIsDistinguishable(t *testing.T) {
	b := newTestBridge(&fakeGenerator{chunks: []string{"partial"}, streamErr: errors.New("reset")})

	var seen []string
	got, err := b.GenerateStream(context.Background(), "q", nil, func(c string) { seen = append(seen, c) })
	require.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.Empty(t, got)
	assert.Equal(t, []string{"partial"}, seen)
}

func TestNewBridge_CustomModel(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	b := newBridge(gen, "gemini-custom", logging.NewText(io.Discard, "error"))

	_, err := b.Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini-custom", gen.model)
}
