package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkedin-automator/internal/gemini"
)

type stubGenerator struct {
	text    string
	textErr error

	image    *gemini.Image
	imageErr error

	lastPrompt string
	lastOpts   *gemini.TextOptions
}

func (g *stubGenerator) GenerateText(_ context.Context, prompt string, opts *gemini.TextOptions) (string, error) {
	g.lastPrompt = prompt
	g.lastOpts = opts
	return g.text, g.textErr
}

func (g *stubGenerator) GenerateImage(_ context.Context, prompt string) (*gemini.Image, error) {
	g.lastPrompt = prompt
	return g.image, g.imageErr
}

func Test_NewService(t *testing.T) {
	gen := new(stubGenerator)

	for _, tc := range []struct {
		desc    string
		logger  *zap.Logger
		gen     Generator
		dir     string
		wantErr bool
	}{
		{
			desc:   "happy path",
			logger: zap.NewNop(),
			gen:    gen,
			dir:    "images",
		},
		{
			desc:    "missing logger",
			gen:     gen,
			dir:     "images",
			wantErr: true,
		},
		{
			desc:    "missing generator",
			logger:  zap.NewNop(),
			dir:     "images",
			wantErr: true,
		},
		{
			desc:    "missing images dir",
			logger:  zap.NewNop(),
			gen:     gen,
			wantErr: true,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := NewService(tc.logger, tc.gen, tc.dir)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_Service_EnhancePrompt(t *testing.T) {
	gen := &stubGenerator{text: "A polished post."}

	svc, err := NewService(zap.NewNop(), gen, t.TempDir())
	require.NoError(t, err)

	out, err := svc.EnhancePrompt(context.Background(), "rag agents")
	require.NoError(t, err)

	assert.Equal(t, "A polished post.", out)
	assert.Contains(t, gen.lastPrompt, "rag agents")
	// prompt enhancement is not grounded on search
	assert.Nil(t, gen.lastOpts)
}

func Test_Service_RecentNews(t *testing.T) {
	gen := &stubGenerator{text: "\"Big news\\n\\nDetails\""}

	svc, err := NewService(zap.NewNop(), gen, t.TempDir())
	require.NoError(t, err)

	out, err := svc.RecentNews(context.Background())
	require.NoError(t, err)

	// response is normalized before being returned
	assert.Equal(t, "Big news\n\nDetails", out)

	// the news summary must be grounded on live search
	require.NotNil(t, gen.lastOpts)
	assert.True(t, gen.lastOpts.GoogleSearch)
}

func Test_Service_ImagePromptFromPost(t *testing.T) {
	gen := &stubGenerator{text: "a clean illustration of a robot"}

	svc, err := NewService(zap.NewNop(), gen, t.TempDir())
	require.NoError(t, err)

	out, err := svc.ImagePromptFromPost(context.Background(), "We shipped our agent platform today!")
	require.NoError(t, err)

	assert.Equal(t, "a clean illustration of a robot", out)
	assert.Contains(t, gen.lastPrompt, "We shipped our agent platform today!")
	assert.Nil(t, gen.lastOpts)
}

func Test_Service_GenerateImage(t *testing.T) {
	t.Run("persists image with mime-derived extension", func(t *testing.T) {
		dir := t.TempDir()
		gen := &stubGenerator{
			image: &gemini.Image{Data: []byte("pngbytes"), MIMEType: "image/png"},
		}

		svc, err := NewService(zap.NewNop(), gen, dir)
		require.NoError(t, err)

		img, err := svc.GenerateImage(context.Background(), "a tomato")
		require.NoError(t, err)

		assert.Equal(t, []byte("pngbytes"), img.Data)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.True(t, strings.HasSuffix(img.Path, ".png"), "path(%s)", img.Path)
		assert.Equal(t, dir, filepath.Dir(img.Path))

		saved, err := os.ReadFile(img.Path)
		require.NoError(t, err)
		assert.Equal(t, []byte("pngbytes"), saved)
	})

	t.Run("no image produced", func(t *testing.T) {
		gen := &stubGenerator{imageErr: gemini.ErrNoImage}

		svc, err := NewService(zap.NewNop(), gen, t.TempDir())
		require.NoError(t, err)

		_, err = svc.GenerateImage(context.Background(), "a tomato")
		assert.ErrorIs(t, err, gemini.ErrNoImage)
	})
}
