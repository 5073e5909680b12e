package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkedin-automator/internal/gemini"
)

const (
	// enhancePromptTemplate turns a raw idea into a publishable post
	enhancePromptTemplate = "You are a professional LinkedIn content writer. Rewrite the " +
		"following idea into a polished, engaging LinkedIn post. Open with a " +
		"strong hook, keep it under 150 words, write in first person, and end " +
		"with a question that invites discussion. Use at most three hashtags. " +
		"Return only the post text.\n\nIdea: %s"

	// recentNewsTemplate asks for a grounded summary of the week's tech news
	recentNewsTemplate = "Search for the most significant technology and AI news from the " +
		"past seven days. Pick the single most impactful story and summarize " +
		"it as a short LinkedIn post: what happened, why it matters, and one " +
		"takeaway for professionals. Keep it under 120 words. Return only the " +
		"post text."

	// imagePromptTemplate derives an image-generation prompt from post text
	imagePromptTemplate = "Based on the following LinkedIn post, write one concise prompt " +
		"for an image generation model. Describe a clean, professional " +
		"illustration that matches the post's topic. No text in the image. " +
		"Return only the prompt.\n\nPost: %s"
)

// Generator is the generative capability the content service is built on.
// *gemini.Client satisfies it; tests substitute a stub.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, opts *gemini.TextOptions) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*gemini.Image, error)
}

// Image is a generated image together with the path it was persisted to.
type Image struct {
	Data     []byte
	MIMEType string
	Path     string
}

// Service wraps the generative client with the fixed prompt templates and
// persists generated images to local disk.
type Service struct {
	logger    *zap.Logger
	gen       Generator
	imagesDir string
}

func NewService(logger *zap.Logger, gen Generator, imagesDir string) (*Service, error) {
	s := Service{
		logger:    logger,
		gen:       gen,
		imagesDir: imagesDir,
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Service) validate() error {
	var missingDeps []string

	for _, tc := range []struct {
		dep string
		chk func() bool
	}{
		{
			dep: "logger",
			chk: func() bool { return s.logger != nil },
		},
		{
			dep: "generator",
			chk: func() bool { return s.gen != nil },
		},
		{
			dep: "imagesDir",
			chk: func() bool { return s.imagesDir != "" },
		},
	} {
		if !tc.chk() {
			missingDeps = append(missingDeps, tc.dep)
		}
	}

	if len(missingDeps) > 0 {
		return fmt.Errorf(
			"unable to initialize service due to (%d) missing dependencies: %s",
			len(missingDeps),
			strings.Join(missingDeps, ","),
		)
	}

	return nil
}

// EnhancePrompt rewrites a member-supplied idea into a polished post.
func (s *Service) EnhancePrompt(ctx context.Context, userPrompt string) (string, error) {
	out, err := s.gen.GenerateText(ctx, fmt.Sprintf(enhancePromptTemplate, userPrompt), nil)
	if err != nil {
		const msg = "unable to enhance prompt"
		s.logger.Error(msg, zap.Error(err))
		return "", fmt.Errorf(msg+": %w", err)
	}

	return out, nil
}

// RecentNews produces a post summarizing the week's most impactful tech
// story, grounded on live search results and run through the normalizer.
func (s *Service) RecentNews(ctx context.Context) (string, error) {
	out, err := s.gen.GenerateText(ctx, recentNewsTemplate, &gemini.TextOptions{GoogleSearch: true})
	if err != nil {
		const msg = "unable to summarize recent news"
		s.logger.Error(msg, zap.Error(err))
		return "", fmt.Errorf(msg+": %w", err)
	}

	return Normalize(out), nil
}

// ImagePromptFromPost derives an image-generation prompt from post text.
func (s *Service) ImagePromptFromPost(ctx context.Context, post string) (string, error) {
	out, err := s.gen.GenerateText(ctx, fmt.Sprintf(imagePromptTemplate, post), nil)
	if err != nil {
		const msg = "unable to derive image prompt"
		s.logger.Error(msg, zap.Error(err))
		return "", fmt.Errorf(msg+": %w", err)
	}

	return out, nil
}

// GenerateImage generates an image for the prompt and persists it under
// the images directory with a unique filename. The bytes are returned to
// the caller; the file on disk is a side-effect store, not an api.
func (s *Service) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	img, err := s.gen.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.imagesDir, uuid.New().String()+"."+extFromMIME(img.MIMEType))
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		const msg = "unable to persist generated image"
		s.logger.Error(msg, zap.Error(err), zap.String("path", path))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	s.logger.Debug("persisted generated image", zap.String("path", path), zap.Int("size", len(img.Data)))

	return &Image{
		Data:     img.Data,
		MIMEType: img.MIMEType,
		Path:     path,
	}, nil
}

func extFromMIME(mimeType string) string {
	ext := strings.TrimPrefix(mimeType, "image/")
	if ext == "" || ext == mimeType {
		return "png"
	}

	return ext
}
