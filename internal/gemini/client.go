package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the url of the Gemini api
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultTextModel generates post text, prompt rewrites, and news
	// summaries
	DefaultTextModel = "gemini-2.5-flash"

	// DefaultImageModel generates images
	DefaultImageModel = "gemini-2.5-flash-image"

	// httpTimeout bounds every generation call. This is the only outbound
	// client in the service with an explicit timeout.
	httpTimeout = time.Second * 30
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrNoImage is returned when an image generation call succeeds but no
	// response part carries image data
	ErrNoImage Error = "no image produced"

	// ErrNoText is returned when a text generation call succeeds but no
	// response part carries text
	ErrNoText Error = "no text produced"
)

// Client is responsible for interacting with the Gemini api to generate
// text completions and images.
type Client struct {
	logger     *zap.Logger
	c          *http.Client
	baseURL    string
	apiKey     string
	textModel  string
	imageModel string
}

// Config configures the Gemini client. Everything but APIKey has a
// default.
type Config struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
}

// NewClient returns an instantiated Gemini client. The client has the
// following dependencies:
//
// logger - for structured logging
// cfg.APIKey - the Gemini api key
func NewClient(logger *zap.Logger, cfg Config) (*Client, error) {
	var missingDeps []string

	for _, tc := range []struct {
		dep string
		chk func() bool
	}{
		{
			dep: "logger",
			chk: func() bool { return logger != nil },
		},
		{
			dep: "apiKey",
			chk: func() bool { return cfg.APIKey != "" },
		},
	} {
		if !tc.chk() {
			missingDeps = append(missingDeps, tc.dep)
		}
	}

	if len(missingDeps) > 0 {
		return nil, fmt.Errorf(
			"unable to initialize client due to (%d) missing dependencies: %s",
			len(missingDeps),
			strings.Join(missingDeps, ","),
		)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	textModel := cfg.TextModel
	if textModel == "" {
		textModel = DefaultTextModel
	}

	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = DefaultImageModel
	}

	return &Client{
		logger:     logger,
		c:          &http.Client{Timeout: httpTimeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

// GenerateText forwards a prompt to the text model and returns the first
// text completion verbatim.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts *TextOptions) (string, error) {
	if opts == nil {
		opts = new(TextOptions)
	}

	model := opts.Model
	if model == "" {
		model = c.textModel
	}

	payload := generateContentPayload{
		Contents: []Content{
			{
				Parts: []Part{{Text: prompt}},
			},
		},
	}
	if opts.GoogleSearch {
		payload.Tools = []Tool{{GoogleSearch: &GoogleSearch{}}}
	}

	resp, err := c.generateContent(ctx, model, payload)
	if err != nil {
		return "", err
	}

	for i := range resp.Candidates {
		for _, part := range resp.Candidates[i].Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}

	c.logger.Error("generation returned no text part", zap.String("model", model))

	return "", ErrNoText
}

// GenerateImage forwards a prompt to the image model, iterates the
// returned parts, and returns the first one carrying image data, decoded.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	payload := generateContentPayload{
		Contents: []Content{
			{
				Parts: []Part{{Text: prompt}},
			},
		},
	}

	resp, err := c.generateContent(ctx, c.imageModel, payload)
	if err != nil {
		return nil, err
	}

	for i := range resp.Candidates {
		for _, part := range resp.Candidates[i].Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}

			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				const msg = "unable to decode image data"
				c.logger.Error(msg, zap.Error(err))
				return nil, fmt.Errorf(msg+": %w", err)
			}

			return &Image{
				Data:     data,
				MIMEType: part.InlineData.MIMEType,
			}, nil
		}
	}

	c.logger.Error("generation returned no image part", zap.String("model", c.imageModel))

	return nil, ErrNoImage
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentPayload) (*generateContentResponse, error) {
	logger := c.logger.With(zap.String("model", model))

	b, err := json.Marshal(payload)
	if err != nil {
		const msg = "unable to marshal payload"
		logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	url := c.baseURL + "/v1beta/models/" + model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		const msg = "unable to create request"
		logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.c.Do(req)
	if err != nil {
		const msg = "unable to generate content"
		logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body string
		if b, err := io.ReadAll(resp.Body); err == nil {
			body = string(b)
		}
		const msg = "received non-200 status code"
		logger.Error(msg, zap.Int("statusCode", resp.StatusCode), zap.String("body", body))
		return nil, fmt.Errorf(msg+" (%d): %s", resp.StatusCode, body)
	}

	var out generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		const msg = "unable to decode response"
		logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	return &out, nil
}
