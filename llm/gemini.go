package llm

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

const (
	defaultModel   = "gemini-2.0-flash"
	maxRetries     = 3
	initialBackoff = time.Second
)

// GeminiClient implements Client on top of the Gemini API
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// GeminiOption is a functional option for GeminiClient
type GeminiOption func(*GeminiClient)

// WithModel overrides the generative model name
func WithModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float32) GeminiOption {
	return func(c *GeminiClient) {
		c.temperature = t
	}
}

// NewGeminiClient creates a Gemini-backed Client
func NewGeminiClient(client *genai.Client, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		client:      client,
		model:       defaultModel,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *GeminiClient) generativeModel() *genai.GenerativeModel {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(c.temperature)
	return m
}

// Complete runs a single-shot completion with retry and exponential backoff.
// Per the client contract it degrades to the empty string on failure.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) string {
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				log.Printf("Warning: completion cancelled: %v", ctx.Err())
				return ""
			}
			backoff *= 2
		}

		resp, err := c.generativeModel().GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			log.Printf("Warning: completion attempt %d failed: %v", attempt+1, err)
			continue
		}

		if text := responseText(resp); text != "" {
			return text
		}
		log.Printf("Warning: completion attempt %d returned no text", attempt+1)
	}
	return ""
}

// Stream starts a token-streamed completion. Closing the stream cancels the
// underlying call so early consumers do not leak the connection.
func (c *GeminiClient) Stream(ctx context.Context, prompt string) (Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := c.generativeModel().GenerateContentStream(ctx, genai.Text(prompt))
	return &geminiStream{iter: iter, cancel: cancel}, nil
}

type geminiStream struct {
	iter   *genai.GenerateContentResponseIterator
	cancel context.CancelFunc
}

func (s *geminiStream) Recv() (string, error) {
	resp, err := s.iter.Next()
	if err == iterator.Done {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (s *geminiStream) Close() {
	s.cancel()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return builder.String()
}
