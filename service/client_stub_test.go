package service

import (
	"context"
	"io"
	"sync"

	"lexlens-backend/llm"
)

// stubClient is a scripted llm.Client. respond maps each prompt to its canned
// completion; a nil respond returns "" for everything. Calls are recorded so
// tests can assert on how many model calls a path makes.
type stubClient struct {
	mu      sync.Mutex
	calls   []string
	respond func(prompt string) string
}

func (c *stubClient) Complete(ctx context.Context, prompt string) string {
	c.mu.Lock()
	c.calls = append(c.calls, prompt)
	c.mu.Unlock()

	if c.respond == nil {
		return ""
	}
	return c.respond(prompt)
}

func (c *stubClient) Stream(ctx context.Context, prompt string) (llm.Stream, error) {
	return &stubStream{text: c.Complete(ctx, prompt)}, nil
}

func (c *stubClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// stubStream yields its text as a single fragment, then io.EOF
type stubStream struct {
	text string
	done bool
}

func (s *stubStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	s.done = true
	return s.text, nil
}

func (s *stubStream) Close() {}
