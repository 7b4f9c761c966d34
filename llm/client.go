// Package llm provides a uniform client over generative text models,
// supporting single-shot and token-streamed completions plus best-effort
// cleanup of model-produced JSON.
package llm

import (
	"context"
	"io"
	"log"
	"strings"
)

// Stream is a forward-only, single-pass sequence of text fragments from one
// streamed completion. Recv returns io.EOF when the model is done. Callers
// that stop early must call Close to release the underlying call.
type Stream interface {
	Recv() (string, error)
	Close()
}

// Client is the contract every analysis component depends on. Implementations
// must not serialize calls; callers fan out many completions concurrently.
type Client interface {
	// Complete runs a single-shot completion. It returns the empty string,
	// never an error, when the call fails or yields no text, so pipelines
	// degrade instead of aborting.
	Complete(ctx context.Context, prompt string) string

	// Stream starts a token-streamed completion.
	Stream(ctx context.Context, prompt string) (Stream, error)
}

// StreamText opens a stream for prompt and drains it into a single string.
// Any failure, including mid-stream errors, degrades to the empty string.
func StreamText(ctx context.Context, c Client, prompt string) string {
	stream, err := c.Stream(ctx, prompt)
	if err != nil {
		log.Printf("Warning: failed to open completion stream: %v", err)
		return ""
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			return builder.String()
		}
		if err != nil {
			log.Printf("Warning: completion stream interrupted: %v", err)
			return ""
		}
		builder.WriteString(fragment)
	}
}
