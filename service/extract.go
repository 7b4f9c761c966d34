package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrExtractionFailed indicates OCR/parsing yielded no usable text.
// Fatal for the run and reported to the caller.
var ErrExtractionFailed = errors.New("text extraction failed")

// TextExtractor converts raw document bytes to plain text. An empty string
// means "no text found" and callers must treat it as a terminal failure.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Translator translates text to a target language. Implementations must
// preserve shape symmetry: TranslateAll returns one output per input.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
	TranslateAll(ctx context.Context, texts []string, targetLang string) ([]string, error)
}

// SearchResult is one hit from the web search collaborator
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchProvider performs web searches for the websearch UI component and the
// chat endpoint. Implementations return an empty slice, never an error, when
// unconfigured or failing.
type SearchProvider interface {
	Search(ctx context.Context, query string, n int) []SearchResult
}

// HTTPExtractor calls an external OCR/text-extraction service that accepts a
// multipart upload and returns {"text": "..."}
type HTTPExtractor struct {
	endpoint string
	http     *http.Client
}

// NewHTTPExtractor creates an extractor for the given service endpoint
func NewHTTPExtractor(endpoint string) *HTTPExtractor {
	return &HTTPExtractor{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 120 * time.Second},
	}
}

// ExtractText uploads the document bytes and returns the extracted text
func (e *HTTPExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if e.endpoint == "" {
		return "", fmt.Errorf("extraction service endpoint not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "document")
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.WriteField("mime_type", mimeType); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("extraction service error: %d - %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return result.Text, nil
}

// HTTPTranslator calls an external translation service. When no endpoint is
// configured it passes text through unchanged, which keeps English-only
// deployments working without the collaborator.
type HTTPTranslator struct {
	endpoint string
	http     *http.Client
}

// NewHTTPTranslator creates a translator for the given service endpoint
func NewHTTPTranslator(endpoint string) *HTTPTranslator {
	return &HTTPTranslator{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Translate translates a single text
func (t *HTTPTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	results, err := t.TranslateAll(ctx, []string{text}, targetLang)
	if err != nil {
		return "", err
	}
	return results[0], nil
}

// TranslateAll translates a batch, one output per input
func (t *HTTPTranslator) TranslateAll(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	if t.endpoint == "" {
		return texts, nil
	}

	reqBody, err := json.Marshal(map[string]interface{}{
		"texts":  texts,
		"target": targetLang,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translation service error: %d", resp.StatusCode)
	}

	var result struct {
		Translations []string `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode translation response: %w", err)
	}
	if len(result.Translations) != len(texts) {
		return nil, fmt.Errorf("translation shape mismatch: sent %d, got %d", len(texts), len(result.Translations))
	}
	return result.Translations, nil
}

// HTTPSearchProvider queries an external search API. Per the SearchProvider
// contract every failure degrades to an empty result set.
type HTTPSearchProvider struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewHTTPSearchProvider creates a search provider; endpoint may be empty
func NewHTTPSearchProvider(endpoint, apiKey string) *HTTPSearchProvider {
	return &HTTPSearchProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Search returns up to n results, or an empty slice when unconfigured/failing
func (s *HTTPSearchProvider) Search(ctx context.Context, query string, n int) []SearchResult {
	if s.endpoint == "" {
		return []SearchResult{}
	}

	reqBody, err := json.Marshal(map[string]interface{}{
		"query": query,
		"limit": n,
	})
	if err != nil {
		return []SearchResult{}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return []SearchResult{}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		log.Printf("Warning: search request failed: %v", err)
		return []SearchResult{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Warning: search service error: %d", resp.StatusCode)
		return []SearchResult{}
	}

	var result struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Warning: failed to decode search response: %v", err)
		return []SearchResult{}
	}
	if result.Results == nil {
		return []SearchResult{}
	}
	return result.Results
}
