package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"lexlens-backend/llm"
	"lexlens-backend/models"
	"lexlens-backend/repository"

	"github.com/google/uuid"
)

// Progress statuses emitted over the streaming response. A run terminates on
// exactly one of StatusComplete or StatusError.
const (
	StatusUploading   = "uploading"
	StatusExtracting  = "extracting"
	StatusTranslating = "translating"
	StatusAnalyzing   = "analyzing"
	StatusSaving      = "saving"
	StatusComplete    = "complete"
	StatusError       = "error"
)

// ProgressEvent is one newline-delimited status event sent to the caller
type ProgressEvent struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
}

// EmitFunc receives progress events in order
type EmitFunc func(ProgressEvent)

// AnalysisService orchestrates the full document analysis run: extraction,
// translation, chunking, classification, category workflow, aggregation, UI
// synthesis, and persistence.
type AnalysisService struct {
	client       llm.Client
	extractor    TextExtractor
	translator   Translator
	search       SearchProvider
	classifier   *Classifier
	aggregator   *Aggregator
	synthesizer  *UISynthesizer
	embedder     *llm.Embedder
	analysisRepo *repository.AnalysisRepository
	chunkSize    int
	chunkOverlap int
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// WithLLMClient sets the language model client
func WithLLMClient(client llm.Client) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.client = client
	}
}

// WithExtractor sets the text extraction adapter
func WithExtractor(extractor TextExtractor) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.extractor = extractor
	}
}

// WithTranslator sets the translation adapter
func WithTranslator(translator Translator) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.translator = translator
	}
}

// WithSearchProvider sets the web search adapter
func WithSearchProvider(search SearchProvider) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.search = search
	}
}

// WithEmbedder sets the embedding client used on the persistence path
func WithEmbedder(embedder *llm.Embedder) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.embedder = embedder
	}
}

// WithAnalysisRepository sets the analysis repository
func WithAnalysisRepository(repo *repository.AnalysisRepository) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.analysisRepo = repo
	}
}

// WithChunking overrides the chunk size and overlap
func WithChunking(size, overlap int) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.chunkSize = size
		s.chunkOverlap = overlap
	}
}

// NewAnalysisService creates an analysis service. The LLM client option is
// required; the adapters default to no-op/passthrough implementations.
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.translator == nil {
		s.translator = NewHTTPTranslator("")
	}
	if s.search == nil {
		s.search = NewHTTPSearchProvider("", "")
	}
	if s.client != nil {
		s.classifier = NewClassifier(s.client)
		s.aggregator = NewAggregator(s.client)
		s.synthesizer = NewUISynthesizer(s.client, s.search)
	}
	return s
}

// AnalyzeUpload runs the full pipeline for an uploaded document and reports
// progress through emit. It always terminates with exactly one complete or
// error event and never panics out to the caller.
func (s *AnalysisService) AnalyzeUpload(
	ctx context.Context,
	doc *models.Document,
	data []byte,
	emit EmitFunc,
) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error: analysis run panicked: %v", r)
			emit(ProgressEvent{Status: StatusError, Message: "internal error during analysis"})
		}
	}()

	emit(ProgressEvent{Status: StatusExtracting, Message: "Extracting text from " + doc.Filename})
	text, err := s.extractor.ExtractText(ctx, data, doc.MimeType)
	if err != nil {
		emit(ProgressEvent{Status: StatusError, Message: "text extraction failed: " + err.Error()})
		return
	}
	if strings.TrimSpace(text) == "" {
		// Empty text is a terminal failure, not something to analyze
		emit(ProgressEvent{Status: StatusError, Message: ErrExtractionFailed.Error() + ": no text found in document"})
		return
	}

	emit(ProgressEvent{Status: StatusTranslating, Message: "Translating to English"})
	translated, err := s.translator.Translate(ctx, text, "en")
	if err != nil {
		log.Printf("Warning: translation failed, continuing with original text: %v", err)
	} else if translated != "" {
		text = translated
	}

	emit(ProgressEvent{Status: StatusAnalyzing, Message: "Classifying document"})
	result, category, err := s.analyze(ctx, text, emit)
	if err != nil {
		event := ProgressEvent{Status: StatusError, Message: err.Error()}
		if errors.Is(err, ErrSummarySynthesisFailed) {
			// Return the progress that exists instead of discarding it
			event.Result = models.JSONMap{
				"extractedText": text,
				"category":      string(category),
			}
		}
		emit(event)
		return
	}

	emit(ProgressEvent{Status: StatusSaving, Message: "Persisting analysis"})
	warning := s.persist(ctx, doc, text, result)

	message := "Analysis complete"
	if warning != "" {
		message = fmt.Sprintf("Analysis complete (persistence degraded: %s)", warning)
	}
	emit(ProgressEvent{Status: StatusComplete, Message: message, Result: result})
}

// analyze runs chunking, classification and the category workflow. The
// category is returned separately so error paths can still report it.
func (s *AnalysisService) analyze(ctx context.Context, text string, emit EmitFunc) (*models.AnalysisResult, models.Category, error) {
	chunks, err := SplitText(text, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, models.CategoryUnknown, err
	}

	category, err := s.classifier.Classify(ctx, chunks)
	if err != nil {
		return nil, models.CategoryUnknown, err
	}

	if category.IsRejection() {
		// Rejected documents get no clause pipeline; report the label only
		return &models.AnalysisResult{
			Summary:      fmt.Sprintf("This document was classified as %s and was not analyzed.", category),
			JSONData:     models.JSONMap{"documentType": string(category), "clauses": []models.Clause{}, "clauseCount": 0},
			DocumentType: string(category),
			Category:     category,
			Dates:        models.DateEvents{},
		}, category, nil
	}

	emit(ProgressEvent{Status: StatusAnalyzing, Message: fmt.Sprintf("Running %s analysis", category)})
	result, err := s.aggregator.Analyze(ctx, category, chunks, text)
	return result, category, err
}

// persist writes the analysis and its embedding. Failures degrade to a
// warning string; the analysis is returned to the caller regardless.
func (s *AnalysisService) persist(ctx context.Context, doc *models.Document, text string, result *models.AnalysisResult) string {
	if s.analysisRepo == nil {
		return "persistence not configured"
	}

	var embedding []float64
	if s.embedder != nil {
		var err error
		embedding, err = s.embedder.EmbedText(ctx, embeddingInput(result, text))
		if err != nil {
			log.Printf("Warning: embedding generation failed: %v", err)
		}
	}

	record := &models.AnalysisRecord{
		DocumentID:   doc.ID,
		Summary:      result.Summary,
		JSONData:     result.JSONData,
		DocumentType: result.DocumentType,
		Category:     result.Category,
		Dates:        result.Dates,
	}
	if err := s.analysisRepo.Create(ctx, record, embedding); err != nil {
		log.Printf("Warning: failed to persist analysis for document %s: %v", doc.ID, err)
		return err.Error()
	}
	return ""
}

// GenerateUI runs the adaptive UI synthesizer for an analysis result
func (s *AnalysisService) GenerateUI(ctx context.Context, result *models.AnalysisResult) *models.UIPayload {
	return s.synthesizer.Synthesize(ctx, result)
}

// Chat answers a question about a stored analysis, optionally enriched with
// web search results
func (s *AnalysisService) Chat(ctx context.Context, analysisID uuid.UUID, question string) (string, error) {
	if s.analysisRepo == nil {
		return "", errors.New("analysis repository not set")
	}

	record, err := s.analysisRepo.GetByID(ctx, analysisID)
	if err != nil {
		return "", fmt.Errorf("analysis not found: %w", err)
	}

	var searchContext strings.Builder
	for _, hit := range s.search.Search(ctx, question, 3) {
		searchContext.WriteString(fmt.Sprintf("- %s (%s): %s\n", hit.Title, hit.Link, hit.Snippet))
	}

	prompt := fmt.Sprintf(`Answer the user's question about this legal document analysis.

DOCUMENT TYPE: %s
CATEGORY: %s
SUMMARY:
%s

WEB CONTEXT:
%s

QUESTION: %s

Answer in plain language. Say so when the analysis does not contain the answer.`,
		record.DocumentType, record.Category, record.Summary, searchContext.String(), question)

	answer := s.client.Complete(ctx, prompt)
	if answer == "" {
		return "", errors.New("chat completion failed")
	}
	return answer, nil
}

// embeddingInput builds the text embedded for the persistence write path
func embeddingInput(result *models.AnalysisResult, text string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[CATEGORY: %s]\n[TYPE: %s]\n\n", result.Category, result.DocumentType))
	builder.WriteString(result.Summary)
	builder.WriteString("\n\n")
	if len(text) > 4000 {
		text = text[:4000]
	}
	builder.WriteString(text)
	return builder.String()
}
