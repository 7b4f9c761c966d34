package service

import (
	"context"

	"lexlens-backend/llm"
	"lexlens-backend/models"
)

// Aggregator routes a classified document to its category workflow and merges
// the workflow output with independently extracted date events into one
// immutable AnalysisResult
type Aggregator struct {
	client      llm.Client
	concurrency int
}

// NewAggregator creates a result aggregator
func NewAggregator(client llm.Client) *Aggregator {
	return &Aggregator{client: client, concurrency: defaultClauseConcurrency}
}

// Analyze runs the full category analysis for already-classified chunks.
// Unknown categories run the Contracts pipeline; that routing lives in
// SpecForCategory so the fallback stays a named, visible branch.
func (a *Aggregator) Analyze(
	ctx context.Context,
	category models.Category,
	chunks []models.Chunk,
	fullText string,
) (*models.AnalysisResult, error) {
	spec := SpecForCategory(category)
	workflow := NewWorkflow(a.client, spec, WithClauseConcurrency(a.concurrency))

	output, err := workflow.Run(ctx, chunks)
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		Summary:      output.SummaryText,
		JSONData:     output.JSONData,
		DocumentType: documentTypeOf(output.JSONData),
		Category:     category,
		Dates:        workflowDates(output.JSONData),
	}

	// Date events are computed independently, and only when the category
	// pipeline did not already supply them
	if len(result.Dates) == 0 {
		result.Dates = ExtractDates(ctx, a.client, fullText)
	}

	return result, nil
}

// documentTypeOf reads jsonData.documentType with the fallback literal
func documentTypeOf(jsonData models.JSONMap) string {
	if docType, ok := jsonData["documentType"].(string); ok && docType != "" {
		return docType
	}
	return "Unknown Document"
}

// workflowDates returns date events the workflow itself produced, if any
func workflowDates(jsonData models.JSONMap) models.DateEvents {
	dates, ok := jsonData["dates"].(models.DateEvents)
	if !ok {
		return models.DateEvents{}
	}
	return dates
}
