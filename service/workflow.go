package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"lexlens-backend/llm"
	"lexlens-backend/models"

	"golang.org/x/sync/errgroup"
)

// ErrSummarySynthesisFailed indicates the final summary completion produced
// nothing. It is the only clause-pipeline failure that propagates: every
// earlier step degrades to a placeholder, but there is no meaningful fallback
// for a missing summary.
var ErrSummarySynthesisFailed = errors.New("summary synthesis failed")

// defaultClauseConcurrency caps the per-clause fan-out so a document with
// dozens of clauses does not trip upstream rate limits
const defaultClauseConcurrency = 4

// Workflow runs the category-specific analysis pipeline over a chunk set:
// clause extraction, per-clause sub-classification / attribute extraction /
// explanation, document-type classification, detail deduplication, and
// summary synthesis.
type Workflow struct {
	client      llm.Client
	spec        CategorySpec
	concurrency int
}

// WorkflowOption is a functional option for Workflow
type WorkflowOption func(*Workflow)

// WithClauseConcurrency overrides the per-clause fan-out limit
func WithClauseConcurrency(n int) WorkflowOption {
	return func(w *Workflow) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// NewWorkflow creates a workflow for one category spec
func NewWorkflow(client llm.Client, spec CategorySpec, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		client:      client,
		spec:        spec,
		concurrency: defaultClauseConcurrency,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WorkflowOutput is the per-document result of one workflow run
type WorkflowOutput struct {
	SummaryText  string
	JSONData     models.JSONMap
	DocumentType string
	Clauses      []models.Clause
}

// Summary is the parsed shape of the final synthesis step
type Summary struct {
	SummaryText     string   `json:"summaryText"`
	ImportantPoints []string `json:"importantPoints"`
}

// Run executes the pipeline. Steps are strictly sequential; within the
// per-clause steps, clauses are processed concurrently with a bounded limit
// and results are re-assembled in clause order.
func (w *Workflow) Run(ctx context.Context, chunks []models.Chunk) (*WorkflowOutput, error) {
	clauses := w.extractClauses(ctx, chunks)

	classifications := make([]string, len(clauses))
	attributes := make([]interface{}, len(clauses))
	explanations := make([]interface{}, len(clauses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, clause := range clauses {
		g.Go(func() error {
			classifications[i] = w.subClassify(gctx, clause)
			attributes[i] = w.extractAttributes(gctx, clause)
			explanations[i] = w.explain(gctx, clause)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docType := w.classifyDocumentType(ctx, chunks)
	dedupedAttributes := w.dedupDetails(ctx, attributes)
	summary, err := w.synthesizeSummary(ctx, classifications, dedupedAttributes, explanations)
	if err != nil {
		return nil, err
	}

	clauseRecords := make([]models.Clause, len(clauses))
	for i, text := range clauses {
		clauseRecords[i] = models.Clause{
			Text:        text,
			SubCategory: classifications[i],
			Attributes:  attributes[i],
			Explanation: explanations[i],
		}
	}

	return &WorkflowOutput{
		SummaryText:  summary.SummaryText,
		DocumentType: docType,
		Clauses:      clauseRecords,
		JSONData: models.JSONMap{
			"documentType":    docType,
			"clauses":         clauseRecords,
			"clauseCount":     len(clauseRecords),
			"classifications": classifications,
			"attributes":      dedupedAttributes,
			"explanations":    explanations,
			"summaryText":     summary.SummaryText,
			"importantPoints": summary.ImportantPoints,
		},
	}, nil
}

// extractClauses streams one extraction completion per chunk and accumulates
// candidate clauses, one per line. Duplicates are removed with first
// occurrence winning, which keeps the output order deterministic.
func (w *Workflow) extractClauses(ctx context.Context, chunks []models.Chunk) []string {
	prompt := `You are a legal analyst reviewing a document classified as "%s".

Extract every self-contained clause concerning %s from the text below.
Output one clause per line, quoting or closely paraphrasing the document.
No numbering, no bullets, no commentary. If there are no clauses, output nothing.

TEXT:
%s`

	seen := make(map[string]bool)
	var clauses []string
	for _, chunk := range chunks {
		raw := llm.StreamText(ctx, w.client, fmt.Sprintf(prompt, w.spec.Category, w.spec.ClauseFocus, chunk.Text))
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			clauses = append(clauses, line)
		}
	}
	return clauses
}

// subClassify assigns a clause to one of the category's sub-categories.
// Degrades to an empty label on model failure.
func (w *Workflow) subClassify(ctx context.Context, clause string) string {
	prompt := fmt.Sprintf(`Classify this clause from a document in the "%s" category into exactly one of these sub-categories:
%s

Answer with the sub-category name only.

CLAUSE:
%s`, w.spec.Category, strings.Join(w.spec.SubCategories, "\n"), clause)

	raw := llm.StreamText(ctx, w.client, prompt)
	// Trim to exactly one label
	label := strings.TrimSpace(strings.SplitN(raw, "\n", 2)[0])
	return label
}

// extractAttributes requests a fixed-shape JSON object for a clause. The
// result is CleanJSON output: a parsed object with the requested fields
// defaulted when missing, or the raw trimmed text when the model output could
// not be parsed. Raw text is tolerated downstream, never treated as fatal.
func (w *Workflow) extractAttributes(ctx context.Context, clause string) interface{} {
	fields := make([]string, len(w.spec.AttributeFields))
	for i, f := range w.spec.AttributeFields {
		fields[i] = fmt.Sprintf("%q: ...", f)
	}

	prompt := fmt.Sprintf(`Extract the attributes of this clause as a JSON object of the form {%s}.
Return ONLY valid JSON, no markdown, no explanations.

CLAUSE:
%s`, strings.Join(fields, ", "), clause)

	parsed := llm.CleanJSON(llm.StreamText(ctx, w.client, prompt))
	if obj, ok := parsed.(map[string]interface{}); ok {
		for _, field := range w.spec.AttributeFields {
			if _, present := obj[field]; !present {
				obj[field] = ""
			}
		}
		return obj
	}
	return parsed
}

// explain produces a plain-language explanation object for a clause
func (w *Workflow) explain(ctx context.Context, clause string) interface{} {
	prompt := fmt.Sprintf(`Explain this clause in plain language for a non-lawyer.
Return a JSON object {"explanation": "...", "risk": "low|medium|high"}.
Return ONLY valid JSON, no markdown.

CLAUSE:
%s`, clause)

	return llm.CleanJSON(llm.StreamText(ctx, w.client, prompt))
}

// classifyDocumentType classifies the overall document into the category's
// closed sub-type list, once per document. Falls back to "Unknown Document"
// when the model returns nothing or an off-list label.
func (w *Workflow) classifyDocumentType(ctx context.Context, chunks []models.Chunk) string {
	sample := ""
	if len(chunks) > 0 {
		sample = chunks[0].Text
	}

	prompt := fmt.Sprintf(`Classify this document into exactly one of these types:
%s

Answer with the type name only.

DOCUMENT (beginning):
%s`, strings.Join(w.spec.DocumentTypes, "\n"), sample)

	label := strings.TrimSpace(strings.SplitN(llm.StreamText(ctx, w.client, prompt), "\n", 2)[0])
	for _, docType := range w.spec.DocumentTypes {
		if strings.EqualFold(label, docType) {
			return docType
		}
	}
	if label != "" {
		// Off-list but non-empty labels are kept; the model sometimes
		// answers with a reasonable type the list is missing
		return label
	}
	return "Unknown Document"
}

// dedupDetails asks the model to merge overlapping attribute entries. When
// the merged output cannot be parsed as a JSON list, the pre-dedup list is
// kept unchanged: dropping extracted data on a parse failure is worse than
// returning duplicates.
func (w *Workflow) dedupDetails(ctx context.Context, attributes []interface{}) []interface{} {
	if len(attributes) == 0 {
		return attributes
	}

	encoded, err := json.Marshal(attributes)
	if err != nil {
		return attributes
	}

	prompt := fmt.Sprintf(`The JSON array below contains attribute objects extracted from overlapping document chunks.
Merge entries that describe the same clause and remove exact duplicates.
Return ONLY the merged JSON array, no markdown, no explanations.

%s`, string(encoded))

	parsed := llm.CleanJSON(w.client.Complete(ctx, prompt))
	merged, ok := parsed.([]interface{})
	if !ok || len(merged) == 0 {
		log.Printf("Warning: detail deduplication returned unparseable output, keeping %d original entries", len(attributes))
		return attributes
	}
	return merged
}

// synthesizeSummary runs the one required final completion over the full
// record set. A non-JSON response falls back to {summaryText: raw,
// importantPoints: []} - downstream UI assumes that shape always exists. Only
// an empty response is fatal.
func (w *Workflow) synthesizeSummary(
	ctx context.Context,
	classifications []string,
	attributes []interface{},
	explanations []interface{},
) (*Summary, error) {
	record := models.JSONMap{
		"classifications": classifications,
		"attributes":      attributes,
		"explanations":    explanations,
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummarySynthesisFailed, err)
	}

	prompt := fmt.Sprintf(`You are summarizing the analysis of a document in the "%s" category.

ANALYSIS RECORDS:
%s

Produce a JSON object {"summaryText": "...", "importantPoints": ["...", "..."]}.
summaryText is a 2-4 paragraph plain-language summary of the document's purpose, obligations and risks.
importantPoints lists the 3-7 facts the reader must not miss.
Return ONLY valid JSON, no markdown.`, w.spec.Category, string(encoded))

	raw := w.client.Complete(ctx, prompt)
	if strings.TrimSpace(raw) == "" {
		return nil, ErrSummarySynthesisFailed
	}

	parsed := llm.CleanJSON(raw)
	if obj, ok := parsed.(map[string]interface{}); ok {
		summary := &Summary{ImportantPoints: []string{}}
		if text, ok := obj["summaryText"].(string); ok {
			summary.SummaryText = text
		}
		if points, ok := obj["importantPoints"].([]interface{}); ok {
			for _, p := range points {
				if s, ok := p.(string); ok {
					summary.ImportantPoints = append(summary.ImportantPoints, s)
				}
			}
		}
		if summary.SummaryText != "" {
			return summary, nil
		}
	}

	// Hard-required fallback shape: raw text as the summary, no points
	return &Summary{
		SummaryText:     strings.TrimSpace(raw),
		ImportantPoints: []string{},
	}, nil
}
