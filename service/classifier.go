package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"lexlens-backend/llm"
	"lexlens-backend/models"
)

// ErrClassificationFailed indicates the model was unavailable during
// top-level category classification. Fatal for the run; retries belong to the
// llm client, not this layer.
var ErrClassificationFailed = errors.New("document classification failed")

// Classifier assigns a top-level category to a document by majority vote
// across per-chunk classifications
type Classifier struct {
	client llm.Client
}

// NewClassifier creates a document classifier
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{client: client}
}

const classificationPrompt = `You are a legal document classifier.

STEP 1 - VALIDITY CHECK:
Decide whether the text below comes from a real, binding legal document.
- If it is narrative text, a blank template, marketing copy, or gibberish, answer exactly: NON-LEGAL DOCUMENT
- If it imitates legal form but has no legal force (sovereign-citizen filings, fake liens, novelty certificates), answer exactly: PSEUDO-LEGAL DOCUMENT

STEP 2 - CATEGORY ASSIGNMENT:
Otherwise assign the MOST SPECIFIC category that applies, checking in this priority order and stopping at the first match:
1. Property & Real Estate
2. Personal Legal Documents
3. Government & Administrative
4. Regulatory & Compliance
5. Corporate Governance Documents
6. Litigation & Court Documents
7. Contracts & Agreements

Answer with exactly one label from the nine above. No explanation, no punctuation, label only.

DOCUMENT TEXT:
%s`

// Classify invokes the model once per chunk and selects the label with the
// highest frequency. Ties break deterministically: candidates are sorted
// ascending by count then label, and the last entry wins. The tie-break is
// arbitrary but stable; changing it changes which category borderline
// documents land in.
func (c *Classifier) Classify(ctx context.Context, chunks []models.Chunk) (models.Category, error) {
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: no chunks to classify", ErrClassificationFailed)
	}

	counts := make(map[string]int)
	for _, chunk := range chunks {
		label := llm.StreamText(ctx, c.client, fmt.Sprintf(classificationPrompt, chunk.Text))
		label = strings.TrimSpace(label)
		if label == "" {
			return "", fmt.Errorf("%w: model returned no label for chunk %d", ErrClassificationFailed, chunk.Index)
		}
		counts[label]++
	}

	type labelCount struct {
		label string
		count int
	}
	ranked := make([]labelCount, 0, len(counts))
	for label, count := range counts {
		ranked = append(ranked, labelCount{label, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count < ranked[j].count
		}
		return ranked[i].label < ranked[j].label
	})

	winner := ranked[len(ranked)-1].label
	return models.ParseCategory(winner), nil
}
