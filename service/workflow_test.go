package service

import (
	"context"
	"strings"
	"testing"

	"lexlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workflowScript scripts one canned response per pipeline step, keyed on
// distinctive prompt text
type workflowScript struct {
	clauses    string
	subCat     string
	attributes string
	explain    string
	docType    string
	dedup      string
	summary    string
}

func (s workflowScript) respond(prompt string) string {
	switch {
	case strings.Contains(prompt, "Extract every self-contained clause"):
		return s.clauses
	case strings.Contains(prompt, "sub-categories"):
		return s.subCat
	case strings.Contains(prompt, "Extract the attributes"):
		return s.attributes
	case strings.Contains(prompt, "Explain this clause"):
		return s.explain
	case strings.Contains(prompt, "Classify this document into exactly one"):
		return s.docType
	case strings.Contains(prompt, "Merge entries"):
		return s.dedup
	case strings.Contains(prompt, "summarizing the analysis"):
		return s.summary
	}
	return ""
}

func contractScript() workflowScript {
	return workflowScript{
		clauses:    "Payment is due within 30 days of invoice.\nEither party may terminate with 60 days notice.",
		subCat:     "Payment Terms",
		attributes: `{"parties": "Client and Vendor", "obligations": "pay invoices", "deadlines": "30 days"}`,
		explain:    `{"explanation": "You must pay within a month.", "risk": "low"}`,
		docType:    "Service Agreement",
		dedup:      `[{"parties": "Client and Vendor", "obligations": "pay invoices", "deadlines": "30 days"}]`,
		summary:    `{"summaryText": "A standard service agreement with net-30 payment terms.", "importantPoints": ["Net-30 payment", "60 day termination notice"]}`,
	}
}

func runWorkflow(t *testing.T, script workflowScript) *WorkflowOutput {
	t.Helper()
	client := &stubClient{respond: script.respond}
	workflow := NewWorkflow(client, SpecForCategory(models.CategoryContracts), WithClauseConcurrency(2))

	output, err := workflow.Run(context.Background(), []models.Chunk{{Text: "full contract text", Index: 0}})
	require.NoError(t, err)
	return output
}

func TestWorkflowRun(t *testing.T) {
	output := runWorkflow(t, contractScript())

	require.Len(t, output.Clauses, 2)
	assert.Equal(t, "Payment is due within 30 days of invoice.", output.Clauses[0].Text)
	assert.Equal(t, "Payment Terms", output.Clauses[0].SubCategory)
	assert.Equal(t, "Service Agreement", output.DocumentType)
	assert.Equal(t, "A standard service agreement with net-30 payment terms.", output.SummaryText)

	assert.Equal(t, 2, output.JSONData["clauseCount"])
	assert.Equal(t, "Service Agreement", output.JSONData["documentType"])
	assert.Equal(t, []string{"Net-30 payment", "60 day termination notice"}, output.JSONData["importantPoints"])

	attrs, ok := output.Clauses[0].Attributes.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Client and Vendor", attrs["parties"])
}

func TestWorkflowClauseDedupPreservesOrder(t *testing.T) {
	script := contractScript()
	script.clauses = "- Clause A\n- Clause B\n- Clause A\n\n- Clause C"

	output := runWorkflow(t, script)

	texts := make([]string, len(output.Clauses))
	for i, clause := range output.Clauses {
		texts[i] = clause.Text
	}
	assert.Equal(t, []string{"Clause A", "Clause B", "Clause C"}, texts)
}

func TestWorkflowRawAttributesKeptVerbatim(t *testing.T) {
	script := contractScript()
	script.attributes = "not json at all"

	output := runWorkflow(t, script)

	require.NotEmpty(t, output.Clauses)
	assert.Equal(t, "not json at all", output.Clauses[0].Attributes)
}

func TestWorkflowAttributeFieldsDefaulted(t *testing.T) {
	script := contractScript()
	script.attributes = `{"parties": "Client and Vendor"}`

	output := runWorkflow(t, script)

	attrs, ok := output.Clauses[0].Attributes.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Client and Vendor", attrs["parties"])
	assert.Equal(t, "", attrs["obligations"])
	assert.Equal(t, "", attrs["deadlines"])
}

func TestWorkflowSummaryFallbackShape(t *testing.T) {
	script := contractScript()
	script.summary = "The document is a basic service agreement with routine terms."

	output := runWorkflow(t, script)

	assert.Equal(t, "The document is a basic service agreement with routine terms.", output.SummaryText)
	assert.Equal(t, []string{}, output.JSONData["importantPoints"])
}

func TestWorkflowSummaryFailureIsFatal(t *testing.T) {
	script := contractScript()
	script.summary = ""

	client := &stubClient{respond: script.respond}
	workflow := NewWorkflow(client, SpecForCategory(models.CategoryContracts))

	_, err := workflow.Run(context.Background(), []models.Chunk{{Text: "contract text"}})
	assert.ErrorIs(t, err, ErrSummarySynthesisFailed)
}

func TestWorkflowDedupFallbackKeepsOriginals(t *testing.T) {
	script := contractScript()
	script.dedup = "I could not merge these, sorry."

	output := runWorkflow(t, script)

	attrs, ok := output.JSONData["attributes"].([]interface{})
	require.True(t, ok)
	assert.Len(t, attrs, len(output.Clauses))
}

func TestWorkflowDocumentTypeFallback(t *testing.T) {
	script := contractScript()
	script.docType = ""

	output := runWorkflow(t, script)
	assert.Equal(t, "Unknown Document", output.DocumentType)
}

func TestWorkflowDocumentTypeOffListKept(t *testing.T) {
	script := contractScript()
	script.docType = "Franchise Agreement"

	output := runWorkflow(t, script)
	assert.Equal(t, "Franchise Agreement", output.DocumentType)
}

func TestWorkflowDocumentTypeCaseInsensitiveMatch(t *testing.T) {
	script := contractScript()
	script.docType = "service agreement"

	output := runWorkflow(t, script)
	assert.Equal(t, "Service Agreement", output.DocumentType)
}
