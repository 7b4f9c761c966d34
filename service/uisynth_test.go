package service

import (
	"context"
	"strings"
	"testing"

	"lexlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearch struct {
	results []SearchResult
}

func (s *stubSearch) Search(ctx context.Context, query string, n int) []SearchResult {
	return s.results
}

func analysisFixture() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:      "A lease with net-30 payment and a 60 day notice period.",
		DocumentType: "Lease",
		Category:     models.CategoryProperty,
		JSONData: models.JSONMap{
			"documentType":    "Lease",
			"clauses":         []interface{}{},
			"importantPoints": []interface{}{"Net-30 payment", "60 day notice"},
			"dates":           []interface{}{map[string]interface{}{"date": "2026-01-01", "event": "Lease start"}},
		},
	}
}

// uiScript responds to the three synthesis phases
func uiScript(decision string) func(prompt string) string {
	return func(prompt string) string {
		switch {
		case strings.Contains(prompt, "Rewrite this legal document analysis"):
			return `{"title": "Apartment Lease", "summary": "A one-year lease.", "recommendedChatQuestions": ["When does it start?"]}`
		case strings.Contains(prompt, "Choose the UI components"):
			return decision
		case strings.Contains(prompt, `a "table" UI component`):
			return `{"columns": ["Clause", "Risk"], "rows": [["Payment", "low"]]}`
		case strings.Contains(prompt, `a "dropdown" UI component`):
			return `{"options": [{"label": "Payment Terms", "content": "Net-30"}]}`
		case strings.Contains(prompt, `a "timeline" UI component`):
			return `{"events": [{"date": "2026-01-01", "title": "Lease start", "description": ""}]}`
		case strings.Contains(prompt, `a "grid" UI component`):
			return `{"cards": [{"title": "Net-30", "content": "Payment due in 30 days"}]}`
		case strings.Contains(prompt, "UI component"):
			return `{"content": "generated text"}`
		}
		return ""
	}
}

func TestSynthesizeEnforcesInvariants(t *testing.T) {
	decision := `[
		{"kind": "card", "title": "Executive Summary", "description": "overview"},
		{"kind": "dropdown", "title": "Clauses", "description": "browse"},
		{"kind": "table", "title": "Details", "description": "clause table"}
	]`
	client := &stubClient{respond: uiScript(decision)}
	synth := NewUISynthesizer(client, &stubSearch{})

	payload := synth.Synthesize(context.Background(), analysisFixture())
	require.NotNil(t, payload)

	require.GreaterOrEqual(t, len(payload.Elements), 3)
	require.LessOrEqual(t, len(payload.Elements), 6)
	assert.Equal(t, models.ComponentCard, payload.Elements[0].Kind)

	interactive := false
	for _, element := range payload.Elements {
		if element.Kind.IsInteractive() {
			interactive = true
		}
		assert.NotEmpty(t, element.ID)
		assert.Contains(t, payload.GeneratedContent, element.ID)
	}
	assert.True(t, interactive, "payload must contain at least one interactive component")

	assert.Len(t, payload.RenderOrder, len(payload.Elements))
	assert.Equal(t, "emerald", payload.Theme)
	assert.Equal(t, "Apartment Lease", payload.Metadata["title"])
}

func TestSynthesizeGarbageDecisionFallsBack(t *testing.T) {
	client := &stubClient{respond: uiScript("I refuse to answer in JSON.")}
	synth := NewUISynthesizer(client, &stubSearch{})

	payload := synth.Synthesize(context.Background(), analysisFixture())

	require.GreaterOrEqual(t, len(payload.Elements), 3)
	require.LessOrEqual(t, len(payload.Elements), 6)
	assert.Equal(t, models.ComponentCard, payload.Elements[0].Kind)

	kinds := make(map[models.ComponentKind]bool)
	for _, element := range payload.Elements {
		kinds[element.Kind] = true
	}
	assert.True(t, kinds[models.ComponentDropdown])
	// The fixture carries a date-like array, so the heuristic adds a timeline
	assert.True(t, kinds[models.ComponentTimeline])
}

func TestDecideComponentsDropsImagesWithoutImageData(t *testing.T) {
	decision := `[
		{"kind": "card", "title": "Summary", "description": ""},
		{"kind": "images", "title": "Images", "description": ""},
		{"kind": "dropdown", "title": "Clauses", "description": ""},
		{"kind": "text", "title": "Notes", "description": ""}
	]`
	client := &stubClient{respond: uiScript(decision)}
	synth := NewUISynthesizer(client, &stubSearch{})

	components := synth.DecideComponents(context.Background(), analysisFixture())
	for _, component := range components {
		assert.NotEqual(t, models.ComponentImages, component.Kind)
	}
}

func TestDecideComponentsKeepsImagesWithImageData(t *testing.T) {
	decision := `[
		{"kind": "card", "title": "Summary", "description": ""},
		{"kind": "images", "title": "Images", "description": ""},
		{"kind": "dropdown", "title": "Clauses", "description": ""}
	]`
	client := &stubClient{respond: uiScript(decision)}
	synth := NewUISynthesizer(client, &stubSearch{})

	result := analysisFixture()
	result.JSONData["images"] = []interface{}{"https://example.com/page1.png"}

	components := synth.DecideComponents(context.Background(), result)
	kinds := make(map[models.ComponentKind]bool)
	for _, component := range components {
		kinds[component.Kind] = true
	}
	assert.True(t, kinds[models.ComponentImages])
}

func TestDecideComponentsInsertsInteractive(t *testing.T) {
	decision := `[
		{"kind": "card", "title": "Summary", "description": ""},
		{"kind": "table", "title": "Details", "description": ""},
		{"kind": "text", "title": "Notes", "description": ""}
	]`
	client := &stubClient{respond: uiScript(decision)}
	synth := NewUISynthesizer(client, &stubSearch{})

	components := synth.DecideComponents(context.Background(), analysisFixture())

	interactive := false
	for _, component := range components {
		if component.Kind.IsInteractive() {
			interactive = true
		}
	}
	assert.True(t, interactive)
}

func TestDecideComponentsMovesCardFirst(t *testing.T) {
	decision := `[
		{"kind": "table", "title": "Details", "description": ""},
		{"kind": "dropdown", "title": "Clauses", "description": ""},
		{"kind": "card", "title": "Summary", "description": ""}
	]`
	client := &stubClient{respond: uiScript(decision)}
	synth := NewUISynthesizer(client, &stubSearch{})

	components := synth.DecideComponents(context.Background(), analysisFixture())
	require.NotEmpty(t, components)
	assert.Equal(t, models.ComponentCard, components[0].Kind)
}

func TestDecideComponentsTruncatesToMax(t *testing.T) {
	decision := `[
		{"kind": "card", "title": "1", "description": ""},
		{"kind": "dropdown", "title": "2", "description": ""},
		{"kind": "table", "title": "3", "description": ""},
		{"kind": "chart", "title": "4", "description": ""},
		{"kind": "grid", "title": "5", "description": ""},
		{"kind": "text", "title": "6", "description": ""},
		{"kind": "timeline", "title": "7", "description": ""},
		{"kind": "form", "title": "8", "description": ""}
	]`
	client := &stubClient{respond: uiScript(decision)}
	synth := NewUISynthesizer(client, &stubSearch{})

	components := synth.DecideComponents(context.Background(), analysisFixture())
	assert.Len(t, components, 6)
}

func TestGenerateContentDegradesToEmptyShape(t *testing.T) {
	// Content generation fails for everything except the decision phases
	respond := func(prompt string) string {
		switch {
		case strings.Contains(prompt, "Rewrite this legal document analysis"):
			return ""
		case strings.Contains(prompt, "Choose the UI components"):
			return `[
				{"kind": "card", "title": "Summary", "description": ""},
				{"kind": "dropdown", "title": "Clauses", "description": ""},
				{"kind": "table", "title": "Details", "description": ""}
			]`
		}
		return "model meltdown, no JSON here"
	}
	client := &stubClient{respond: respond}
	synth := NewUISynthesizer(client, &stubSearch{})

	payload := synth.Synthesize(context.Background(), analysisFixture())

	for _, element := range payload.Elements {
		content := payload.GeneratedContent[element.ID]
		require.NotNil(t, content, "kind %s must not produce nil content", element.Kind)

		if element.Kind == models.ComponentTable {
			obj, ok := content.(map[string]interface{})
			require.True(t, ok)
			assert.Contains(t, obj, "rows")
		}
	}
}

func TestSynthesizeWebsearchUsesProvider(t *testing.T) {
	decision := `[
		{"kind": "card", "title": "Summary", "description": ""},
		{"kind": "dropdown", "title": "Clauses", "description": ""},
		{"kind": "websearch", "title": "Related", "description": ""}
	]`
	client := &stubClient{respond: uiScript(decision)}
	search := &stubSearch{results: []SearchResult{
		{Title: "Tenant rights", Link: "https://example.com", Snippet: "Know your rights"},
	}}
	synth := NewUISynthesizer(client, search)

	payload := synth.Synthesize(context.Background(), analysisFixture())

	var found bool
	for _, element := range payload.Elements {
		if element.Kind != models.ComponentWebsearch {
			continue
		}
		found = true
		content, ok := payload.GeneratedContent[element.ID].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, search.results, content["results"])
	}
	assert.True(t, found)
}

func TestHeaderFallbackOnParseFailure(t *testing.T) {
	result := analysisFixture()

	failing := NewUISynthesizer(&stubClient{}, &stubSearch{})
	fallback := failing.rewriteHeader(context.Background(), result)
	assert.Equal(t, result.DocumentType, fallback.Title)
	assert.Equal(t, result.Summary, fallback.Summary)
	assert.Empty(t, fallback.Questions)
}
