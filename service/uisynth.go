package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"lexlens-backend/llm"
	"lexlens-backend/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	minComponents = 3
	maxComponents = 6
)

// UISynthesizer decides which UI building blocks to render for an analysis
// result and generates content for each. Every phase degrades instead of
// failing: a garbage decision falls back to a deterministic heuristic set and
// a failed generation falls back to an empty-but-valid shape.
type UISynthesizer struct {
	client      llm.Client
	search      SearchProvider
	concurrency int
}

// UISynthOption is a functional option for UISynthesizer
type UISynthOption func(*UISynthesizer)

// WithUIConcurrency overrides the per-component generation limit
func WithUIConcurrency(n int) UISynthOption {
	return func(s *UISynthesizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewUISynthesizer creates an adaptive UI synthesizer
func NewUISynthesizer(client llm.Client, search SearchProvider, opts ...UISynthOption) *UISynthesizer {
	s := &UISynthesizer{
		client:      client,
		search:      search,
		concurrency: defaultClauseConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rewrittenHeader is the parsed phase-1 output
type rewrittenHeader struct {
	Title     string
	Summary   string
	Questions []string
}

// Synthesize produces the full UI payload for an analysis result
func (s *UISynthesizer) Synthesize(ctx context.Context, result *models.AnalysisResult) *models.UIPayload {
	header := s.rewriteHeader(ctx, result)
	components := s.DecideComponents(ctx, result)

	generated := make([]interface{}, len(components))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, component := range components {
		g.Go(func() error {
			generated[i] = s.generateComponentContent(gctx, component, result, header)
			return nil
		})
	}
	_ = g.Wait()

	content := make(map[string]interface{}, len(components))
	for i, component := range components {
		content[component.ID] = generated[i]
	}

	// Best-effort uniqueness check: if fewer than two components produced
	// distinguishable content, regenerate the second one once
	if len(components) >= 2 && distinctContentCount(components, content) < 2 {
		second := components[1]
		content[second.ID] = s.generateComponentContent(ctx, second, result, header)
	}

	renderOrder := make([]string, len(components))
	for i, component := range components {
		renderOrder[i] = component.ID
	}

	return &models.UIPayload{
		Theme:            themeForCategory(result.Category),
		RenderOrder:      renderOrder,
		Elements:         components,
		GeneratedContent: content,
		DisplayData:      s.projectDisplayData(result, header, components, content),
		Metadata: models.JSONMap{
			"category":                 string(result.Category),
			"documentType":             result.DocumentType,
			"title":                    header.Title,
			"recommendedChatQuestions": header.Questions,
		},
	}
}

// rewriteHeader runs the phase-1 title/summary rewrite. Falls back to the
// original values verbatim on total parse failure.
func (s *UISynthesizer) rewriteHeader(ctx context.Context, result *models.AnalysisResult) rewrittenHeader {
	fallback := rewrittenHeader{
		Title:     result.DocumentType,
		Summary:   result.Summary,
		Questions: []string{},
	}

	prompt := fmt.Sprintf(`Rewrite this legal document analysis for display.

DOCUMENT TYPE: %s
CATEGORY: %s
SUMMARY:
%s

Return a JSON object {"title": "...", "summary": "...", "recommendedChatQuestions": ["...", "...", "..."]}.
title is a short display title, summary a tightened 2-3 sentence version,
recommendedChatQuestions three questions a reader would ask about this document.
Return ONLY valid JSON, no markdown.`, result.DocumentType, result.Category, result.Summary)

	obj := llm.ExtractObject(s.client.Complete(ctx, prompt))
	if obj == nil {
		return fallback
	}

	header := fallback
	if title, ok := obj["title"].(string); ok && title != "" {
		header.Title = title
	}
	if summary, ok := obj["summary"].(string); ok && summary != "" {
		header.Summary = summary
	}
	if questions, ok := obj["recommendedChatQuestions"].([]interface{}); ok {
		header.Questions = make([]string, 0, len(questions))
		for _, q := range questions {
			if question, ok := q.(string); ok {
				header.Questions = append(header.Questions, question)
			}
		}
	}
	return header
}

// DecideComponents runs the phase-2 component decision and enforces the
// payload invariants regardless of what the model returns: 3-6 components,
// a card first, at least one interactive component, and images only when the
// source data contains image entries.
func (s *UISynthesizer) DecideComponents(ctx context.Context, result *models.AnalysisResult) []models.UIComponentSpec {
	kinds := make([]string, 0, len(models.ValidComponentKinds))
	for kind := range models.ValidComponentKinds {
		kinds = append(kinds, string(kind))
	}

	prompt := fmt.Sprintf(`Choose the UI components for displaying this document analysis.

DOCUMENT TYPE: %s
CATEGORY: %s
DATA KEYS: %s

Pick 3 to 6 components from this vocabulary: %s.
The first must be a "card" holding the executive summary, and at least one of
"dropdown" or "selector" must be included.
Return a JSON array [{"kind": "...", "title": "...", "description": "..."}].
Return ONLY valid JSON, no markdown.`,
		result.DocumentType, result.Category,
		strings.Join(jsonDataKeys(result.JSONData), ", "), strings.Join(kinds, ", "))

	decided := parseComponentSpecs(s.client.Complete(ctx, prompt))
	components := s.normalizeComponents(decided, result.JSONData)
	for i := range components {
		components[i].ID = uuid.New().String()
	}
	return components
}

// parseComponentSpecs parses the decision model output into candidate specs
func parseComponentSpecs(raw string) []models.UIComponentSpec {
	parsed := llm.CleanJSON(raw)
	arr, ok := parsed.([]interface{})
	if !ok {
		return nil
	}

	specs := make([]models.UIComponentSpec, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		spec := models.UIComponentSpec{}
		if kind, ok := obj["kind"].(string); ok {
			spec.Kind = models.ComponentKind(strings.ToLower(strings.TrimSpace(kind)))
		}
		if title, ok := obj["title"].(string); ok {
			spec.Title = title
		}
		if description, ok := obj["description"].(string); ok {
			spec.Description = description
		}
		specs = append(specs, spec)
	}
	return specs
}

// normalizeComponents enforces the component-set invariants. A decision that
// cannot be repaired is replaced wholesale by the heuristic set.
func (s *UISynthesizer) normalizeComponents(decided []models.UIComponentSpec, jsonData models.JSONMap) []models.UIComponentSpec {
	valid := make([]models.UIComponentSpec, 0, len(decided))
	for _, spec := range decided {
		if !models.ValidComponentKinds[spec.Kind] {
			continue
		}
		// "images" is allowed only when the data actually has images;
		// otherwise it is silently dropped
		if spec.Kind == models.ComponentImages && !hasImages(jsonData) {
			continue
		}
		if spec.Title == "" {
			spec.Title = string(spec.Kind)
		}
		valid = append(valid, spec)
	}

	if len(valid) == 0 {
		log.Printf("Warning: component decision produced no usable components, using heuristic fallback")
		return s.heuristicComponents(jsonData)
	}

	// Card first: move the first existing card to the front, or prepend one
	cardIdx := -1
	for i, spec := range valid {
		if spec.Kind == models.ComponentCard {
			cardIdx = i
			break
		}
	}
	if cardIdx > 0 {
		card := valid[cardIdx]
		valid = append(valid[:cardIdx], valid[cardIdx+1:]...)
		valid = append([]models.UIComponentSpec{card}, valid...)
	} else if cardIdx == -1 {
		valid = append([]models.UIComponentSpec{executiveSummaryCard()}, valid...)
	}

	if len(valid) > maxComponents {
		valid = valid[:maxComponents]
	}

	// At least one interactive component
	if !hasInteractive(valid) {
		explorer := clauseExplorer()
		if len(valid) < maxComponents {
			valid = append(valid, explorer)
		} else {
			valid[len(valid)-1] = explorer
		}
	}

	// Pad up to the minimum with heuristic picks not already present
	if len(valid) < minComponents {
		present := make(map[models.ComponentKind]bool, len(valid))
		for _, spec := range valid {
			present[spec.Kind] = true
		}
		for _, candidate := range s.heuristicComponents(jsonData) {
			if len(valid) >= minComponents {
				break
			}
			if present[candidate.Kind] {
				continue
			}
			present[candidate.Kind] = true
			valid = append(valid, candidate)
		}
	}

	return valid
}

// heuristicComponents deterministically synthesizes a valid component set
// from the shape of the analysis data: date-like arrays get a timeline,
// point/skill-like string arrays get a grid, and a clause table rounds the
// set out.
func (s *UISynthesizer) heuristicComponents(jsonData models.JSONMap) []models.UIComponentSpec {
	components := []models.UIComponentSpec{
		executiveSummaryCard(),
		clauseExplorer(),
	}

	if hasDateLikeArray(jsonData) {
		components = append(components, models.UIComponentSpec{
			Kind:        models.ComponentTimeline,
			Title:       "Key Dates",
			Description: "Dated events extracted from the document",
		})
	}
	if hasStringArray(jsonData, "importantPoints") {
		components = append(components, models.UIComponentSpec{
			Kind:        models.ComponentGrid,
			Title:       "Important Points",
			Description: "Facts the reader must not miss",
		})
	}
	components = append(components, models.UIComponentSpec{
		Kind:        models.ComponentTable,
		Title:       "Clause Details",
		Description: "Clauses with their classifications and attributes",
	})
	if hasImages(jsonData) {
		components = append(components, models.UIComponentSpec{
			Kind:        models.ComponentImages,
			Title:       "Document Images",
			Description: "Images found in the document",
		})
	}

	if len(components) > maxComponents {
		components = components[:maxComponents]
	}
	return components
}

func executiveSummaryCard() models.UIComponentSpec {
	return models.UIComponentSpec{
		Kind:        models.ComponentCard,
		Title:       "Executive Summary",
		Description: "Plain-language overview of the document",
	}
}

func clauseExplorer() models.UIComponentSpec {
	return models.UIComponentSpec{
		Kind:        models.ComponentDropdown,
		Title:       "Clause Explorer",
		Description: "Browse clauses by sub-category",
	}
}

// generateComponentContent runs phase 3 for one component. Every kind
// degrades to an empty-but-valid shape rather than null.
func (s *UISynthesizer) generateComponentContent(
	ctx context.Context,
	component models.UIComponentSpec,
	result *models.AnalysisResult,
	header rewrittenHeader,
) interface{} {
	switch component.Kind {
	case models.ComponentCard:
		return map[string]interface{}{
			"title":   component.Title,
			"content": header.Summary,
		}

	case models.ComponentImages:
		// Pass-through of pre-existing image URLs; no generation
		return map[string]interface{}{"images": imageURLs(result.JSONData)}

	case models.ComponentWebsearch:
		query := fmt.Sprintf("%s %s", result.DocumentType, header.Title)
		results := s.search.Search(ctx, query, 5)
		return map[string]interface{}{"results": results}

	default:
		return s.generateModelContent(ctx, component, result)
	}
}

// componentShapes maps each generated kind to the JSON shape the prompt asks
// for and the key whose presence marks the output as valid
var componentShapes = map[models.ComponentKind]struct {
	shape string
	key   string
}{
	models.ComponentTable:     {`{"columns": ["..."], "rows": [["..."]]}`, "rows"},
	models.ComponentChart:     {`{"data": [{"label": "...", "value": 0}]}`, "data"},
	models.ComponentTimeline:  {`{"events": [{"date": "...", "title": "...", "description": "..."}]}`, "events"},
	models.ComponentFlowchart: {`{"events": [{"step": 1, "title": "...", "description": "..."}]}`, "events"},
	models.ComponentGrid:      {`{"cards": [{"title": "...", "content": "..."}]}`, "cards"},
	models.ComponentDropdown:  {`{"options": [{"label": "...", "content": "..."}]}`, "options"},
	models.ComponentSelector:  {`{"options": [{"label": "...", "content": "..."}]}`, "options"},
	models.ComponentForm:      {`{"fields": [{"label": "...", "value": "..."}]}`, "fields"},
	models.ComponentText:      {`{"content": "..."}`, "content"},
}

// generateModelContent asks the model to fill a component's expected shape
func (s *UISynthesizer) generateModelContent(
	ctx context.Context,
	component models.UIComponentSpec,
	result *models.AnalysisResult,
) interface{} {
	shape, ok := componentShapes[component.Kind]
	if !ok {
		return map[string]interface{}{"content": ""}
	}

	encoded, err := json.Marshal(result.JSONData)
	if err != nil {
		return emptyShape(component.Kind)
	}
	data := string(encoded)
	if len(data) > 12000 {
		data = data[:12000]
	}

	prompt := fmt.Sprintf(`Generate content for a "%s" UI component titled %q (%s)
from this legal document analysis data:

%s

Return ONLY a JSON object of the form %s, no markdown.`,
		component.Kind, component.Title, component.Description, data, shape.shape)

	obj := llm.ExtractObject(s.client.Complete(ctx, prompt))
	if obj == nil {
		return emptyShape(component.Kind)
	}
	if _, present := obj[shape.key]; !present {
		return emptyShape(component.Kind)
	}
	return obj
}

// emptyShape returns the valid zero content for a component kind
func emptyShape(kind models.ComponentKind) interface{} {
	switch kind {
	case models.ComponentTable:
		return map[string]interface{}{"columns": []string{}, "rows": [][]string{}}
	case models.ComponentChart:
		return map[string]interface{}{"data": []interface{}{}}
	case models.ComponentTimeline, models.ComponentFlowchart:
		return map[string]interface{}{"events": []interface{}{}}
	case models.ComponentGrid:
		return map[string]interface{}{"cards": []interface{}{}}
	case models.ComponentDropdown, models.ComponentSelector:
		return map[string]interface{}{"options": []interface{}{}}
	case models.ComponentForm:
		return map[string]interface{}{"fields": []interface{}{}}
	case models.ComponentImages:
		return map[string]interface{}{"images": []string{}}
	case models.ComponentWebsearch:
		return map[string]interface{}{"results": []SearchResult{}}
	default:
		return map[string]interface{}{"content": ""}
	}
}

// projectDisplayData normalizes the generated content into the rendering
// projection, independent of the component-spec representation
func (s *UISynthesizer) projectDisplayData(
	result *models.AnalysisResult,
	header rewrittenHeader,
	components []models.UIComponentSpec,
	content map[string]interface{},
) models.DisplayData {
	display := models.DisplayData{
		Summary:     header.Summary,
		Clauses:     clauseRecords(result.JSONData),
		RelatedInfo: header.Questions,
		Tables:      []interface{}{},
		FlowCharts:  []interface{}{},
		Images:      imageURLs(result.JSONData),
	}

	for _, component := range components {
		generated, ok := content[component.ID]
		if !ok {
			continue
		}
		switch component.Kind {
		case models.ComponentTable:
			display.Tables = append(display.Tables, generated)
		case models.ComponentFlowchart, models.ComponentTimeline:
			display.FlowCharts = append(display.FlowCharts, generated)
		}
	}
	return display
}

// distinctContentCount counts components whose generated content differs
func distinctContentCount(components []models.UIComponentSpec, content map[string]interface{}) int {
	signatures := make(map[string]bool)
	for _, component := range components {
		generated, ok := content[component.ID]
		if !ok {
			continue
		}
		encoded, err := json.Marshal(generated)
		if err != nil {
			continue
		}
		signatures[string(encoded)] = true
	}
	return len(signatures)
}

func themeForCategory(category models.Category) string {
	switch category {
	case models.CategoryLitigation:
		return "slate"
	case models.CategoryProperty:
		return "emerald"
	case models.CategoryPersonal:
		return "amber"
	default:
		return "indigo"
	}
}

func jsonDataKeys(jsonData models.JSONMap) []string {
	keys := make([]string, 0, len(jsonData))
	for key := range jsonData {
		keys = append(keys, key)
	}
	return keys
}

func hasInteractive(components []models.UIComponentSpec) bool {
	for _, spec := range components {
		if spec.Kind.IsInteractive() {
			return true
		}
	}
	return false
}

// hasImages reports whether jsonData carries any image entries
func hasImages(jsonData models.JSONMap) bool {
	return len(imageURLs(jsonData)) > 0
}

func imageURLs(jsonData models.JSONMap) []string {
	raw, ok := jsonData["images"]
	if !ok {
		return []string{}
	}
	switch images := raw.(type) {
	case []string:
		return images
	case []interface{}:
		urls := make([]string, 0, len(images))
		for _, image := range images {
			if url, ok := image.(string); ok && url != "" {
				urls = append(urls, url)
			}
		}
		return urls
	}
	return []string{}
}

// clauseRecords reads the clause list back out of jsonData
func clauseRecords(jsonData models.JSONMap) []models.Clause {
	switch clauses := jsonData["clauses"].(type) {
	case []models.Clause:
		return clauses
	case []interface{}:
		records := make([]models.Clause, 0, len(clauses))
		encoded, err := json.Marshal(clauses)
		if err != nil {
			return records
		}
		if err := json.Unmarshal(encoded, &records); err != nil {
			return []models.Clause{}
		}
		return records
	}
	return []models.Clause{}
}

// hasDateLikeArray reports whether jsonData carries a non-empty array of
// objects with a "date" field (including the dates list itself)
func hasDateLikeArray(jsonData models.JSONMap) bool {
	for _, value := range jsonData {
		switch arr := value.(type) {
		case models.DateEvents:
			if len(arr) > 0 {
				return true
			}
		case []interface{}:
			for _, item := range arr {
				if obj, ok := item.(map[string]interface{}); ok {
					if _, hasDate := obj["date"]; hasDate {
						return true
					}
				}
			}
		}
	}
	return false
}

// hasStringArray reports whether jsonData[key] is a non-empty string array
func hasStringArray(jsonData models.JSONMap, key string) bool {
	switch arr := jsonData[key].(type) {
	case []string:
		return len(arr) > 0
	case []interface{}:
		for _, item := range arr {
			if _, ok := item.(string); ok {
				return true
			}
		}
	}
	return false
}
