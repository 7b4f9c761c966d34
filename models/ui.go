package models

// ComponentKind identifies a UI building block the synthesizer can render
type ComponentKind string

const (
	ComponentTable     ComponentKind = "table"
	ComponentChart     ComponentKind = "chart"
	ComponentDropdown  ComponentKind = "dropdown"
	ComponentText      ComponentKind = "text"
	ComponentGrid      ComponentKind = "grid"
	ComponentForm      ComponentKind = "form"
	ComponentCard      ComponentKind = "card"
	ComponentTimeline  ComponentKind = "timeline"
	ComponentSelector  ComponentKind = "selector"
	ComponentFlowchart ComponentKind = "flowchart"
	ComponentImages    ComponentKind = "images"
	ComponentWebsearch ComponentKind = "websearch"
)

// ValidComponentKinds is the closed vocabulary the decision model must pick
// from; anything else is dropped during validation.
var ValidComponentKinds = map[ComponentKind]bool{
	ComponentTable:     true,
	ComponentChart:     true,
	ComponentDropdown:  true,
	ComponentText:      true,
	ComponentGrid:      true,
	ComponentForm:      true,
	ComponentCard:      true,
	ComponentTimeline:  true,
	ComponentSelector:  true,
	ComponentFlowchart: true,
	ComponentImages:    true,
	ComponentWebsearch: true,
}

// IsInteractive reports whether the kind is one of the interactive components
func (k ComponentKind) IsInteractive() bool {
	return k == ComponentDropdown || k == ComponentSelector
}

// UIComponentSpec describes one decided UI building block
type UIComponentSpec struct {
	ID          string        `json:"id"`
	Kind        ComponentKind `json:"kind"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
}

// DisplayData is a normalized projection of generated content suitable for
// direct rendering, independent of the component-spec representation
type DisplayData struct {
	Summary     string        `json:"summary"`
	Clauses     []Clause      `json:"clauses"`
	RelatedInfo []string      `json:"relatedInfo"`
	Tables      []interface{} `json:"tables"`
	FlowCharts  []interface{} `json:"flowCharts"`
	Images      []string      `json:"images"`
}

// UIPayload is the immutable output of the adaptive UI synthesizer
type UIPayload struct {
	Theme            string                 `json:"theme"`
	RenderOrder      []string               `json:"renderOrder"`
	Elements         []UIComponentSpec      `json:"elements"`
	GeneratedContent map[string]interface{} `json:"generatedContent"`
	DisplayData      DisplayData            `json:"displayData"`
	Metadata         JSONMap                `json:"metadata"`
}
