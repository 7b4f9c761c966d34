package models

// Category represents a top-level legal document classification
type Category string

const (
	CategoryContracts  Category = "Contracts & Agreements"
	CategoryLitigation Category = "Litigation & Court Documents"
	CategoryRegulatory Category = "Regulatory & Compliance"
	CategoryCorporate  Category = "Corporate Governance Documents"
	CategoryProperty   Category = "Property & Real Estate"
	CategoryGovernment Category = "Government & Administrative"
	CategoryPersonal   Category = "Personal Legal Documents"

	// Rejection labels assigned when a document fails the validity check
	CategoryNonLegal    Category = "NON-LEGAL DOCUMENT"
	CategoryPseudoLegal Category = "PSEUDO-LEGAL DOCUMENT"

	// CategoryUnknown is assigned when the classifier output matches no known
	// label. Unknown documents are analyzed with the Contracts pipeline.
	CategoryUnknown Category = "Unknown"
)

// AnalyzableCategories lists the seven categories that have an analysis
// pipeline, in classification priority order (most specific first).
var AnalyzableCategories = []Category{
	CategoryProperty,
	CategoryPersonal,
	CategoryGovernment,
	CategoryRegulatory,
	CategoryCorporate,
	CategoryLitigation,
	CategoryContracts,
}

// ParseCategory maps a raw label string to a Category.
// Unrecognized labels map to CategoryUnknown.
func ParseCategory(label string) Category {
	switch Category(label) {
	case CategoryContracts, CategoryLitigation, CategoryRegulatory,
		CategoryCorporate, CategoryProperty, CategoryGovernment,
		CategoryPersonal, CategoryNonLegal, CategoryPseudoLegal:
		return Category(label)
	}
	return CategoryUnknown
}

// IsRejection reports whether the category is one of the two rejection labels
func (c Category) IsRejection() bool {
	return c == CategoryNonLegal || c == CategoryPseudoLegal
}
