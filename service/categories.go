package service

import "lexlens-backend/models"

// CategorySpec parameterizes the analysis workflow for one legal category.
// The seven pipelines share one shape and differ only in these fields.
type CategorySpec struct {
	Category models.Category

	// SubCategories is the closed list a clause is classified into
	SubCategories []string

	// DocumentTypes is the closed list of overall document sub-types
	DocumentTypes []string

	// AttributeFields names the JSON fields the attribute-extraction prompt
	// asks for. Missing fields default to empty; extra fields are kept.
	AttributeFields []string

	// ClauseFocus is the prose describing what counts as a clause for this
	// category, spliced into the extraction prompt
	ClauseFocus string
}

var categorySpecs = map[models.Category]CategorySpec{
	models.CategoryContracts: {
		Category: models.CategoryContracts,
		SubCategories: []string{
			"Payment Terms", "Termination", "Confidentiality", "Indemnification",
			"Limitation of Liability", "Intellectual Property", "Dispute Resolution",
			"General Obligations",
		},
		DocumentTypes: []string{
			"Service Agreement", "Employment Contract", "Non-Disclosure Agreement",
			"Purchase Agreement", "Partnership Agreement", "Licensing Agreement",
			"Loan Agreement",
		},
		AttributeFields: []string{"parties", "obligations", "deadlines"},
		ClauseFocus:     "binding obligations, rights granted, payment and termination provisions",
	},
	models.CategoryLitigation: {
		Category: models.CategoryLitigation,
		SubCategories: []string{
			"Claims", "Defenses", "Motions", "Orders", "Evidence References",
			"Procedural Requirements", "Relief Sought",
		},
		DocumentTypes: []string{
			"Complaint", "Answer", "Motion", "Court Order", "Subpoena",
			"Judgment", "Affidavit", "Settlement Agreement",
		},
		AttributeFields: []string{"parties", "court", "deadlines"},
		ClauseFocus:     "allegations, rulings, procedural directives and filing deadlines",
	},
	models.CategoryRegulatory: {
		Category: models.CategoryRegulatory,
		SubCategories: []string{
			"Obligations", "Prohibitions", "Reporting Requirements", "Penalties",
			"Definitions", "Exemptions",
		},
		DocumentTypes: []string{
			"Regulatory Filing", "Compliance Report", "License", "Permit",
			"Inspection Report", "Compliance Policy",
		},
		AttributeFields: []string{"authority", "requirements", "deadlines"},
		ClauseFocus:     "compliance obligations, reporting duties, prohibited conduct and sanctions",
	},
	models.CategoryCorporate: {
		Category: models.CategoryCorporate,
		SubCategories: []string{
			"Voting Rights", "Board Powers", "Officer Duties", "Shareholder Rights",
			"Amendment Procedures", "Dissolution", "Capital Structure",
		},
		DocumentTypes: []string{
			"Articles of Incorporation", "Bylaws", "Board Resolution",
			"Shareholder Agreement", "Meeting Minutes", "Proxy Statement",
		},
		AttributeFields: []string{"parties", "powers", "procedures"},
		ClauseFocus:     "governance powers, voting thresholds, fiduciary duties and procedures",
	},
	models.CategoryProperty: {
		Category: models.CategoryProperty,
		SubCategories: []string{
			"Property Description", "Payment Terms", "Maintenance Obligations",
			"Transfer Conditions", "Encumbrances", "Termination",
		},
		DocumentTypes: []string{
			"Deed", "Mortgage", "Lease", "Title Document", "Easement",
			"Purchase Contract",
		},
		AttributeFields: []string{"parties", "property", "deadlines"},
		ClauseFocus:     "property descriptions, conveyance terms, liens and tenancy conditions",
	},
	models.CategoryGovernment: {
		Category: models.CategoryGovernment,
		SubCategories: []string{
			"Directives", "Eligibility Requirements", "Appeal Rights", "Deadlines",
			"Obligations", "Determinations",
		},
		DocumentTypes: []string{
			"Administrative Order", "Government Notice", "Public Record",
			"Tax Document", "Immigration Document", "Benefit Determination",
		},
		AttributeFields: []string{"agency", "requirements", "deadlines"},
		ClauseFocus:     "agency directives, eligibility conditions, response deadlines and appeal rights",
	},
	models.CategoryPersonal: {
		Category: models.CategoryPersonal,
		SubCategories: []string{
			"Beneficiary Designations", "Executor Powers", "Asset Distribution",
			"Guardianship", "Conditions", "Revocation",
		},
		DocumentTypes: []string{
			"Will", "Trust", "Power of Attorney", "Marriage Certificate",
			"Divorce Decree", "Adoption Papers",
		},
		AttributeFields: []string{"parties", "assets", "conditions"},
		ClauseFocus:     "bequests, appointed powers, beneficiary designations and conditions",
	},
}

// SpecForCategory returns the workflow spec for a category. Unknown and
// rejection categories fall back to the Contracts spec; the fallback is the
// intentional default-on-unknown-category policy, kept as a visible branch.
func SpecForCategory(category models.Category) CategorySpec {
	if spec, ok := categorySpecs[category]; ok {
		return spec
	}
	return categorySpecs[models.CategoryContracts]
}
