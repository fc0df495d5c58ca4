package catalog

import "strings"

const (
	IndustryTechnology  = "Technology"
	IndustryHealthcare  = "Healthcare"
	IndustryFinance     = "Finance"
	IndustryConsulting  = "Consulting"
	IndustryEngineering = "Engineering"
	IndustryEducation   = "Education"
	IndustryOther       = "Other"
)

// Industries lists every category InferIndustry can return.
var Industries = []string{
	IndustryTechnology,
	IndustryHealthcare,
	IndustryFinance,
	IndustryConsulting,
	IndustryEngineering,
	IndustryEducation,
	IndustryOther,
}

// The register has no sector column; keywords are checked in this order and the first hit wins.
var industryKeywords = []struct {
	industry string
	keywords []string
}{
	{IndustryTechnology, []string{"tech", "soft", "data", "cyber", "digital"}},
	{IndustryHealthcare, []string{"health", "nhs", "care", "medical", "hospital"}},
	{IndustryFinance, []string{"finance", "capital", "bank", "invest"}},
	{IndustryConsulting, []string{"consult", "solution", "partner"}},
	{IndustryEngineering, []string{"engineer", "construct", "build"}},
	{IndustryEducation, []string{"school", "college", "university", "education"}},
}

// InferIndustry guesses a sponsor's industry from its organisation name.
func InferIndustry(name string) string {
	n := strings.ToLower(name)
	for _, entry := range industryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(n, keyword) {
				return entry.industry
			}
		}
	}
	return IndustryOther
}
