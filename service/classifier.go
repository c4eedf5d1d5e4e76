package service

import (
	"regexp"
	"strings"

	"policyassist-backend/models"
)

// queryPatterns holds the lexical signal for each query type. Evaluation
// order is fixed: comparative wins over numeric, numeric over procedural,
// procedural over factual lookup. Factual lookup is the fallback when no
// pattern fires.
var queryPatterns = []struct {
	queryType models.QueryType
	topK      int
	pattern   *regexp.Regexp
}{
	{
		queryType: models.QueryTypeComparative,
		topK:      8,
		pattern:   regexp.MustCompile(`(?i)\b(compare|comparison|versus|vs\.?|difference|differ|differs|better|worse|between .+ and )\b`),
	},
	{
		queryType: models.QueryTypeNumeric,
		topK:      4,
		pattern:   regexp.MustCompile(`(?i)\b(how much|how many|amount|limit|maximum|minimum|cap|deductible|premium|percentage|percent|rate|fee|cost|price|days?|months?|years?|\d+)\b`),
	},
	{
		queryType: models.QueryTypeProcedural,
		topK:      6,
		pattern:   regexp.MustCompile(`(?i)\b(how (do|to|can|should)|steps?|process|procedure|submit|file a|apply|claim process|what happens if|obtain|request)\b`),
	},
}

const factualTopK = 5

// ClassifyQuery buckets a question into one of four types using lexical
// patterns only. Deterministic, no model call. The returned TopK controls
// retrieval depth downstream.
func ClassifyQuery(query string) models.QueryClassification {
	trimmed := strings.TrimSpace(query)
	for _, qp := range queryPatterns {
		if m := qp.pattern.FindString(trimmed); m != "" {
			return models.QueryClassification{
				QueryType: qp.queryType,
				TopK:      qp.topK,
				Reason:    "matched " + string(qp.queryType) + " term " + strings.ToLower(strings.TrimSpace(m)),
			}
		}
	}
	return models.QueryClassification{
		QueryType: models.QueryTypeFactualLookup,
		TopK:      factualTopK,
		Reason:    "no specialized pattern matched",
	}
}
