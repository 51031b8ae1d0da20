package debate

import "strings"

// Keyword sets per category. Matching is plain substring search over the
// lower-cased prompt; sets are disjoint by construction.
var (
	codeKeywords = []string{
		"write a function", "write code", "implement", "algorithm",
		"debug", "fix this code", "program", "script", "class",
		"codeforces", "leetcode", "solve:", "java", "python", "c++",
		"javascript", "code that", "function to", "method to",
	}
	academicKeywords = []string{
		"explain", "what is", "define", "how does", "why does",
		"theory", "principle", "concept", "mechanism", "process",
		"scientific", "research", "study", "formula",
	}
	creativeKeywords = []string{
		"write a story", "poem", "creative", "imagine", "brainstorm",
		"design", "create an idea", "innovative", "fictional",
		"narrative", "character", "plot",
	}
	analyticalKeywords = []string{
		"should i", "analyze", "compare", "evaluate", "assess",
		"pros and cons", "advantages", "disadvantages", "versus",
		"better than", "worth it", "which is best",
	}
	recommendationKeywords = []string{
		"recommend", "suggest", "best", "top", "which", "what should",
		"help me choose", "looking for", "need", "want to buy",
	}
)

// categoryPriority fixes the tie-break order when several categories share
// the maximum keyword count.
var categoryPriority = []struct {
	qt       QueryType
	keywords []string
}{
	{TypeCode, codeKeywords},
	{TypeAnalytical, analyticalKeywords},
	{TypeCreative, creativeKeywords},
	{TypeRecommendation, recommendationKeywords},
	{TypeAcademic, academicKeywords},
}

// Classify maps a prompt to a task category and execution flags. Pure,
// synchronous, and deterministic: identical input always yields identical
// output. The category with the strictly highest keyword count wins; ties
// resolve in the order code > analytical > creative > recommendation >
// academic. Zero matches yields general. Only code enables execution.
func Classify(prompt string) Classification {
	lower := strings.ToLower(prompt)

	max := 0
	scores := make(map[QueryType]int, len(categoryPriority))
	for _, cat := range categoryPriority {
		n := 0
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		scores[cat.qt] = n
		if n > max {
			max = n
		}
	}

	if max == 0 {
		return Classification{Type: TypeGeneral, EnableCodeExecution: false, Complexity: ComplexityLow}
	}

	for _, cat := range categoryPriority {
		if scores[cat.qt] == max {
			return Classification{
				Type:                cat.qt,
				EnableCodeExecution: cat.qt == TypeCode,
				Complexity:          complexityFor(cat.qt),
			}
		}
	}
	return Classification{Type: TypeGeneral, Complexity: ComplexityLow}
}

func complexityFor(qt QueryType) Complexity {
	switch qt {
	case TypeCode:
		return ComplexityHigh
	case TypeAnalytical, TypeRecommendation, TypeAcademic:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}
