package prompts

import (
	"fmt"
	"log"
	"regexp"

	"texturelab/apperrors"
)

// Variation strategies. Each one is simple string manipulation; the point
// is producing count distinct prompts with a record of what changed.
const (
	StrategyKeywordSubstitution = "keyword_substitution"
	StrategyDescriptorAddition  = "descriptor_addition"
	StrategyEmphasisShifting    = "emphasis_shifting"
	StrategyKeywordCombination  = "keyword_combination"
	StrategyParameterTweaking   = "parameter_tweaking"
)

var strategyOrder = []string{
	StrategyKeywordSubstitution,
	StrategyDescriptorAddition,
	StrategyEmphasisShifting,
	StrategyKeywordCombination,
	StrategyParameterTweaking,
}

var descriptorPhrases = []string{
	"with flowing lines",
	"with subtle texture",
	"with organic growth",
	"with geometric precision",
	"with natural randomness",
	"with structured chaos",
}

var emphasisModifiers = []string{
	"bold", "subtle", "delicate", "strong", "gentle", "dramatic",
}

var parameterPhrases = []string{
	"high contrast",
	"low contrast",
	"fine detail",
	"coarse texture",
	"smooth transitions",
	"sharp edges",
}

// Variation is one generated prompt plus a record of how it was derived.
type Variation struct {
	Prompt    string   `json:"prompt"`
	Strategy  string   `json:"strategy"`
	Changes   []string `json:"changes,omitempty"`
	Duplicate bool     `json:"duplicate,omitempty"` // true when the synonym space was exhausted
}

// VariationEngine produces prompt variations within configured count
// bounds. It is pure with respect to persisted state and never calls the
// image API.
type VariationEngine struct {
	Table    *CategoryTable
	MinCount int
	MaxCount int
}

// NewVariationEngine creates an engine over the given category table.
func NewVariationEngine(table *CategoryTable, minCount, maxCount int) *VariationEngine {
	return &VariationEngine{Table: table, MinCount: minCount, MaxCount: maxCount}
}

// Vary produces count prompt variations of basePrompt. Strategies rotate
// deterministically by index, so the same inputs always yield the same
// sequence. When the keyword/synonym space cannot support count distinct
// prompts the duplicates are flagged and logged, never dropped.
func (e *VariationEngine) Vary(basePrompt string, count int) ([]Variation, error) {
	if count < e.MinCount || count > e.MaxCount {
		return nil, apperrors.NewValidation("count",
			fmt.Sprintf("variation count must be between %d and %d, got %d", e.MinCount, e.MaxCount, count))
	}

	keywords := ExtractKeywords(basePrompt)
	variations := make([]Variation, 0, count)
	seen := make(map[string]bool, count)

	for i := 0; i < count; i++ {
		v := e.applyStrategy(basePrompt, strategyOrder[i%len(strategyOrder)], keywords, i)
		if seen[v.Prompt] {
			v.Duplicate = true
			log.Printf("prompts: variation %d duplicates an earlier prompt (synonym space exhausted for %q)", i, basePrompt)
		}
		seen[v.Prompt] = true
		variations = append(variations, v)
	}
	return variations, nil
}

func (e *VariationEngine) applyStrategy(basePrompt, strategy string, keywords []string, index int) Variation {
	switch strategy {
	case StrategyKeywordSubstitution:
		return e.keywordSubstitution(basePrompt, keywords, index)
	case StrategyEmphasisShifting:
		return emphasisShifting(basePrompt, index)
	case StrategyKeywordCombination:
		return e.keywordCombination(basePrompt, keywords, index)
	case StrategyParameterTweaking:
		return parameterTweaking(basePrompt, index)
	default:
		return descriptorAddition(basePrompt, index)
	}
}

// keywordSubstitution replaces up to two ##keywords with a synonym from the
// same category. Prompts without categorized keywords fall back to
// descriptor addition so the slot still produces a change.
func (e *VariationEngine) keywordSubstitution(prompt string, keywords []string, index int) Variation {
	newPrompt := prompt
	var changes []string

	limit := len(keywords)
	if limit > 2 {
		limit = 2
	}
	for _, kw := range keywords[:limit] {
		alts := e.Table.Alternatives(kw)
		if len(alts) == 0 {
			continue
		}
		replacement := alts[index%len(alts)]
		newPrompt = replaceMarker(newPrompt, kw, replacement)
		changes = append(changes, fmt.Sprintf("##%s -> ##%s", kw, replacement))
	}

	if len(changes) == 0 {
		return descriptorAddition(prompt, index)
	}
	return Variation{Prompt: newPrompt, Strategy: StrategyKeywordSubstitution, Changes: changes}
}

// keywordCombination appends a sibling keyword from the category of an
// existing keyword, widening the prompt instead of replacing.
func (e *VariationEngine) keywordCombination(prompt string, keywords []string, index int) Variation {
	for _, kw := range keywords {
		alts := e.Table.Alternatives(kw)
		if len(alts) == 0 {
			continue
		}
		added := alts[index%len(alts)]
		return Variation{
			Prompt:   fmt.Sprintf("%s, ##%s", prompt, added),
			Strategy: StrategyKeywordCombination,
			Changes:  []string{fmt.Sprintf("added ##%s", added)},
		}
	}
	return descriptorAddition(prompt, index)
}

func descriptorAddition(prompt string, index int) Variation {
	descriptor := descriptorPhrases[index%len(descriptorPhrases)]
	return Variation{
		Prompt:   fmt.Sprintf("%s, %s", prompt, descriptor),
		Strategy: StrategyDescriptorAddition,
		Changes:  []string{fmt.Sprintf("added: %s", descriptor)},
	}
}

func emphasisShifting(prompt string, index int) Variation {
	modifier := emphasisModifiers[index%len(emphasisModifiers)]
	return Variation{
		Prompt:   fmt.Sprintf("%s %s", modifier, prompt),
		Strategy: StrategyEmphasisShifting,
		Changes:  []string{fmt.Sprintf("added emphasis: %s", modifier)},
	}
}

func parameterTweaking(prompt string, index int) Variation {
	parameter := parameterPhrases[index%len(parameterPhrases)]
	return Variation{
		Prompt:   fmt.Sprintf("%s, %s", prompt, parameter),
		Strategy: StrategyParameterTweaking,
		Changes:  []string{fmt.Sprintf("added parameter: %s", parameter)},
	}
}

// replaceMarker swaps ##old for ##new in the prompt text. Extraction
// lowercases keywords, so the match ignores case in the source text.
func replaceMarker(prompt, old, replacement string) string {
	re := regexp.MustCompile(`(?i)##` + regexp.QuoteMeta(old) + `\b`)
	return re.ReplaceAllString(prompt, "##"+replacement)
}
