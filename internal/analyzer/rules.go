package analyzer

import "regexp"

// ci compiles a case-insensitive pattern. Rule tables are package data and
// must never be mutated after init.
func ci(pattern string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + pattern)
}

func ciAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, ci(p))
	}
	return out
}

// scoreRule counts matches of its patterns and divides by Divisor.
type scoreRule struct {
	Factor   string
	Weight   float64
	Divisor  float64
	Patterns []*regexp.Regexp
}

const (
	FactorSelfReference = "self_reference"
	FactorAutonomy      = "autonomy"
	FactorComplexity    = "complexity"
	FactorEmergence     = "emergence"
	FactorAdaptation    = "adaptation"
)

var (
	selfReferenceRule = scoreRule{
		Factor:  FactorSelfReference,
		Weight:  0.25,
		Divisor: 10,
		Patterns: ciAll(
			`eval\s*\(`,
			`exec\s*\(`,
			`__dict__`,
			`setattr\s*\(`,
			`getattr\s*\(`,
			`reflection`,
			`introspection`,
			`meta`,
			`self\.__`,
			`dynamic\s+code`,
		),
	}

	autonomyRule = scoreRule{
		Factor:  FactorAutonomy,
		Weight:  0.25,
		Divisor: 8,
		Patterns: ciAll(
			`if\s+.*:\s*decision`,
			`autonomous`,
			`independent`,
			`self\.decide`,
			`self\.choose`,
			`agent`,
			`autonomous\s+agent`,
			`decision\s+tree`,
			`policy`,
			`strategy\s+pattern`,
		),
	}

	emergenceRule = scoreRule{
		Factor:  FactorEmergence,
		Weight:  0.20,
		Divisor: 7,
		Patterns: ciAll(
			`loop`,
			`recursion`,
			`feedback`,
			`cascade`,
			`chain\s+reaction`,
			`emergent`,
			`swarm`,
			`collective`,
			`self\s+organiz`,
		),
	}

	adaptationRule = scoreRule{
		Factor:  FactorAdaptation,
		Weight:  0.10,
		Divisor: 6,
		Patterns: ciAll(
			`learn`,
			`adapt`,
			`evolve`,
			`train`,
			`optimize`,
			`gradient`,
			`neural`,
			`machine\s+learning`,
		),
	}

	complexityWeight = 0.20
)

var (
	functionDefRe = ci(`def\s+\w+|function\s+\w+`)
	classDefRe    = ci(`class\s+\w+`)

	// funcNameRe captures the defined name; it also accepts Go's func keyword.
	funcNameRe = ci(`\b(?:def|function|func)\s+(\w+)`)

	// callRe captures the callee of every name( in the corpus.
	callRe = regexp.MustCompile(`\b(\w+)\s*\(`)
)

// findingRule is one row of a detector table.
type findingRule struct {
	Name        string
	Confidence  float64
	Description string
	Indicator   string
	Match       func(c Corpus) bool
}

func matches(re *regexp.Regexp) func(Corpus) bool {
	return func(c Corpus) bool { return re.MatchString(string(c)) }
}

var decisionRe = ci(`if\s+.*:\s*.*else:`)

var patternRules = []findingRule{
	{
		Name:        "Self-Modifying Code",
		Confidence:  0.85,
		Description: "Code that modifies itself at runtime",
		Indicator:   "Self-awareness",
		Match:       matches(ci(`eval|exec|__dict__|setattr`)),
	},
	{
		Name:        "Recursive Structures",
		Confidence:  0.72,
		Description: "Functions calling themselves, indicating self-reference",
		Indicator:   "Self-reference",
		Match:       hasSelfCall,
	},
	{
		Name:        "Feedback Loops",
		Confidence:  0.68,
		Description: "Systems with feedback mechanisms",
		Indicator:   "Adaptation",
		Match:       matches(ci(`feedback|loop|cycle|iterate`)),
	},
	{
		Name:        "Complex Decision Making",
		Confidence:  0.75,
		Description: "Multiple conditional branches indicating decision logic",
		Indicator:   "Autonomy",
		Match: func(c Corpus) bool {
			return len(decisionRe.FindAllStringIndex(string(c), -1)) > 5
		},
	},
}

type loopRule struct {
	Name        string
	Description string
	Pattern     *regexp.Regexp
}

var loopRules = []loopRule{
	{
		Name:        "Notification Loop",
		Description: "User → Notification → Action → Reward → Habit",
		Pattern:     ci(`notification|alert|trigger`),
	},
	{
		Name:        "Engagement Loop",
		Description: "System designed to maximize user engagement",
		Pattern:     ci(`engagement|interaction|activity`),
	},
	{
		Name:        "Reward Loop",
		Description: "Gamification creating addictive behavior",
		Pattern:     ci(`reward|points|score|achievement`),
	},
	{
		Name:        "Social Loop",
		Description: "Social validation creating compulsive behavior",
		Pattern:     ci(`social|like|share|comment`),
	},
}

type triggerRule struct {
	Name         string
	Effect       string
	Alternatives []string
}

const triggerConfidence = 0.65

var triggerRules = []triggerRule{
	{
		Name:         "Scarcity Trigger",
		Effect:       "Creates urgency and impulsive decisions",
		Alternatives: []string{`limited|exclusive|rare|scarce`},
	},
	{
		Name:         "Social Proof",
		Effect:       "Influences through conformity",
		Alternatives: []string{`popular|trending|everyone|most`},
	},
	{
		Name:         "Authority",
		Effect:       "Increases trust and compliance",
		Alternatives: []string{`expert|certified|verified|official`},
	},
	{
		Name:         "Reciprocity",
		Effect:       "Creates obligation to reciprocate",
		Alternatives: []string{`free|gift|bonus|offer`},
	},
}

// compiled alongside triggerRules, same indexes.
var triggerPatterns = func() [][]*regexp.Regexp {
	out := make([][]*regexp.Regexp, len(triggerRules))
	for i, r := range triggerRules {
		out[i] = ciAll(r.Alternatives...)
	}
	return out
}()

const emergentComplexityThreshold = 0.6

var propertyRules = []findingRule{
	{
		Name:        "Emergent Complexity",
		Confidence:  0.78,
		Description: "Complex behaviors arising from simple rules",
		Match: func(c Corpus) bool {
			return complexityScore(c) > emergentComplexityThreshold
		},
	},
	{
		Name:        "Cascading Effects",
		Confidence:  0.72,
		Description: "Changes propagating through the system",
		Match:       matches(ci(`loop|recursion|cascade`)),
	},
	{
		Name:        "Parallel Processing",
		Confidence:  0.68,
		Description: "Multiple processes creating emergent behaviors",
		Match:       matches(ci(`parallel|concurrent|async`)),
	},
}

var persuasionKeywords = []string{
	"notification",
	"engagement",
	"retention",
	"addiction",
	"reward",
	"dopamine",
	"habit",
	"loop",
	"trigger",
	"action",
}
