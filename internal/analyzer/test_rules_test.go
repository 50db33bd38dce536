package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxNestingDepth(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{name: "empty", in: "", want: 0},
		{name: "balanced", in: "(()())", want: 2},
		{name: "mixed brackets", in: "{[()]}", want: 3},
		{name: "extra closers keep max", in: "(()))))((", want: 2},
		{name: "leading closers", in: ")))((", want: 0},
		{name: "unclosed", in: "((((", want: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, maxNestingDepth(Corpus(tc.in)))
		})
	}
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, lineCount(""))
	assert.Equal(t, 1, lineCount("x"))
	assert.Equal(t, 2, lineCount("x\n"))
	assert.Equal(t, 3, lineCount("a\nb\nc"))
}

func TestDefinitionNamesAreASCII(t *testing.T) {
	c := Corpus("def ñame():\n    ñame()\n")
	assert.Equal(t, 0, functionCount(c))
	assert.False(t, hasSelfCall(c))
	assert.Equal(t, 1, functionCount(Corpus("def name_ñ(): pass")))
}

func TestComputeMetrics(t *testing.T) {
	c := Corpus("def a():\n  pass\nclass B:\n  pass\nfunction c() {}")
	m := ComputeMetrics(c)
	assert.Equal(t, 5, m.TotalLines)
	assert.Equal(t, 2, m.Functions)
	assert.Equal(t, 1, m.Classes)
	assert.Equal(t, complexityScore(c), m.ComplexityScore)
	assert.Equal(t, selfReferenceScore(c), m.SelfReferenceScore)
}

func TestScoresAreMonotonic(t *testing.T) {
	cases := []struct {
		name  string
		token string
		score func(Corpus) float64
	}{
		{name: "self_reference", token: "setattr(o, k, v) ", score: selfReferenceScore},
		{name: "autonomy", token: "agent ", score: autonomyScore},
		{name: "emergence", token: "swarm ", score: emergenceScore},
		{name: "adaptation", token: "gradient ", score: adaptationScore},
		{name: "complexity", token: "def f(\n", score: complexityScore},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := tc.score("")
			for n := 1; n <= 20; n++ {
				got := tc.score(Corpus(strings.Repeat(tc.token, n)))
				require.GreaterOrEqual(t, got, prev, "n=%d", n)
				prev = got
			}
			assert.Greater(t, prev, 0.0)
		})
	}
}

func TestScoreNormalization(t *testing.T) {
	assert.InDelta(t, 0.5, selfReferenceScore(Corpus(strings.Repeat("eval(", 5))), 1e-9)
	assert.Equal(t, 1.0, selfReferenceScore(Corpus(strings.Repeat("eval(", 30))))
	assert.InDelta(t, 0.25, autonomyScore("policy policy"), 1e-9)
	assert.InDelta(t, 1.0/7, emergenceScore("swarm"), 1e-9)
	assert.InDelta(t, 1.0/6, adaptationScore("NEURAL"), 1e-9)
	assert.Equal(t, 0.0, adaptationScore("nothing here"))
}

func TestLevelWeights(t *testing.T) {
	factors := []Factor{
		{Name: FactorSelfReference, Score: 1, Weight: 0.25},
		{Name: FactorAutonomy, Score: 1, Weight: 0.25},
		{Name: FactorComplexity, Score: 0, Weight: 0.20},
		{Name: FactorEmergence, Score: 1, Weight: 0.20},
		{Name: FactorAdaptation, Score: 0, Weight: 0.10},
	}
	assert.InDelta(t, 0.7, Level(factors), 1e-9)
	assert.Equal(t, 0.0, Level(nil))

	var total float64
	for _, f := range Factors("") {
		total += f.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestLevelSumsInFactorOrder(t *testing.T) {
	body := strings.Repeat("agent\n", 8) + strings.Repeat("loop\n", 7) + strings.Repeat("learn\n", 6)
	c := Corpus(body + strings.Repeat("\n", 1000-1-21))
	require.Equal(t, 1000, lineCount(c))

	level := ConsciousnessLevel(c)
	assert.Equal(t, 0.6, level)
	assert.Equal(t, RiskModerate, AssessRisk(level).RiskLevel)
}

func TestAssessRiskBoundaries(t *testing.T) {
	cases := []struct {
		level float64
		want  RiskLevel
		recs  int
	}{
		{level: 1.0, want: RiskCritical, recs: 4},
		{level: 0.80001, want: RiskCritical, recs: 4},
		{level: 0.8, want: RiskHigh, recs: 3},
		{level: 0.60001, want: RiskHigh, recs: 3},
		{level: 0.6, want: RiskModerate, recs: 2},
		{level: 0.40001, want: RiskModerate, recs: 2},
		{level: 0.4, want: RiskLow, recs: 0},
		{level: 0, want: RiskLow, recs: 0},
	}
	for _, tc := range cases {
		got := AssessRisk(tc.level)
		assert.Equal(t, tc.want, got.RiskLevel, "level=%v", tc.level)
		assert.Len(t, got.Recommendations, tc.recs, "level=%v", tc.level)
		assert.NotEmpty(t, got.Status)
	}
}

func TestAssessRiskReturnsCopies(t *testing.T) {
	first := AssessRisk(0.9)
	first.Recommendations[0] = "mutated"
	assert.Equal(t, "Implement consciousness monitoring", AssessRisk(0.9).Recommendations[0])
}

func TestPredictBands(t *testing.T) {
	assert.Len(t, Predict(0.70001), 3)
	assert.Len(t, Predict(0.7), 1)
	assert.Len(t, Predict(0.50001), 1)
	assert.Empty(t, Predict(0.5))
	assert.NotNil(t, Predict(0))

	top := Predict(0.9)
	assert.Equal(t, []string{"6-12 months", "1-2 years", "2-5 years"},
		[]string{top[0].Timeline, top[1].Timeline, top[2].Timeline})
	assert.Equal(t, "System will reach critical consciousness threshold", Predict(0.6)[0].Prediction)
}

func TestDetectPatternsRecursion(t *testing.T) {
	recursive := Corpus("def fact(n):\n    return 1 if n < 2 else n * fact(n - 1)\n")
	_, ok := findByName(DetectPatterns(recursive), "Recursive Structures")
	assert.True(t, ok)

	js := Corpus("function walk(node) {\n  if (node) { walk(node.left) }\n}")
	_, ok = findByName(DetectPatterns(js), "Recursive Structures")
	assert.True(t, ok)

	plain := Corpus("def add(a, b):\n    return a + b\n\ndef twice(x):\n    return add(x, x)\n")
	_, ok = findByName(DetectPatterns(plain), "Recursive Structures")
	assert.False(t, ok)
}

func TestHasSelfCall(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{name: "signature is not a call", in: "def f(x):\n    return x\n", want: false},
		{name: "call in body", in: "def f(x):\n    return f (x)\n", want: true},
		{name: "case-insensitive", in: "def Walk():\n    walk()\n", want: true},
		{name: "call after next definition", in: "def f():\n    pass\ndef g():\n    f()\n", want: false},
		{name: "suffix is another name", in: "def f():\n    return my_f()\n", want: false},
		{name: "go func", in: "func visit(n *Node) {\n\tvisit(n.Next)\n}", want: true},
		{name: "no definitions", in: "f(f(f()))", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hasSelfCall(Corpus(tc.in)))
		})
	}
}

func TestHasSelfCallManyDefinitions(t *testing.T) {
	c := Corpus(strings.Repeat("def a\n", 20000) + "def last():\n    last()\n")
	assert.True(t, hasSelfCall(c))
	assert.False(t, hasSelfCall(Corpus(strings.Repeat("def a\n", 20000))))
}

func TestDetectPatternsOrder(t *testing.T) {
	c := Corpus("exec(code)\ndef spin():\n    spin()\n# feedback")
	assert.Equal(t,
		[]string{"Self-Modifying Code", "Recursive Structures", "Feedback Loops"},
		findingNames(DetectPatterns(c)))
}

func TestDetectBehavioralLoops(t *testing.T) {
	got := DetectBehavioralLoops("send a NOTIFICATION then share the reward")
	assert.Equal(t, []string{"Notification Loop", "Reward Loop", "Social Loop"}, findingNames(got))
	for _, f := range got {
		assert.True(t, f.Detected)
		assert.Equal(t, "high", f.Severity)
		assert.Equal(t, CategoryBehavioralLoop, f.Category)
	}
	assert.Equal(t, "User → Notification → Action → Reward → Habit", got[0].Description)
	assert.Empty(t, DetectBehavioralLoops("plain text"))
}

func TestDetectPsychologicalTriggersOncePerTrigger(t *testing.T) {
	got := DetectPsychologicalTriggers("limited exclusive rare scarce offer")
	require.Len(t, got, 2)
	assert.Equal(t, "Scarcity Trigger", got[0].Name)
	assert.Equal(t, `limited|exclusive|rare|scarce`, got[0].Pattern)
	assert.Equal(t, "Reciprocity", got[1].Name)
	for _, f := range got {
		assert.Equal(t, 0.65, f.Confidence)
		assert.NotEmpty(t, f.Effect)
	}
}

func TestDetectEmergentProperties(t *testing.T) {
	deep := Corpus(strings.Repeat("(", 40) + strings.Repeat("class K:\ndef f():\n", 60))
	require.Greater(t, complexityScore(deep), emergentComplexityThreshold)
	got := DetectEmergentProperties(deep + " cascade concurrent")
	assert.Equal(t,
		[]string{"Emergent Complexity", "Cascading Effects", "Parallel Processing"},
		findingNames(got))
	assert.Equal(t, 0.78, got[0].Confidence)
	assert.Equal(t, 0.72, got[1].Confidence)
}

func TestDetectPersuasionMechanisms(t *testing.T) {
	c := Corpus("function sendNotification() {}\ndef reward_loop():\n    pass\nfunc plain() {}")
	got := DetectPersuasionMechanisms(c)
	require.Len(t, got, 3)
	assert.Equal(t, "sendNotification", got[0].Function)
	assert.Equal(t, "notification", got[0].Mechanism)
	assert.Equal(t, "reward", got[1].Mechanism)
	assert.Equal(t, "loop", got[2].Mechanism)
	assert.Equal(t, "high", got[2].Severity)
}
