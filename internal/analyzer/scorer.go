package analyzer

import "strings"

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// countMatches sums non-overlapping matches over every pattern.
func (r scoreRule) countMatches(c Corpus) int {
	total := 0
	for _, re := range r.Patterns {
		total += len(re.FindAllStringIndex(string(c), -1))
	}
	return total
}

func (r scoreRule) score(c Corpus) float64 {
	return clamp01(float64(r.countMatches(c)) / r.Divisor)
}

func selfReferenceScore(c Corpus) float64 { return selfReferenceRule.score(c) }
func autonomyScore(c Corpus) float64      { return autonomyRule.score(c) }
func emergenceScore(c Corpus) float64     { return emergenceRule.score(c) }
func adaptationScore(c Corpus) float64    { return adaptationRule.score(c) }

// lineCount treats an empty corpus as having no lines.
func lineCount(c Corpus) int {
	if c == "" {
		return 0
	}
	return strings.Count(string(c), "\n") + 1
}

func functionCount(c Corpus) int {
	return len(functionDefRe.FindAllStringIndex(string(c), -1))
}

func classCount(c Corpus) int {
	return len(classDefRe.FindAllStringIndex(string(c), -1))
}

// maxNestingDepth scans brackets without checking that they pair up or
// skipping strings and comments. The running depth may go negative; the
// recorded maximum never decreases.
func maxNestingDepth(c Corpus) int {
	maxDepth, depth := 0, 0
	for _, ch := range string(c) {
		switch ch {
		case '{', '[', '(':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}', ']', ')':
			depth--
		}
	}
	return maxDepth
}

func complexityScore(c Corpus) float64 {
	raw := float64(lineCount(c))/1000 +
		float64(functionCount(c))/50 +
		float64(classCount(c))/20 +
		float64(maxNestingDepth(c))/10
	return clamp01(raw / 4)
}

// Factors returns the five weighted sub-scores in a fixed order.
func Factors(c Corpus) []Factor {
	return []Factor{
		{Name: FactorSelfReference, Score: selfReferenceScore(c), Weight: selfReferenceRule.Weight},
		{Name: FactorAutonomy, Score: autonomyScore(c), Weight: autonomyRule.Weight},
		{Name: FactorComplexity, Score: complexityScore(c), Weight: complexityWeight},
		{Name: FactorEmergence, Score: emergenceScore(c), Weight: emergenceRule.Weight},
		{Name: FactorAdaptation, Score: adaptationScore(c), Weight: adaptationRule.Weight},
	}
}

// Level is the clamped weighted sum of the factors. Products are added left
// to right in factor order; a different summation order can move the result
// by one ulp and across a band threshold.
func Level(factors []Factor) float64 {
	level := 0.0
	for _, f := range factors {
		level += f.Score * f.Weight
	}
	return clamp01(level)
}

// ConsciousnessLevel scores a corpus end to end.
func ConsciousnessLevel(c Corpus) float64 {
	return Level(Factors(c))
}
