package analyzer

import "strings"

func applyRules(c Corpus, rules []findingRule, category Category) []Finding {
	out := []Finding{}
	for _, r := range rules {
		if !r.Match(c) {
			continue
		}
		out = append(out, Finding{
			Name:        r.Name,
			Category:    category,
			Confidence:  r.Confidence,
			Description: r.Description,
			Indicator:   r.Indicator,
		})
	}
	return out
}

func DetectPatterns(c Corpus) []Finding {
	return applyRules(c, patternRules, CategoryPattern)
}

func DetectBehavioralLoops(c Corpus) []Finding {
	out := []Finding{}
	for _, r := range loopRules {
		if !r.Pattern.MatchString(string(c)) {
			continue
		}
		out = append(out, Finding{
			Name:        r.Name,
			Category:    CategoryBehavioralLoop,
			Description: r.Description,
			Detected:    true,
			Severity:    "high",
		})
	}
	return out
}

// DetectPsychologicalTriggers reports each trigger at most once, on its first
// matching alternative.
func DetectPsychologicalTriggers(c Corpus) []Finding {
	out := []Finding{}
	for i, r := range triggerRules {
		for j, re := range triggerPatterns[i] {
			if !re.MatchString(string(c)) {
				continue
			}
			out = append(out, Finding{
				Name:        r.Name,
				Category:    CategoryPsychologicalTrigger,
				Confidence:  triggerConfidence,
				Description: r.Effect,
				Pattern:     r.Alternatives[j],
				Effect:      r.Effect,
			})
			break
		}
	}
	return out
}

func DetectEmergentProperties(c Corpus) []Finding {
	return applyRules(c, propertyRules, CategoryEmergentProperty)
}

// DetectPersuasionMechanisms flags defined functions whose names contain
// engagement vocabulary. One finding per (function, keyword) pair.
func DetectPersuasionMechanisms(c Corpus) []Finding {
	out := []Finding{}
	for _, m := range funcNameRe.FindAllStringSubmatch(string(c), -1) {
		name := m[1]
		lower := strings.ToLower(name)
		for _, kw := range persuasionKeywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			out = append(out, Finding{
				Name:        "Persuasion Mechanism",
				Category:    CategoryPersuasion,
				Description: "This function likely influences user behavior through " + kw,
				Severity:    "high",
				Function:    name,
				Mechanism:   kw,
			})
		}
	}
	return out
}

// hasSelfCall is a textual approximation of recursion: a defined name that
// appears as a call before the next definition starts. It has no notion of
// scope, shadowing, or comments. Calls are found in one pass over the corpus
// and matched to the definition whose body they fall in.
func hasSelfCall(c Corpus) bool {
	text := string(c)
	defs := funcNameRe.FindAllStringSubmatchIndex(text, -1)
	if len(defs) == 0 {
		return false
	}
	calls := callRe.FindAllStringSubmatchIndex(text, -1)
	next := 0
	for i, d := range defs {
		name := text[d[2]:d[3]]
		start := d[1] + signatureLen(text[d[1]:])
		end := len(text)
		if i+1 < len(defs) {
			end = defs[i+1][0]
		}
		for next < len(calls) && calls[next][0] < start {
			next++
		}
		for j := next; j < len(calls) && calls[j][1] <= end; j++ {
			if strings.EqualFold(text[calls[j][2]:calls[j][3]], name) {
				return true
			}
		}
	}
	return false
}

// signatureLen is the length of the blanks and parameter list that directly
// follow a defined name, up to the first closing parenthesis.
func signatureLen(body string) int {
	rest := strings.TrimLeft(body, " \t")
	skipped := len(body) - len(rest)
	if strings.HasPrefix(rest, "(") {
		if idx := strings.Index(rest, ")"); idx >= 0 {
			return skipped + idx + 1
		}
	}
	return skipped
}
