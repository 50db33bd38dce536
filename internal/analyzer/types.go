package analyzer

import (
	"sort"
	"strings"
)

// Corpus is the merged text of every submitted file.
type Corpus string

// NewCorpus joins file contents with newlines, ordered by file name so the
// same mapping always yields the same corpus.
func NewCorpus(files map[string]string) Corpus {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, files[name])
	}
	return Corpus(strings.Join(parts, "\n"))
}

type Category string

const (
	CategoryPattern              Category = "pattern"
	CategoryBehavioralLoop       Category = "behavioral_loop"
	CategoryPsychologicalTrigger Category = "psychological_trigger"
	CategoryEmergentProperty     Category = "emergent_property"
	CategoryPersuasion           Category = "persuasion_mechanism"
)

// Finding is a single detection. Confidence is a literal per rule, never
// derived from match counts. The optional fields keep the keys existing
// consumers read for each finding kind.
type Finding struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Confidence  float64  `json:"confidence,omitempty"`
	Description string   `json:"description,omitempty"`

	Indicator string `json:"consciousness_indicator,omitempty"`
	Detected  bool   `json:"detected,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Effect    string `json:"effect,omitempty"`
	Function  string `json:"function,omitempty"`
	Mechanism string `json:"mechanism,omitempty"`
}

type Factor struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

type Prediction struct {
	Timeline   string  `json:"timeline"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Impact     string  `json:"impact"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

type RiskAssessment struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	Status          string    `json:"status"`
	Recommendations []string  `json:"recommendations"`
}

// Metrics re-exposes four of the five sub-scores; adaptation only feeds the
// aggregate.
type Metrics struct {
	TotalLines         int     `json:"total_lines"`
	Functions          int     `json:"functions"`
	Classes            int     `json:"classes"`
	ComplexityScore    float64 `json:"complexity_score"`
	SelfReferenceScore float64 `json:"self_reference_score"`
	AutonomyScore      float64 `json:"autonomy_score"`
	EmergenceScore     float64 `json:"emergence_score"`
}

// Report is the complete result of one analysis call.
type Report struct {
	ConsciousnessLevel    float64        `json:"consciousness_level"`
	PatternsDetected      []Finding      `json:"patterns_detected"`
	BehavioralLoops       []Finding      `json:"behavioral_loops"`
	PsychologicalTriggers []Finding      `json:"psychological_triggers"`
	EmergentProperties    []Finding      `json:"emergent_properties"`
	PersuasionMechanisms  []Finding      `json:"persuasion_mechanisms"`
	FuturePredictions     []Prediction   `json:"future_predictions"`
	Metrics               Metrics        `json:"metrics"`
	RiskAssessment        RiskAssessment `json:"risk_assessment"`
}
