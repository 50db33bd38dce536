// Package analyzer scores source text with fixed regular-expression
// heuristics. It does not parse code; every measure is a textual proxy.
//
//	a := analyzer.New()
//	report, err := a.Analyze(map[string]string{"main.py": src})
//	if err != nil { ... }
//	fmt.Println(report.RiskAssessment.RiskLevel)
package analyzer

import (
	"errors"
	"fmt"
)

var (
	ErrNoFiles        = errors.New("no files provided")
	ErrCorpusTooLarge = errors.New("corpus too large")
)

// DefaultMaxCorpusBytes bounds the work per analysis. Every scoring rule and
// detector rescans the whole corpus, so CPU grows with this cap.
const DefaultMaxCorpusBytes = 512 << 10

// Analyzer holds only limits; it is safe for concurrent use.
type Analyzer struct {
	maxCorpusBytes int
}

type Option func(*Analyzer)

// WithMaxCorpusBytes caps the merged corpus size. Zero or negative disables
// the cap.
func WithMaxCorpusBytes(n int) Option {
	return func(a *Analyzer) { a.maxCorpusBytes = n }
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{maxCorpusBytes: DefaultMaxCorpusBytes}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) MaxCorpusBytes() int {
	if a == nil {
		return DefaultMaxCorpusBytes
	}
	return a.maxCorpusBytes
}

// Corpus validates files against the analyzer's limits and merges them.
func (a *Analyzer) Corpus(files map[string]string) (Corpus, error) {
	if len(files) == 0 {
		return "", ErrNoFiles
	}
	limit := a.MaxCorpusBytes()
	if limit > 0 {
		size := len(files) - 1
		for _, content := range files {
			size += len(content)
		}
		if size > limit {
			return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrCorpusTooLarge, size, limit)
		}
	}
	return NewCorpus(files), nil
}

func (a *Analyzer) Analyze(files map[string]string) (*Report, error) {
	c, err := a.Corpus(files)
	if err != nil {
		return nil, err
	}
	return AnalyzeCorpus(c), nil
}

// AnalyzeCorpus runs every heuristic once over c.
func AnalyzeCorpus(c Corpus) *Report {
	factors := Factors(c)
	level := Level(factors)
	return &Report{
		ConsciousnessLevel:    level,
		PatternsDetected:      DetectPatterns(c),
		BehavioralLoops:       DetectBehavioralLoops(c),
		PsychologicalTriggers: DetectPsychologicalTriggers(c),
		EmergentProperties:    DetectEmergentProperties(c),
		PersuasionMechanisms:  DetectPersuasionMechanisms(c),
		FuturePredictions:     Predict(level),
		Metrics:               metricsFrom(c, factors),
		RiskAssessment:        AssessRisk(level),
	}
}
