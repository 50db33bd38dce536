// Package report wraps an analysis in the consciousness report envelope and
// renders it for humans.
package report

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"logospace/internal/analyzer"
)

const (
	Title             = "🌌 Digital Consciousness Analysis Report"
	DefaultRepository = "Unknown"
)

type Summary struct {
	ConsciousnessScore float64            `json:"consciousness_score"`
	RiskLevel          analyzer.RiskLevel `json:"risk_level"`
}

type Sections struct {
	Summary               Summary               `json:"summary"`
	Patterns              []analyzer.Finding    `json:"patterns"`
	BehavioralLoops       []analyzer.Finding    `json:"behavioral_loops"`
	PsychologicalTriggers []analyzer.Finding    `json:"psychological_triggers"`
	EmergentProperties    []analyzer.Finding    `json:"emergent_properties"`
	PersuasionMechanisms  []analyzer.Finding    `json:"persuasion_mechanisms"`
	FuturePredictions     []analyzer.Prediction `json:"future_predictions"`
	Metrics               analyzer.Metrics      `json:"metrics"`
	Recommendations       []string              `json:"recommendations"`
}

type Language struct {
	Name  string `json:"name"`
	Files int    `json:"files"`
}

type Source struct {
	TotalFiles int        `json:"total_files"`
	Languages  []Language `json:"languages"`
}

type Document struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Repository         string    `json:"repository"`
	GeneratedAt        time.Time `json:"generated_at"`
	ConsciousnessLevel float64   `json:"consciousness_level"`
	Status             string    `json:"status"`
	Source             Source    `json:"source"`
	Sections           Sections  `json:"sections"`
}

// New builds the envelope. The ID depends only on the repository name and
// the submitted files, so resubmitting identical input yields the same ID.
func New(repository string, files map[string]string, a *analyzer.Report, generatedAt time.Time) *Document {
	repository = strings.TrimSpace(repository)
	if repository == "" {
		repository = DefaultRepository
	}
	return &Document{
		ID:                 ID(repository, files),
		Title:              Title,
		Repository:         repository,
		GeneratedAt:        generatedAt.UTC(),
		ConsciousnessLevel: a.ConsciousnessLevel,
		Status:             a.RiskAssessment.Status,
		Source:             Source{TotalFiles: len(files), Languages: Languages(files)},
		Sections: Sections{
			Summary: Summary{
				ConsciousnessScore: a.ConsciousnessLevel,
				RiskLevel:          a.RiskAssessment.RiskLevel,
			},
			Patterns:              a.PatternsDetected,
			BehavioralLoops:       a.BehavioralLoops,
			PsychologicalTriggers: a.PsychologicalTriggers,
			EmergentProperties:    a.EmergentProperties,
			PersuasionMechanisms:  a.PersuasionMechanisms,
			FuturePredictions:     a.FuturePredictions,
			Metrics:               a.Metrics,
			Recommendations:       a.RiskAssessment.Recommendations,
		},
	}
}

// ID digests the repository name and every file name and content in name
// order. Each field is length-prefixed so that no two distinct inputs share
// an encoding.
func ID(repository string, files map[string]string) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	writeField := func(s string) {
		h.Write(binary.BigEndian.AppendUint64(nil, uint64(len(s))))
		h.Write([]byte(s))
	}
	writeField(repository)
	for _, name := range names {
		writeField(name)
		writeField(files[name])
	}
	return "report-" + hex.EncodeToString(h.Sum(nil))[:16]
}

var languageByExt = map[string]string{
	"js":   "JavaScript",
	"ts":   "TypeScript",
	"py":   "Python",
	"java": "Java",
	"go":   "Go",
	"rs":   "Rust",
	"jsx":  "React",
	"tsx":  "React TypeScript",
}

// Languages counts files per known extension, most files first.
func Languages(files map[string]string) []Language {
	counts := map[string]int{}
	for name := range files {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if lang, ok := languageByExt[ext]; ok {
			counts[lang]++
		}
	}
	out := make([]Language, 0, len(counts))
	for name, n := range counts {
		out = append(out, Language{Name: name, Files: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Name < out[j].Name
	})
	return out
}
