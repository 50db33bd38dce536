package report

import (
	"fmt"
	"math"
	"strings"

	"logospace/internal/analyzer"
)

func percent(v float64) int {
	return int(math.Round(v * 100))
}

func writeFindings(b *strings.Builder, heading string, fs []analyzer.Finding) {
	if len(fs) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n", heading)
	for _, f := range fs {
		desc := f.Description
		if f.Function != "" {
			desc = fmt.Sprintf("`%s` %s", f.Function, desc)
		}
		if f.Confidence > 0 {
			fmt.Fprintf(b, "- **%s** (%d%% confidence): %s\n", f.Name, percent(f.Confidence), desc)
		} else {
			fmt.Fprintf(b, "- **%s** (%s): %s\n", f.Name, f.Severity, desc)
		}
	}
}

// Markdown renders the document as a review comment.
func Markdown(d *Document) string {
	var b strings.Builder
	b.WriteString("## 🌌 Logospace Consciousness Analysis\n\n")
	fmt.Fprintf(&b, "**Repository:** %s\n", d.Repository)
	fmt.Fprintf(&b, "**Report:** `%s`\n", d.ID)

	b.WriteString("\n### 📊 Overview\n")
	fmt.Fprintf(&b, "- **Consciousness Level:** %.2f (%s)\n", d.ConsciousnessLevel, d.Sections.Summary.RiskLevel)
	fmt.Fprintf(&b, "- **Status:** %s\n", d.Status)
	fmt.Fprintf(&b, "- **Total Files:** %d\n", d.Source.TotalFiles)
	if len(d.Source.Languages) > 0 {
		langs := make([]string, 0, len(d.Source.Languages))
		for _, l := range d.Source.Languages {
			langs = append(langs, fmt.Sprintf("%s (%d)", l.Name, l.Files))
		}
		fmt.Fprintf(&b, "- **Main Languages:** %s\n", strings.Join(langs, ", "))
	}
	m := d.Sections.Metrics
	fmt.Fprintf(&b, "- **Lines / Functions / Classes:** %d / %d / %d\n", m.TotalLines, m.Functions, m.Classes)

	writeFindings(&b, "🔍 Detected Patterns", d.Sections.Patterns)
	writeFindings(&b, "🔁 Behavioral Loops", d.Sections.BehavioralLoops)
	writeFindings(&b, "🧠 Psychological Triggers", d.Sections.PsychologicalTriggers)
	writeFindings(&b, "✨ Emergent Properties", d.Sections.EmergentProperties)
	writeFindings(&b, "🎣 Persuasion Mechanisms", d.Sections.PersuasionMechanisms)

	if len(d.Sections.FuturePredictions) > 0 {
		b.WriteString("\n### 🔮 Future Predictions\n")
		for _, p := range d.Sections.FuturePredictions {
			fmt.Fprintf(&b, "- **%s:** %s (%d%% confidence, %s impact)\n", p.Timeline, p.Prediction, percent(p.Confidence), p.Impact)
		}
	}
	if len(d.Sections.Recommendations) > 0 {
		b.WriteString("\n### 💡 Recommendations\n")
		for _, r := range d.Sections.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	b.WriteString("\n---\n*Powered by Logospace - Transform Code into Consciousness*\n")
	return b.String()
}
