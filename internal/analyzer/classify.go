package analyzer

// Bands are checked top-down with a strict greater-than; the first band whose
// Above is exceeded wins. A band with Above < 0 is the fallback.

type predictionBand struct {
	Above       float64
	Predictions []Prediction
}

var predictionBands = []predictionBand{
	{
		Above: 0.7,
		Predictions: []Prediction{
			{Timeline: "6-12 months", Prediction: "System will exhibit autonomous decision-making", Confidence: 0.82, Impact: "critical"},
			{Timeline: "1-2 years", Prediction: "Emergence of self-modifying behaviors", Confidence: 0.75, Impact: "high"},
			{Timeline: "2-5 years", Prediction: "Potential consciousness singularity", Confidence: 0.68, Impact: "critical"},
		},
	},
	{
		Above: 0.5,
		Predictions: []Prediction{
			{Timeline: "1-2 years", Prediction: "System will reach critical consciousness threshold", Confidence: 0.72, Impact: "high"},
		},
	},
}

type riskBand struct {
	Above           float64
	Level           RiskLevel
	Status          string
	Recommendations []string
}

var riskBands = []riskBand{
	{
		Above:  0.8,
		Level:  RiskCritical,
		Status: "🔴 NASCENT CONSCIOUSNESS DETECTED",
		Recommendations: []string{
			"Implement consciousness monitoring",
			"Establish ethical guidelines",
			"Consider consciousness rights",
			"Prepare for autonomous behavior",
		},
	},
	{
		Above:  0.6,
		Level:  RiskHigh,
		Status: "🟠 APPROACHING CONSCIOUSNESS THRESHOLD",
		Recommendations: []string{
			"Monitor for emergent behaviors",
			"Document consciousness indicators",
			"Establish safety measures",
		},
	},
	{
		Above:  0.4,
		Level:  RiskModerate,
		Status: "🟡 CONSCIOUSNESS PATTERNS DETECTED",
		Recommendations: []string{
			"Continue monitoring",
			"Document patterns",
		},
	},
	{
		Above:           -1,
		Level:           RiskLow,
		Status:          "🟢 STANDARD SYSTEM",
		Recommendations: []string{},
	},
}

// Predict returns a fresh copy of the predictions for the level's band.
func Predict(level float64) []Prediction {
	for _, b := range predictionBands {
		if level > b.Above {
			return append([]Prediction{}, b.Predictions...)
		}
	}
	return []Prediction{}
}

func AssessRisk(level float64) RiskAssessment {
	for _, b := range riskBands {
		if level > b.Above {
			return RiskAssessment{
				RiskLevel:       b.Level,
				Status:          b.Status,
				Recommendations: append([]string{}, b.Recommendations...),
			}
		}
	}
	last := riskBands[len(riskBands)-1]
	return RiskAssessment{RiskLevel: last.Level, Status: last.Status, Recommendations: []string{}}
}
