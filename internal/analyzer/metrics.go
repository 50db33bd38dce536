package analyzer

func factorScore(factors []Factor, name string) float64 {
	for _, f := range factors {
		if f.Name == name {
			return f.Score
		}
	}
	return 0
}

// metricsFrom reuses the already computed factors instead of rescanning.
func metricsFrom(c Corpus, factors []Factor) Metrics {
	return Metrics{
		TotalLines:         lineCount(c),
		Functions:          functionCount(c),
		Classes:            classCount(c),
		ComplexityScore:    factorScore(factors, FactorComplexity),
		SelfReferenceScore: factorScore(factors, FactorSelfReference),
		AutonomyScore:      factorScore(factors, FactorAutonomy),
		EmergenceScore:     factorScore(factors, FactorEmergence),
	}
}

func ComputeMetrics(c Corpus) Metrics {
	return metricsFrom(c, Factors(c))
}
