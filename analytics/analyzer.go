package analytics

import (
	"time"

	"vitals-monitor/models"
)

// Analyzer tracks a single subject. Callers must not invoke Analyze
// concurrently on the same instance.
type Analyzer struct {
	cfg     Config
	history *History
	ranges  *RangeClassifier
	trends  *TrendClassifier
	now     func() time.Time
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		history: NewHistory(cfg.MaxHistory),
		ranges:  NewRangeClassifier(cfg.Thresholds),
		trends:  NewTrendClassifier(cfg),
		now:     time.Now,
	}
}

func (a *Analyzer) Analyze(reading models.Reading) models.AnalysisResult {
	// базовое окно тренда — только предыдущие показания, без текущего
	baseline := a.history.Last(a.cfg.MinTrendHistory)
	a.history.Append(reading)

	anomalies := make([]models.Anomaly, 0)
	anomalies = append(anomalies, a.ranges.Classify(reading)...)
	anomalies = append(anomalies, a.trends.Classify(reading, baseline)...)

	status, risk := Aggregate(anomalies)

	processedAt := a.now().UTC()
	timestamp := reading.Timestamp
	if timestamp == "" {
		timestamp = processedAt.Format(time.RFC3339)
	}

	return models.AnalysisResult{
		Timestamp:       timestamp,
		UserID:          reading.Subject(),
		Status:          status,
		RiskLevel:       risk,
		Anomalies:       anomalies,
		AnomalyCount:    len(anomalies),
		Recommendations: Recommend(anomalies),
		ProcessedAt:     processedAt,
	}
}

func (a *Analyzer) History() *History {
	return a.history
}
