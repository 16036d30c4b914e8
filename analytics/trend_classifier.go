package analytics

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"vitals-monitor/models"
)

type TrendClassifier struct {
	minHistory  int
	hrThreshold float64
	spThreshold float64
}

func NewTrendClassifier(cfg Config) *TrendClassifier {
	return &TrendClassifier{
		minHistory:  cfg.MinTrendHistory,
		hrThreshold: cfg.HeartRateZThreshold,
		spThreshold: cfg.SpO2ZThreshold,
	}
}

// Classify compares current against the most recent minHistory readings of
// baseline. Fewer readings than that yields no anomalies.
func (tc *TrendClassifier) Classify(current models.Reading, baseline []models.Reading) []models.Anomaly {
	if len(baseline) < tc.minHistory {
		return nil
	}
	window := baseline[len(baseline)-tc.minHistory:]

	hrValues := make([]float64, len(window))
	spValues := make([]float64, len(window))
	for i, r := range window {
		hrValues[i] = float64(r.HeartRateBPM())
		spValues[i] = r.SpO2Percent()
	}

	var anomalies []models.Anomaly

	hr := current.HeartRateBPM()
	if z, ok := zScore(float64(hr), hrValues); ok && z > tc.hrThreshold {
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyHeartRateTrend,
			Severity: models.SeverityMedium,
			Value:    hr,
			ZScore:   roundedZ(z),
			Message:  fmt.Sprintf("Heart rate trend anomaly: %d bpm (Z-score: %.2f)", hr, z),
		})
	}

	spo2 := current.SpO2Percent()
	if z, ok := zScore(spo2, spValues); ok && z > tc.spThreshold {
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalySpO2Trend,
			Severity: models.SeverityMedium,
			Value:    spo2,
			ZScore:   roundedZ(z),
			Message:  fmt.Sprintf("SpO2 trend anomaly: %.1f%% (Z-score: %.2f)", spo2, z),
		})
	}

	return anomalies
}

// zScore reports false when the window is flat (std = 0).
func zScore(value float64, window []float64) (float64, bool) {
	mean, err := stats.Mean(window)
	if err != nil {
		return 0, false
	}
	std, err := stats.StandardDeviationPopulation(window)
	if err != nil || std == 0 {
		return 0, false
	}
	return math.Abs(value-mean) / std, true
}

func roundedZ(z float64) *float64 {
	r := math.Round(z*100) / 100
	return &r
}
