package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitals-monitor/models"
)

func TestRangeClassifier_NormalReadings(t *testing.T) {
	rc := NewRangeClassifier(DefaultThresholds())

	for _, hr := range []int{60, 72, 100} {
		for _, spo2 := range []float64{95, 98.5, 100} {
			for _, temp := range []float64{97.0, 98.6, 99.5} {
				assert.Empty(t, rc.Classify(vitals(hr, spo2, temp, false)), "hr=%d spo2=%v temp=%v", hr, spo2, temp)
			}
		}
	}
}

func TestRangeClassifier_MissingFieldsUseDefaults(t *testing.T) {
	rc := NewRangeClassifier(DefaultThresholds())
	assert.Empty(t, rc.Classify(models.Reading{}))
}

func TestRangeClassifier_Thresholds(t *testing.T) {
	tests := []struct {
		name         string
		reading      models.Reading
		wantType     models.AnomalyType
		wantSeverity models.Severity
	}{
		{"hr 59", vitals(59, 98, 98.6, false), models.AnomalyBradycardia, models.SeverityMedium},
		{"hr 50", vitals(50, 98, 98.6, false), models.AnomalyBradycardia, models.SeverityMedium},
		{"hr 49", vitals(49, 98, 98.6, false), models.AnomalyBradycardia, models.SeverityHigh},
		{"hr 101", vitals(101, 98, 98.6, false), models.AnomalyTachycardia, models.SeverityMedium},
		{"hr 120", vitals(120, 98, 98.6, false), models.AnomalyTachycardia, models.SeverityMedium},
		{"hr 121", vitals(121, 98, 98.6, false), models.AnomalyTachycardia, models.SeverityHigh},
		{"spo2 94.9", vitals(72, 94.9, 98.6, false), models.AnomalyHypoxemia, models.SeverityHigh},
		{"spo2 90", vitals(72, 90, 98.6, false), models.AnomalyHypoxemia, models.SeverityHigh},
		{"spo2 89.9", vitals(72, 89.9, 98.6, false), models.AnomalyHypoxemia, models.SeverityCritical},
		{"temp 99.6", vitals(72, 98, 99.6, false), models.AnomalyFever, models.SeverityMedium},
		{"temp 101", vitals(72, 98, 101, false), models.AnomalyFever, models.SeverityMedium},
		{"temp 101.1", vitals(72, 98, 101.1, false), models.AnomalyFever, models.SeverityHigh},
		{"temp 96.9", vitals(72, 98, 96.9, false), models.AnomalyHypothermia, models.SeverityMedium},
		{"fall", vitals(72, 98, 98.6, true), models.AnomalyFall, models.SeverityCritical},
	}

	rc := NewRangeClassifier(DefaultThresholds())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anomalies := rc.Classify(tt.reading)
			require.Len(t, anomalies, 1)
			assert.Equal(t, tt.wantType, anomalies[0].Type)
			assert.Equal(t, tt.wantSeverity, anomalies[0].Severity)
			assert.NotEmpty(t, anomalies[0].Message)
			assert.Nil(t, anomalies[0].ZScore)
		})
	}
}

func TestRangeClassifier_FallAlwaysCritical(t *testing.T) {
	rc := NewRangeClassifier(DefaultThresholds())

	for _, r := range []models.Reading{
		vitals(72, 98, 98.6, true),
		vitals(40, 85, 103, true),
		vitals(130, 96, 96, true),
	} {
		var falls []models.Anomaly
		for _, a := range rc.Classify(r) {
			if a.Type == models.AnomalyFall {
				falls = append(falls, a)
			}
		}
		require.Len(t, falls, 1)
		assert.Equal(t, models.SeverityCritical, falls[0].Severity)
		assert.Equal(t, true, falls[0].Value)
	}
}

func TestRangeClassifier_CoOccurringAnomalies(t *testing.T) {
	rc := NewRangeClassifier(DefaultThresholds())

	anomalies := rc.Classify(vitals(45, 92, 101.5, true))
	assert.Equal(t, []models.AnomalyType{
		models.AnomalyBradycardia,
		models.AnomalyHypoxemia,
		models.AnomalyFever,
		models.AnomalyFall,
	}, anomalyTypes(anomalies))

	assert.Equal(t, 45, anomalies[0].Value)
	assert.Equal(t, 92.0, anomalies[1].Value)
	assert.Equal(t, "Low heart rate detected: 45 bpm", anomalies[0].Message)
}

func TestRangeClassifier_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.HeartRateHigh = 90
	rc := NewRangeClassifier(th)

	anomalies := rc.Classify(vitals(95, 98, 98.6, false))
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.AnomalyTachycardia, anomalies[0].Type)
}
