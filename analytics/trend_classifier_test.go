package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitals-monitor/models"
)

func TestTrendClassifier_InsufficientHistory(t *testing.T) {
	tc := NewTrendClassifier(DefaultConfig())

	for n := 0; n < 10; n++ {
		baseline := heartRates(make([]int, n)...)
		assert.Empty(t, tc.Classify(models.Reading{HeartRate: intPtr(250)}, baseline), "baseline of %d", n)
	}
}

func TestTrendClassifier_FlatWindowNeverTriggers(t *testing.T) {
	tc := NewTrendClassifier(DefaultConfig())
	baseline := heartRates(72, 72, 72, 72, 72, 72, 72, 72, 72, 72)

	anomalies := tc.Classify(models.Reading{HeartRate: intPtr(200), SpO2: floatPtr(80)}, baseline)
	assert.Empty(t, anomalies)
}

func TestTrendClassifier_HeartRateOutlier(t *testing.T) {
	tc := NewTrendClassifier(DefaultConfig())
	baseline := heartRates(70, 71, 69, 70, 72, 71, 70, 69, 73, 70)

	anomalies := tc.Classify(models.Reading{HeartRate: intPtr(90)}, baseline)
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, models.AnomalyHeartRateTrend, a.Type)
	assert.Equal(t, models.SeverityMedium, a.Severity)
	assert.Equal(t, 90, a.Value)

	// mean = 70.5, population variance = 1.45
	want := math.Round(19.5/math.Sqrt(1.45)*100) / 100
	require.NotNil(t, a.ZScore)
	assert.InDelta(t, want, *a.ZScore, 1e-9)
	assert.Equal(t, 16.19, *a.ZScore)
	assert.Contains(t, a.Message, "Z-score: 16.19")
}

func TestTrendClassifier_UsesMostRecentWindow(t *testing.T) {
	tc := NewTrendClassifier(DefaultConfig())

	// старые значения далеко от текущего, но в окно не попадают
	baseline := heartRates(150, 150, 150, 70, 72, 70, 72, 70, 72, 70, 72, 70, 72)
	assert.Empty(t, tc.Classify(models.Reading{HeartRate: intPtr(72)}, baseline))
}

func TestTrendClassifier_SpO2Threshold(t *testing.T) {
	tc := NewTrendClassifier(DefaultConfig())

	baseline := make([]models.Reading, 10)
	for i := range baseline {
		hr, spo2 := 70, 98.0
		if i%2 == 1 {
			hr, spo2 = 72, 99.0
		}
		baseline[i] = models.Reading{HeartRate: intPtr(hr), SpO2: floatPtr(spo2)}
	}

	// mean 98.5, std 0.5: z = 2.0 is not above the cutoff
	assert.Empty(t, tc.Classify(models.Reading{HeartRate: intPtr(71), SpO2: floatPtr(97.5)}, baseline))

	// z = 2.2 triggers for SpO2, while hr z = 2.0 stays under 2.5
	anomalies := tc.Classify(models.Reading{HeartRate: intPtr(73), SpO2: floatPtr(97.4)}, baseline)
	require.Len(t, anomalies, 1)
	assert.Equal(t, models.AnomalySpO2Trend, anomalies[0].Type)
	assert.Equal(t, models.SeverityMedium, anomalies[0].Severity)
	require.NotNil(t, anomalies[0].ZScore)
	assert.InDelta(t, 2.2, *anomalies[0].ZScore, 1e-9)
}

func TestTrendClassifier_BothSignals(t *testing.T) {
	tc := NewTrendClassifier(DefaultConfig())

	baseline := make([]models.Reading, 10)
	for i := range baseline {
		hr, spo2 := 70, 98.0
		if i%2 == 1 {
			hr, spo2 = 72, 99.0
		}
		baseline[i] = models.Reading{HeartRate: intPtr(hr), SpO2: floatPtr(spo2)}
	}

	anomalies := tc.Classify(models.Reading{HeartRate: intPtr(80), SpO2: floatPtr(96)}, baseline)
	assert.Equal(t, []models.AnomalyType{models.AnomalyHeartRateTrend, models.AnomalySpO2Trend}, anomalyTypes(anomalies))
}
