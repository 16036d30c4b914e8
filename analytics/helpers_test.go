package analytics

import "vitals-monitor/models"

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool { return &v }

func vitals(hr int, spo2, temp float64, fall bool) models.Reading {
	return models.Reading{
		UserID:       "test_user",
		HeartRate:    intPtr(hr),
		SpO2:         floatPtr(spo2),
		Temperature:  floatPtr(temp),
		FallDetected: boolPtr(fall),
	}
}

func heartRates(values ...int) []models.Reading {
	readings := make([]models.Reading, len(values))
	for i, v := range values {
		readings[i] = models.Reading{UserID: "test_user", HeartRate: intPtr(v)}
	}
	return readings
}

func anomalyTypes(anomalies []models.Anomaly) []models.AnomalyType {
	types := make([]models.AnomalyType, len(anomalies))
	for i, a := range anomalies {
		types[i] = a.Type
	}
	return types
}
