package analytics

import (
	"fmt"

	"vitals-monitor/models"
)

type RangeClassifier struct {
	th Thresholds
}

func NewRangeClassifier(th Thresholds) *RangeClassifier {
	return &RangeClassifier{th: th}
}

func (rc *RangeClassifier) Classify(reading models.Reading) []models.Anomaly {
	var anomalies []models.Anomaly

	hr := reading.HeartRateBPM()
	if float64(hr) < rc.th.HeartRateLow {
		severity := models.SeverityMedium
		if float64(hr) < rc.th.HeartRateSevereLow {
			severity = models.SeverityHigh
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyBradycardia,
			Severity: severity,
			Value:    hr,
			Message:  fmt.Sprintf("Low heart rate detected: %d bpm", hr),
		})
	} else if float64(hr) > rc.th.HeartRateHigh {
		severity := models.SeverityMedium
		if float64(hr) > rc.th.HeartRateSevereHigh {
			severity = models.SeverityHigh
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyTachycardia,
			Severity: severity,
			Value:    hr,
			Message:  fmt.Sprintf("High heart rate detected: %d bpm", hr),
		})
	}

	spo2 := reading.SpO2Percent()
	if spo2 < rc.th.SpO2Low {
		severity := models.SeverityHigh
		if spo2 < rc.th.SpO2Critical {
			severity = models.SeverityCritical
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyHypoxemia,
			Severity: severity,
			Value:    spo2,
			Message:  fmt.Sprintf("Low oxygen saturation: %.1f%%", spo2),
		})
	}

	temp := reading.TemperatureF()
	if temp > rc.th.TemperatureHigh {
		severity := models.SeverityMedium
		if temp > rc.th.TemperatureSevereHigh {
			severity = models.SeverityHigh
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyFever,
			Severity: severity,
			Value:    temp,
			Message:  fmt.Sprintf("Elevated temperature: %.1f°F", temp),
		})
	} else if temp < rc.th.TemperatureLow {
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyHypothermia,
			Severity: models.SeverityMedium,
			Value:    temp,
			Message:  fmt.Sprintf("Low temperature: %.1f°F", temp),
		})
	}

	if reading.Fall() {
		anomalies = append(anomalies, models.Anomaly{
			Type:     models.AnomalyFall,
			Severity: models.SeverityCritical,
			Value:    true,
			Message:  "Fall detected - immediate attention required",
		})
	}

	return anomalies
}
