package analytics

import (
	"sort"

	"vitals-monitor/models"
)

const (
	RecCallEmergency       = "Call emergency services immediately"
	RecContactEmergency    = "Contact emergency contact"
	RecSeekMedical         = "Seek immediate medical attention"
	RecCheckBreathing      = "Check breathing, consider medical consultation"
	RecMonitorHeartRate    = "Monitor heart rate closely, consider medical consultation"
	RecRestAndMonitor      = "Rest and monitor, avoid strenuous activity"
	RecMonitorTemperature  = "Monitor temperature, stay hydrated, rest"
	RecConsiderFeverReduce = "Consider fever reducer, consult healthcare provider"
)

// Aggregate derives status and risk level from the most severe anomaly.
func Aggregate(anomalies []models.Anomaly) (models.Status, models.RiskLevel) {
	if len(anomalies) == 0 {
		return models.StatusNormal, models.RiskLow
	}

	worst := models.SeverityLow
	for _, a := range anomalies {
		if a.Severity > worst {
			worst = a.Severity
		}
	}

	switch worst {
	case models.SeverityCritical:
		return models.StatusCritical, models.RiskCritical
	case models.SeverityHigh:
		return models.StatusWarning, models.RiskHigh
	default:
		return models.StatusCaution, models.RiskMedium
	}
}

// Recommend returns deduplicated advice for the anomalies. The order carries
// no meaning; it is sorted only to keep output stable.
func Recommend(anomalies []models.Anomaly) []string {
	set := make(map[string]struct{})
	add := func(recs ...string) {
		for _, r := range recs {
			set[r] = struct{}{}
		}
	}

	for _, a := range anomalies {
		switch a.Type {
		case models.AnomalyFall:
			add(RecCallEmergency, RecContactEmergency)
		case models.AnomalyHypoxemia:
			if a.Severity == models.SeverityCritical {
				add(RecSeekMedical)
			} else {
				add(RecCheckBreathing)
			}
		case models.AnomalyBradycardia, models.AnomalyTachycardia:
			if a.Severity == models.SeverityHigh {
				add(RecMonitorHeartRate)
			} else {
				add(RecRestAndMonitor)
			}
		case models.AnomalyFever:
			add(RecMonitorTemperature)
			if a.Severity == models.SeverityHigh {
				add(RecConsiderFeverReduce)
			}
		}
	}

	recs := make([]string, 0, len(set))
	for r := range set {
		recs = append(recs, r)
	}
	sort.Strings(recs)
	return recs
}
