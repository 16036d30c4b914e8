package models

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"low", "medium", "high", "critical"}

func (s Severity) String() string {
	if s < SeverityLow || s > SeverityCritical {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

func ParseSeverity(s string) (Severity, error) {
	for i, name := range severityNames {
		if strings.EqualFold(s, name) {
			return Severity(i), nil
		}
	}
	return SeverityLow, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityLow || s > SeverityCritical {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type AnomalyType string

const (
	AnomalyBradycardia    AnomalyType = "bradycardia"
	AnomalyTachycardia    AnomalyType = "tachycardia"
	AnomalyHypoxemia      AnomalyType = "hypoxemia"
	AnomalyFever          AnomalyType = "fever"
	AnomalyHypothermia    AnomalyType = "hypothermia"
	AnomalyFall           AnomalyType = "fall"
	AnomalyHeartRateTrend AnomalyType = "heart_rate_trend"
	AnomalySpO2Trend      AnomalyType = "spo2_trend"
)

// Value holds either a number or a bool, depending on the triggering signal.
type Anomaly struct {
	Type     AnomalyType `json:"type"`
	Severity Severity    `json:"severity"`
	Value    any         `json:"value"`
	Message  string      `json:"message"`
	ZScore   *float64    `json:"z_score,omitempty"`
}
