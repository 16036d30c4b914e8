package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultUserID      = "unknown"
	DefaultHeartRate   = 72
	DefaultSpO2        = 98.5
	DefaultTemperature = 98.6
)

// Допустимые форматы ISO-8601, в том числе без часового пояса (как отдают симуляторы)
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

var activityLevels = map[string]bool{
	"resting":  true,
	"walking":  true,
	"active":   true,
	"sleeping": true,
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Reading is one sample from a wearable. Optional fields are pointers so that
// an absent value can be told apart from a zero one.
type Reading struct {
	Timestamp     string    `json:"timestamp,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	HeartRate     *int      `json:"heart_rate,omitempty"`
	SpO2          *float64  `json:"spo2,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	FallDetected  *bool     `json:"fall_detected,omitempty"`
	ActivityLevel string    `json:"activity_level,omitempty"`
	BatteryLevel  *int      `json:"battery_level,omitempty"`
	Location      *Location `json:"location,omitempty"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (r *Reading) Validate() error {
	if r.Timestamp != "" {
		if _, err := ParseTimestamp(r.Timestamp); err != nil {
			return &ValidationError{Field: "timestamp", Reason: "expected ISO-8601"}
		}
	}

	if r.HeartRate != nil && (*r.HeartRate < 0 || *r.HeartRate > 300) {
		return &ValidationError{Field: "heart_rate", Reason: "must be between 0 and 300"}
	}

	if r.SpO2 != nil && (*r.SpO2 < 0 || *r.SpO2 > 100) {
		return &ValidationError{Field: "spo2", Reason: "must be between 0 and 100"}
	}

	if r.Temperature != nil && (*r.Temperature < 50 || *r.Temperature > 120) {
		return &ValidationError{Field: "temperature", Reason: "must be between 50 and 120"}
	}

	if r.BatteryLevel != nil && (*r.BatteryLevel < 0 || *r.BatteryLevel > 100) {
		return &ValidationError{Field: "battery_level", Reason: "must be between 0 and 100"}
	}

	if r.ActivityLevel != "" && !activityLevels[r.ActivityLevel] {
		return &ValidationError{Field: "activity_level", Reason: fmt.Sprintf("unknown value %q", r.ActivityLevel)}
	}

	if r.Location != nil {
		if r.Location.Latitude < -90 || r.Location.Latitude > 90 ||
			r.Location.Longitude < -180 || r.Location.Longitude > 180 {
			return &ValidationError{Field: "location", Reason: "coordinates out of range"}
		}
	}

	return nil
}

func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, strings.TrimSpace(s))
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (r Reading) Subject() string {
	if r.UserID == "" {
		return DefaultUserID
	}
	return r.UserID
}

func (r Reading) HeartRateBPM() int {
	if r.HeartRate == nil {
		return DefaultHeartRate
	}
	return *r.HeartRate
}

func (r Reading) SpO2Percent() float64 {
	if r.SpO2 == nil {
		return DefaultSpO2
	}
	return *r.SpO2
}

func (r Reading) TemperatureF() float64 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

func (r Reading) Fall() bool {
	return r.FallDetected != nil && *r.FallDetected
}
