package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool { return &v }

func TestReading_Defaults(t *testing.T) {
	var r Reading

	assert.Equal(t, DefaultUserID, r.Subject())
	assert.Equal(t, 72, r.HeartRateBPM())
	assert.Equal(t, 98.5, r.SpO2Percent())
	assert.Equal(t, 98.6, r.TemperatureF())
	assert.False(t, r.Fall())
}

func TestReading_ExplicitZeroIsNotDefaulted(t *testing.T) {
	r := Reading{HeartRate: intPtr(0), SpO2: floatPtr(0), FallDetected: boolPtr(false)}

	assert.Equal(t, 0, r.HeartRateBPM())
	assert.Equal(t, 0.0, r.SpO2Percent())
	assert.False(t, r.Fall())
}

func TestReading_Validate(t *testing.T) {
	tests := []struct {
		name      string
		reading   Reading
		wantField string
	}{
		{name: "empty reading", reading: Reading{}},
		{name: "rfc3339", reading: Reading{Timestamp: "2024-05-01T10:00:00Z"}},
		{name: "python isoformat", reading: Reading{Timestamp: "2024-05-01T10:00:00.123456"}},
		{name: "bad timestamp", reading: Reading{Timestamp: "yesterday"}, wantField: "timestamp"},
		{name: "negative heart rate", reading: Reading{HeartRate: intPtr(-1)}, wantField: "heart_rate"},
		{name: "spo2 above 100", reading: Reading{SpO2: floatPtr(100.5)}, wantField: "spo2"},
		{name: "temperature in celsius", reading: Reading{Temperature: floatPtr(37.0)}, wantField: "temperature"},
		{name: "battery", reading: Reading{BatteryLevel: intPtr(120)}, wantField: "battery_level"},
		{name: "activity", reading: Reading{ActivityLevel: "running"}, wantField: "activity_level"},
		{name: "location", reading: Reading{Location: &Location{Latitude: 91}}, wantField: "location"},
		{name: "full valid", reading: Reading{
			Timestamp:     "2024-05-01T10:00:00+03:00",
			UserID:        "user_001",
			HeartRate:     intPtr(75),
			SpO2:          floatPtr(98),
			Temperature:   floatPtr(98.6),
			FallDetected:  boolPtr(false),
			ActivityLevel: "walking",
			BatteryLevel:  intPtr(87),
			Location:      &Location{Latitude: 28.6139, Longitude: 77.209},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reading.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestReading_RejectsNonNumericJSON(t *testing.T) {
	var r Reading
	err := json.Unmarshal([]byte(`{"user_id":"u1","heart_rate":"fast"}`), &r)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"user_id":"u1","heart_rate":72.5}`), &r)
	assert.Error(t, err)
}

func TestReading_AbsentFieldsStayNil(t *testing.T) {
	var r Reading
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u1","spo2":97.2}`), &r))

	assert.Nil(t, r.HeartRate)
	assert.Nil(t, r.Temperature)
	require.NotNil(t, r.SpO2)
	assert.Equal(t, 97.2, *r.SpO2)
}
