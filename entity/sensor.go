package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Threshold bounds one metric. A nil bound is not checked.
type Threshold struct {
	Min *float64 `json:"min,omitempty" bson:"min,omitempty"`
	Max *float64 `json:"max,omitempty" bson:"max,omitempty"`
}

// Reading is one sensor sample: metric name to numeric value.
type Reading struct {
	Values    map[string]float64 `json:"values" bson:"values"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Alert records a threshold breach. Immutable after creation except the
// acknowledged fields.
type Alert struct {
	ID             string        `json:"id" bson:"id"`
	SensorID       string        `json:"sensor_id" bson:"sensor_id"`
	Metric         string        `json:"metric" bson:"metric"`
	Message        string        `json:"message" bson:"message"`
	Severity       AlertSeverity `json:"severity" bson:"severity"`
	Acknowledged   bool          `json:"acknowledged" bson:"acknowledged"`
	AcknowledgedBy string        `json:"acknowledged_by,omitempty" bson:"acknowledged_by,omitempty"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
}

// Sensor is a farmer-owned device with per-metric thresholds, a bounded
// window of recent readings and an append-only alert log.
type Sensor struct {
	ID         string               `json:"id" bson:"_id"`
	OwnerID    string               `json:"owner_id" bson:"owner_id"`
	Name       string               `json:"name" bson:"name"`
	Thresholds map[string]Threshold `json:"thresholds" bson:"thresholds"`
	Readings   []Reading            `json:"readings,omitempty" bson:"readings,omitempty"`
	Alerts     []Alert              `json:"alerts,omitempty" bson:"alerts,omitempty"`
}

// BreachSeverity assigns severity per rule: low soil moisture and high
// temperature are "high", every other breach is "medium".
func BreachSeverity(metric string, low bool) AlertSeverity {
	if low && metric == "soilMoisture" {
		return SeverityHigh
	}
	if !low && metric == "temperature" {
		return SeverityHigh
	}
	return SeverityMedium
}

// NewLowAlert builds an alert for a value below the metric's minimum.
func NewLowAlert(sensorID, metric string, value float64) Alert {
	return Alert{
		ID:        uuid.NewString(),
		SensorID:  sensorID,
		Metric:    metric,
		Message:   fmt.Sprintf("%s too low: %g", metric, value),
		Severity:  BreachSeverity(metric, true),
		CreatedAt: time.Now(),
	}
}

// NewHighAlert builds an alert for a value above the metric's maximum.
func NewHighAlert(sensorID, metric string, value float64) Alert {
	return Alert{
		ID:        uuid.NewString(),
		SensorID:  sensorID,
		Metric:    metric,
		Message:   fmt.Sprintf("%s too high: %g", metric, value),
		Severity:  BreachSeverity(metric, false),
		CreatedAt: time.Now(),
	}
}
