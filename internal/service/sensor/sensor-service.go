package sensor

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"AgriHub/entity"
	"AgriHub/internal/lib/sl"
)

// Repository is the sensor persistence contract: thresholds, the bounded
// readings window and the append-only alert log.
type Repository interface {
	GetSensor(id string) (*entity.Sensor, error)
	UpsertSensorThresholds(id, ownerID, name string, thresholds map[string]entity.Threshold) error
	AppendSensorReading(id string, reading entity.Reading) error
	AppendSensorAlerts(id string, alerts []entity.Alert) error
	AcknowledgeSensorAlert(sensorID, alertID, userID string) error
}

// Deliverer routes alert events to the owning farmer.
type Deliverer interface {
	Deliver(targetUserIDs []string, event string, payload any, fallback *entity.NotificationPayload)
}

// Notifier escalates severe alerts out-of-band, e.g. to the Telegram
// admin chat.
type Notifier interface {
	SendMessage(msg string)
}

// Service is the threshold alert engine: it evaluates readings against a
// sensor's configured bounds, persists the results and hands alerts to the
// delivery engine.
type Service struct {
	repository Repository
	deliverer  Deliverer
	notifier   Notifier
	log        *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{
		log: logger.With(sl.Module("sensor-service")),
	}
}

func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

func (s *Service) SetDeliverer(deliverer Deliverer) {
	s.deliverer = deliverer
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// Evaluate checks each metric present in both the reading and the
// thresholds. Below min emits a "too low" alert, above max a "too high"
// one; severity follows the breach rules. A reading fully inside all
// bounds produces no alerts.
func Evaluate(sensorID string, reading map[string]float64, thresholds map[string]entity.Threshold) []entity.Alert {
	var alerts []entity.Alert
	for metric, threshold := range thresholds {
		value, ok := reading[metric]
		if !ok {
			continue
		}
		if threshold.Min != nil && value < *threshold.Min {
			alerts = append(alerts, entity.NewLowAlert(sensorID, metric, value))
		}
		if threshold.Max != nil && value > *threshold.Max {
			alerts = append(alerts, entity.NewHighAlert(sensorID, metric, value))
		}
	}
	return alerts
}

// Ingest records a reading, appends any breach alerts to the sensor's log
// and notifies the owning farmer. Fire-and-forget: there is no backpressure
// and a farmer who never reconnects never sees the notification.
func (s *Service) Ingest(sensorID string, values map[string]float64) ([]entity.Alert, error) {
	sensor, err := s.repository.GetSensor(sensorID)
	if err != nil {
		return nil, err
	}

	reading := entity.Reading{
		Values:    values,
		CreatedAt: time.Now(),
	}
	if err := s.repository.AppendSensorReading(sensorID, reading); err != nil {
		return nil, err
	}

	alerts := Evaluate(sensorID, values, sensor.Thresholds)
	if err := s.repository.AppendSensorAlerts(sensorID, alerts); err != nil {
		return nil, err
	}

	if s.deliverer != nil {
		var fallback *entity.NotificationPayload
		if len(alerts) > 0 {
			fallback = &entity.NotificationPayload{
				Type:  entity.EventSensorData,
				Title: fmt.Sprintf("Sensor alert: %s", sensor.Name),
				Body:  alertSummary(alerts),
				Data:  map[string]string{"sensorId": sensorID},
			}
		}
		s.deliverer.Deliver([]string{sensor.OwnerID}, entity.EventSensorData, entity.SensorDataPayload{
			SensorID: sensorID,
			Reading:  values,
			Alerts:   alerts,
		}, fallback)
	}

	s.escalate(sensor, alerts)

	return alerts, nil
}

// SetThresholds validates and stores the per-metric bounds for a sensor.
func (s *Service) SetThresholds(sensorID, ownerID, name string, thresholds map[string]entity.Threshold) error {
	for metric, threshold := range thresholds {
		if threshold.Min == nil && threshold.Max == nil {
			return fmt.Errorf("threshold for %q has no bounds", metric)
		}
		if threshold.Min != nil && threshold.Max != nil && *threshold.Min > *threshold.Max {
			return fmt.Errorf("threshold for %q has min above max", metric)
		}
	}
	return s.repository.UpsertSensorThresholds(sensorID, ownerID, name, thresholds)
}

// Alerts returns the sensor's full alert log, newest last.
func (s *Service) Alerts(sensorID string) ([]entity.Alert, error) {
	sensor, err := s.repository.GetSensor(sensorID)
	if err != nil {
		return nil, err
	}
	return sensor.Alerts, nil
}

// Acknowledge flips the acknowledged fields on one alert.
func (s *Service) Acknowledge(sensorID, alertID, userID string) error {
	return s.repository.AcknowledgeSensorAlert(sensorID, alertID, userID)
}

// escalate forwards high and critical alerts to the out-of-band notifier.
func (s *Service) escalate(sensor *entity.Sensor, alerts []entity.Alert) {
	if s.notifier == nil {
		return
	}
	for _, alert := range alerts {
		if alert.Severity != entity.SeverityHigh && alert.Severity != entity.SeverityCritical {
			continue
		}
		s.notifier.SendMessage(fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(alert.Severity)), sensor.Name, alert.Message))
	}
}

func alertSummary(alerts []entity.Alert) string {
	messages := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		messages = append(messages, alert.Message)
	}
	return strings.Join(messages, "; ")
}
