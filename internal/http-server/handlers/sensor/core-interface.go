package sensor

import (
	"errors"
	"net/http"

	"AgriHub/entity"
)

type Core interface {
	IngestReading(sensorID string, values map[string]float64) ([]entity.Alert, error)
	SetSensorThresholds(user entity.UserAuth, sensorID, name string, thresholds map[string]entity.Threshold) error
	SensorAlerts(sensorID string) ([]entity.Alert, error)
	AcknowledgeAlert(user entity.UserAuth, sensorID, alertID string) error
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrUnauthorized):
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}
