package core

import (
	"AgriHub/entity"
)

func (c *Core) IngestReading(sensorID string, values map[string]float64) ([]entity.Alert, error) {
	return c.sensors.Ingest(sensorID, values)
}

func (c *Core) SetSensorThresholds(user entity.UserAuth, sensorID, name string, thresholds map[string]entity.Threshold) error {
	return c.sensors.SetThresholds(sensorID, user.UserID, name, thresholds)
}

func (c *Core) SensorAlerts(sensorID string) ([]entity.Alert, error) {
	return c.sensors.Alerts(sensorID)
}

func (c *Core) AcknowledgeAlert(user entity.UserAuth, sensorID, alertID string) error {
	return c.sensors.Acknowledge(sensorID, alertID, user.UserID)
}
