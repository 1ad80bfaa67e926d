package sensor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AgriHub/entity"
)

func ptr(v float64) *float64 { return &v }

type fakeRepo struct {
	sensors map[string]*entity.Sensor
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sensors: make(map[string]*entity.Sensor)}
}

func (r *fakeRepo) GetSensor(id string) (*entity.Sensor, error) {
	sensor, ok := r.sensors[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *sensor
	return &clone, nil
}

func (r *fakeRepo) UpsertSensorThresholds(id, ownerID, name string, thresholds map[string]entity.Threshold) error {
	sensor, ok := r.sensors[id]
	if !ok {
		sensor = &entity.Sensor{ID: id, OwnerID: ownerID, Name: name}
		r.sensors[id] = sensor
	}
	sensor.Thresholds = thresholds
	return nil
}

func (r *fakeRepo) AppendSensorReading(id string, reading entity.Reading) error {
	sensor, ok := r.sensors[id]
	if !ok {
		return entity.ErrNotFound
	}
	sensor.Readings = append(sensor.Readings, reading)
	return nil
}

func (r *fakeRepo) AppendSensorAlerts(id string, alerts []entity.Alert) error {
	sensor, ok := r.sensors[id]
	if !ok {
		return entity.ErrNotFound
	}
	sensor.Alerts = append(sensor.Alerts, alerts...)
	return nil
}

func (r *fakeRepo) AcknowledgeSensorAlert(sensorID, alertID, userID string) error {
	sensor, ok := r.sensors[sensorID]
	if !ok {
		return entity.ErrNotFound
	}
	for i := range sensor.Alerts {
		if sensor.Alerts[i].ID == alertID {
			sensor.Alerts[i].Acknowledged = true
			sensor.Alerts[i].AcknowledgedBy = userID
			return nil
		}
	}
	return entity.ErrNotFound
}

type delivery struct {
	targets  []string
	event    string
	payload  any
	fallback *entity.NotificationPayload
}

type fakeDeliverer struct {
	deliveries []delivery
}

func (d *fakeDeliverer) Deliver(targetUserIDs []string, event string, payload any, fallback *entity.NotificationPayload) {
	d.deliveries = append(d.deliveries, delivery{
		targets:  append([]string(nil), targetUserIDs...),
		event:    event,
		payload:  payload,
		fallback: fallback,
	})
}

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) SendMessage(msg string) {
	n.messages = append(n.messages, msg)
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeDeliverer, *fakeNotifier) {
	t.Helper()
	repo := newFakeRepo()
	deliverer := &fakeDeliverer{}
	notifier := &fakeNotifier{}

	s := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.SetRepository(repo)
	s.SetDeliverer(deliverer)
	s.SetNotifier(notifier)
	return s, repo, deliverer, notifier
}

func seedSensor(repo *fakeRepo, thresholds map[string]entity.Threshold) *entity.Sensor {
	sensor := &entity.Sensor{
		ID:         "s1",
		OwnerID:    "farmer-1",
		Name:       "North field",
		Thresholds: thresholds,
	}
	repo.sensors[sensor.ID] = sensor
	return sensor
}

func TestEvaluateLowSoilMoistureIsHighSeverity(t *testing.T) {
	alerts := Evaluate("s1", map[string]float64{"soilMoisture": 20}, map[string]entity.Threshold{
		"soilMoisture": {Min: ptr(30)},
	})

	require.Len(t, alerts, 1)
	assert.Equal(t, "soilMoisture", alerts[0].Metric)
	assert.Equal(t, "soilMoisture too low: 20", alerts[0].Message)
	assert.Equal(t, entity.SeverityHigh, alerts[0].Severity)
}

func TestEvaluateHighTemperatureIsHighSeverity(t *testing.T) {
	alerts := Evaluate("s1", map[string]float64{"temperature": 41.5}, map[string]entity.Threshold{
		"temperature": {Max: ptr(35)},
	})

	require.Len(t, alerts, 1)
	assert.Equal(t, "temperature too high: 41.5", alerts[0].Message)
	assert.Equal(t, entity.SeverityHigh, alerts[0].Severity)
}

func TestEvaluateOtherBreachesAreMedium(t *testing.T) {
	alerts := Evaluate("s1", map[string]float64{"humidity": 5, "ph": 9.2}, map[string]entity.Threshold{
		"humidity": {Min: ptr(20)},
		"ph":       {Max: ptr(7.5)},
	})

	require.Len(t, alerts, 2)
	for _, alert := range alerts {
		assert.Equal(t, entity.SeverityMedium, alert.Severity, alert.Metric)
	}
}

func TestEvaluateInRangeProducesNoAlerts(t *testing.T) {
	alerts := Evaluate("s1", map[string]float64{"soilMoisture": 45, "temperature": 22}, map[string]entity.Threshold{
		"soilMoisture": {Min: ptr(30), Max: ptr(80)},
		"temperature":  {Min: ptr(5), Max: ptr(35)},
	})

	assert.Empty(t, alerts)
}

func TestEvaluateSkipsMetricsWithoutThresholds(t *testing.T) {
	alerts := Evaluate("s1", map[string]float64{"windSpeed": 900}, map[string]entity.Threshold{
		"temperature": {Max: ptr(35)},
	})

	assert.Empty(t, alerts)
}

func TestIngestPersistsReadingAndAlerts(t *testing.T) {
	s, repo, _, _ := newTestService(t)
	seedSensor(repo, map[string]entity.Threshold{"soilMoisture": {Min: ptr(30)}})

	alerts, err := s.Ingest("s1", map[string]float64{"soilMoisture": 20})
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	sensor := repo.sensors["s1"]
	require.Len(t, sensor.Readings, 1)
	assert.Equal(t, 20.0, sensor.Readings[0].Values["soilMoisture"])
	require.Len(t, sensor.Alerts, 1)
	assert.Equal(t, alerts[0].ID, sensor.Alerts[0].ID)
}

func TestIngestDeliversToOwnerWithFallbackOnAlerts(t *testing.T) {
	s, repo, deliverer, _ := newTestService(t)
	seedSensor(repo, map[string]entity.Threshold{"soilMoisture": {Min: ptr(30)}})

	_, err := s.Ingest("s1", map[string]float64{"soilMoisture": 20})
	require.NoError(t, err)

	require.Len(t, deliverer.deliveries, 1)
	d := deliverer.deliveries[0]
	assert.Equal(t, []string{"farmer-1"}, d.targets)
	assert.Equal(t, entity.EventSensorData, d.event)
	require.NotNil(t, d.fallback)
	assert.Contains(t, d.fallback.Body, "soilMoisture too low: 20")

	payload, ok := d.payload.(entity.SensorDataPayload)
	require.True(t, ok)
	assert.Equal(t, "s1", payload.SensorID)
	require.Len(t, payload.Alerts, 1)
}

func TestIngestWithoutBreachHasNoFallback(t *testing.T) {
	s, repo, deliverer, notifier := newTestService(t)
	seedSensor(repo, map[string]entity.Threshold{"soilMoisture": {Min: ptr(30)}})

	alerts, err := s.Ingest("s1", map[string]float64{"soilMoisture": 55})
	require.NoError(t, err)
	assert.Empty(t, alerts)

	require.Len(t, deliverer.deliveries, 1)
	assert.Nil(t, deliverer.deliveries[0].fallback, "clean reading still streams but must not notify")
	assert.Empty(t, notifier.messages)
}

func TestIngestEscalatesHighSeverity(t *testing.T) {
	s, repo, _, notifier := newTestService(t)
	seedSensor(repo, map[string]entity.Threshold{
		"soilMoisture": {Min: ptr(30)},
		"humidity":     {Min: ptr(20)},
	})

	_, err := s.Ingest("s1", map[string]float64{"soilMoisture": 10, "humidity": 5})
	require.NoError(t, err)

	// Only the high severity breach reaches the out-of-band notifier.
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "HIGH")
	assert.Contains(t, notifier.messages[0], "North field")
	assert.Contains(t, notifier.messages[0], "soilMoisture too low: 10")
}

func TestIngestUnknownSensor(t *testing.T) {
	s, _, _, _ := newTestService(t)

	_, err := s.Ingest("missing", map[string]float64{"temperature": 20})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSetThresholdsValidation(t *testing.T) {
	s, repo, _, _ := newTestService(t)

	err := s.SetThresholds("s1", "farmer-1", "North field", map[string]entity.Threshold{
		"temperature": {},
	})
	assert.Error(t, err, "a threshold without bounds checks nothing")

	err = s.SetThresholds("s1", "farmer-1", "North field", map[string]entity.Threshold{
		"temperature": {Min: ptr(40), Max: ptr(10)},
	})
	assert.Error(t, err)

	err = s.SetThresholds("s1", "farmer-1", "North field", map[string]entity.Threshold{
		"temperature": {Min: ptr(5), Max: ptr(35)},
	})
	require.NoError(t, err)
	assert.Equal(t, "farmer-1", repo.sensors["s1"].OwnerID)
}

func TestAlertsReturnsFullLog(t *testing.T) {
	s, repo, _, _ := newTestService(t)
	seedSensor(repo, map[string]entity.Threshold{"soilMoisture": {Min: ptr(30)}})

	for i := 0; i < 3; i++ {
		_, err := s.Ingest("s1", map[string]float64{"soilMoisture": 10})
		require.NoError(t, err)
	}

	alerts, err := s.Alerts("s1")
	require.NoError(t, err)
	assert.Len(t, alerts, 3, "the alert log keeps every breach")
}

func TestAcknowledge(t *testing.T) {
	s, repo, _, _ := newTestService(t)
	seedSensor(repo, map[string]entity.Threshold{"soilMoisture": {Min: ptr(30)}})

	alerts, err := s.Ingest("s1", map[string]float64{"soilMoisture": 10})
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	require.NoError(t, s.Acknowledge("s1", alerts[0].ID, "farmer-1"))

	stored := repo.sensors["s1"].Alerts[0]
	assert.True(t, stored.Acknowledged)
	assert.Equal(t, "farmer-1", stored.AcknowledgedBy)

	assert.ErrorIs(t, s.Acknowledge("s1", "no-such-alert", "farmer-1"), entity.ErrNotFound)
}
