package repository

import (
	"AgriHub/entity"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSensor loads a sensor with its thresholds and logs.
func (m *MongoDB) GetSensor(id string) (*entity.Sensor, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sensorsCollection)

	var sensor entity.Sensor
	err = collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&sensor)
	if err != nil {
		return nil, m.findError("find sensor", err)
	}

	return &sensor, nil
}

// UpsertSensorThresholds creates the sensor document if needed and replaces
// its threshold set.
func (m *MongoDB) UpsertSensorThresholds(id, ownerID, name string, thresholds map[string]entity.Threshold) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sensorsCollection)

	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "thresholds", Value: thresholds}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "owner_id", Value: ownerID},
			{Key: "name", Value: name},
		}},
	}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert sensor thresholds: %w", err)
	}

	return nil
}

// AppendSensorReading pushes a reading onto the bounded window, evicting
// the oldest entries beyond the retention limit.
func (m *MongoDB) AppendSensorReading(id string, reading entity.Reading) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sensorsCollection)

	update := bson.D{{Key: "$push", Value: bson.D{{Key: "readings", Value: bson.D{
		{Key: "$each", Value: bson.A{reading}},
		{Key: "$slice", Value: -m.retentionLimit},
	}}}}}

	result, err := collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("mongodb append sensor reading: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrNotFound
	}

	return nil
}

// AppendSensorAlerts appends breach alerts to the sensor's alert log.
// Unlike readings the log is never trimmed; the source behaves the same
// way and the asymmetry is kept rather than silently fixed.
func (m *MongoDB) AppendSensorAlerts(id string, alerts []entity.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sensorsCollection)

	docs := make(bson.A, 0, len(alerts))
	for _, alert := range alerts {
		docs = append(docs, alert)
	}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "alerts", Value: bson.D{{Key: "$each", Value: docs}}}}}}

	result, err := collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("mongodb append sensor alerts: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrNotFound
	}

	return nil
}

// AcknowledgeSensorAlert flips the acknowledged fields on one alert and
// touches nothing else in the log entry.
func (m *MongoDB) AcknowledgeSensorAlert(sensorID, alertID, userID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sensorsCollection)

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "alerts.$[a].acknowledged", Value: true},
		{Key: "alerts.$[a].acknowledged_by", Value: userID},
	}}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.D{{Key: "a.id", Value: alertID}}},
	})

	result, err := collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: sensorID}}, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb acknowledge alert: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrNotFound
	}

	return nil
}
