package repository

import (
	"AgriHub/entity"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateConversation inserts a freshly built conversation document.
func (m *MongoDB) CreateConversation(conv *entity.Conversation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	_, err = collection.InsertOne(m.ctx, conv)
	if err != nil {
		return fmt.Errorf("mongodb insert conversation: %w", err)
	}

	return nil
}

// GetConversation loads one conversation by id.
func (m *MongoDB) GetConversation(id string) (*entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	var conv entity.Conversation
	err = collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&conv)
	if err != nil {
		return nil, m.findError("find conversation", err)
	}

	return &conv, nil
}

// ListOpenConversations returns the claimable pool: open and unassigned,
// oldest first.
func (m *MongoDB) ListOpenConversations() ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{
		{Key: "status", Value: entity.StatusOpen},
		{Key: "assigned_expert", Value: ""},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find open conversations: %w", err)
	}
	defer cursor.Close(m.ctx)

	var conversations []entity.Conversation
	if err = cursor.All(m.ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongodb decode conversations: %w", err)
	}

	return conversations, nil
}

// ListConversationsFor returns conversations where the user is an active
// participant, most recently updated first.
func (m *MongoDB) ListConversationsFor(userID string) ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{{Key: "participants", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "user_id", Value: userID},
		{Key: "left_at", Value: bson.D{{Key: "$exists", Value: false}}},
	}}}}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find conversations: %w", err)
	}
	defer cursor.Close(m.ctx)

	var conversations []entity.Conversation
	if err = cursor.All(m.ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongodb decode conversations: %w", err)
	}

	return conversations, nil
}

// ClaimConversation assigns an expert to an open, unassigned conversation.
// The whole check-and-set is one conditional FindOneAndUpdate so that under
// concurrent claims exactly one caller wins; every other caller gets
// entity.ErrAlreadyAssigned (or entity.ErrNotFound for an unknown id).
func (m *MongoDB) ClaimConversation(id, expertID string) (*entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	now := time.Now()
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "status", Value: entity.StatusOpen},
		{Key: "assigned_expert", Value: ""},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: entity.StatusInProgress},
			{Key: "assigned_expert", Value: expertID},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$push", Value: bson.D{{Key: "participants", Value: entity.Participant{
			UserID:   expertID,
			Role:     entity.ExpertRole,
			JoinedAt: now,
		}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var conv entity.Conversation
	err = collection.FindOneAndUpdate(m.ctx, filter, update, opts).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Lost the race or unknown id; one more read to tell them apart.
		if _, getErr := m.GetConversation(id); getErr != nil {
			return nil, getErr
		}
		return nil, entity.ErrAlreadyAssigned
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb claim conversation: %w", err)
	}

	return &conv, nil
}

// AppendConversationMessage pushes a message onto the ordered log.
func (m *MongoDB) AppendConversationMessage(id string, msg entity.Message) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "messages", Value: msg}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: msg.CreatedAt}}},
	}
	result, err := collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("mongodb append message: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrNotFound
	}

	return nil
}

// MarkMessagesRead adds a read marker to every message the user has not
// read yet. Re-invocation matches no further array elements, so the call
// is idempotent.
func (m *MongoDB) MarkMessagesRead(id, userID string, readAt time.Time) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	update := bson.D{{Key: "$push", Value: bson.D{{Key: "messages.$[msg].read_by", Value: entity.ReadMarker{
		UserID: userID,
		ReadAt: readAt,
	}}}}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.D{{Key: "msg.read_by.user_id", Value: bson.D{{Key: "$ne", Value: userID}}}}},
	})

	result, err := collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb mark messages read: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrNotFound
	}

	return nil
}

// TransitionConversationStatus moves a conversation from one status to
// another, conditional on the current status so a stale caller cannot
// clobber a newer transition.
func (m *MongoDB) TransitionConversationStatus(id string, from, to entity.ConversationStatus) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{{Key: "_id", Value: id}, {Key: "status", Value: from}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: to},
		{Key: "updated_at", Value: time.Now()},
	}}}

	result, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb transition status: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrInvalidTransition
	}

	return nil
}

// RateConversation stores the farmer's one-shot rating and forces the
// conversation closed. The rating-absent check rides in the filter, so a
// second rating attempt cannot slip through.
func (m *MongoDB) RateConversation(id string, rating entity.Rating) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "rating", Value: bson.D{{Key: "$exists", Value: false}}},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.StatusClosed}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "rating", Value: rating},
		{Key: "status", Value: entity.StatusClosed},
		{Key: "updated_at", Value: rating.RatedAt},
	}}}

	result, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb rate conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, getErr := m.GetConversation(id); getErr != nil {
			return getErr
		}
		return entity.ErrAlreadyRated
	}

	return nil
}

// EnsureConversationIndexes creates the indexes the open-pool and
// participant queries rely on.
func (m *MongoDB) EnsureConversationIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "assigned_expert", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "participants.user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	}

	_, err = collection.Indexes().CreateMany(m.ctx, indexes)
	if err != nil {
		return fmt.Errorf("mongodb create conversation indexes: %w", err)
	}

	return nil
}
