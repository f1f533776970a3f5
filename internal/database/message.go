package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"DonorLink/entity"
)

// InsertMessage appends a message and returns the assigned id.
func (m *MongoDB) InsertMessage(msg entity.Message) (primitive.ObjectID, error) {
	connection, err := m.connect()
	if err != nil {
		return primitive.NilObjectID, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	result, err := collection.InsertOne(m.ctx, msg)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("mongodb insert message: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("mongodb insert message: unexpected id type %T", result.InsertedID)
	}
	return id, nil
}

// GetChatHistory returns every message of a contact with sender and receiver
// profiles resolved, oldest first. The _id secondary sort keeps the order
// total when created_at collides.
func (m *MongoDB) GetChatHistory(contactID primitive.ObjectID) ([]entity.ChatEntry, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "contact", Value: contactID}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "sender"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "sender"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "receiver"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "receiver"},
		}}},
		{{Key: "$unwind", Value: "$sender"}},
		{{Key: "$unwind", Value: "$receiver"}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "sender.password", Value: 0},
			{Key: "receiver.password", Value: 0},
		}}},
	}

	cursor, err := collection.Aggregate(m.ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongodb aggregate chat history: %w", err)
	}
	defer cursor.Close(m.ctx)

	var entries []entity.ChatEntry
	if err = cursor.All(m.ctx, &entries); err != nil {
		return nil, fmt.Errorf("mongodb decode chat history: %w", err)
	}

	return entries, nil
}

// CountUnread counts messages in a contact addressed to the viewer that are
// still unread.
func (m *MongoDB) CountUnread(contactID, viewerID primitive.ObjectID) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	filter := bson.D{
		{Key: "contact", Value: contactID},
		{Key: "receiver", Value: viewerID},
		{Key: "read", Value: false},
	}

	count, err := collection.CountDocuments(m.ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb count unread: %w", err)
	}
	return count, nil
}

// MarkRead flips every unread message in the contact sent by the given
// counterpart to read, in a single update. Returns the number of messages
// actually modified; zero is a valid outcome.
func (m *MongoDB) MarkRead(contactID, senderID primitive.ObjectID) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	filter := bson.D{
		{Key: "contact", Value: contactID},
		{Key: "sender", Value: senderID},
		{Key: "read", Value: false},
	}
	update := bson.M{"$set": bson.M{"read": true}}

	result, err := collection.UpdateMany(m.ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("mongodb mark read: %w", err)
	}
	return result.ModifiedCount, nil
}

// EnsureMessageIndexes creates the compound indexes backing history reads
// and unread counting.
func (m *MongoDB) EnsureMessageIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "contact", Value: 1},
			{Key: "created_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "contact", Value: 1},
			{Key: "receiver", Value: 1},
			{Key: "read", Value: 1},
		}},
	}

	_, err = collection.Indexes().CreateMany(m.ctx, indexes)
	if err != nil {
		return fmt.Errorf("mongodb create message indexes: %w", err)
	}

	return nil
}
