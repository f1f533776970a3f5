package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"DonorLink/entity"
)

// FindContactByPair looks up the contact for an unordered participant pair.
// Both orientations are checked so a mirrored duplicate can never be
// created. Returns (nil, nil) when no contact exists.
func (m *MongoDB) FindContactByPair(a, b primitive.ObjectID) (*entity.Contact, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "admin", Value: a}, {Key: "client", Value: b}},
		bson.D{{Key: "admin", Value: b}, {Key: "client", Value: a}},
	}}}

	var contact entity.Contact
	err = collection.FindOne(m.ctx, filter).Decode(&contact)
	if err != nil {
		return nil, m.findError(err)
	}

	return &contact, nil
}

// GetContact resolves a contact by id. Returns (nil, nil) when no contact
// exists.
func (m *MongoDB) GetContact(id primitive.ObjectID) (*entity.Contact, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)

	var contact entity.Contact
	err = collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&contact)
	if err != nil {
		return nil, m.findError(err)
	}

	return &contact, nil
}

// InsertContact stores a new contact and returns the assigned id.
func (m *MongoDB) InsertContact(contact entity.Contact) (primitive.ObjectID, error) {
	connection, err := m.connect()
	if err != nil {
		return primitive.NilObjectID, err
	}
	defer m.disconnect(connection)

	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	collection := connection.Database(m.database).Collection(contactsCollection)
	result, err := collection.InsertOne(m.ctx, contact)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("mongodb insert contact: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("mongodb insert contact: unexpected id type %T", result.InsertedID)
	}
	return id, nil
}

// TouchContact stamps the contact's updated_at, used when a message lands in
// the conversation.
func (m *MongoDB) TouchContact(id primitive.ObjectID) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}

	_, err = collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("mongodb touch contact: %w", err)
	}
	return nil
}

// GetContactFeed returns every contact the viewer participates in, with both
// participant profiles resolved, the latest message attached and the
// viewer's unread count recomputed from the messages collection.
func (m *MongoDB) GetContactFeed(viewerID primitive.ObjectID) ([]entity.ContactSummary, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "admin", Value: viewerID}},
			bson.D{{Key: "client", Value: viewerID}},
		}}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "admin"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "admin"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "client"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "client"},
		}}},
		{{Key: "$unwind", Value: "$admin"}},
		{{Key: "$unwind", Value: "$client"}},
		// Latest message per contact, newest first with _id as tie-break.
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: messagesCollection},
			{Key: "let", Value: bson.D{{Key: "contactId", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$eq", Value: bson.A{"$contact", "$$contactId"}},
				}}}}},
				bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
				bson.D{{Key: "$limit", Value: 1}},
			}},
			{Key: "as", Value: "last_message"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "last_message", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$last_message", 0}}}},
		}}},
		// Unread count for the viewer, derived live, never cached.
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: messagesCollection},
			{Key: "let", Value: bson.D{{Key: "contactId", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$contact", "$$contactId"}}},
					bson.D{{Key: "$eq", Value: bson.A{"$receiver", viewerID}}},
					bson.D{{Key: "$eq", Value: bson.A{"$read", false}}},
				}}}}}}},
				bson.D{{Key: "$count", Value: "unread"}},
			}},
			{Key: "as", Value: "unread_info"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "unread", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$arrayElemAt", Value: bson.A{"$unread_info.unread", 0}}},
				0,
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "unread_info", Value: 0},
			{Key: "admin.password", Value: 0},
			{Key: "client.password", Value: 0},
		}}},
	}

	cursor, err := collection.Aggregate(m.ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongodb aggregate contact feed: %w", err)
	}
	defer cursor.Close(m.ctx)

	var summaries []entity.ContactSummary
	if err = cursor.All(m.ctx, &summaries); err != nil {
		return nil, fmt.Errorf("mongodb decode contact feed: %w", err)
	}

	return summaries, nil
}
